package main

import (
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/uinputsink"
)

// Raw evdev codes the replay sink understands — the subset a relative
// mouse (the teacher driver's entire output surface) uses.
const (
	relX      uint16 = 0x00
	relY      uint16 = 0x01
	relHWheel uint16 = 0x06
	relWheel  uint16 = 0x08

	btnLeft   uint16 = 0x110
	btnRight  uint16 = 0x111
	btnMiddle uint16 = 0x112
)

// newReplaySink opens a virtual /dev/uinput mouse advertising exactly the
// capabilities evseat's pointer-shaped events can produce.
func newReplaySink(name string) (*uinputsink.Device, error) {
	return uinputsink.Create(uinputsink.Config{
		Name:     name + " (evseat replay)",
		KeyCodes: []uint16{btnLeft, btnRight, btnMiddle},
		RelCodes: []uint16{relX, relY, relHWheel, relWheel},
	})
}

// replay drains q, writing every pointer-shaped event out through sink as
// real evdev records and terminating with a SYN_REPORT, mirroring the
// teacher driver's own createVirtualDevice/writeEvent output stage instead
// of merely printing the decoded stream. Touch, tablet and button-set
// events have no uinput mouse equivalent and are dropped.
func replay(q *eventqueue.Queue, sink *uinputsink.Device) error {
	for {
		e, ok := q.Next()
		if !ok {
			break
		}
		switch ev := e.(type) {
		case eventqueue.PointerMotionEvent:
			if err := sink.Rel(relX, int32(ev.Dx)); err != nil {
				return err
			}
			if err := sink.Rel(relY, int32(ev.Dy)); err != nil {
				return err
			}
		case eventqueue.PointerButtonEvent:
			if err := sink.Key(ev.Code, ev.State == eventqueue.ButtonPressed); err != nil {
				return err
			}
		case eventqueue.PointerAxisEvent:
			code := relWheel
			if ev.Axis == eventqueue.AxisScrollHorizontal {
				code = relHWheel
			}
			if err := sink.Rel(code, int32(ev.Value)); err != nil {
				return err
			}
		}
	}
	return sink.Sync()
}
