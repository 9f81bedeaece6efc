package pointer

import (
	"time"

	"github.com/evseat/evseat/accel"
	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
)

// Relative-axis and button codes this dispatcher cares about (spec.md
// §4.3's motion filter input, and the button set every plain pointer
// advertises).
const (
	relX      uint16 = 0x00
	relY      uint16 = 0x01
	relHWheel uint16 = 0x06
	relWheel  uint16 = 0x08
)

// Dispatcher is the device.Dispatcher for the plain relative-pointer
// device class (mice, trackpoints) — anything with CapPointer but none
// of CapTouch/CapTablet/CapButtonSet. It is the C5 "pointer/touch core"
// counterpart to the touchpad/tablet/buttonset engines: button
// diffing, acceleration, middle-button emulation and (for devices that
// opt in) trackpoint button-scroll all funnel through here.
type Dispatcher struct {
	dev *device.Device
	q   *eventqueue.Queue

	buttons *ButtonTracker
	filter  *accel.Filter
	mid     *MiddleButtonEmulator
	scroll  *ButtonScroll // nil unless this device does button-scroll

	naturalScroll bool

	haveMotion          bool
	dx, dy              float64
	wheel, hwheel       float64
	haveWheel, haveHWheel bool
}

// NewDispatcher builds a plain-pointer dispatcher. scrollButtonCode is
// the button code that engages button-scroll (SPEC_FULL.md §10),
// conventionally BTN_MIDDLE on a trackpoint; pass 0 to disable it for
// devices (most mice) that don't have one.
func NewDispatcher(dev *device.Device, q *eventqueue.Queue, filter *accel.Filter, scrollButtonCode uint16, naturalScroll bool) *Dispatcher {
	d := &Dispatcher{
		dev:           dev,
		q:             q,
		buttons:       NewButtonTracker(),
		filter:        filter,
		naturalScroll: naturalScroll,
	}
	d.mid = NewMiddleButtonEmulator(d.buttons, dev.Seat(), dev, q)
	dev.TrackTimer(d.mid.Timer())
	if scrollButtonCode != 0 {
		d.scroll = NewButtonScroll(scrollButtonCode, d.buttons, dev.Seat(), dev, q)
		dev.TrackTimer(d.scroll.Timer())
	}
	return d
}

// HandleEvdevFrame updates button/motion state for one decoded record.
func (d *Dispatcher) HandleEvdevFrame(f evdevcodec.Frame) {
	switch f.Type {
	case evdevcodec.EvKey:
		d.handleKey(f.Code, f.Value != 0, f.Time)
	case evdevcodec.EvRel:
		switch f.Code {
		case relX:
			d.dx += float64(f.Value)
			d.haveMotion = true
		case relY:
			d.dy += float64(f.Value)
			d.haveMotion = true
		case relWheel:
			d.wheel += float64(f.Value)
			d.haveWheel = true
		case relHWheel:
			d.hwheel += float64(f.Value)
			d.haveHWheel = true
		}
	}
}

func (d *Dispatcher) handleKey(code uint16, down bool, now time.Duration) {
	leftHanded := d.dev.LeftHanded().Current()
	mapped := code
	if leftHanded && (code == btnLeft || code == btnRight) {
		mapped = swapLeftRight(code)
	}
	if d.mid.HandleButton(mapped, down, now) {
		return
	}
	if d.scroll != nil && d.scroll.HandleButton(mapped, down, now) {
		return
	}
	d.buttons.SetState(mapped, down, false, now, d.dev.Seat(), d.dev, d.q)
}

// EndFrame flushes accumulated motion/wheel state as semantic events.
func (d *Dispatcher) EndFrame(now time.Duration) {
	if d.haveMotion {
		if d.scroll != nil && d.scroll.Active() {
			d.scroll.Motion(d.dx, d.dy, now)
		} else {
			adx, ady := d.filter.Dispatch(d.dx, d.dy, now)
			d.q.Push(eventqueue.PointerMotionEvent{Time: now, Device: d.dev, Dx: adx, Dy: ady})
		}
		d.dx, d.dy = 0, 0
		d.haveMotion = false
	}
	if d.haveWheel {
		v := d.wheel
		if d.naturalScroll {
			v = -v
		}
		d.q.Push(eventqueue.PointerAxisEvent{
			Time: now, Device: d.dev, Axis: eventqueue.AxisScrollVertical,
			Value: v, Source: eventqueue.AxisSourceWheel,
		})
		d.wheel = 0
		d.haveWheel = false
	}
	if d.haveHWheel {
		v := d.hwheel
		if d.naturalScroll {
			v = -v
		}
		d.q.Push(eventqueue.PointerAxisEvent{
			Time: now, Device: d.dev, Axis: eventqueue.AxisScrollHorizontal,
			Value: v, Source: eventqueue.AxisSourceWheel,
		})
		d.hwheel = 0
		d.haveHWheel = false
	}
}

// Suspend force-releases all held buttons without destroying filter
// state, matching spec.md §5's suspend semantics.
func (d *Dispatcher) Suspend(now time.Duration) {
	d.mid.Reset()
	if d.scroll != nil {
		d.scroll.Reset()
	}
	d.buttons.ForceReleaseAll(now, d.dev.Seat(), d.dev, d.q)
	d.haveMotion, d.haveWheel, d.haveHWheel = false, false, false
	d.dx, d.dy, d.wheel, d.hwheel = 0, 0, 0, 0
}

// PostAdded has nothing to do for a plain pointer: it carries no
// in-proximity or tool-identity state to snapshot.
func (d *Dispatcher) PostAdded() {}

// Destroy releases the motion filter's internal state.
func (d *Dispatcher) Destroy() {
	d.filter.Destroy()
}
