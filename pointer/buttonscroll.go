package pointer

import (
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

type buttonScrollState int

const (
	buttonScrollIdle buttonScrollState = iota
	// buttonScrollPending: the scroll button is down but BUTTON-SCROLL
	// hasn't elapsed yet, so this might still turn out to be an ordinary
	// click.
	buttonScrollPending
	buttonScrollActive
)

// ButtonScroll implements SPEC_FULL.md §10's trackpoint button-hold
// scroll: while a dedicated button (conventionally the trackpoint's own
// BTN_MIDDLE) is held past the BUTTON-SCROLL timeout, subsequent
// relative motion from the same device is converted into scroll axis
// events instead of pointer motion.
//
// Like MiddleButtonEmulator, the triggering button's press is withheld
// rather than forwarded immediately: until BUTTON-SCROLL elapses we
// don't yet know whether the user is clicking or starting a scroll
// hold, and once scroll mode engages the button must never appear to
// the consumer as a click at all.
type ButtonScroll struct {
	buttonCode uint16
	buttons    *ButtonTracker
	s          *seat.Seat
	dev        eventqueue.DeviceHandle
	q          *eventqueue.Queue
	t          *timer.Timer

	state buttonScrollState
}

// NewButtonScroll constructs a button-scroll state machine watching
// buttonCode (typically BTN_MIDDLE) on one device.
func NewButtonScroll(buttonCode uint16, buttons *ButtonTracker, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) *ButtonScroll {
	bs := &ButtonScroll{buttonCode: buttonCode, buttons: buttons, s: s, dev: dev, q: q}
	bs.t = timer.New("BUTTON-SCROLL", bs.onTimeout)
	return bs
}

// Timer returns the underlying BUTTON-SCROLL timer, for TrackTimer.
func (bs *ButtonScroll) Timer() *timer.Timer { return bs.t }

// Active reports whether motion should currently be diverted to scroll
// instead of being emitted as PointerMotionEvent.
func (bs *ButtonScroll) Active() bool { return bs.state == buttonScrollActive }

// HandleButton processes a raw transition of the scroll button. It
// reports whether the transition was consumed; a consumed transition
// must not also be forwarded through ButtonTracker.SetState.
func (bs *ButtonScroll) HandleButton(code uint16, down bool, now time.Duration) bool {
	if code != bs.buttonCode {
		return false
	}
	if down {
		bs.state = buttonScrollPending
		bs.t.Set(now, timer.ButtonScroll)
		return true
	}
	switch bs.state {
	case buttonScrollPending:
		bs.t.Cancel()
		bs.state = buttonScrollIdle
		bs.buttons.EmitButton(bs.buttonCode, true, now, bs.s, bs.dev, bs.q)
		bs.buttons.EmitButton(bs.buttonCode, false, now, bs.s, bs.dev, bs.q)
		return true
	case buttonScrollActive:
		bs.t.Cancel()
		bs.state = buttonScrollIdle
		return true
	}
	return false
}

func (bs *ButtonScroll) onTimeout(now time.Duration) {
	if bs.state == buttonScrollPending {
		bs.state = buttonScrollActive
	}
}

// Motion converts a relative delta into scroll axis events. Callers
// must only invoke this in place of emitting PointerMotionEvent while
// Active() is true.
func (bs *ButtonScroll) Motion(dx, dy float64, now time.Duration) {
	if dy != 0 {
		bs.q.Push(eventqueue.PointerAxisEvent{
			Time: now, Device: bs.dev, Axis: eventqueue.AxisScrollVertical,
			Value: dy, Source: eventqueue.AxisSourceContinuous,
		})
	}
	if dx != 0 {
		bs.q.Push(eventqueue.PointerAxisEvent{
			Time: now, Device: bs.dev, Axis: eventqueue.AxisScrollHorizontal,
			Value: dx, Source: eventqueue.AxisSourceContinuous,
		})
	}
}

// Reset force-clears in-flight state without emitting anything, used on
// suspend/destroy.
func (bs *ButtonScroll) Reset() {
	bs.t.Cancel()
	bs.state = buttonScrollIdle
}
