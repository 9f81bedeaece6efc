package pointer

import (
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

const (
	btnLeft   uint16 = 0x110
	btnRight  uint16 = 0x111
	btnMiddle uint16 = 0x112
)

// MiddleButtonEmulator implements SPEC_FULL.md §10's middle-button
// emulation: chording the left and right physical buttons within the
// MIDDLEBUTTON timeout synthesizes a single MIDDLE press instead of
// forwarding both buttons, matching how a physical middle button-less
// touchpad or trackpoint lets a user middle-click.
//
// It owns no motion state and is meant to sit in front of a
// ButtonTracker: a dispatcher routes every raw BTN_LEFT/BTN_RIGHT
// transition through HandleButton first, and only falls through to
// buttons.SetState when HandleButton reports it did not consume the
// transition itself.
type MiddleButtonEmulator struct {
	buttons *ButtonTracker
	s       *seat.Seat
	dev     eventqueue.DeviceHandle
	q       *eventqueue.Queue
	t       *timer.Timer

	leftDown, rightDown bool
	armed               bool
	pendingCode         uint16
	middleDown          bool
	passthrough         bool
}

// NewMiddleButtonEmulator constructs an emulator bound to one device's
// button tracker and output queue. Callers must track t (via
// device.Device.TrackTimer) so the wheel fires it.
func NewMiddleButtonEmulator(buttons *ButtonTracker, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) *MiddleButtonEmulator {
	m := &MiddleButtonEmulator{buttons: buttons, s: s, dev: dev, q: q}
	m.t = timer.New("MIDDLEBUTTON", m.onTimeout)
	return m
}

// Timer returns the underlying MIDDLEBUTTON timer, for TrackTimer.
func (m *MiddleButtonEmulator) Timer() *timer.Timer { return m.t }

// HandleButton processes one raw BTN_LEFT/BTN_RIGHT transition (already
// left-handed-swapped, if applicable) and reports whether it was
// consumed — in which case the caller must not also forward it through
// ButtonTracker.SetState. Any other button code is reported unconsumed
// immediately.
func (m *MiddleButtonEmulator) HandleButton(code uint16, down bool, now time.Duration) bool {
	if code != btnLeft && code != btnRight {
		return false
	}
	if code == btnLeft {
		m.leftDown = down
	} else {
		m.rightDown = down
	}

	if m.middleDown {
		if !m.leftDown && !m.rightDown {
			m.buttons.EmitButton(btnMiddle, false, now, m.s, m.dev, m.q)
			m.middleDown = false
		}
		return true
	}

	if m.passthrough {
		if !m.leftDown && !m.rightDown {
			m.passthrough = false
		}
		return false
	}

	if down {
		if !m.armed {
			m.armed = true
			m.pendingCode = code
			m.t.Set(now, timer.MiddleButton)
			return true
		}
		// The partner button arrived within the chord window.
		m.t.Cancel()
		m.armed = false
		m.middleDown = true
		m.buttons.EmitButton(btnMiddle, true, now, m.s, m.dev, m.q)
		return true
	}

	// Release of the sole pending button before its partner ever pressed:
	// it was always just an ordinary click, so flush it now.
	if m.armed && code == m.pendingCode {
		m.t.Cancel()
		m.armed = false
		m.buttons.EmitButton(m.pendingCode, true, now, m.s, m.dev, m.q)
		m.buttons.EmitButton(m.pendingCode, false, now, m.s, m.dev, m.q)
		return true
	}

	return false
}

// onTimeout fires when no chord partner arrived within MIDDLEBUTTON ms:
// the withheld button is flushed as an ordinary press and every further
// transition passes straight through until both buttons are back up.
func (m *MiddleButtonEmulator) onTimeout(now time.Duration) {
	if !m.armed {
		return
	}
	m.armed = false
	m.passthrough = true
	m.buttons.EmitButton(m.pendingCode, true, now, m.s, m.dev, m.q)
}

// Reset force-clears all chording state without emitting anything,
// used on device suspend/destroy where in-flight button state is
// abandoned rather than resolved.
func (m *MiddleButtonEmulator) Reset() {
	m.t.Cancel()
	m.leftDown, m.rightDown = false, false
	m.armed, m.middleDown, m.passthrough = false, false, false
}
