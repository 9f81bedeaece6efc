package touchpad

import (
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

// tapState is spec.md §4.5's per-touchpad (not per-finger) tap state.
type tapState int

const (
	tapIdle tapState = iota
	tapTouch
	tapTapped
	tapRetouch // ambiguous: a quick re-touch after a finished 1-finger tap
	tapTouch2
	tapTapped2
	tapTouch3
	tapTapped3
	tapDragging
	tapDraggingWait
	tapDragging2
	tapDead
)

func tapButtonForCount(n int) uint16 {
	switch n {
	case 1:
		return btnLeft
	case 2:
		return btnRight
	case 3:
		return btnMiddle
	}
	return 0
}

// TapMachine is the C7 tap/drag state machine. One instance per
// touchpad device; it never sees individual finger identities, only
// aggregate down/up counts, matching spec.md §4.5's "one per touchpad,
// not per finger" note.
type TapMachine struct {
	state         tapState
	pressedButton uint16

	// A press recognized by OnFingerUp is held here rather than queued
	// immediately, so the caller can flush it after this frame's
	// motion/scroll (spec.md §4.4: "... then button presses").
	pendingPress     bool
	pendingPressCode uint16
	pendingPressAt   time.Duration

	t      *timer.Timer
	tNDrag *timer.Timer

	s   *seat.Seat
	dev eventqueue.DeviceHandle
	q   *eventqueue.Queue

	enabled bool
}

// NewTapMachine constructs an idle tap machine bound to one device's
// seat/output queue.
func NewTapMachine(s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) *TapMachine {
	m := &TapMachine{s: s, dev: dev, q: q, enabled: true}
	m.t = timer.New("TAP", m.onTapTimeout)
	m.tNDrag = timer.New("TAP-N-DRAG", m.onDragTimeout)
	return m
}

// Timers returns both timers owned by this machine, for TrackTimer.
func (m *TapMachine) Timers() []*timer.Timer { return []*timer.Timer{m.t, m.tNDrag} }

// SetEnabled toggles tap-to-click; spec.md §6's tap-enable option.
func (m *TapMachine) SetEnabled(v bool) { m.enabled = v }

// setPendingPress records a recognized-but-not-yet-queued press; the
// caller flushes it with FlushPendingPress once motion/scroll for the
// same frame have been dispatched.
func (m *TapMachine) setPendingPress(code uint16, at time.Duration) {
	m.pressedButton = code
	m.pendingPress = true
	m.pendingPressCode = code
	m.pendingPressAt = at
}

// FlushPendingPress queues a press deferred by OnFingerUp, if any. The
// engine calls this once per frame, after motion/scroll, so a new click
// always lands at the cursor's post-motion position and the frame's
// button events still order releases-before-presses overall.
func (m *TapMachine) FlushPendingPress() {
	if !m.pendingPress {
		return
	}
	m.pendingPress = false
	m.emitButton(m.pendingPressCode, true, m.pendingPressAt)
}

func (m *TapMachine) emitButton(code uint16, down bool, now time.Duration) {
	var state eventqueue.ButtonState
	var count uint32
	if down {
		state = eventqueue.ButtonPressed
		count = m.s.ButtonPressed(code)
	} else {
		state = eventqueue.ButtonReleased
		count = m.s.ButtonReleased(code)
	}
	m.q.Push(eventqueue.PointerButtonEvent{
		Time: now, Device: m.dev, Code: code, State: state, SeatButtonCount: count,
	})
}

// OnFingerDown processes a finger landing; downCount is the total
// fingers down including this one.
func (m *TapMachine) OnFingerDown(downCount int, now time.Duration) {
	if !m.enabled {
		return
	}
	switch m.state {
	case tapIdle:
		if downCount == 1 {
			m.state = tapTouch
			m.t.Set(now, timer.Tap)
		}
	case tapTouch:
		if downCount == 2 {
			m.state = tapTouch2
		}
	case tapTouch2:
		if downCount == 3 {
			m.state = tapTouch3
		}
	case tapTapped:
		// A quick re-touch after a finished 1-finger tap is ambiguous:
		// real libinput doesn't commit to a drag here, it waits to see
		// whether the re-touch is held/moved (a drag) or lifts again
		// quickly (a second, independent tap click — spec.md §8
		// property 3 / scenario S1).
		m.t.Cancel()
		m.state = tapRetouch
		m.t.Set(now, timer.Tap)
	case tapTapped2, tapTapped3:
		m.t.Cancel()
		m.state = tapDragging
	case tapRetouch:
		if downCount == 2 {
			m.t.Cancel()
			m.state = tapDragging
		}
	case tapDragging:
		if downCount == 3 {
			m.emitButton(m.pressedButton, false, now)
			m.state = tapIdle
		}
	case tapDraggingWait:
		m.tNDrag.Cancel()
		if downCount == 2 {
			m.state = tapDragging2
		} else {
			m.state = tapDragging
		}
	}
}

// OnFingerUp processes a finger lifting; remainingCount is how many
// fingers are still down after this lift.
func (m *TapMachine) OnFingerUp(remainingCount int, now time.Duration) {
	if !m.enabled {
		return
	}
	switch m.state {
	case tapTouch:
		if remainingCount == 0 {
			m.t.Cancel()
			m.setPendingPress(tapButtonForCount(1), now)
			m.state = tapTapped
			m.t.Set(now, timer.Tap)
		}
	case tapTouch2:
		if remainingCount == 0 {
			m.t.Cancel()
			m.setPendingPress(tapButtonForCount(2), now)
			m.state = tapTapped2
			m.t.Set(now, timer.Tap)
		}
	case tapTouch3:
		if remainingCount == 0 {
			m.t.Cancel()
			m.setPendingPress(tapButtonForCount(3), now)
			m.state = tapTapped3
			m.t.Set(now, timer.Tap)
		}
	case tapRetouch:
		if remainingCount == 0 {
			m.t.Cancel()
			// Lifted again quickly: not a drag after all. Close out
			// the first click now (a release orders ahead of this
			// frame's motion) and defer the new, independent one (a
			// press orders after) — spec.md §4.4's release-before-
			// motion/press-after-motion framing, applied to a pair
			// minted at the same instant. The deferred press is
			// nudged one tick past the release so the pair's own
			// timestamps still order strictly (spec.md §8 property 3).
			m.emitButton(m.pressedButton, false, now)
			m.setPendingPress(tapButtonForCount(1), now+time.Nanosecond)
			m.state = tapTapped
			m.t.Set(now, timer.Tap)
		}
	case tapDragging, tapDragging2:
		if remainingCount == 0 {
			m.state = tapDraggingWait
			m.tNDrag.Set(now, timer.TapAndDrag)
		}
	}
}

// OnMoveBeyondThreshold kills the tap machine for this stroke
// (spec.md §4.5: "TOUCH | move past threshold | DEAD"), or commits an
// ambiguous re-touch to a drag once it's clearly not a quick second tap.
func (m *TapMachine) OnMoveBeyondThreshold() {
	switch m.state {
	case tapTouch, tapTouch2, tapTouch3:
		m.t.Cancel()
		m.state = tapDead
	case tapRetouch:
		// Moved before lifting: this is a drag, not a second tap. The
		// first click's button stays held, exactly as a timeout would
		// leave it.
		m.t.Cancel()
		m.state = tapDragging
	}
}

// OnAllFingersUp lets a DEAD stroke reset to IDLE once the pad is
// completely released.
func (m *TapMachine) OnAllFingersUp() {
	if m.state == tapDead {
		m.state = tapIdle
	}
}

// OnPhysicalClick handles a real button press arriving mid-drag
// (spec.md: "DRAGGING | physical click | IDLE | release LEFT, then
// forward physical click"). Reports whether it consumed a drag release;
// forwarding the physical click itself remains the caller's job.
func (m *TapMachine) OnPhysicalClick(now time.Duration) bool {
	switch m.state {
	case tapDragging, tapDragging2:
		m.emitButton(m.pressedButton, false, now)
		m.state = tapIdle
		return true
	case tapRetouch:
		// A real button press while the re-touch is still ambiguous is
		// itself a clear "this is a hold, not a second tap" signal.
		m.t.Cancel()
		m.emitButton(m.pressedButton, false, now)
		m.state = tapIdle
		return true
	}
	return false
}

func (m *TapMachine) onTapTimeout(now time.Duration) {
	switch m.state {
	case tapTouch, tapTouch2, tapTouch3:
		m.state = tapDead
	case tapTapped, tapTapped2, tapTapped3:
		m.emitButton(m.pressedButton, false, now)
		m.state = tapIdle
	case tapRetouch:
		// Held past TAP without lifting: commit to a drag. The
		// button was never released, so nothing more to emit here.
		m.state = tapDragging
	}
}

func (m *TapMachine) onDragTimeout(now time.Duration) {
	if m.state == tapDraggingWait {
		m.emitButton(m.pressedButton, false, now)
		m.state = tapIdle
	}
}

// IsDragging reports whether a tap-and-drag is in progress, so the
// engine knows to keep forwarding pointer motion even with no physical
// button held.
func (m *TapMachine) IsDragging() bool {
	return m.state == tapDragging || m.state == tapDragging2 || m.state == tapDraggingWait
}

// ForceRelease unconditionally ends any in-flight tap/drag button
// without going through the normal timer-driven path, used on
// suspend/DWT/device-gone.
func (m *TapMachine) ForceRelease(now time.Duration) {
	switch m.state {
	case tapTapped, tapTapped2, tapTapped3, tapRetouch, tapDragging, tapDragging2, tapDraggingWait:
		m.emitButton(m.pressedButton, false, now)
	}
	m.pendingPress = false
	m.t.Cancel()
	m.tNDrag.Cancel()
	m.state = tapIdle
}
