package pointer

import (
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
)

// ButtonTracker diffs a device's raw button bitmask frame over frame and
// emits PointerButtonEvents carrying the seat-wide pressed counter,
// implementing spec.md §3's "seat holds monotonically counted press
// totals ... reported on every key/button event".
//
// It also honors the left-handed swap for the two named buttons
// (spec.md §4.5: "Button-code mapping honors the left-handed flag only
// for real physical clickpad buttons and soft-buttons — tapping and
// click-finger do not swap"), which is why Diff takes leftHanded
// explicitly rather than baking it into a single fixed mapping: callers
// that must NOT swap (tap, clickfinger) call EmitButton directly instead.
type ButtonTracker struct {
	pressed map[uint16]bool
}

// NewButtonTracker returns an empty tracker.
func NewButtonTracker() *ButtonTracker {
	return &ButtonTracker{pressed: make(map[uint16]bool)}
}

// IsPressed reports the last-known state of a button code.
func (b *ButtonTracker) IsPressed(code uint16) bool {
	return b.pressed[code]
}

// swapLeftRight swaps BTN_LEFT (0x110) and BTN_RIGHT (0x111); any other
// code is returned unchanged.
func swapLeftRight(code uint16) uint16 {
	switch code {
	case 0x110:
		return 0x111
	case 0x111:
		return 0x110
	default:
		return code
	}
}

// SetState records a raw button transition and, if it's a real change,
// emits a PointerButtonEvent into queue carrying the post-transition seat
// counter. leftHanded controls whether BTN_LEFT/BTN_RIGHT are swapped
// before being recorded and emitted.
func (b *ButtonTracker) SetState(code uint16, down bool, leftHanded bool, now time.Duration, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) {
	mapped := code
	if leftHanded {
		mapped = swapLeftRight(code)
	}
	if b.pressed[mapped] == down {
		return
	}
	b.pressed[mapped] = down
	b.emit(mapped, down, now, s, dev, q)
}

// EmitButton force-emits a button transition that bypasses raw-bitmask
// diffing entirely (used by tap/clickfinger, which synthesize button
// presses that never go through left-handed swap).
func (b *ButtonTracker) EmitButton(code uint16, down bool, now time.Duration, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) {
	b.pressed[code] = down
	b.emit(code, down, now, s, dev, q)
}

func (b *ButtonTracker) emit(code uint16, down bool, now time.Duration, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) {
	var state eventqueue.ButtonState
	var count uint32
	if down {
		state = eventqueue.ButtonPressed
		if s != nil {
			count = s.ButtonPressed(code)
		}
	} else {
		state = eventqueue.ButtonReleased
		if s != nil {
			count = s.ButtonReleased(code)
		}
	}
	q.Push(eventqueue.PointerButtonEvent{
		Time:            now,
		Device:          dev,
		Code:            code,
		State:           state,
		SeatButtonCount: count,
	})
}

// ForceReleaseAll releases every currently-pressed button tracked, used
// on device-gone (spec.md §7) and tool leaving proximity (spec.md §4.11).
func (b *ButtonTracker) ForceReleaseAll(now time.Duration, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) {
	for code, down := range b.pressed {
		if down {
			b.emit(code, false, now, s, dev, q)
			b.pressed[code] = false
		}
	}
}

// KeyTracker is the keyboard-key analog of ButtonTracker: it diffs raw
// key codes and emits KeyboardKeyEvents with the seat-wide key counter.
type KeyTracker struct {
	pressed map[uint16]bool
}

// NewKeyTracker returns an empty tracker.
func NewKeyTracker() *KeyTracker {
	return &KeyTracker{pressed: make(map[uint16]bool)}
}

func (k *KeyTracker) IsPressed(code uint16) bool { return k.pressed[code] }

// SetState records a raw key transition and emits a KeyboardKeyEvent if
// it is a real change.
func (k *KeyTracker) SetState(code uint16, down bool, now time.Duration, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) {
	if k.pressed[code] == down {
		return
	}
	k.pressed[code] = down
	var state eventqueue.ButtonState
	var count uint32
	if down {
		state = eventqueue.ButtonPressed
		if s != nil {
			count = s.KeyPressed(code)
		}
	} else {
		state = eventqueue.ButtonReleased
		if s != nil {
			count = s.KeyReleased(code)
		}
	}
	q.Push(eventqueue.KeyboardKeyEvent{
		Time:         now,
		Device:       dev,
		Code:         code,
		State:        state,
		SeatKeyCount: count,
	})
}

// ForceReleaseAll releases every currently-pressed key tracked.
func (k *KeyTracker) ForceReleaseAll(now time.Duration, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) {
	for code, down := range k.pressed {
		if down {
			k.SetState(code, false, now, s, dev, q)
		}
	}
}
