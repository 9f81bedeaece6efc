// Package touchpad implements the C6 touchpad engine (spec.md §4.4),
// the C7 tap/drag state machine (§4.5), soft-button regions (§4.6),
// edge-scroll (§4.7), palm detection (§4.8), hover (§4.9), click method
// (§4.10) and the C8 disable-while-typing interlock (§4.14).
//
// It is grounded on the teacher's (im-BowenGu-touchpad2mouse-driver)
// ABS_MT_SLOT tracking array and its 2fg-scroll/3fg-swipe/tap-to-click
// block, generalized from the teacher's fixed "slot 0 only" pointing
// finger and hand-rolled gesture thresholds into the full multi-slot,
// multi-state-machine design spec.md §4.4-§4.10 describe.
package touchpad

import (
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/seat"
)

// Raw evdev ABS codes this package decodes directly (spec.md §6's
// inbound evdev contract).
const (
	absX        uint16 = 0x00
	absY        uint16 = 0x01
	absPressure uint16 = 0x18

	absMtSlot       uint16 = 0x2f
	absMtTouchMajor uint16 = 0x30
	absMtTrackingID uint16 = 0x39
	absMtPositionX  uint16 = 0x35
	absMtPositionY  uint16 = 0x36
	absMtPressure   uint16 = 0x3a
	absMtDistance   uint16 = 0x3b
	absMtToolType   uint16 = 0x37
)

// mtToolTypePalm is the kernel's MT_TOOL_PALM value.
const mtToolTypePalm int32 = 2

// moveThreshold is the device-unit distance past which a touch is no
// longer considered stationary for tap purposes (spec.md §4.5's "move
// past threshold" transition). Spec.md leaves the exact value to the
// implementer; this mirrors the teacher's own hand-tuned move-distance
// cutoffs for its tap/drag/swipe detection.
const moveThreshold = 20.0

// hoverPressureThreshold: below this, an MT slot's pressure/touch-major
// indicates a hovering, non-contacting finger (spec.md §4.9).
const hoverPressureThreshold = 1.0

type touchState int

const (
	slotNone touchState = iota
	slotBegin
	slotUpdate
	slotEnd
)

// role is a touch's classification for the current frame (spec.md
// §4.4's per-finger role enum).
type role int

const (
	roleNone role = iota
	rolePointer
	roleScrollA
	roleScrollB
	rolePalm
	roleThumb
	roleHovering
	roleDwell
)

// slot is one ABS_MT_SLOT's tracked state.
type slot struct {
	trackingID int32
	state      touchState

	x, y           float64
	startX, startY float64
	pressure       float64
	toolType       int32

	palm    bool
	hover   bool
	thumb   bool
	moved   bool
	muted   bool // latched DWT mute decision, sticky for this touch's life
	role    role
	seatIdx int
	hasSeat bool

	order        int // monotonic touch-down sequence number
	prevX, prevY float64
	idx          int // this slot's raw ABS_MT_SLOT index
}

func (s *slot) active() bool { return s.trackingID >= 0 }

// SlotTracker decodes the ABS_MT_SLOT protocol into a per-slot touch
// array and assigns seat-wide slot indices (spec.md §3's "dense
// non-negative integer ... unique across the whole seat").
type SlotTracker struct {
	slots     []slot
	active    int
	seat      *seat.Seat
	nextOrder int
}

// NewSlotTracker returns a tracker with no active slots.
func NewSlotTracker(s *seat.Seat) *SlotTracker {
	return &SlotTracker{seat: s, slots: []slot{{trackingID: -1}}}
}

func (t *SlotTracker) ensure(i int) {
	for len(t.slots) <= i {
		t.slots = append(t.slots, slot{trackingID: -1, idx: len(t.slots)})
	}
}

// HandleFrame updates slot state from one decoded ABS record. Non-ABS
// and non-MT-protocol frames are ignored (the caller routes BTN_* and
// single-touch ABS_X/ABS_Y separately).
func (t *SlotTracker) HandleFrame(f evdevcodec.Frame) {
	if f.Type != evdevcodec.EvAbs {
		return
	}
	switch f.Code {
	case absMtSlot:
		t.active = int(f.Value)
		t.ensure(t.active)
	case absMtTrackingID:
		t.ensure(t.active)
		s := &t.slots[t.active]
		if f.Value < 0 {
			if s.active() {
				s.state = slotEnd
			}
			s.trackingID = -1
		} else {
			s.trackingID = f.Value
			s.state = slotBegin
			s.palm, s.thumb, s.hover, s.moved, s.muted = false, false, false, false, false
			s.seatIdx = t.seat.AllocateSlot()
			s.hasSeat = true
			s.order = t.nextOrder
			t.nextOrder++
			s.prevX, s.prevY = 0, 0
		}
	case absMtPositionX:
		t.ensure(t.active)
		s := &t.slots[t.active]
		s.x = float64(f.Value)
		t.markMoved(s)
	case absMtPositionY:
		t.ensure(t.active)
		s := &t.slots[t.active]
		s.y = float64(f.Value)
		t.markMoved(s)
	case absMtPressure, absMtTouchMajor:
		t.ensure(t.active)
		s := &t.slots[t.active]
		s.pressure = float64(f.Value)
		s.hover = s.pressure < hoverPressureThreshold
	case absMtToolType:
		t.ensure(t.active)
		s := &t.slots[t.active]
		s.toolType = f.Value
	}
}

func (t *SlotTracker) markMoved(s *slot) {
	if s.state == slotBegin {
		s.startX, s.startY = s.x, s.y
		return
	}
	if s.state == slotEnd {
		return
	}
	s.state = slotUpdate
	dx, dy := s.x-s.startX, s.y-s.startY
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > moveThreshold || dy > moveThreshold {
		s.moved = true
	}
}

// Active returns the index and pointer of every slot currently tracked
// (begin, update, or merely still down with no change this frame),
// excluding ones that ended this frame.
func (t *SlotTracker) Active() []*slot {
	var out []*slot
	for i := range t.slots {
		if t.slots[i].active() {
			out = append(out, &t.slots[i])
		}
	}
	return out
}

// Ended returns every slot that received a touch-up this frame; after
// the caller has emitted the corresponding end events it must call
// Finish to free the seat-slot and fully clear the record.
func (t *SlotTracker) Ended() []*slot {
	var out []*slot
	for i := range t.slots {
		if t.slots[i].state == slotEnd {
			out = append(out, &t.slots[i])
		}
	}
	return out
}

// Finish clears an ended slot's record and releases its seat-slot
// index, called once the dispatcher has emitted its up event.
func (t *SlotTracker) Finish(s *slot) {
	if s.hasSeat {
		t.seat.FreeSlot(s.seatIdx)
	}
	*s = slot{trackingID: -1, idx: s.idx}
}

// ClearFrameStates demotes every remaining slotBegin/slotUpdate back to
// a steady "still down, no change" marker ahead of the next frame,
// without touching slotEnd records (the caller must Finish those
// explicitly once it has emitted their up event).
func (t *SlotTracker) ClearFrameStates() {
	for i := range t.slots {
		s := &t.slots[i]
		if s.active() && s.state != slotEnd {
			s.state = slotNone
		}
	}
}

// CancelAll force-ends every active slot (used on DWT/device-gone/
// suspend), without requiring a raw TRACKING_ID=-1 frame.
func (t *SlotTracker) CancelAll() {
	for i := range t.slots {
		if t.slots[i].active() {
			t.slots[i].state = slotEnd
		}
	}
}

// Count returns the number of slots currently down (any state but end).
func (t *SlotTracker) Count() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].active() && t.slots[i].state != slotEnd {
			n++
		}
	}
	return n
}
