package touchpad

import (
	"testing"

	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/seat"
)

func absFrame(code uint16, v int32) evdevcodec.Frame {
	return evdevcodec.Frame{Type: evdevcodec.EvAbs, Code: code, Value: v}
}

func TestSlotTrackerBeginUpdateEndLifecycle(t *testing.T) {
	s := seat.New("seat0", "seat0-default")
	st := NewSlotTracker(s)

	st.HandleFrame(absFrame(absMtSlot, 0))
	st.HandleFrame(absFrame(absMtTrackingID, 100))
	st.HandleFrame(absFrame(absMtPositionX, 500))
	st.HandleFrame(absFrame(absMtPositionY, 500))

	active := st.Active()
	if len(active) != 1 || active[0].state != slotBegin {
		t.Fatalf("expected one begun slot, got %+v", active)
	}
	if st.Count() != 1 {
		t.Fatalf("expected count 1, got %d", st.Count())
	}
	st.ClearFrameStates()

	st.HandleFrame(absFrame(absMtPositionX, 540))
	active = st.Active()
	if active[0].state != slotUpdate {
		t.Fatalf("expected slotUpdate after a position change, got %v", active[0].state)
	}
	st.ClearFrameStates()

	st.HandleFrame(absFrame(absMtTrackingID, -1))
	ended := st.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected one ended slot, got %d", len(ended))
	}
	st.Finish(ended[0])
	if st.Count() != 0 {
		t.Fatalf("expected count 0 after finish, got %d", st.Count())
	}
}

func TestSlotTrackerAllocatesDistinctSeatSlots(t *testing.T) {
	s := seat.New("seat0", "seat0-default")
	st := NewSlotTracker(s)

	st.HandleFrame(absFrame(absMtSlot, 0))
	st.HandleFrame(absFrame(absMtTrackingID, 1))
	st.HandleFrame(absFrame(absMtSlot, 1))
	st.HandleFrame(absFrame(absMtTrackingID, 2))

	active := st.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 active slots, got %d", len(active))
	}
	if active[0].seatIdx == active[1].seatIdx {
		t.Fatal("expected distinct seat-slot indices")
	}
}

func TestSlotTrackerNormalPressureIsNotHovering(t *testing.T) {
	s := seat.New("seat0", "seat0-default")
	st := NewSlotTracker(s)
	st.HandleFrame(absFrame(absMtSlot, 0))
	st.HandleFrame(absFrame(absMtTrackingID, 1))
	st.HandleFrame(absFrame(absMtPressure, 30))

	active := st.Active()
	if active[0].hover {
		t.Fatal("a solid contact's pressure should not register as hovering")
	}
}

func TestSlotTrackerMoveThreshold(t *testing.T) {
	s := seat.New("seat0", "seat0-default")
	st := NewSlotTracker(s)
	st.HandleFrame(absFrame(absMtSlot, 0))
	st.HandleFrame(absFrame(absMtTrackingID, 1))
	st.HandleFrame(absFrame(absMtPositionX, 100))
	st.HandleFrame(absFrame(absMtPositionY, 100))
	st.ClearFrameStates()

	st.HandleFrame(absFrame(absMtPositionX, 105))
	if st.Active()[0].moved {
		t.Fatal("small motion should not cross moveThreshold")
	}
	st.ClearFrameStates()

	st.HandleFrame(absFrame(absMtPositionX, 200))
	if !st.Active()[0].moved {
		t.Fatal("large motion should cross moveThreshold")
	}
}

func TestSlotTrackerCancelAll(t *testing.T) {
	s := seat.New("seat0", "seat0-default")
	st := NewSlotTracker(s)
	st.HandleFrame(absFrame(absMtSlot, 0))
	st.HandleFrame(absFrame(absMtTrackingID, 1))
	st.ClearFrameStates()

	st.CancelAll()
	if len(st.Ended()) != 1 {
		t.Fatal("expected CancelAll to force-end every active slot")
	}
}
