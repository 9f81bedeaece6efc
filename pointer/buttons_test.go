package pointer

import (
	"testing"
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
)

type fakeDevice string

func (f fakeDevice) DeviceSysname() string { return string(f) }

func TestButtonTrackerEmitsOnRealChangeOnly(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	bt := NewButtonTracker()
	dev := fakeDevice("event3")

	bt.SetState(btnLeft, true, false, 0, s, dev, q)
	bt.SetState(btnLeft, true, false, 0, s, dev, q) // repeat, no change

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected one queued event")
	}
	pb := ev.(eventqueue.PointerButtonEvent)
	if pb.State != eventqueue.ButtonPressed || pb.SeatButtonCount != 1 {
		t.Fatalf("unexpected event: %+v", pb)
	}
	if _, ok := q.Next(); ok {
		t.Fatal("expected the repeated SetState to be a no-op")
	}
}

func TestButtonTrackerLeftHandedSwap(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	bt := NewButtonTracker()
	dev := fakeDevice("event3")

	bt.SetState(btnLeft, true, true, 0, s, dev, q)
	ev, _ := q.Next()
	pb := ev.(eventqueue.PointerButtonEvent)
	if pb.Code != btnRight {
		t.Fatalf("expected BTN_LEFT to swap to BTN_RIGHT, got %#x", pb.Code)
	}
}

func TestButtonTrackerForceReleaseAll(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	bt := NewButtonTracker()
	dev := fakeDevice("event3")

	bt.SetState(btnLeft, true, false, 0, s, dev, q)
	bt.SetState(btnRight, true, false, 0, s, dev, q)
	q.Next()
	q.Next()

	bt.ForceReleaseAll(time.Millisecond, s, dev, q)
	count := 0
	for {
		ev, ok := q.Next()
		if !ok {
			break
		}
		pb := ev.(eventqueue.PointerButtonEvent)
		if pb.State != eventqueue.ButtonReleased {
			t.Fatalf("expected release, got %+v", pb)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 forced releases, got %d", count)
	}
	if bt.IsPressed(btnLeft) || bt.IsPressed(btnRight) {
		t.Fatal("expected both buttons cleared")
	}
}

func TestKeyTrackerSeatCounters(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	kt := NewKeyTracker()
	dev := fakeDevice("event4")

	kt.SetState(30, true, 0, s, dev, q) // KEY_A
	kt.SetState(30, false, time.Millisecond, s, dev, q)

	ev1, _ := q.Next()
	ev2, _ := q.Next()
	down := ev1.(eventqueue.KeyboardKeyEvent)
	up := ev2.(eventqueue.KeyboardKeyEvent)
	if down.SeatKeyCount != 1 || down.State != eventqueue.ButtonPressed {
		t.Fatalf("unexpected down event: %+v", down)
	}
	if up.SeatKeyCount != 0 || up.State != eventqueue.ButtonReleased {
		t.Fatalf("unexpected up event: %+v", up)
	}
}
