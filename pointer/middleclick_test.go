package pointer

import (
	"testing"
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

func TestMiddleButtonChordWithinWindow(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	dev := fakeDevice("event5")
	bt := NewButtonTracker()
	m := NewMiddleButtonEmulator(bt, s, dev, q)

	if !m.HandleButton(btnLeft, true, 0) {
		t.Fatal("expected left-down to be withheld")
	}
	if _, ok := q.Next(); ok {
		t.Fatal("expected nothing queued while armed")
	}

	if !m.HandleButton(btnRight, true, 10*time.Millisecond) {
		t.Fatal("expected right-down within window to be consumed")
	}
	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a middle-down event")
	}
	pb := ev.(eventqueue.PointerButtonEvent)
	if pb.Code != btnMiddle || pb.State != eventqueue.ButtonPressed {
		t.Fatalf("unexpected event: %+v", pb)
	}

	if !m.HandleButton(btnLeft, false, 15*time.Millisecond) {
		t.Fatal("expected left-up while chorded to be consumed")
	}
	if _, ok := q.Next(); ok {
		t.Fatal("expected no release yet: right still down")
	}
	if !m.HandleButton(btnRight, false, 16*time.Millisecond) {
		t.Fatal("expected right-up to be consumed")
	}
	ev, ok = q.Next()
	if !ok {
		t.Fatal("expected a middle-up event")
	}
	pb = ev.(eventqueue.PointerButtonEvent)
	if pb.Code != btnMiddle || pb.State != eventqueue.ButtonReleased {
		t.Fatalf("unexpected event: %+v", pb)
	}
}

func TestMiddleButtonQuickClickNoChord(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	dev := fakeDevice("event5")
	bt := NewButtonTracker()
	m := NewMiddleButtonEmulator(bt, s, dev, q)

	m.HandleButton(btnLeft, true, 0)
	m.HandleButton(btnLeft, false, 5*time.Millisecond)

	down, ok := q.Next()
	if !ok {
		t.Fatal("expected a flushed left-down")
	}
	up, ok := q.Next()
	if !ok {
		t.Fatal("expected a flushed left-up")
	}
	if down.(eventqueue.PointerButtonEvent).Code != btnLeft || down.(eventqueue.PointerButtonEvent).State != eventqueue.ButtonPressed {
		t.Fatalf("unexpected down: %+v", down)
	}
	if up.(eventqueue.PointerButtonEvent).State != eventqueue.ButtonReleased {
		t.Fatalf("unexpected up: %+v", up)
	}
}

func TestMiddleButtonTimeoutPassthrough(t *testing.T) {
	q := eventqueue.NewQueue()
	s := seat.New("seat0", "seat0-default")
	dev := fakeDevice("event5")
	bt := NewButtonTracker()
	m := NewMiddleButtonEmulator(bt, s, dev, q)
	wheel := timer.NewWheel()
	wheel.Track(m.Timer())

	m.HandleButton(btnLeft, true, 0)
	wheel.Advance(timer.MiddleButton + time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected timeout to flush a left-down")
	}
	if ev.(eventqueue.PointerButtonEvent).Code != btnLeft {
		t.Fatalf("unexpected flushed event: %+v", ev)
	}

	// Now in passthrough: right press/release forwards normally (not consumed).
	if m.HandleButton(btnRight, true, timer.MiddleButton+2*time.Millisecond) {
		t.Fatal("expected passthrough press to be unconsumed")
	}
	if m.HandleButton(btnRight, false, timer.MiddleButton+3*time.Millisecond) {
		t.Fatal("expected passthrough release to be unconsumed")
	}
	if m.HandleButton(btnLeft, false, timer.MiddleButton+4*time.Millisecond) {
		t.Fatal("expected the original left release to be unconsumed")
	}
}
