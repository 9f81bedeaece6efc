package buttonset

import (
	"testing"
	"time"

	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
)

func keyFrame(code uint16, v int32) evdevcodec.Frame {
	return evdevcodec.Frame{Type: evdevcodec.EvKey, Code: code, Value: v}
}
func absFrame(code uint16, v int32) evdevcodec.Frame {
	return evdevcodec.Frame{Type: evdevcodec.EvAbs, Code: code, Value: v}
}

func newTestEngine() (*Engine, *eventqueue.Queue) {
	s := seat.New("seat0", "seat0-default")
	dev := device.New("event11", "Test Pad", s, nil, device.CapButtonSet, nil)
	q := eventqueue.NewQueue()
	// Ring domain [0,360), strip domain [0,4096) one-hot.
	e := NewEngine(dev, q, AxisRange{0, 360}, AxisRange{0, 4096}, 24)
	return e, q
}

func TestRingWrapAroundProducesPositiveDelta(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(absFrame(absRing, 324)) // 0.9 of 360
	e.EndFrame(0)
	q.Next() // first reading, delta 0

	e.HandleEvdevFrame(absFrame(absRing, 36)) // 0.1 of 360
	e.EndFrame(5 * time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a ring axis event")
	}
	a := ev.(eventqueue.ButtonSetAxisEvent)
	if a.Axis != eventqueue.ButtonSetRing {
		t.Fatalf("expected a ring event, got %+v", a)
	}
	if a.Delta <= 0 {
		t.Fatalf("expected a positive wrap-around delta (0.9->0.1 should be +0.2), got %v", a.Delta)
	}
	if diff := a.Delta - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected delta ~0.2, got %v", a.Delta)
	}
}

func TestRingFirstReadingHasZeroDelta(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(absFrame(absRing, 180))
	e.EndFrame(0)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a ring axis event")
	}
	a := ev.(eventqueue.ButtonSetAxisEvent)
	if a.Delta != 0 {
		t.Fatalf("expected the first ring reading to carry delta 0, got %v", a.Delta)
	}
}

func TestStripZeroPositionIsSuppressed(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(absFrame(absStrip, 0))
	e.EndFrame(0)

	if _, ok := q.Next(); ok {
		t.Fatal("expected no event for strip position 0 (finger released)")
	}
}

func TestFreshStripTouchHasZeroDelta(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(absFrame(absStrip, 0))
	e.EndFrame(0)
	q.Next()

	e.HandleEvdevFrame(absFrame(absStrip, 64))
	e.EndFrame(5 * time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a strip axis event on fresh touch")
	}
	a := ev.(eventqueue.ButtonSetAxisEvent)
	if a.Axis != eventqueue.ButtonSetStrip {
		t.Fatalf("expected a strip event, got %+v", a)
	}
	if a.Delta != 0 {
		t.Fatalf("expected a fresh strip touch to carry delta 0, got %v", a.Delta)
	}
}

func TestStripMovementAfterTouchCarriesDelta(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(absFrame(absStrip, 64))
	e.EndFrame(0)
	first, _ := q.Next()
	firstPos := first.(eventqueue.ButtonSetAxisEvent).Position

	e.HandleEvdevFrame(absFrame(absStrip, 2048))
	e.EndFrame(5 * time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a second strip axis event")
	}
	a := ev.(eventqueue.ButtonSetAxisEvent)
	if a.Delta == 0 {
		t.Fatal("expected a nonzero delta once the strip is already being touched")
	}
	if a.Position <= firstPos {
		t.Fatalf("expected position to increase, got %v after %v", a.Position, firstPos)
	}
}

func TestPadButtonDiffEmitsPressAndRelease(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(keyFrame(0x100, 1))
	e.EndFrame(0)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a button press event")
	}
	b := ev.(eventqueue.ButtonSetButtonEvent)
	if b.State != eventqueue.ButtonPressed || b.Code != 0x100 {
		t.Fatalf("unexpected button event: %+v", b)
	}

	e.HandleEvdevFrame(keyFrame(0x100, 0))
	e.EndFrame(5 * time.Millisecond)

	ev, ok = q.Next()
	if !ok {
		t.Fatal("expected a button release event")
	}
	b = ev.(eventqueue.ButtonSetButtonEvent)
	if b.State != eventqueue.ButtonReleased {
		t.Fatalf("expected a release, got %+v", b)
	}
}

func TestSuspendForceReleasesHeldButtons(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(keyFrame(0x101, 1))
	e.EndFrame(0)
	q.Next() // drain press

	e.Suspend(10 * time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a forced release on suspend")
	}
	b := ev.(eventqueue.ButtonSetButtonEvent)
	if b.State != eventqueue.ButtonReleased || b.Code != 0x101 {
		t.Fatalf("expected a release of 0x101, got %+v", b)
	}
}

func TestSuspendSuppressesFurtherStripMotionUntilRetouch(t *testing.T) {
	e, q := newTestEngine()
	e.HandleEvdevFrame(absFrame(absStrip, 64))
	e.EndFrame(0)
	q.Next()

	e.Suspend(5 * time.Millisecond)

	e.HandleEvdevFrame(absFrame(absStrip, 2048))
	e.EndFrame(10 * time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a strip event for the new touch")
	}
	a := ev.(eventqueue.ButtonSetAxisEvent)
	if a.Delta != 0 {
		t.Fatalf("expected suspend to reset touching state so this reads as a fresh touch (delta 0), got %v", a.Delta)
	}
}
