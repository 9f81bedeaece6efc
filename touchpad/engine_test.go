package touchpad

import (
	"testing"
	"time"

	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

func newTestEngine() (*Engine, *eventqueue.Queue, *device.Device) {
	s := seat.New("seat0", "seat0-default")
	dev := device.New("event8", "Test Touchpad", s, nil, device.CapPointer|device.CapTouch, nil)
	q := eventqueue.NewQueue()
	geometry := Geometry{WidthUnits: 1000, HeightUnits: 1000, WidthMM: 150, HeightMM: 100}
	e := NewEngine(dev, q, geometry, NewDWTInterlock(true))
	return e, q, dev
}

func drainButtons(q *eventqueue.Queue) []eventqueue.PointerButtonEvent {
	var out []eventqueue.PointerButtonEvent
	for {
		ev, ok := q.Next()
		if !ok {
			return out
		}
		if b, ok := ev.(eventqueue.PointerButtonEvent); ok {
			out = append(out, b)
		}
	}
}

func TestEngineSingleFingerTapEmitsClick(t *testing.T) {
	e, q, _ := newTestEngine()

	e.HandleEvdevFrame(absFrame(absMtSlot, 0))
	e.HandleEvdevFrame(absFrame(absMtTrackingID, 1))
	e.HandleEvdevFrame(absFrame(absMtPositionX, 500))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 500))
	e.EndFrame(0)

	e.HandleEvdevFrame(absFrame(absMtTrackingID, -1))
	e.EndFrame(5 * time.Millisecond)

	wheel := timer.NewWheel()
	for _, tm := range e.tap.Timers() {
		wheel.Track(tm)
	}
	wheel.Advance(5*time.Millisecond + timer.Tap + time.Millisecond)

	buttons := drainButtons(q)
	if len(buttons) != 2 {
		t.Fatalf("expected a press and a release, got %+v", buttons)
	}
	if buttons[0].Code != btnLeft || buttons[0].State != eventqueue.ButtonPressed {
		t.Fatalf("expected BTN_LEFT press first, got %+v", buttons[0])
	}
	if buttons[1].State != eventqueue.ButtonReleased {
		t.Fatalf("expected a release second, got %+v", buttons[1])
	}
}

func TestEngineTwoFingerScrollEmitsAxisAfterThreshold(t *testing.T) {
	e, q, _ := newTestEngine()
	e.SetScrollMethod(ScrollMethodTwoFinger)

	e.HandleEvdevFrame(absFrame(absMtSlot, 0))
	e.HandleEvdevFrame(absFrame(absMtTrackingID, 1))
	e.HandleEvdevFrame(absFrame(absMtPositionX, 400))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 400))
	e.HandleEvdevFrame(absFrame(absMtSlot, 1))
	e.HandleEvdevFrame(absFrame(absMtTrackingID, 2))
	e.HandleEvdevFrame(absFrame(absMtPositionX, 600))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 400))
	e.EndFrame(0)

	e.HandleEvdevFrame(absFrame(absMtSlot, 0))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 430))
	e.HandleEvdevFrame(absFrame(absMtSlot, 1))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 430))
	e.EndFrame(10 * time.Millisecond)

	var axis *eventqueue.PointerAxisEvent
	for {
		ev, ok := q.Next()
		if !ok {
			break
		}
		if a, ok := ev.(eventqueue.PointerAxisEvent); ok {
			axis = &a
		}
	}
	if axis == nil {
		t.Fatal("expected a scroll axis event once both fingers crossed the 2fg-scroll threshold")
	}
	if axis.Axis != eventqueue.AxisScrollVertical || axis.Value <= 0 {
		t.Fatalf("expected a positive vertical scroll, got %+v", axis)
	}
}

func TestEnginePalmTouchIsExcludedFromTap(t *testing.T) {
	e, q, _ := newTestEngine()

	// A touch beginning inside the lateral palm strip (x < 5% of width).
	e.HandleEvdevFrame(absFrame(absMtSlot, 0))
	e.HandleEvdevFrame(absFrame(absMtTrackingID, 1))
	e.HandleEvdevFrame(absFrame(absMtPositionX, 10))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 500))
	e.EndFrame(0)

	e.HandleEvdevFrame(absFrame(absMtTrackingID, -1))
	e.EndFrame(5 * time.Millisecond)

	wheel := timer.NewWheel()
	for _, tm := range e.tap.Timers() {
		wheel.Track(tm)
	}
	wheel.Advance(5*time.Millisecond + timer.Tap + time.Millisecond)

	if buttons := drainButtons(q); len(buttons) != 0 {
		t.Fatalf("expected a palm-classified touch to never produce a tap click, got %+v", buttons)
	}
}

func TestEngineSuspendForceReleasesHeldTap(t *testing.T) {
	e, q, _ := newTestEngine()

	e.HandleEvdevFrame(absFrame(absMtSlot, 0))
	e.HandleEvdevFrame(absFrame(absMtTrackingID, 1))
	e.HandleEvdevFrame(absFrame(absMtPositionX, 500))
	e.HandleEvdevFrame(absFrame(absMtPositionY, 500))
	e.EndFrame(0)
	e.HandleEvdevFrame(absFrame(absMtTrackingID, -1))
	e.EndFrame(5 * time.Millisecond)
	drainButtons(q) // drain the tap's press

	e.Suspend(10 * time.Millisecond)
	buttons := drainButtons(q)
	if len(buttons) != 1 || buttons[0].State != eventqueue.ButtonReleased {
		t.Fatalf("expected Suspend to force-release the held tap button, got %+v", buttons)
	}
}
