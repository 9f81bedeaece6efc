package pointer

import (
	"testing"
	"time"

	"github.com/evseat/evseat/accel"
	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
)

func newTestDevice() (*device.Device, *seat.Seat) {
	s := seat.New("seat0", "seat0-default")
	d := device.New("event7", "Test Mouse", s, nil, device.CapPointer, nil)
	return d, s
}

func TestDispatcherEmitsAcceleratedMotionOnFrameEnd(t *testing.T) {
	q := eventqueue.NewQueue()
	dev, _ := newTestDevice()
	disp := NewDispatcher(dev, q, accel.NewSmoothSimple(1000), 0, false)

	disp.HandleEvdevFrame(evdevcodec.Frame{Type: evdevcodec.EvRel, Code: relX, Value: 5})
	disp.HandleEvdevFrame(evdevcodec.Frame{Type: evdevcodec.EvRel, Code: relY, Value: -3})
	disp.EndFrame(time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a motion event")
	}
	motion, ok := ev.(eventqueue.PointerMotionEvent)
	if !ok {
		t.Fatalf("expected PointerMotionEvent, got %T", ev)
	}
	if motion.Dx == 0 && motion.Dy == 0 {
		t.Fatal("expected nonzero accelerated motion")
	}
}

func TestDispatcherNaturalScrollInvertsWheel(t *testing.T) {
	q := eventqueue.NewQueue()
	dev, _ := newTestDevice()
	disp := NewDispatcher(dev, q, accel.NewSmoothSimple(1000), 0, true)

	disp.HandleEvdevFrame(evdevcodec.Frame{Type: evdevcodec.EvRel, Code: relWheel, Value: 1})
	disp.EndFrame(time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a wheel axis event")
	}
	axis := ev.(eventqueue.PointerAxisEvent)
	if axis.Value != -1 {
		t.Fatalf("expected natural-scroll inversion to flip the sign, got %v", axis.Value)
	}
}

func TestDispatcherButtonScrollDivertsMotion(t *testing.T) {
	q := eventqueue.NewQueue()
	dev, _ := newTestDevice()
	disp := NewDispatcher(dev, q, accel.NewSmoothSimple(1000), btnMiddle, false)

	disp.HandleEvdevFrame(evdevcodec.Frame{Type: evdevcodec.EvKey, Code: btnMiddle, Value: 1})
	disp.EndFrame(0)
	if _, ok := q.Next(); ok {
		t.Fatal("expected the press to be withheld pending BUTTON-SCROLL")
	}

	disp.scroll.t.Cancel() // force-expire deterministically for the test
	disp.scroll.state = buttonScrollActive

	disp.HandleEvdevFrame(evdevcodec.Frame{Type: evdevcodec.EvRel, Code: relY, Value: 4})
	disp.EndFrame(300 * time.Millisecond)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a scroll axis event instead of motion")
	}
	if _, ok := ev.(eventqueue.PointerAxisEvent); !ok {
		t.Fatalf("expected PointerAxisEvent, got %T", ev)
	}
}

func TestDispatcherSuspendForceReleasesButtons(t *testing.T) {
	q := eventqueue.NewQueue()
	dev, _ := newTestDevice()
	disp := NewDispatcher(dev, q, accel.NewSmoothSimple(1000), 0, false)

	disp.HandleEvdevFrame(evdevcodec.Frame{Type: evdevcodec.EvKey, Code: 0x113, Value: 1}) // BTN_SIDE, not chorded
	disp.EndFrame(0)
	q.Next() // drain the press

	disp.Suspend(time.Millisecond)
	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a forced release on suspend")
	}
	pb := ev.(eventqueue.PointerButtonEvent)
	if pb.State != eventqueue.ButtonReleased {
		t.Fatalf("expected release, got %+v", pb)
	}
}
