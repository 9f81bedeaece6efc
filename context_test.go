package evseat

import (
	"testing"
	"time"

	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/internal/log"
	"github.com/evseat/evseat/touchpad"
)

func keyFrame(code uint16, value int32) evdevcodec.Frame {
	return evdevcodec.Frame{Type: evdevcodec.EvKey, Code: code, Value: value}
}

func TestAddTouchpadQueuesDeviceAdded(t *testing.T) {
	c := NewContext(log.Nop())
	c.AddTouchpad("event3", "Test Touchpad", "phys0", "seat0", TouchpadSpec{
		Geometry: touchpad.Geometry{WidthUnits: 1, HeightUnits: 1},
	}, nil)

	ev, ok := c.Queue.Next()
	if !ok {
		t.Fatal("expected a queued event")
	}
	if _, ok := ev.(eventqueue.DeviceAddedEvent); !ok {
		t.Fatalf("expected DeviceAddedEvent, got %T", ev)
	}
}

func TestTouchpadAndKeyboardOnSameSeatShareDWTInterlock(t *testing.T) {
	c := NewContext(log.Nop())
	c.AddTouchpad("event3", "Touchpad", "phys0", "seat0", TouchpadSpec{}, nil)
	c.AddKeyboard("event4", "Keyboard", "phys0", "seat0", true, nil)

	if len(c.dwt) != 1 {
		t.Fatalf("expected exactly one shared DWT interlock for the seat, got %d", len(c.dwt))
	}
}

func TestDevicesOnDifferentSeatsGetSeparateDWTInterlocks(t *testing.T) {
	c := NewContext(log.Nop())
	c.AddTouchpad("event3", "Touchpad", "phys0", "seat0", TouchpadSpec{}, nil)
	c.AddKeyboard("event4", "Keyboard", "phys1", "seat0", true, nil)

	if len(c.dwt) != 2 {
		t.Fatalf("expected two independent DWT interlocks, got %d", len(c.dwt))
	}
}

func TestKeyPressMutesSharedInterlockSeenByTouchpad(t *testing.T) {
	c := NewContext(log.Nop())
	c.AddTouchpad("event3", "Touchpad", "phys0", "seat0", TouchpadSpec{}, nil)
	c.AddKeyboard("event4", "Keyboard", "phys0", "seat0", true, nil)
	c.Queue.Next() // drain touchpad added
	c.Queue.Next() // drain keyboard added

	kbd, _ := c.Devices.Get("event4")
	kbd.Dispatcher().HandleEvdevFrame(keyFrame(30, 1)) // KEY_A down
	kbd.Dispatcher().EndFrame(0)

	dwt := c.dwt["phys0"]
	if !dwt.Muted() {
		t.Fatal("expected the shared interlock to be muted after a key press")
	}
}

func TestDispatchUnknownDeviceReturnsError(t *testing.T) {
	c := NewContext(log.Nop())
	if err := c.Dispatch("no-such-device"); err == nil {
		t.Fatal("expected an error dispatching an unknown device")
	}
}

func TestSuspendDelegatesToRegistry(t *testing.T) {
	c := NewContext(log.Nop())
	c.AddTouchpad("event3", "Touchpad", "phys0", "seat0", TouchpadSpec{}, nil)
	c.Queue.Next() // drain added

	c.Suspend(time.Duration(0))

	if _, ok := c.Queue.Next(); ok {
		t.Fatal("expected Suspend to queue no device-removed events")
	}
}
