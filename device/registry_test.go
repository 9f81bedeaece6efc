package device

import (
	"testing"
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/internal/log"
	"github.com/evseat/evseat/seat"
)

func TestRegistryAddQueuesDeviceAdded(t *testing.T) {
	q := eventqueue.NewQueue()
	seats := seat.NewTable()
	r := NewRegistry(seats, q, log.Nop())

	s := seats.GetOrCreate("seat0", "seat0-default")
	d := New("event3", "Test Touchpad", s, nil, CapTouch|CapPointer, nil)
	r.Add(d)

	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a queued event")
	}
	added, ok := ev.(eventqueue.DeviceAddedEvent)
	if !ok {
		t.Fatalf("expected DeviceAddedEvent, got %T", ev)
	}
	if added.Device.DeviceSysname() != "event3" {
		t.Fatalf("unexpected device in added event: %v", added.Device.DeviceSysname())
	}
}

func TestRegistryRemoveQueuesDeviceRemoved(t *testing.T) {
	q := eventqueue.NewQueue()
	seats := seat.NewTable()
	r := NewRegistry(seats, q, log.Nop())

	s := seats.GetOrCreate("seat0", "seat0-default")
	d := New("event3", "Test Touchpad", s, nil, CapTouch, nil)
	r.Add(d)
	q.Next() // drain the add

	r.Remove("event3", 0)
	ev, ok := q.Next()
	if !ok {
		t.Fatal("expected a queued removed event")
	}
	if _, ok := ev.(eventqueue.DeviceRemovedEvent); !ok {
		t.Fatalf("expected DeviceRemovedEvent, got %T", ev)
	}
	if !d.IsDestroyed() {
		t.Fatal("expected device to be marked destroyed")
	}
}

func TestReseatEmitsRemoveBeforeReAdd(t *testing.T) {
	q := eventqueue.NewQueue()
	seats := seat.NewTable()
	r := NewRegistry(seats, q, log.Nop())

	s := seats.GetOrCreate("seat0", "seat0-default")
	d := New("event3", "Test Touchpad", s, nil, CapTouch, nil)
	r.Add(d)
	q.Next() // drain the initial add

	var recreateCalls []string
	r.SetSeatLogicalName(s, "seat0-relocated", 0, func(sysname string) {
		recreateCalls = append(recreateCalls, sysname)
		nd := New(sysname, "Test Touchpad", s, nil, CapTouch, nil)
		r.Add(nd)
	})

	first, ok := q.Next()
	if !ok {
		t.Fatal("expected a removed event")
	}
	if _, ok := first.(eventqueue.DeviceRemovedEvent); !ok {
		t.Fatalf("expected DeviceRemovedEvent first, got %T", first)
	}
	second, ok := q.Next()
	if !ok {
		t.Fatal("expected an added event")
	}
	if _, ok := second.(eventqueue.DeviceAddedEvent); !ok {
		t.Fatalf("expected DeviceAddedEvent second, got %T", second)
	}
	if len(recreateCalls) != 1 || recreateCalls[0] != "event3" {
		t.Fatalf("unexpected recreate calls: %v", recreateCalls)
	}
	if s.Logical() != "seat0-relocated" {
		t.Fatalf("expected seat logical name updated, got %q", s.Logical())
	}
}

func TestRetainKeepsDestroyedDeviceResolvable(t *testing.T) {
	q := eventqueue.NewQueue()
	seats := seat.NewTable()
	r := NewRegistry(seats, q, log.Nop())

	s := seats.GetOrCreate("seat0", "seat0-default")
	d := New("event3", "Test Touchpad", s, nil, CapTouch, nil)
	r.Add(d)
	d.Retain()

	r.Remove("event3", 0)
	if _, ok := r.Get("event3"); !ok {
		t.Fatal("expected retained device to still resolve after remove")
	}
	d.Release()
	r.Sweep()
	if _, ok := r.Get("event3"); ok {
		t.Fatal("expected device to be swept after last release")
	}
}
