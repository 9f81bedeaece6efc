// Package device implements the device/device-group data model and
// registry of spec.md §3/§5: Device, DeviceGroup, add/remove/suspend/
// resume lifecycle, and the tagged-dispatcher seam every device-class
// engine (touchpad, tablet, buttonset, keyboard, plain pointer) plugs
// into.
package device

import (
	"sync/atomic"
	"time"

	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

// Capability is one bit of the capability set a device advertises
// (spec.md §3: {keyboard, pointer, touch, tablet, buttonset}).
type Capability uint8

const (
	CapKeyboard Capability = 1 << iota
	CapPointer
	CapTouch
	CapTablet
	CapButtonSet
)

func (c Capability) Has(bit Capability) bool { return c&bit != 0 }

// TriState models a setting with current/wanted/default, used for
// left-handed mode (spec.md §3: "left-handed state (current+wanted+
// default)").
type TriState struct {
	current, wanted, deflt bool
}

// NewTriState returns a TriState with all three fields set to deflt.
func NewTriState(deflt bool) TriState {
	return TriState{current: deflt, wanted: deflt, deflt: deflt}
}

func (t TriState) Current() bool { return t.current }
func (t TriState) Default() bool { return t.deflt }
func (t *TriState) SetWanted(v bool) {
	t.wanted = v
}
func (t TriState) Wanted() bool { return t.wanted }

// Commit applies Wanted to Current, used by dispatchers at the
// gesture-neutral point they're allowed to apply a deferred setting
// (spec.md §4.11 step 4 for tablets, and analogously for touchpads).
func (t *TriState) Commit() {
	t.current = t.wanted
}

// SendEventsMode mirrors the spec.md §6 send-events-mode option.
type SendEventsMode int

const (
	SendEventsEnabled SendEventsMode = iota
	SendEventsDisabled
)

// Dispatcher is the tagged-variant seam from spec.md §9's design note:
// "a tagged variant {TouchpadDispatch, TabletDispatch, ButtonSetDispatch,
// KeyboardDispatch, FallbackDispatch}, each variant owning its own state
// struct, and a small operation set". We implement the tag as a Go
// interface (idiomatic: accept interfaces, one implementation per device
// class) rather than a literal enum+switch, since every call site already
// knows which concrete dispatcher a Device owns.
type Dispatcher interface {
	// HandleEvdevFrame updates internal state for one decoded, non-frame-
	// terminating evdev record.
	HandleEvdevFrame(f evdevcodec.Frame)
	// EndFrame is called on SYN_REPORT (or a timer-driven synthetic frame
	// boundary) and emits zero or more semantic events for the frame.
	EndFrame(now time.Duration)
	// Suspend force-releases all in-flight gesture/button/tool state,
	// emitting whatever release events are needed, without destroying the
	// dispatcher (used by Context.Suspend and device-gone handling).
	Suspend(now time.Duration)
	// PostAdded is called once, after the device-added event has been
	// queued, so the dispatcher can do setup that itself wants to emit
	// events (e.g. an initial proximity snapshot) only once a consumer can
	// possibly have seen the add.
	PostAdded()
	// Destroy releases any filters/tools/timers the dispatcher owns.
	Destroy()
}

// Group is an opaque set of devices that physically belong together
// (spec.md §3, e.g. a tablet pen and its pad). It has no behavior of its
// own; external code uses it only to correlate devices, and its lifetime
// equals its last member's lifetime — enforced here with a simple
// refcount rather than GC finalizers, to stay deterministic.
type Group struct {
	id      string
	members int32
}

// NewGroup creates an empty device group identified by id (typically a
// shared USB topology path).
func NewGroup(id string) *Group {
	return &Group{id: id}
}

func (g *Group) ID() string { return g.id }

func (g *Group) addMember() { atomic.AddInt32(&g.members, 1) }

// removeMember returns true if the group has no members left and should
// be dropped by whoever owns the group table.
func (g *Group) removeMember() bool {
	return atomic.AddInt32(&g.members, -1) <= 0
}

// Device is one opened input device (spec.md §3).
type Device struct {
	sysname string
	name    string

	seat  *seat.Seat
	group *Group

	caps Capability

	dispatcher Dispatcher
	decoder    *evdevcodec.Decoder

	leftHanded  TriState
	sendEvents  SendEventsMode

	timers []*timer.Timer

	// destroyed is set once the device has been torn down (removed,
	// reseated, or the context suspended/destroyed). A destroyed device
	// may still be referenced by callers that obtained it before
	// destruction (spec.md §3's refcount rule); refs tracks how many such
	// outstanding references exist.
	destroyed bool
	refs      int32

	vendorID uint16
}

// New constructs a Device. The registry is the only intended caller;
// dispatchers are built after construction once the registry knows the
// device's capability set (it needs the Device itself to build most
// dispatchers, e.g. for seat counters).
func New(sysname, name string, s *seat.Seat, g *Group, caps Capability, decoder *evdevcodec.Decoder) *Device {
	d := &Device{
		sysname:    sysname,
		name:       name,
		seat:       s,
		group:      g,
		caps:       caps,
		decoder:    decoder,
		leftHanded: NewTriState(false),
		sendEvents: SendEventsEnabled,
	}
	if s != nil {
		s.AddMember(sysname)
	}
	if g != nil {
		g.addMember()
	}
	return d
}

// DeviceSysname implements eventqueue.DeviceHandle.
func (d *Device) DeviceSysname() string { return d.sysname }

func (d *Device) Sysname() string          { return d.sysname }
func (d *Device) Name() string             { return d.name }
func (d *Device) Seat() *seat.Seat         { return d.seat }
func (d *Device) Group() *Group           { return d.group }
func (d *Device) Capabilities() Capability { return d.caps }
func (d *Device) HasCapability(c Capability) bool { return d.caps.Has(c) }
func (d *Device) VendorID() uint16         { return d.vendorID }
func (d *Device) SetVendorID(v uint16)     { d.vendorID = v }

// SetDispatcher attaches the class-tagged dispatcher. Per spec.md §3's
// invariant "at most one active dispatcher per device at any time", this
// may only be called once.
func (d *Device) SetDispatcher(disp Dispatcher) {
	if d.dispatcher != nil {
		panic("device: dispatcher already set")
	}
	d.dispatcher = disp
}

func (d *Device) Dispatcher() Dispatcher { return d.dispatcher }

// TrackTimer registers a timer as owned by this device so Destroy can
// cancel it.
func (d *Device) TrackTimer(t *timer.Timer) {
	d.timers = append(d.timers, t)
}

// Timers returns every timer this device's dispatcher has registered, so
// a Context can feed them into its shared timer.Wheel.
func (d *Device) Timers() []*timer.Timer {
	return d.timers
}

func (d *Device) LeftHanded() TriState      { return d.leftHanded }
func (d *Device) SetLeftHandedWanted(v bool) { d.leftHanded.SetWanted(v) }
func (d *Device) CommitLeftHanded()         { d.leftHanded.Commit() }

func (d *Device) SendEventsMode() SendEventsMode     { return d.sendEvents }
func (d *Device) SetSendEventsMode(m SendEventsMode) { d.sendEvents = m }

// Fd returns the underlying evdev node's file descriptor, or false if the
// device has no open node (already suspended/destroyed).
func (d *Device) Fd() (uintptr, bool) {
	if d.decoder == nil {
		return 0, false
	}
	return d.decoder.Fd(), true
}

func (d *Device) Decoder() *evdevcodec.Decoder { return d.decoder }

// Retain increments the external reference count, per spec.md §3's rule
// that a destroyed-but-referenced device must keep resolving read
// queries until the refcount reaches zero.
func (d *Device) Retain() {
	atomic.AddInt32(&d.refs, 1)
}

// Release decrements the external reference count.
func (d *Device) Release() {
	atomic.AddInt32(&d.refs, -1)
}

// IsDestroyed reports whether the device has been torn down. It may still
// be safely read (Sysname, Name, Seat, ...) even when destroyed.
func (d *Device) IsDestroyed() bool { return d.destroyed }

func (d *Device) refcount() int32 { return atomic.LoadInt32(&d.refs) }

// destroy tears down the device's own state: cancels its timers,
// destroys its dispatcher, closes its fd, and detaches it from its
// seat/group. It does not remove it from the registry's table — the
// registry decides when (refcount-aware) a destroyed device's table slot
// can actually be dropped.
func (d *Device) destroy(now time.Duration) {
	if d.destroyed {
		return
	}
	if d.dispatcher != nil {
		d.dispatcher.Suspend(now)
		d.dispatcher.Destroy()
	}
	for _, t := range d.timers {
		t.Cancel()
	}
	if d.decoder != nil {
		_ = d.decoder.Close()
		d.decoder = nil
	}
	if d.seat != nil {
		d.seat.RemoveMember(d.sysname)
	}
	if d.group != nil {
		d.group.removeMember()
	}
	d.destroyed = true
}
