// evseat turns raw per-device evdev frames into the semantic event
// stream described by spec.md: Context is the top-level object a host
// embeds, owning the device registry, seat table, tablet tool registry,
// event queue, timer wheel and logger, and providing the convenience
// constructors that wire a newly enumerated device's class-specific
// dispatcher to all of the above.
//
// Grounded on the teacher's single-file main() — which open-codes "make
// a virtual device, open the evdev node, loop reading frames, switch on
// type/code, write derived uinput events" all in one place — generalized
// here into the explicit collaborator graph spec.md §3/§5 calls for, the
// way `gioui.org/io/router` separates its frame-scoped Reader/Events
// queue from the ops that fill it.
package evseat

import (
	"fmt"
	"time"

	"github.com/evseat/evseat/accel"
	"github.com/evseat/evseat/buttonset"
	"github.com/evseat/evseat/config"
	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/internal/log"
	"github.com/evseat/evseat/keyboard"
	"github.com/evseat/evseat/pointer"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/tablet"
	"github.com/evseat/evseat/timer"
	"github.com/evseat/evseat/tool"
	"github.com/evseat/evseat/touchpad"
)

// Context is the evseat entry point: one per seat-managing host process.
type Context struct {
	Queue    *eventqueue.Queue
	Seats    *seat.Table
	Devices  *device.Registry
	Tools    *tool.Registry
	Wheel    *timer.Wheel
	Log      log.Logger
	Options  map[string]*config.Options // keyed by device sysname

	// dwt holds one shared C8 interlock per seat physical name, lazily
	// created the first time a touchpad or keyboard on that seat asks
	// for it (spec.md §4.14: "one instance shared by every keyboard and
	// touchpad dispatcher on the same seat").
	dwt map[string]*touchpad.DWTInterlock
}

// NewContext builds an empty Context. logger may be log.Nop() if the
// host doesn't care about structured logging.
func NewContext(logger log.Logger) *Context {
	q := eventqueue.NewQueue()
	seats := seat.NewTable()
	return &Context{
		Queue:   q,
		Seats:   seats,
		Devices: device.NewRegistry(seats, q, logger),
		Tools:   tool.NewRegistry(),
		Wheel:   timer.NewWheel(),
		Log:     logger,
		Options: make(map[string]*config.Options),
		dwt:     make(map[string]*touchpad.DWTInterlock),
	}
}

// dwtFor returns (creating if necessary) the shared C8 interlock for the
// seat physical name s belongs to. exempt matters only on first creation
// (spec.md §4.14's vendor allowlist applies at the interlock level since
// it's shared seat-wide, not per device).
func (c *Context) dwtFor(s *seat.Seat, exempt bool) *touchpad.DWTInterlock {
	if d, ok := c.dwt[s.Physical()]; ok {
		return d
	}
	d := touchpad.NewDWTInterlock(exempt)
	c.Wheel.Track(d.Timer())
	c.dwt[s.Physical()] = d
	return d
}

func (c *Context) trackTimers(d *device.Device) {
	for _, t := range d.Timers() {
		c.Wheel.Track(t)
	}
}

// TouchpadSpec bundles the construction-time parameters a touchpad needs
// beyond what every device needs.
type TouchpadSpec struct {
	Geometry        touchpad.Geometry
	VendorID        uint16
	VendorAllowlist []uint16
	DWTExempt       bool
	TapFingerCount  int
}

// AddTouchpad enumerates a C6/C7/C8 touchpad device: builds the Device,
// its Engine, the shared per-seat DWT interlock, and a config.Options
// set, then registers it (queuing device-added).
func (c *Context) AddTouchpad(sysname, name, seatPhysical, seatLogical string, spec TouchpadSpec, decoder *evdevcodec.Decoder) *device.Device {
	s := c.Seats.GetOrCreate(seatPhysical, seatLogical)
	dev := device.New(sysname, name, s, nil, device.CapPointer|device.CapTouch, decoder)
	dev.SetVendorID(spec.VendorID)

	allowlisted := false
	for _, v := range spec.VendorAllowlist {
		if v == spec.VendorID {
			allowlisted = true
		}
	}
	spec.Geometry.PalmAllowlisted = allowlisted

	dwt := c.dwtFor(s, spec.DWTExempt)
	eng := touchpad.NewEngine(dev, c.Queue, spec.Geometry, dwt)
	dev.SetDispatcher(eng)
	c.trackTimers(dev)

	c.Options[sysname] = config.NewOptions(spec.TapFingerCount, config.Availability{
		Tap: true, ScrollMethod: true, ClickMethod: true, DWT: true, Calibration: true,
	}, spec.VendorAllowlist)

	c.Devices.Add(dev)
	return dev
}

// AddTablet enumerates a C9 tablet device, sharing this Context's
// tablet-wide tool.Registry so a pen's identity survives moving between
// tablets (spec.md §3).
func (c *Context) AddTablet(sysname, name, seatPhysical, seatLogical string, ranges tablet.AxisRanges, decoder *evdevcodec.Decoder) *device.Device {
	s := c.Seats.GetOrCreate(seatPhysical, seatLogical)
	dev := device.New(sysname, name, s, nil, device.CapTablet, decoder)

	eng := tablet.NewEngine(dev, c.Queue, c.Tools, ranges)
	dev.SetDispatcher(eng)
	c.trackTimers(dev)

	c.Options[sysname] = config.NewOptions(0, config.Availability{Calibration: true}, nil)

	c.Devices.Add(dev)
	return dev
}

// AddButtonSet enumerates a C10 ring/strip pad device.
func (c *Context) AddButtonSet(sysname, name, seatPhysical, seatLogical string, ringRange, stripRange buttonset.AxisRange, ringResolution float64, decoder *evdevcodec.Decoder) *device.Device {
	s := c.Seats.GetOrCreate(seatPhysical, seatLogical)
	dev := device.New(sysname, name, s, nil, device.CapButtonSet, decoder)

	eng := buttonset.NewEngine(dev, c.Queue, ringRange, stripRange, ringResolution)
	dev.SetDispatcher(eng)
	c.trackTimers(dev)

	c.Options[sysname] = config.NewOptions(0, config.Availability{}, nil)

	c.Devices.Add(dev)
	return dev
}

// AddKeyboard enumerates a C11 keyboard device, sharing the same seat's
// C8 DWT interlock every touchpad on that seat consults.
func (c *Context) AddKeyboard(sysname, name, seatPhysical, seatLogical string, halfkeyEnabled bool, decoder *evdevcodec.Decoder) *device.Device {
	s := c.Seats.GetOrCreate(seatPhysical, seatLogical)
	dev := device.New(sysname, name, s, nil, device.CapKeyboard, decoder)

	dwt := c.dwtFor(s, false)
	eng := keyboard.NewEngine(dev, c.Queue, dwt)
	eng.SetHalfkeyEnabled(halfkeyEnabled)
	dev.SetDispatcher(eng)
	c.trackTimers(dev)

	c.Options[sysname] = config.NewOptions(0, config.Availability{Halfkey: true}, nil)

	c.Devices.Add(dev)
	return dev
}

// PointerSpec bundles the construction-time parameters a plain
// relative-pointer device needs.
type PointerSpec struct {
	ScrollButtonCode uint16 // BTN_MIDDLE on a trackpoint for button-scroll, 0 to disable
	NaturalScroll    bool
	Profile          string // "linear" or "smooth_simple"
	DPI              float64
}

// AddPointer enumerates a C5 plain-pointer device (mouse, trackpoint).
func (c *Context) AddPointer(sysname, name, seatPhysical, seatLogical string, spec PointerSpec, decoder *evdevcodec.Decoder) *device.Device {
	s := c.Seats.GetOrCreate(seatPhysical, seatLogical)
	dev := device.New(sysname, name, s, nil, device.CapPointer, decoder)

	var filter *accel.Filter
	if spec.Profile == "smooth_simple" {
		filter = accel.NewSmoothSimple(spec.DPI)
	} else {
		filter = accel.NewLinear()
	}
	eng := pointer.NewDispatcher(dev, c.Queue, filter, spec.ScrollButtonCode, spec.NaturalScroll)
	dev.SetDispatcher(eng)
	c.trackTimers(dev)

	c.Options[sysname] = config.NewOptions(0, config.Availability{}, nil)

	c.Devices.Add(dev)
	return dev
}

// Dispatch reads every frame currently buffered for sysname's device and
// feeds it through that device's dispatcher, calling EndFrame at each
// SYN_REPORT boundary (spec.md §4's per-frame procedure). The host's
// readable-fd wait loop (§1/§5) calls this once per device wakeup.
func (c *Context) Dispatch(sysname string) error {
	dev, ok := c.Devices.Get(sysname)
	if !ok || dev.IsDestroyed() {
		return fmt.Errorf("evseat: dispatch: unknown or destroyed device %q", sysname)
	}
	dec := dev.Decoder()
	if dec == nil {
		return fmt.Errorf("evseat: dispatch: device %q has no open node", sysname)
	}
	disp := dev.Dispatcher()
	if disp == nil {
		return nil
	}
	frames, err := dec.ReadFrames()
	if err != nil {
		return err
	}
	for _, f := range frames {
		if f.IsFrameEnd() {
			disp.EndFrame(f.Time)
			continue
		}
		disp.HandleEvdevFrame(f)
	}
	return nil
}

// AdvanceTimers fires every due timer across every device this Context
// owns (spec.md §4.2/§5), used by the host when it wakes on a timer
// deadline rather than fd readability.
func (c *Context) AdvanceTimers(now time.Duration) {
	c.Wheel.Advance(now)
}

// NextTimerDeadline reports the soonest time the host must wake the
// dispatch loop even without fd readability.
func (c *Context) NextTimerDeadline() (time.Duration, bool) {
	return c.Wheel.NextExpiry()
}

// Suspend closes every device's fd without emitting device-removed
// (spec.md §5).
func (c *Context) Suspend(now time.Duration) {
	c.Devices.Suspend(now)
}

// Resume re-opens every suspended device via open, the host's
// open-restricted callback.
func (c *Context) Resume(open func(sysname string) (*evdevcodec.Decoder, error)) (reopened, failed []string) {
	return c.Devices.Resume(open)
}

// SetSeatLogicalName relocates a seat, destroying and recreating every
// member device per spec.md §3/§9(c). recreate is called once per
// sysname after every removal has been queued.
func (c *Context) SetSeatLogicalName(s *seat.Seat, newLogical string, now time.Duration, recreate func(sysname string)) {
	c.Devices.SetSeatLogicalName(s, newLogical, now, recreate)
}
