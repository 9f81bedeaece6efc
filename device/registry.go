package device

import (
	"time"

	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/internal/log"
	"github.com/evseat/evseat/seat"
)

// Registry owns every Device in a Context: the add/remove/suspend/resume
// lifecycle and the (sysname -> Device) table.
type Registry struct {
	devices map[string]*Device
	groups  map[string]*Group
	seats   *seat.Table
	queue   *eventqueue.Queue
	log     log.Logger

	// enumerationOrder remembers the order devices were first added in,
	// so resume can re-add them in the same order (spec.md §3).
	enumerationOrder []string

	// suspended holds the sysnames that were open before Suspend, so
	// Resume knows what to try re-opening.
	suspended []string
}

// NewRegistry creates an empty registry.
func NewRegistry(seats *seat.Table, queue *eventqueue.Queue, logger log.Logger) *Registry {
	return &Registry{
		devices: make(map[string]*Device),
		groups:  make(map[string]*Group),
		seats:   seats,
		queue:   queue,
		log:     logger,
	}
}

// GroupFor returns the group for id, creating it if necessary.
func (r *Registry) GroupFor(id string) *Group {
	if id == "" {
		return nil
	}
	if g, ok := r.groups[id]; ok {
		return g
	}
	g := NewGroup(id)
	r.groups[id] = g
	return g
}

// Add registers a newly opened device and queues its device-added event.
// Per spec.md §4.1, device-added events for the initial enumeration must
// be queued before the first read returns, so callers are expected to
// call Add for every enumerated device before entering the dispatch loop.
func (r *Registry) Add(d *Device) {
	r.devices[d.sysname] = d
	r.enumerationOrder = append(r.enumerationOrder, d.sysname)
	r.queue.Push(eventqueue.DeviceAddedEvent{Device: d})
	if d.dispatcher != nil {
		d.dispatcher.PostAdded()
	}
	r.log.Infow("device added", "sysname", d.sysname, "name", d.name)
}

// Get returns the device for sysname, if any (even if destroyed — see
// Device.IsDestroyed).
func (r *Registry) Get(sysname string) (*Device, bool) {
	d, ok := r.devices[sysname]
	return d, ok
}

// All returns every device currently known to the registry, including
// destroyed-but-still-referenced ones.
func (r *Registry) All() []*Device {
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

// Remove tears down a device (hotplug or explicit path-remove) and queues
// its device-removed event. If the device still has outstanding external
// references (Device.Retain), its table entry is kept (marked destroyed)
// until the last Release brings the refcount to zero and a later Sweep
// runs.
func (r *Registry) Remove(sysname string, now time.Duration) {
	d, ok := r.devices[sysname]
	if !ok {
		return
	}
	r.removeLocked(d, now)
}

func (r *Registry) removeLocked(d *Device, now time.Duration) {
	if d.IsDestroyed() {
		return
	}
	d.destroy(now)
	r.queue.Push(eventqueue.DeviceRemovedEvent{Device: d})
	r.log.Infow("device removed", "sysname", d.sysname)
	if d.refcount() <= 0 {
		delete(r.devices, d.sysname)
	}
	r.pruneEnumerationOrder(d.sysname)
}

func (r *Registry) pruneEnumerationOrder(sysname string) {
	for i, s := range r.enumerationOrder {
		if s == sysname {
			r.enumerationOrder = append(r.enumerationOrder[:i], r.enumerationOrder[i+1:]...)
			return
		}
	}
}

// Sweep drops fully-destroyed, now-unreferenced devices whose last
// Release happened after Remove already ran. Consumers that hold onto a
// *Device past its last Release should stop calling Retain once done;
// Sweep is how the registry reclaims the table slot at that point.
func (r *Registry) Sweep() {
	for sysname, d := range r.devices {
		if d.IsDestroyed() && d.refcount() <= 0 {
			delete(r.devices, sysname)
		}
	}
}

// Suspend closes every device's fd (spec.md §5: "Suspend closes every
// fd"), remembering which sysnames were open so Resume can re-open them,
// but — unlike Remove — does not queue device-removed events; the
// devices are considered paused, not gone.
func (r *Registry) Suspend(now time.Duration) {
	r.suspended = r.suspended[:0]
	for _, sysname := range r.enumerationOrder {
		d, ok := r.devices[sysname]
		if !ok || d.IsDestroyed() {
			continue
		}
		if d.dispatcher != nil {
			d.dispatcher.Suspend(now)
		}
		if d.decoder != nil {
			_ = d.decoder.Close()
			d.decoder = nil
		}
		r.suspended = append(r.suspended, sysname)
	}
}

// Resume re-opens every device that was suspended, in enumeration order,
// using open (the host's open-restricted callback, spec.md §1/§5). A
// device whose node fails to open is emitted as removed rather than
// retried (spec.md §5: "A resume that fails to open a previously-
// enumerated device emits a remove event for it").
func (r *Registry) Resume(open func(sysname string) (*evdevcodec.Decoder, error)) (reopened []string, failed []string) {
	pending := r.suspended
	r.suspended = nil
	for _, sysname := range pending {
		d, ok := r.devices[sysname]
		if !ok || d.IsDestroyed() {
			continue
		}
		dec, err := open(sysname)
		if err != nil {
			r.log.Warnw("resume: open failed, dropping device", "sysname", sysname, "err", err)
			r.removeLocked(d, 0)
			failed = append(failed, sysname)
			continue
		}
		d.decoder = dec
		reopened = append(reopened, sysname)
	}
	return reopened, failed
}

// SetSeatLogicalName relocates a seat to a new logical name. Per spec.md
// §3/§9(c), this destroys every device currently on the seat and
// recreates it: the caller (Context) must be prepared to observe
// device-removed before the matching device-added for the same sysname,
// which this method guarantees by queuing every removal before calling
// recreate for any device.
func (r *Registry) SetSeatLogicalName(s *seat.Seat, newLogical string, now time.Duration, recreate func(sysname string)) {
	members := s.Members()
	r.seats.Relocate(s, newLogical)
	for _, sysname := range members {
		if d, ok := r.devices[sysname]; ok {
			r.removeLocked(d, now)
		}
	}
	for _, sysname := range members {
		recreate(sysname)
	}
}
