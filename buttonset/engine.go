// Package buttonset implements the C10 button-set engine (spec.md
// §4.12): ring axis wrap-aware delta, strip suppress-on-release and
// logarithmic position normalization, and a generic pad-button bit diff.
//
// No button-set/pad example repo was retrieved, so this package is built
// directly from spec §3/§4.12 text against the same evdevcodec/eventqueue
// shapes `tablet` and `touchpad` already establish — it deliberately
// shares no code with `tablet` (its "same status model, simplified" note
// is about the conceptual shape, not a justification for an import).
package buttonset

import (
	"math"
	"sort"
	"time"

	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
)

// Raw evdev codes this package decodes. A pad's ring is conventionally
// reported on ABS_WHEEL and its strip on ABS_THROTTLE.
const (
	absRing  uint16 = 0x08
	absStrip uint16 = 0x06
)

// AxisRange is this package's own minimal [min,max] pair — kept
// package-local rather than imported from tablet, since the two engines
// share no code, only a conceptual shape (spec.md §4.12: "same status
// model as tablet, simplified").
type AxisRange struct {
	Min, Max int32
}

type ring struct {
	rng        AxisRange
	resolution float64 // kernel-reported ticks-per-revolution; stored only, no discrete click count is derived or emitted
	rotation   float64 // [0,1) fraction added before wrapping, user-configured
	hasValue   bool
	value      float64
}

func (r *ring) normalize(raw int32) float64 {
	span := float64(r.rng.Max - r.rng.Min)
	if span <= 0 {
		return 0
	}
	f := float64(raw-r.rng.Min)/span + r.rotation
	f = math.Mod(f, 1)
	if f < 0 {
		f += 1
	}
	return f
}

// delta implements spec.md §4.12's wrap-aware signed minimum: the delta
// between two ring readings is whichever of (new-old), (new+1-old),
// (new-1-old) has the smallest magnitude, so a 0.9->0.1 transition
// produces +0.2 rather than -0.8.
func ringDelta(oldV, newV float64) float64 {
	best := newV - oldV
	for _, c := range [2]float64{newV + 1 - oldV, newV - 1 - oldV} {
		if math.Abs(c) < math.Abs(best) {
			best = c
		}
	}
	return best
}

type strip struct {
	rng      AxisRange
	touching bool
	value    float64
}

// normalize implements spec.md §4.12: "strip position 0 means finger
// released"; nonzero raw values are normalized logarithmically, since the
// kernel reports strip position as a single set bit rather than a linear
// coordinate.
func (s *strip) normalize(raw int32) float64 {
	if raw <= 0 || s.rng.Max <= 1 {
		return 0
	}
	f := math.Log2(float64(raw)) / math.Log2(float64(s.rng.Max))
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f
}

// Engine is the C10 button-set device.Dispatcher.
type Engine struct {
	dev *device.Device
	q   *eventqueue.Queue

	ring  ring
	strip strip

	pendingRing, pendingStrip       int32
	haveRing, haveStrip             bool

	pressed, prevPressed map[uint32]bool
	codeOrder            []uint32 // first-seen order, for deterministic diffing
}

// NewEngine builds a button-set dispatcher. ringRange/stripRange and
// ringResolution come from the device's reported ABS info; the user's
// ring rotation is installed separately with SetRingRotation.
func NewEngine(dev *device.Device, q *eventqueue.Queue, ringRange, stripRange AxisRange, ringResolution float64) *Engine {
	return &Engine{
		dev: dev, q: q,
		ring:        ring{rng: ringRange, resolution: ringResolution},
		strip:       strip{rng: stripRange},
		pressed:     make(map[uint32]bool),
		prevPressed: make(map[uint32]bool),
	}
}

// SetRingRotation installs the ring's logical-north offset, as a [0,1)
// fraction of a full turn (spec.md §6's per-device configuration).
func (e *Engine) SetRingRotation(frac float64) { e.ring.rotation = frac }

// HandleEvdevFrame updates internal ring/strip/button state from one
// decoded evdev record.
func (e *Engine) HandleEvdevFrame(f evdevcodec.Frame) {
	switch f.Type {
	case evdevcodec.EvAbs:
		switch f.Code {
		case absRing:
			e.pendingRing, e.haveRing = f.Value, true
		case absStrip:
			e.pendingStrip, e.haveStrip = f.Value, true
		}
	case evdevcodec.EvKey:
		code := uint32(f.Code)
		if _, seen := e.pressed[code]; !seen {
			e.codeOrder = append(e.codeOrder, code)
		}
		e.pressed[code] = f.Value != 0
	}
}

// EndFrame implements spec.md §4.12's per-SYN_REPORT procedure.
func (e *Engine) EndFrame(now time.Duration) {
	if e.haveRing {
		newVal := e.ring.normalize(e.pendingRing)
		var delta float64
		if e.ring.hasValue {
			delta = ringDelta(e.ring.value, newVal)
		}
		e.ring.value, e.ring.hasValue = newVal, true
		e.q.Push(eventqueue.ButtonSetAxisEvent{Time: now, Device: e.dev, Axis: eventqueue.ButtonSetRing, Number: 0, Position: newVal, Delta: delta})
		e.haveRing = false
	}

	if e.haveStrip {
		if e.pendingStrip == 0 {
			e.strip.touching = false
			// spec.md §4.12: position 0 is suppressed entirely, no event.
		} else {
			newVal := e.strip.normalize(e.pendingStrip)
			var delta float64
			if e.strip.touching {
				delta = newVal - e.strip.value
			}
			e.strip.touching, e.strip.value = true, newVal
			e.q.Push(eventqueue.ButtonSetAxisEvent{Time: now, Device: e.dev, Axis: eventqueue.ButtonSetStrip, Number: 0, Position: newVal, Delta: delta})
		}
		e.haveStrip = false
	}

	for _, code := range e.codeOrder {
		was, is := e.prevPressed[code], e.pressed[code]
		if was == is {
			continue
		}
		state := eventqueue.ButtonReleased
		if is {
			state = eventqueue.ButtonPressed
		}
		e.q.Push(eventqueue.ButtonSetButtonEvent{Time: now, Device: e.dev, Code: code, State: state})
		e.prevPressed[code] = is
	}
}

// Suspend force-releases every pressed pad button.
func (e *Engine) Suspend(now time.Duration) {
	for _, code := range sortedPressed(e.pressed) {
		if e.pressed[code] {
			e.q.Push(eventqueue.ButtonSetButtonEvent{Time: now, Device: e.dev, Code: code, State: eventqueue.ButtonReleased})
			e.pressed[code] = false
			e.prevPressed[code] = false
		}
	}
	e.strip.touching = false
}

func sortedPressed(m map[uint32]bool) []uint32 {
	out := make([]uint32, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PostAdded has no setup that itself emits events.
func (e *Engine) PostAdded() {}

// Destroy releases no resources of its own.
func (e *Engine) Destroy() {}
