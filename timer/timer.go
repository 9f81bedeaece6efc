// Package timer implements the coarse monotonic timer set described in
// spec.md §4.2/§5: timers are owned by dispatchers, fired from inside a
// Dispatch call when their expiry has passed, and are idempotent to
// cancel.
package timer

import "time"

// Named default timeouts from spec.md §4.2.
const (
	Tap           = 180 * time.Millisecond
	TapAndDrag    = 300 * time.Millisecond
	SoftButton    = 200 * time.Millisecond
	EdgeScroll    = 300 * time.Millisecond
	ButtonScroll  = 200 * time.Millisecond
	MiddleButton  = 50 * time.Millisecond
	DWTShort      = 100 * time.Millisecond
	DWTLong       = 500 * time.Millisecond
	FingerSwitch  = 120 * time.Millisecond
)

// Callback is invoked when a Timer fires. now is the monotonic time the
// wheel observed at the moment of firing, which may be later than the
// timer's nominal expiry if the host was slow to wake the caller.
type Callback func(now time.Duration)

// Timer is one named, owned, cancellable deadline.
type Timer struct {
	name    string
	expiry  time.Duration
	armed   bool
	fn      Callback
}

// New creates an unarmed timer. fn is invoked by Wheel.Advance when the
// timer fires.
func New(name string, fn Callback) *Timer {
	return &Timer{name: name, fn: fn}
}

// Name returns the timer's diagnostic name (e.g. "TAP", "DWT-LONG").
func (t *Timer) Name() string { return t.name }

// Set arms the timer for now+d. Setting an already-armed timer reschedules
// it; this is not itself considered "cancel" for the idempotence contract
// below, it simply moves the expiry.
func (t *Timer) Set(now time.Duration, d time.Duration) {
	t.expiry = now + d
	t.armed = true
}

// Cancel disarms the timer. Cancelling a timer that isn't set is a no-op,
// per spec.md §4.2.
func (t *Timer) Cancel() {
	t.armed = false
}

// IsArmed reports whether the timer has a pending expiry.
func (t *Timer) IsArmed() bool {
	return t.armed
}

// Expiry returns the current armed expiry; the second return is false if
// the timer is not armed.
func (t *Timer) Expiry() (time.Duration, bool) {
	if !t.armed {
		return 0, false
	}
	return t.expiry, true
}

// Wheel tracks every Timer a Context's devices have created so dispatch
// can fire due callbacks and so the host can be told how long it may
// safely block before the next expiry.
type Wheel struct {
	timers []*Timer
}

// NewWheel returns an empty timer wheel.
func NewWheel() *Wheel {
	return &Wheel{}
}

// Track registers a timer with the wheel. Dispatchers call this once per
// timer at construction time; the wheel never needs Untrack because
// disarmed timers are simply skipped by Advance, and
// device.Device.destroy cancels every timer of a destroyed device.
func (w *Wheel) Track(t *Timer) {
	w.timers = append(w.timers, t)
}

// Advance fires every armed timer whose expiry is <= now, then disarms it.
// Firing order is the order timers were tracked in — deterministic, which
// touchpad's multi-tap tests (spec.md §8 property 3, TestNTapsProduceNIndependentClickPairs)
// rely on to finalize a whole tap chain with a single Advance call.
func (w *Wheel) Advance(now time.Duration) {
	for _, t := range w.timers {
		if t.armed && t.expiry <= now {
			t.armed = false
			t.fn(now)
		}
	}
}

// NextExpiry returns the soonest armed expiry across every tracked timer,
// used by the host to compute how long it may sleep before it must wake
// the caller even without fd readability (spec.md §5).
func (w *Wheel) NextExpiry() (time.Duration, bool) {
	var (
		best  time.Duration
		found bool
	)
	for _, t := range w.timers {
		if !t.armed {
			continue
		}
		if !found || t.expiry < best {
			best = t.expiry
			found = true
		}
	}
	return best, found
}
