// Package accel implements the motion filter of spec.md §4.3: a velocity
// tracker plus a pluggable acceleration profile, turning raw (dx, dy,
// time) device-unit deltas into accelerated deltas.
//
// The teacher driver only ever multiplies by a flat AccelFactor once a
// move exceeds a fixed distance cutoff — there is no velocity history or
// profile curve to generalize from directly. We keep its two constants
// (MoveSensitivity, AccelFactor) as the starting shape of the "linear"
// profile's low/high plateau and build the velocity-smoothing history
// spec.md §4.3 actually asks for around them.
package accel

import "time"

const historySize = 16

type sample struct {
	dx, dy float64
	t      time.Duration
	valid  bool
}

// Profile maps an instantaneous velocity (device units per millisecond)
// to a multiplier applied to the raw delta.
type Profile func(velocity float64) float64

// Filter is a per-device motion filter: Dispatch(delta, time) ->
// accelerated delta.
type Filter struct {
	history    [historySize]sample
	next       int
	count      int
	profile    func(speed float64, velocity float64) float64
	speed      float64 // user-configurable [-1, 1]
	dpi        float64 // for smooth_simple
}

// NewLinear returns a Filter using the "linear" profile family (spec.md
// §4.3), the one the touchpad code uses: parameterized only by a
// user-configurable speed in [-1, 1] that shifts and scales the curve.
func NewLinear() *Filter {
	return &Filter{profile: linearProfile}
}

// NewSmoothSimple returns a Filter using the "smooth_simple" profile
// family, parameterized by device DPI, intended for variable-dpi mice.
func NewSmoothSimple(dpi float64) *Filter {
	f := &Filter{dpi: dpi}
	f.profile = func(_ float64, velocity float64) float64 {
		return smoothSimpleProfileDPI(f.dpi, velocity)
	}
	return f
}

// SetSpeed sets the user-configurable speed in [-1, 1]. Values outside the
// range are clamped.
func (f *Filter) SetSpeed(s float64) {
	if s < -1 {
		s = -1
	} else if s > 1 {
		s = 1
	}
	f.speed = s
}

// Speed returns the current configured speed.
func (f *Filter) Speed() float64 {
	return f.speed
}

// Destroy releases the filter's internal state. Present for parity with
// the teacher's destroy-on-device-removal lifecycle even though Go's GC
// makes it a no-op; dispatchers call it so a future native backend (e.g.
// one that owns a C profile table) has a place to hook in.
func (f *Filter) Destroy() {
	f.count = 0
	f.next = 0
}

// Reset clears the velocity history without resetting speed/dpi — used
// when a hovering finger transitions to contact (spec.md §4.9) so the
// hover-to-contact jump doesn't get accelerated as if it were real motion.
func (f *Filter) Reset() {
	f.count = 0
	f.next = 0
	for i := range f.history {
		f.history[i] = sample{}
	}
}

// Dispatch pushes one new (dx, dy, time) sample and returns the
// accelerated delta.
func (f *Filter) Dispatch(dx, dy float64, t time.Duration) (adx, ady float64) {
	f.push(sample{dx: dx, dy: dy, t: t, valid: true})
	v := f.smoothedVelocity()
	factor := f.profile(f.speed, v)
	return dx * factor, dy * factor
}

func (f *Filter) push(s sample) {
	f.history[f.next] = s
	f.next = (f.next + 1) % historySize
	if f.count < historySize {
		f.count++
	}
}

// smoothedVelocity computes an instantaneous velocity over the most
// recent samples that are at least ~2ms apart, then applies a simple
// weighted average across up to the last 4 such windows so transient
// jitter can't move the profile output by more than about one increment
// per sample, per spec.md §4.3.
func (f *Filter) smoothedVelocity() float64 {
	const minWindow = 2 * time.Millisecond
	const maxWindows = 4

	type window struct {
		v      float64
		weight float64
	}
	var windows []window

	// Walk backwards through the ring buffer from the most recent sample.
	idx := (f.next - 1 + historySize) % historySize
	latest := f.history[idx]
	if !latest.valid {
		return 0
	}

	cursor := idx
	accDx, accDy := 0.0, 0.0
	steps := 0
	for n := 1; n < f.count && len(windows) < maxWindows; n++ {
		prevIdx := (cursor - 1 + historySize) % historySize
		prev := f.history[prevIdx]
		if !prev.valid {
			break
		}
		accDx += f.history[cursor].dx
		accDy += f.history[cursor].dy
		steps++
		dt := latest.t - prev.t
		if dt >= minWindow {
			dist := hypot(accDx, accDy)
			v := dist / float64(dt.Milliseconds()+1)
			weight := 1.0 / float64(len(windows)+1)
			windows = append(windows, window{v: v, weight: weight})
			accDx, accDy = 0, 0
			steps = 0
		}
		cursor = prevIdx
	}
	_ = steps

	if len(windows) == 0 {
		// Not enough history yet: treat the single latest sample as the
		// whole window, using 1ms as a safe non-zero divisor.
		return hypot(latest.dx, latest.dy)
	}

	var sumW, sumWV float64
	for _, w := range windows {
		sumW += w.weight
		sumWV += w.weight * w.v
	}
	return sumWV / sumW
}

func hypot(x, y float64) float64 {
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	if x > y {
		return x + 0.5*y
	}
	return y + 0.5*x
}
