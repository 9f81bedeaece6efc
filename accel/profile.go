package accel

// Profile constants. lowVelocityPlateau/highVelocitySaturation bound the
// flat-at-low-speed / saturating-at-high-speed shape spec.md §4.3
// requires of both profile families. baseSensitivity and accelFactor are
// lifted directly from the teacher's MoveSensitivity (0.6) and AccelFactor
// (1.5) constants — the only numeric precedent for "how much do we scale
// a touchpad delta" the pack offers.
const (
	baseSensitivity       = 0.6
	accelFactor           = 1.5
	lowVelocityPlateau    = 0.3 // device-units/ms below which factor is flat
	highVelocitySaturation = 6.0
)

// linearProfile is the touchpad "linear" family: flat at low speed,
// linearly rising, saturating at high speed, shifted/scaled by a
// user speed in [-1, 1].
func linearProfile(speed, velocity float64) float64 {
	// speed in [-1,1] scales the base sensitivity by (1+speed): 0 keeps
	// it at 0.6, +1 doubles it to 1.2, and values near -1 are floored at
	// 0.1.
	sensitivity := baseSensitivity * (1 + speed)
	if sensitivity < 0.1 {
		sensitivity = 0.1
	}

	if velocity <= lowVelocityPlateau {
		return sensitivity
	}
	if velocity >= highVelocitySaturation {
		return sensitivity * accelFactor
	}
	// Linear ramp between the plateau and the saturation point.
	t := (velocity - lowVelocityPlateau) / (highVelocitySaturation - lowVelocityPlateau)
	return sensitivity * (1 + t*(accelFactor-1))
}

// smoothSimpleProfileDPI is the mouse "smooth_simple" family: a piecewise
// curve parameterized by DPI so that the same physical hand speed
// produces the same on-screen speed regardless of sensor resolution.
// Higher DPI means more device units per physical distance, so the
// velocity threshold (expressed in device-units/ms) scales with DPI.
func smoothSimpleProfileDPI(dpi, velocity float64) float64 {
	scale := dpi / 1000.0
	if scale <= 0 {
		scale = 1
	}
	plateau := lowVelocityPlateau * scale
	saturation := highVelocitySaturation * scale

	if velocity <= plateau {
		return 1.0
	}
	if velocity >= saturation {
		return accelFactor
	}
	t := (velocity - plateau) / (saturation - plateau)
	// A smoothed (ease-in-out) ramp rather than the touchpad's straight
	// line, per spec.md §4.3's "piecewise-smoothed curve" requirement.
	smoothed := t * t * (3 - 2*t)
	return 1 + smoothed*(accelFactor-1)
}
