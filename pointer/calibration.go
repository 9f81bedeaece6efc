// Package pointer holds the C5 "pointer/touch core" shared helpers: the
// per-device button-state diffing and seat counters common to every
// pointer/touch-capable dispatcher, plus a standalone Dispatcher for the
// plain relative-pointer device class (mice, trackpoints) that aren't
// touchpads, tablets or button-sets.
package pointer

// ApplyCalibration applies the standard 3x2 affine calibration matrix
// (spec.md §3/§6) to one absolute-device coordinate pair, before any
// gesture logic sees it (spec.md §4.4 step 1). m is row-major:
//
//	[ m0 m1 m2 ]   [x]   [x']
//	[ m3 m4 m5 ] * [y] = [y']
//	               [1]
func ApplyCalibration(x, y float64, m [6]float64) (xp, yp float64) {
	xp = m[0]*x + m[1]*y + m[2]
	yp = m[3]*x + m[4]*y + m[5]
	return xp, yp
}

// IdentityCalibration is the no-op matrix.
var IdentityCalibration = [6]float64{1, 0, 0, 0, 1, 0}

// InvertX mirrors an x coordinate within [0, width) — used for the
// left-handed inversion step of spec.md §4.4 step 1.
func InvertX(x, width float64) float64 {
	return width - x
}

// InvertY mirrors a y coordinate within [0, height).
func InvertY(y, height float64) float64 {
	return height - y
}
