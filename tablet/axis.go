// Package tablet implements the C9 tablet engine (spec.md §4.11): tool
// identity/lifetime via package tool's registries, the proximity state
// machine, axis normalization, tilt->rotation conversion for mouse/lens
// tools, and the distance/pressure mutual-exclusion invariant.
//
// There is no tablet precedent anywhere in the retrieval pack (no
// pad/stylus example repo was retrieved), so this package is built
// directly against spec.md §3/§4.11 and the evdevcodec.Frame/eventqueue
// shapes the rest of the module already establishes, rather than against
// any specific teacher file.
package tablet

import "math"

// Raw evdev codes this package decodes (spec.md §6's inbound contract).
const (
	absX        uint16 = 0x00
	absY        uint16 = 0x01
	absPressure uint16 = 0x18
	absDistance uint16 = 0x19
	absTiltX    uint16 = 0x1a
	absTiltY    uint16 = 0x1b
	absWheel    uint16 = 0x08
	absMisc     uint16 = 0x28 // carries tool-id on Wacom-style tablets

	relWheel uint16 = 0x08

	btnToolPen      uint16 = 0x140
	btnToolRubber   uint16 = 0x141
	btnToolBrush    uint16 = 0x142
	btnToolPencil   uint16 = 0x143
	btnToolAirbrush uint16 = 0x144
	btnToolMouse    uint16 = 0x146
	btnToolLens     uint16 = 0x147

	btnTouch   uint16 = 0x14a
	btnStylus  uint16 = 0x14b
	btnStylus2 uint16 = 0x14c

	mscSerial uint16 = 0x00
)

// AxisRange is one ABS axis' reported [min, max] range, as would be read
// from the device's EVIOCGABS ioctl at enumeration.
type AxisRange struct {
	Min, Max int32
}

// normalizeUnit maps v onto [0, 1].
func (r AxisRange) normalizeUnit(v int32) float64 {
	if r.Max <= r.Min {
		return 0
	}
	f := float64(v-r.Min) / float64(r.Max-r.Min)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// normalizeSigned maps v onto [-1, 1], used for tilt axes.
func (r AxisRange) normalizeSigned(v int32) float64 {
	return r.normalizeUnit(v)*2 - 1
}

// AxisRanges holds every normalizable tablet axis' raw range, supplied by
// the caller from device enumeration data.
type AxisRanges struct {
	X, Y               AxisRange
	Pressure, Distance AxisRange
	TiltX, TiltY       AxisRange
	Slider             AxisRange
}

// rotationFromTilt implements spec.md §4.11 step 3's synthetic
// rotation-z for mouse/lens tools: rotation = fmod(360 +
// atan2(-tiltX, tiltY)*180/pi - 5, 360). tiltX/tiltY here are the
// normalized [-1,1] values.
func rotationFromTilt(tiltX, tiltY float64) float64 {
	deg := math.Atan2(-tiltX, tiltY) * 180 / math.Pi
	r := math.Mod(360+deg-5, 360)
	if r < 0 {
		r += 360
	}
	return r
}
