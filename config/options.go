package config

import (
	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/pointer"
	"github.com/evseat/evseat/touchpad"
)

// Availability marks which of a device class's options actually apply —
// e.g. a plain mouse has no tap/scroll-method/click-method/DWT surface.
type Availability struct {
	Tap, ScrollMethod, ClickMethod, DWT, Halfkey, Calibration bool
}

// Options is one device's full spec.md §6 configuration surface.
type Options struct {
	TapEnable      Option[bool]
	TapFingerCount Option[int] // read-only
	LeftHanded     Option[bool]
	NaturalScroll  Option[bool]
	ScrollMethod   Option[touchpad.ScrollMethod]
	ClickMethod    Option[touchpad.ClickMethod]
	SendEventsMode Option[device.SendEventsMode]

	RotationDegrees   Option[float64]
	AccelSpeed        Option[float64]
	AccelProfile      Option[string]
	DWTEnable         Option[bool]
	HalfkeyEnable     Option[bool]
	CalibrationMatrix Option[[6]float64]

	// VendorAllowlist externalizes spec §9(b)'s palm-detect vendor
	// allowlist as data instead of a compile-time table. It is not an
	// Option: it's enumeration-time data (the list of exempt vendor ids
	// supplied when the device is added), never live-set through the §6
	// get/set/reset protocol.
	VendorAllowlist []uint16
}

func validScrollMethod(m touchpad.ScrollMethod) bool {
	return m >= touchpad.ScrollMethodNone && m <= touchpad.ScrollMethodOnButtonDown
}

func validClickMethod(m touchpad.ClickMethod) bool {
	return m >= touchpad.ClickMethodNone && m <= touchpad.ClickMethodClickfinger
}

func validSendEventsMode(m device.SendEventsMode) bool {
	return m == device.SendEventsEnabled || m == device.SendEventsDisabled
}

func validAccelProfile(p string) bool {
	return p == "linear" || p == "smooth_simple"
}

// NewOptions builds a device's option set at spec-mandated defaults.
// tapFingerCount is the device's reported finger count (0 for non-touch
// devices); vendorAllowlist is the set of vendor ids exempt from palm
// detection (spec §9(b)).
func NewOptions(tapFingerCount int, avail Availability, vendorAllowlist []uint16) *Options {
	return &Options{
		TapEnable:      NewOption(true, avail.Tap, nil),
		TapFingerCount: NewReadOnlyOption(tapFingerCount),
		LeftHanded:     NewOption(false, true, nil),
		NaturalScroll:  NewOption(false, true, nil),
		ScrollMethod:   NewOption(touchpad.ScrollMethodTwoFinger, avail.ScrollMethod, validScrollMethod),
		ClickMethod:    NewOption(touchpad.ClickMethodButtonAreas, avail.ClickMethod, validClickMethod),
		SendEventsMode: NewOption(device.SendEventsEnabled, true, validSendEventsMode),

		RotationDegrees:   NewOption(0.0, true, func(v float64) bool { return v >= 0 && v < 360 }),
		AccelSpeed:        NewOption(0.0, true, func(v float64) bool { return v >= -1 && v <= 1 }),
		AccelProfile:      NewOption("linear", true, validAccelProfile),
		DWTEnable:         NewOption(true, avail.DWT, nil),
		HalfkeyEnable:     NewOption(false, avail.Halfkey, nil),
		CalibrationMatrix: NewOption(pointer.IdentityCalibration, avail.Calibration, nil),

		VendorAllowlist: vendorAllowlist,
	}
}

// IsVendorAllowlisted reports whether vendor is exempt from palm
// detection per spec.md §4.8/§9(b).
func (o *Options) IsVendorAllowlisted(vendor uint16) bool {
	for _, v := range o.VendorAllowlist {
		if v == vendor {
			return true
		}
	}
	return false
}
