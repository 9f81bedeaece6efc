// Package config implements spec.md §6's per-device configuration
// surface: a generic option type exposing is-available/get-current/
// get-default/set/reset, aggregated per device into the enumerated
// option list (tap-enable, scroll-method, click-method, ...).
//
// No config-protocol example repo was retrieved (this is a live
// device-option surface, not file/env config), so it is built directly
// from spec §6 text against the option types the rest of the module
// already defines (touchpad.ScrollMethod/ClickMethod, device.SendEventsMode).
package config

// Result is the outcome of an Option's Set or Reset call (spec.md §6:
// "set returns success / unsupported / invalid-parameter").
type Result int

const (
	Success Result = iota
	Unsupported
	InvalidParameter
)

// Option is one configuration option's live value plus its default and
// availability. T is the option's value type (bool, float64, an enum,
// [6]float64 for the calibration matrix, ...).
type Option[T any] struct {
	available bool
	readOnly  bool
	current   T
	deflt     T
	validate  func(T) bool
}

// NewOption builds an option at its default value. validate may be nil,
// meaning any value of T is accepted.
func NewOption[T any](deflt T, available bool, validate func(T) bool) Option[T] {
	return Option[T]{available: available, current: deflt, deflt: deflt, validate: validate}
}

// NewReadOnlyOption builds an always-available, never-settable option
// (spec.md §6's "tap-finger-count (read-only)").
func NewReadOnlyOption[T any](value T) Option[T] {
	return Option[T]{available: true, readOnly: true, current: value, deflt: value}
}

// IsAvailable reports whether this option applies to the device at all.
func (o *Option[T]) IsAvailable() bool { return o.available }

// Get returns the option's current value.
func (o *Option[T]) Get() T { return o.current }

// GetDefault returns the option's spec-mandated or device-reported default.
func (o *Option[T]) GetDefault() T { return o.deflt }

// Set installs a new value, subject to availability and validation.
func (o *Option[T]) Set(v T) Result {
	if !o.available || o.readOnly {
		return Unsupported
	}
	if o.validate != nil && !o.validate(v) {
		return InvalidParameter
	}
	o.current = v
	return Success
}

// Reset restores the option's default value.
func (o *Option[T]) Reset() Result {
	if !o.available || o.readOnly {
		return Unsupported
	}
	o.current = o.deflt
	return Success
}
