// Package eventqueue implements the event bus (spec.md §4.1): a single
// FIFO of outgoing semantic events, filled by dispatchers on SYN_REPORT
// and drained by the consumer with Next.
//
// The Event marker-interface shape (ImplementsEvent) is grounded on
// gioui.org/io/event's Event/Tag pattern — a pull-based, finite, non-
// restartable sequence of typed records rather than a channel of
// interface{} — which is the closest analog to our outgoing stream in the
// whole retrieval pack (see DESIGN.md).
package eventqueue

import "time"

// Event is the marker interface every outgoing semantic event implements.
type Event interface {
	implementsEvent()
}

// Axis identifies a pointer scroll axis.
type Axis int

const (
	AxisScrollVertical Axis = iota
	AxisScrollHorizontal
)

// AxisSource distinguishes the physical origin of a scroll axis event.
type AxisSource int

const (
	AxisSourceWheel AxisSource = iota
	AxisSourceFinger
	AxisSourceContinuous
)

// ButtonState is shared by keyboard, pointer and tablet button events.
type ButtonState int

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

// DeviceHandle is an opaque, comparable identifier for a device; the
// concrete *device.Device lives in package device, but events only need a
// stable handle so this package has no import-cycle back onto device.
type DeviceHandle interface {
	DeviceSysname() string
}

// DeviceAddedEvent is emitted when a device is registered: on
// enumeration, hotplug, or the re-creation that follows a reseat. Resume
// re-opens suspended devices without emitting it.
type DeviceAddedEvent struct {
	Device DeviceHandle
}

func (DeviceAddedEvent) implementsEvent() {}

// DeviceRemovedEvent is emitted on hotplug, explicit removal, a resume
// that fails to re-open the device's node, or a reseat (see
// device.Registry.SetSeatLogicalName). Suspend does not emit it.
type DeviceRemovedEvent struct {
	Device DeviceHandle
}

func (DeviceRemovedEvent) implementsEvent() {}

// KeyboardKeyEvent reports one physical or remapped key transition.
type KeyboardKeyEvent struct {
	Time          time.Duration
	Device        DeviceHandle
	Code          uint16
	State         ButtonState
	SeatKeyCount  uint32
}

func (KeyboardKeyEvent) implementsEvent() {}

// PointerMotionEvent is relative, accelerated motion.
type PointerMotionEvent struct {
	Time   time.Duration
	Device DeviceHandle
	Dx, Dy float64
}

func (PointerMotionEvent) implementsEvent() {}

// PointerMotionAbsoluteEvent is emitted by absolute pointer devices; X/Y
// are in device coordinates and must be run through Transform before use.
type PointerMotionAbsoluteEvent struct {
	Time   time.Duration
	Device DeviceHandle
	X, Y   float64
}

// Transform maps the device-coordinate X/Y onto a width x height surface.
func (e PointerMotionAbsoluteEvent) Transform(width, height float64) (x, y float64) {
	return e.X * width, e.Y * height
}

func (PointerMotionAbsoluteEvent) implementsEvent() {}

// PointerButtonEvent reports a physical or synthesized pointer button.
type PointerButtonEvent struct {
	Time            time.Duration
	Device          DeviceHandle
	Code            uint16
	State           ButtonState
	SeatButtonCount uint32
}

func (PointerButtonEvent) implementsEvent() {}

// PointerAxisEvent is a scroll event.
type PointerAxisEvent struct {
	Time   time.Duration
	Device DeviceHandle
	Axis   Axis
	Value  float64
	Source AxisSource
}

func (PointerAxisEvent) implementsEvent() {}

// TouchState is the touch-slot lifecycle state (spec.md §3).
type TouchState int

const (
	TouchDown TouchState = iota
	TouchMotion
	TouchUp
	TouchCancel
	TouchFrame
)

// TouchEvent reports one touch-slot transition or the frame terminator.
type TouchEvent struct {
	Time     time.Duration
	Device   DeviceHandle
	State    TouchState
	Slot     int
	SeatSlot int
	X, Y     float64
}

func (TouchEvent) implementsEvent() {}

// ToolType enumerates tablet tool identities (spec.md §3).
type ToolType int

const (
	ToolPen ToolType = iota
	ToolEraser
	ToolBrush
	ToolPencil
	ToolAirbrush
	ToolFinger
	ToolMouse
	ToolLens
)

// ToolRef identifies the tablet tool a tablet event concerns.
type ToolRef struct {
	Type   ToolType
	ToolID uint32
	Serial uint64
}

// TabletAxes is the axis-value snapshot carried by tablet events.
type TabletAxes struct {
	X, Y             float64
	Pressure         float64
	Distance         float64
	TiltX, TiltY     float64
	Slider           float64
	RotationZ        float64
	RelWheel         int32
	RelWheelDiscrete int32
}

// TabletAxisMask is a bitset of which TabletAxes fields changed this frame.
type TabletAxisMask uint16

const (
	TabletAxisX TabletAxisMask = 1 << iota
	TabletAxisY
	TabletAxisPressure
	TabletAxisDistance
	TabletAxisTiltX
	TabletAxisTiltY
	TabletAxisSlider
	TabletAxisRotationZ
	TabletAxisRelWheel
)

// TabletProximityEvent reports a tool entering or leaving proximity.
type TabletProximityEvent struct {
	Time   time.Duration
	Device DeviceHandle
	Tool   ToolRef
	In     bool
	Axes   TabletAxes
}

func (TabletProximityEvent) implementsEvent() {}

// TabletAxisEvent reports an in-proximity axis change.
type TabletAxisEvent struct {
	Time    time.Duration
	Device  DeviceHandle
	Tool    ToolRef
	Changed TabletAxisMask
	Axes    TabletAxes
	Delta   TabletAxes
}

func (TabletAxisEvent) implementsEvent() {}

// TabletButtonEvent reports a stylus or pad button transition.
type TabletButtonEvent struct {
	Time   time.Duration
	Device DeviceHandle
	Tool   ToolRef
	Code   uint32
	State  ButtonState
}

func (TabletButtonEvent) implementsEvent() {}

// ButtonSetAxisType distinguishes ring vs strip (spec.md §3).
type ButtonSetAxisType int

const (
	ButtonSetRing ButtonSetAxisType = iota
	ButtonSetStrip
)

// ButtonSetAxisEvent reports a ring/strip position update.
type ButtonSetAxisEvent struct {
	Time     time.Duration
	Device   DeviceHandle
	Axis     ButtonSetAxisType
	Number   int
	Position float64
	Delta    float64
}

func (ButtonSetAxisEvent) implementsEvent() {}

// ButtonSetButtonEvent reports a pad button transition.
type ButtonSetButtonEvent struct {
	Time   time.Duration
	Device DeviceHandle
	Code   uint32
	State  ButtonState
}

func (ButtonSetButtonEvent) implementsEvent() {}
