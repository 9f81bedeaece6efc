package tablet

import (
	"time"

	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/pointer"
	"github.com/evseat/evseat/tool"
)

func toolTypeForCode(code uint16) (eventqueue.ToolType, bool) {
	switch code {
	case btnToolPen:
		return eventqueue.ToolPen, true
	case btnToolRubber:
		return eventqueue.ToolEraser, true
	case btnToolBrush:
		return eventqueue.ToolBrush, true
	case btnToolPencil:
		return eventqueue.ToolPencil, true
	case btnToolAirbrush:
		return eventqueue.ToolAirbrush, true
	case btnToolMouse:
		return eventqueue.ToolMouse, true
	case btnToolLens:
		return eventqueue.ToolLens, true
	}
	return 0, false
}

func isMouseLike(t eventqueue.ToolType) bool {
	return t == eventqueue.ToolMouse || t == eventqueue.ToolLens
}

// Engine is the C9 tablet device.Dispatcher, implementing spec.md
// §4.11's per-frame procedure.
type Engine struct {
	dev *device.Device
	q   *eventqueue.Queue

	global *tool.Registry
	local  *tool.Table
	ranges AxisRanges

	calibration [6]float64

	toolCode    uint16 // currently-held BTN_TOOL_* code, 0 if none
	pendingSerial uint64
	pendingToolID uint32

	cur    *tool.Tool
	inProx bool

	axes     eventqueue.TabletAxes
	prevAxes eventqueue.TabletAxes
	changed  eventqueue.TabletAxisMask

	buttonState, prevButtonState uint32

	pressureClamped bool
}

// NewEngine builds a tablet dispatcher. global is the Context-wide tool
// registry (shared across every tablet, per spec.md §3); ranges gives the
// device's reported ABS min/max for each normalizable axis.
func NewEngine(dev *device.Device, q *eventqueue.Queue, global *tool.Registry, ranges AxisRanges) *Engine {
	return &Engine{
		dev: dev, q: q, global: global, local: tool.NewTable(),
		ranges: ranges, calibration: pointer.IdentityCalibration,
	}
}

// SetCalibration installs a new 3x2 calibration matrix (spec.md §6).
func (e *Engine) SetCalibration(m [6]float64) { e.calibration = m }

func (e *Engine) stylusButtonBit(code uint16) (uint32, bool) {
	switch code {
	case btnTouch:
		return 1, true
	case btnStylus:
		return 2, true
	case btnStylus2:
		return 4, true
	}
	return 0, false
}

// HandleEvdevFrame updates internal axis/button/tool-code state from one
// decoded evdev record.
func (e *Engine) HandleEvdevFrame(f evdevcodec.Frame) {
	switch f.Type {
	case evdevcodec.EvAbs:
		e.handleAbs(f.Code, f.Value)
	case evdevcodec.EvKey:
		if _, ok := toolTypeForCode(f.Code); ok {
			if f.Value != 0 {
				e.toolCode = f.Code
			} else if e.toolCode == f.Code {
				e.toolCode = 0
			}
			return
		}
		if bit, ok := e.stylusButtonBit(f.Code); ok {
			if f.Value != 0 {
				e.buttonState |= bit
			} else {
				e.buttonState &^= bit
			}
		}
	case evdevcodec.EvMsc:
		if f.Code == mscSerial {
			e.pendingSerial = uint64(uint32(f.Value))
		}
	case evdevcodec.EvRel:
		if f.Code == relWheel {
			e.axes.RelWheel += f.Value
			e.axes.RelWheelDiscrete = f.Value
			e.changed |= eventqueue.TabletAxisRelWheel
		}
	}
}

func (e *Engine) handleAbs(code uint16, v int32) {
	switch code {
	case absX:
		xp, _ := pointer.ApplyCalibration(float64(v), e.axes.Y, e.calibration)
		e.axes.X = xp
		e.changed |= eventqueue.TabletAxisX
	case absY:
		_, yp := pointer.ApplyCalibration(e.axes.X, float64(v), e.calibration)
		e.axes.Y = yp
		e.changed |= eventqueue.TabletAxisY
	case absPressure:
		e.axes.Pressure = e.ranges.Pressure.normalizeUnit(v)
		e.changed |= eventqueue.TabletAxisPressure
	case absDistance:
		e.axes.Distance = e.ranges.Distance.normalizeUnit(v)
		e.changed |= eventqueue.TabletAxisDistance
	case absTiltX:
		e.axes.TiltX = e.ranges.TiltX.normalizeSigned(v)
		e.changed |= eventqueue.TabletAxisTiltX
	case absTiltY:
		e.axes.TiltY = e.ranges.TiltY.normalizeSigned(v)
		e.changed |= eventqueue.TabletAxisTiltY
	case absWheel:
		e.axes.Slider = e.ranges.Slider.normalizeUnit(v)
		e.changed |= eventqueue.TabletAxisSlider
	case absMisc:
		e.pendingToolID = uint32(v)
	}
}

// applyDistancePressureExclusion enforces spec.md §3's invariant: distance
// is suppressed whenever pressure is simultaneously nonzero, and pressure
// is clamped to exactly zero once (not re-emitted) while out of contact.
func (e *Engine) applyDistancePressureExclusion() {
	inContact := e.buttonState&1 != 0 // BTN_TOUCH
	if e.axes.Distance > 0 && e.axes.Pressure > 0 {
		e.axes.Distance = 0
		e.changed &^= eventqueue.TabletAxisDistance
	}
	if !inContact && e.axes.Pressure == 0 {
		if e.pressureClamped {
			e.changed &^= eventqueue.TabletAxisPressure
		}
		e.pressureClamped = true
	} else {
		e.pressureClamped = false
	}
}

func (e *Engine) lookupTool(typ eventqueue.ToolType) *tool.Tool {
	if e.pendingSerial != 0 {
		return e.global.LookupOrCreate(typ, e.pendingToolID, e.pendingSerial)
	}
	return e.local.LookupOrCreate(typ, e.pendingToolID)
}

func (e *Engine) releaseTool() {
	if e.cur == nil {
		return
	}
	if e.cur.Serial != 0 {
		e.global.Release(e.cur)
	} else {
		e.local.Release(e.cur)
	}
	e.cur = nil
}

// EndFrame implements spec.md §4.11's per-SYN_REPORT procedure.
func (e *Engine) EndFrame(now time.Duration) {
	e.applyDistancePressureExclusion()

	wantProx := e.toolCode != 0
	if wantProx && !e.inProx {
		typ, _ := toolTypeForCode(e.toolCode)
		e.cur = e.lookupTool(typ)
		e.inProx = true
		e.q.Push(eventqueue.TabletProximityEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), In: true, Axes: e.axes})
		e.prevAxes = e.axes
		e.changed = 0
		// Stylus buttons already held in this frame are reported right
		// after the proximity-in event.
		for _, bc := range stylusButtonBits {
			if e.buttonState&bc.bit != 0 {
				e.q.Push(eventqueue.TabletButtonEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), Code: bc.code, State: eventqueue.ButtonPressed})
			}
		}
		e.prevButtonState = e.buttonState
		return
	}

	if e.cur != nil && isMouseLike(e.cur.Type) {
		e.axes.RotationZ = rotationFromTilt(e.axes.TiltX, e.axes.TiltY)
		e.changed |= eventqueue.TabletAxisRotationZ
	}

	if e.inProx && e.changed != 0 {
		delta := eventqueue.TabletAxes{
			X: e.axes.X - e.prevAxes.X, Y: e.axes.Y - e.prevAxes.Y,
			Pressure: e.axes.Pressure - e.prevAxes.Pressure,
			Distance: e.axes.Distance - e.prevAxes.Distance,
			TiltX:    e.axes.TiltX - e.prevAxes.TiltX, TiltY: e.axes.TiltY - e.prevAxes.TiltY,
			Slider: e.axes.Slider - e.prevAxes.Slider, RotationZ: e.axes.RotationZ - e.prevAxes.RotationZ,
			RelWheelDiscrete: e.axes.RelWheelDiscrete,
		}
		e.q.Push(eventqueue.TabletAxisEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), Changed: e.changed, Axes: e.axes, Delta: delta})
		e.prevAxes = e.axes
	}

	for _, bc := range stylusButtonBits {
		if e.cur == nil {
			break
		}
		wasDown := e.prevButtonState&bc.bit != 0
		isDown := e.buttonState&bc.bit != 0
		if isDown == wasDown {
			continue
		}
		state := eventqueue.ButtonReleased
		if isDown {
			state = eventqueue.ButtonPressed
		}
		e.q.Push(eventqueue.TabletButtonEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), Code: bc.code, State: state})
	}

	if !wantProx && e.inProx {
		e.forceReleaseButtons(now)
		e.q.Push(eventqueue.TabletProximityEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), In: false, Axes: e.axes})
		e.releaseTool()
		e.inProx = false
		e.dev.CommitLeftHanded() // spec.md §4.11 step 4: only takes effect out of proximity
	}

	e.prevButtonState = e.buttonState
	e.changed = 0
	e.axes.RelWheelDiscrete = 0
}

type buttonBit struct {
	bit  uint32
	code uint32
}

// stylusButtonBits is iterated in a fixed order so multi-button frames
// produce deterministic event ordering (spec.md §8's determinism
// property, mirrored from timer.Wheel.Advance's fixed firing order).
var stylusButtonBits = []buttonBit{
	{1, uint32(btnTouch)},
	{2, uint32(btnStylus)},
	{4, uint32(btnStylus2)},
}

func (e *Engine) forceReleaseButtons(now time.Duration) {
	for _, bc := range stylusButtonBits {
		if e.buttonState&bc.bit != 0 {
			e.q.Push(eventqueue.TabletButtonEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), Code: bc.code, State: eventqueue.ButtonReleased})
		}
	}
	e.buttonState = 0
	e.prevButtonState = 0
}

// Suspend force-releases any in-proximity tool and its held buttons.
func (e *Engine) Suspend(now time.Duration) {
	if !e.inProx {
		return
	}
	e.forceReleaseButtons(now)
	e.q.Push(eventqueue.TabletProximityEvent{Time: now, Device: e.dev, Tool: e.cur.Ref(), In: false, Axes: e.axes})
	e.releaseTool()
	e.inProx = false
}

// PostAdded has no setup that itself emits events.
func (e *Engine) PostAdded() {}

// Destroy releases any tool this tablet still references.
func (e *Engine) Destroy() {
	e.releaseTool()
}
