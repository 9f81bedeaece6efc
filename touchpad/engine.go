package touchpad

import (
	"time"

	"github.com/evseat/evseat/accel"
	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/pointer"
)

// ScrollMethod selects how multi-finger/edge motion is converted into
// scroll events (spec.md §6's scroll-method option).
type ScrollMethod int

const (
	ScrollMethodNone ScrollMethod = iota
	ScrollMethodEdge
	ScrollMethodTwoFinger
	ScrollMethodOnButtonDown
)

// twoFingerScrollThreshold is the device-unit distance either finger
// must travel in the scroll direction before 2fg motion is converted
// to scroll events (spec.md §4.4 step 5).
const twoFingerScrollThreshold = 8.0

// Geometry is a touchpad's physical/axis-range parameters, needed by
// the soft-button, palm and edge-scroll sub-machines.
type Geometry struct {
	WidthUnits, HeightUnits float64
	WidthMM, HeightMM       float64
	TopButtonPad            bool
	PalmAllowlisted         bool
}

// Engine is the C6 touchpad device.Dispatcher: it owns every touchpad
// sub-machine (slots, tap, palm, soft-buttons/click-method, edge-scroll,
// DWT interlock, motion filter) and implements spec.md §4.4's per-frame
// procedure.
type Engine struct {
	dev *device.Device
	q   *eventqueue.Queue

	slots  *SlotTracker
	tap    *TapMachine
	palm   *PalmDetector
	soft   *SoftButtonMachine
	click  *ClickDispatcher
	edge   *EdgeScroll
	dwt    *DWTInterlock
	filter *accel.Filter

	geometry     Geometry
	scrollMethod ScrollMethod
	calibration  [6]float64

	naturalScroll    bool
	twoFingerActive  bool
	physicalBtnDown  bool
	firstDownX, firstDownY float64
}

// NewEngine builds a touchpad dispatcher for dev. dwt may be shared
// across every touchpad/keyboard on the same seat (see
// DWTInterlock's doc comment); pass a fresh, always-exempt one for a
// touchpad with no keyboard peers.
func NewEngine(dev *device.Device, q *eventqueue.Queue, geometry Geometry, dwt *DWTInterlock) *Engine {
	s := dev.Seat()
	e := &Engine{
		dev:         dev,
		q:           q,
		slots:       NewSlotTracker(s),
		tap:         NewTapMachine(s, dev, q),
		palm:        NewPalmDetector(geometry.WidthMM, geometry.HeightMM, geometry.WidthUnits, geometry.HeightUnits, geometry.PalmAllowlisted),
		soft:        NewSoftButtonMachine(geometry.WidthUnits, geometry.HeightUnits, geometry.TopButtonPad),
		edge:        NewEdgeScroll(geometry.WidthUnits, geometry.HeightUnits, dev, q, false),
		dwt:         dwt,
		filter:      accel.NewLinear(),
		geometry:    geometry,
		calibration: pointer.IdentityCalibration,
		scrollMethod: ScrollMethodTwoFinger,
	}
	e.click = NewClickDispatcher(ClickMethodButtonAreas, e.soft, s, dev, q)
	for _, t := range e.tap.Timers() {
		dev.TrackTimer(t)
	}
	dev.TrackTimer(e.soft.Timer())
	dev.TrackTimer(e.edge.Timer())
	return e
}

// SetCalibration installs a new 3x2 calibration matrix (spec.md §6).
func (e *Engine) SetCalibration(m [6]float64) { e.calibration = m }

// SetScrollMethod installs a new scroll method (spec.md §6).
func (e *Engine) SetScrollMethod(m ScrollMethod) { e.scrollMethod = m }

// SetNaturalScroll toggles the natural-scroll sign flip, applied once
// at the point of emission (SPEC_FULL.md §10).
func (e *Engine) SetNaturalScroll(v bool) {
	e.naturalScroll = v
	e.edge.naturalScroll = v
}

// SetTapEnabled toggles tap-to-click (spec.md §6's tap-enable option).
func (e *Engine) SetTapEnabled(v bool) { e.tap.SetEnabled(v) }

// SetClickMethod installs a new click method (spec.md §4.10/§6).
func (e *Engine) SetClickMethod(m ClickMethod) { e.click.SetMethod(m) }

func (e *Engine) transform(x, y float64) (float64, float64) {
	xp, yp := pointer.ApplyCalibration(x, y, e.calibration)
	if e.dev.LeftHanded().Current() {
		xp = pointer.InvertX(xp, e.geometry.WidthUnits)
		yp = pointer.InvertY(yp, e.geometry.HeightUnits)
	}
	return xp, yp
}

// HandleEvdevFrame updates internal state for one decoded evdev record.
func (e *Engine) HandleEvdevFrame(f evdevcodec.Frame) {
	switch f.Type {
	case evdevcodec.EvAbs:
		e.slots.HandleFrame(f)
	case evdevcodec.EvKey:
		if f.Code == btnLeft {
			e.handlePhysicalButton(f.Value != 0, f.Time)
		}
	}
}

func (e *Engine) handlePhysicalButton(down bool, now time.Duration) {
	e.physicalBtnDown = down
	if down {
		e.tap.OnPhysicalClick(now)
		fx, fy := 0.0, 0.0
		if first := e.firstEligibleTouch(); first != nil {
			fx, fy = first.x, first.y
		}
		e.firstDownX, e.firstDownY = fx, fy
		e.click.OnPhysicalClick(true, e.slots.Count(), fx, fy, now, e.dev.LeftHanded().Current())
		return
	}
	e.click.OnPhysicalClick(false, 0, 0, 0, now, e.dev.LeftHanded().Current())
}

func (e *Engine) firstEligibleTouch() *slot {
	var best *slot
	for _, s := range e.slots.Active() {
		if s.palm || s.hover {
			continue
		}
		if best == nil || s.order < best.order {
			best = s
		}
	}
	return best
}

// EndFrame implements spec.md §4.4's per-SYN_REPORT procedure.
func (e *Engine) EndFrame(now time.Duration) {
	dwtMuted := e.dwt != nil && e.dwt.Muted()

	// Steps 1-3: calibration/inversion, hover, palm, applied per active
	// slot; begun touches also get their DWT mute latched here.
	for _, s := range e.slots.Active() {
		xp, yp := e.transform(s.x, s.y)
		if s.state == slotBegin {
			e.palm.ClassifyBegin(s)
			s.muted = dwtMuted
			s.prevX, s.prevY = xp, yp
			e.tap.OnFingerDown(e.slots.Count(), now)
			if !s.palm && !s.muted {
				e.edge.OnTouchBegin(xp, yp, now, dwtMuted)
			}
			e.q.Push(eventqueue.TouchEvent{Time: now, Device: e.dev, State: eventqueue.TouchDown, Slot: s.idx, SeatSlot: s.seatIdx, X: xp, Y: yp})
		} else if s.state == slotUpdate {
			e.q.Push(eventqueue.TouchEvent{Time: now, Device: e.dev, State: eventqueue.TouchMotion, Slot: s.idx, SeatSlot: s.seatIdx, X: xp, Y: yp})
		}
		s.x, s.y = xp, yp
	}

	// Step 7/8: tap machine consulted with up/end transitions, ended
	// slots flushed, *ahead* of this frame's motion/scroll — any button
	// release a transition produces (e.g. a doubletap resolution closing
	// out the prior click) must order before motion per §4.4's "button
	// releases first ... then motion" invariant. A newly recognized tap
	// press is only held (TapMachine.FlushPendingPress below) rather
	// than queued here, so presses still land after motion/scroll.
	for _, s := range e.slots.Ended() {
		if s.hasSeat {
			e.q.Push(eventqueue.TouchEvent{Time: now, Device: e.dev, State: eventqueue.TouchUp, Slot: s.idx, SeatSlot: s.seatIdx})
		}
		if !s.palm && !s.muted {
			e.tap.OnFingerUp(e.slots.Count(), now)
			e.edge.OnTouchEnd(now, dwtMuted)
		}
		e.slots.Finish(s)
	}
	if e.slots.Count() == 0 {
		e.tap.OnAllFingersUp()
	}
	e.slots.ClearFrameStates()

	// Step 5 (scroll) + step 6 (motion), in terms of eligible touches.
	eligible := e.eligibleTouches()
	switch {
	case e.scrollMethod == ScrollMethodTwoFinger && len(eligible) == 2:
		e.dispatchTwoFingerScroll(eligible, now)
	case len(eligible) >= 1:
		e.twoFingerActive = false
		e.dispatchPointerMotion(e.pickPointingFinger(eligible), now)
	default:
		e.twoFingerActive = false
	}
	if e.scrollMethod == ScrollMethodEdge {
		e.dispatchEdgeScroll(now)
	}

	// Step 9: a tap press recognized above is queued now, after
	// motion/scroll, so a new click always lands at the cursor's
	// post-motion position (spec.md §4.4's "... then button presses").
	e.tap.FlushPendingPress()

	e.q.Push(eventqueue.TouchEvent{Time: now, Device: e.dev, State: eventqueue.TouchFrame})
}

// eligibleTouches returns active, non-palm, non-hover, non-muted
// touches — the candidate pool for pointing/scroll per spec.md §4.4
// step 4.
func (e *Engine) eligibleTouches() []*slot {
	var out []*slot
	for _, s := range e.slots.Active() {
		if s.state == slotEnd || s.palm || s.hover || s.muted {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (e *Engine) pickPointingFinger(eligible []*slot) *slot {
	var best *slot
	for _, s := range eligible {
		if best == nil || s.order > best.order {
			best = s
		}
	}
	return best
}

func (e *Engine) dispatchPointerMotion(s *slot, now time.Duration) {
	if s == nil {
		return
	}
	dx, dy := s.x-s.prevX, s.y-s.prevY
	s.prevX, s.prevY = s.x, s.y
	if dx == 0 && dy == 0 {
		return
	}
	if s.moved {
		e.tap.OnMoveBeyondThreshold()
	}
	e.soft.NoteMotion(now)
	adx, ady := e.filter.Dispatch(dx, dy, now)
	e.q.Push(eventqueue.PointerMotionEvent{Time: now, Device: e.dev, Dx: adx, Dy: ady})
}

func (e *Engine) dispatchTwoFingerScroll(eligible []*slot, now time.Duration) {
	a, b := eligible[0], eligible[1]
	dx := ((a.x - a.prevX) + (b.x - b.prevX)) / 2
	dy := ((a.y - a.prevY) + (b.y - b.prevY)) / 2
	a.prevX, a.prevY = a.x, a.y
	b.prevX, b.prevY = b.x, b.y

	if !e.twoFingerActive {
		if absF(dx) < twoFingerScrollThreshold && absF(dy) < twoFingerScrollThreshold {
			return
		}
		// Starting 2fg-scroll terminates any ongoing motion with a
		// zero-delta flush (spec.md §4.4's invariant).
		e.q.Push(eventqueue.PointerMotionEvent{Time: now, Device: e.dev, Dx: 0, Dy: 0})
		e.twoFingerActive = true
	}
	vv, hv := dy, dx
	if e.naturalScroll {
		vv, hv = -vv, -hv
	}
	if vv != 0 {
		e.q.Push(eventqueue.PointerAxisEvent{Time: now, Device: e.dev, Axis: eventqueue.AxisScrollVertical, Value: vv, Source: eventqueue.AxisSourceFinger})
	}
	if hv != 0 {
		e.q.Push(eventqueue.PointerAxisEvent{Time: now, Device: e.dev, Axis: eventqueue.AxisScrollHorizontal, Value: hv, Source: eventqueue.AxisSourceFinger})
	}
}

func (e *Engine) dispatchEdgeScroll(now time.Duration) {
	for _, s := range e.slots.Active() {
		if s.state == slotEnd || s.palm || s.muted {
			continue
		}
		if e.edge.OnTouchMotion(s.x, s.y, now) {
			s.prevX, s.prevY = s.x, s.y
		}
	}
}

// Suspend force-releases every in-flight tap/drag button and touch,
// matching spec.md §5's suspend semantics.
func (e *Engine) Suspend(now time.Duration) {
	e.tap.ForceRelease(now)
	e.edge.OnTouchEnd(now, false)
	e.slots.CancelAll()
	for _, s := range e.slots.Ended() {
		e.slots.Finish(s)
	}
}

// PostAdded has no setup that itself emits events.
func (e *Engine) PostAdded() {}

// Destroy releases the motion filter.
func (e *Engine) Destroy() {
	e.filter.Destroy()
}
