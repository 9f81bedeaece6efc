package touchpad

import (
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/seat"
	"github.com/evseat/evseat/timer"
)

// Button codes this package emits/consumes.
const (
	btnLeft   uint16 = 0x110
	btnRight  uint16 = 0x111
	btnMiddle uint16 = 0x112

	btnToolFinger     uint16 = 0x145
	btnToolDoubleTap  uint16 = 0x14d
	btnToolTripleTap  uint16 = 0x14e
	btnToolQuadtap    uint16 = 0x14f
	btnToolQuinttap   uint16 = 0x148
	btnLeftPhysical   uint16 = btnLeft
)

// ClickMethod selects how a physical click is turned into a button
// event (spec.md §4.10).
type ClickMethod int

const (
	ClickMethodNone ClickMethod = iota
	ClickMethodButtonAreas
	ClickMethodClickfinger
)

// SoftButtonRegion names one soft-button area (spec.md §4.6).
type SoftButtonRegion int

const (
	RegionNone SoftButtonRegion = iota
	RegionLeft
	RegionMiddle
	RegionRight
)

// SoftButtonMachine implements spec.md §4.6: a single physical button
// is divided into regions, the region is locked in at press time from
// whichever touch was down first, and a touch entering the strip too
// soon after motion does not arm it.
type SoftButtonMachine struct {
	widthUnits, heightUnits float64
	topButtons              bool
	lockedRegion            SoftButtonRegion
	locked                  bool

	lastMotion time.Duration
	t          *timer.Timer
	armedSince time.Duration
	hasArmed   bool
}

// NewSoftButtonMachine builds a machine for one touchpad's physical
// dimensions. topButtons enables the additional top strip for
// top-button-pad devices.
func NewSoftButtonMachine(widthUnits, heightUnits float64, topButtons bool) *SoftButtonMachine {
	m := &SoftButtonMachine{widthUnits: widthUnits, heightUnits: heightUnits, topButtons: topButtons}
	m.t = timer.New("SOFTBUTTON", func(time.Duration) {})
	return m
}

// Timer returns the underlying SOFTBUTTON timer, for TrackTimer (used
// only to let the wheel report NextExpiry consistently; the machine's
// own logic is driven by timestamp comparison rather than a fired
// callback, since arming is a gate checked at press time, not a
// deferred action).
func (m *SoftButtonMachine) Timer() *timer.Timer { return m.t }

// NoteMotion records the time of the most recent pointer motion, used
// to enforce "a touch entering the button strip after motion had
// already begun does not arm the soft-buttons" until SOFTBUTTON ms
// have elapsed since.
func (m *SoftButtonMachine) NoteMotion(now time.Duration) {
	m.lastMotion = now
}

// region classifies a point into a soft-button region for the current
// pad geometry.
func (m *SoftButtonMachine) region(x, y float64) SoftButtonRegion {
	const bottomBandFrac = 0.20
	bottomStart := m.heightUnits * (1 - bottomBandFrac)
	if y >= bottomStart {
		return m.bandRegion(x)
	}
	if m.topButtons {
		topBand := m.heightUnits * bottomBandFrac
		if y <= topBand {
			return m.bandRegion(x)
		}
	}
	return RegionNone
}

func (m *SoftButtonMachine) bandRegion(x float64) SoftButtonRegion {
	third := m.widthUnits / 3
	switch {
	case x < third:
		return RegionLeft
	case x < 2*third:
		return RegionMiddle
	default:
		return RegionRight
	}
}

// OnButtonPress locks in a region from the given first-touch point
// (spec.md §4.6: "the region is determined by the first touch still
// down, computed at the moment of the press"). It returns the region,
// or RegionNone if the touch entered the strip too recently after
// motion to arm soft-buttons.
func (m *SoftButtonMachine) OnButtonPress(firstTouchX, firstTouchY float64, now time.Duration) SoftButtonRegion {
	r := m.region(firstTouchX, firstTouchY)
	if r == RegionNone {
		return RegionNone
	}
	if m.lastMotion != 0 && now-m.lastMotion < timer.SoftButton {
		return RegionNone
	}
	m.lockedRegion = r
	m.locked = true
	return r
}

// OnButtonRelease unlocks the region.
func (m *SoftButtonMachine) OnButtonRelease() {
	m.locked = false
	m.lockedRegion = RegionNone
}

// LockedRegion returns the currently locked region (valid only between
// OnButtonPress and OnButtonRelease).
func (m *SoftButtonMachine) LockedRegion() SoftButtonRegion {
	return m.lockedRegion
}

func regionToButton(r SoftButtonRegion) uint16 {
	switch r {
	case RegionLeft:
		return btnLeft
	case RegionMiddle:
		return btnMiddle
	case RegionRight:
		return btnRight
	}
	return 0
}

// ClickDispatcher turns a raw physical-click transition into the right
// button event per spec.md §4.10, honoring left-handed swap for
// button-areas/soft-buttons only (tap/clickfinger never swap).
type ClickDispatcher struct {
	method       ClickMethod
	pendingMethod ClickMethod
	methodLocked bool

	softButtons *SoftButtonMachine

	s   *seat.Seat
	dev eventqueue.DeviceHandle
	q   *eventqueue.Queue

	downButton uint16
}

// NewClickDispatcher builds a dispatcher for one touchpad.
func NewClickDispatcher(method ClickMethod, soft *SoftButtonMachine, s *seat.Seat, dev eventqueue.DeviceHandle, q *eventqueue.Queue) *ClickDispatcher {
	return &ClickDispatcher{method: method, pendingMethod: method, softButtons: soft, s: s, dev: dev, q: q}
}

// SetMethod requests a click-method change. Per spec.md §4.10, a change
// while a button is held is deferred until the current press/release
// cycle completes under the original method.
func (c *ClickDispatcher) SetMethod(m ClickMethod) {
	if c.methodLocked {
		c.pendingMethod = m
		return
	}
	c.method = m
	c.pendingMethod = m
}

func (c *ClickDispatcher) emit(code uint16, down bool, now time.Duration, leftHanded bool) {
	if leftHanded {
		switch code {
		case btnLeft:
			code = btnRight
		case btnRight:
			code = btnLeft
		}
	}
	var state eventqueue.ButtonState
	var count uint32
	if down {
		state = eventqueue.ButtonPressed
		count = c.s.ButtonPressed(code)
	} else {
		state = eventqueue.ButtonReleased
		count = c.s.ButtonReleased(code)
	}
	c.q.Push(eventqueue.PointerButtonEvent{Time: now, Device: c.dev, Code: code, State: state, SeatButtonCount: count})
}

// OnPhysicalClick processes one physical BTN_LEFT transition.
// fingerCount/firstX/firstY describe the pad state at the moment of a
// press (ignored on release). leftHanded applies only under
// button-areas, matching spec.md §4.5's swap rule.
func (c *ClickDispatcher) OnPhysicalClick(down bool, fingerCount int, firstX, firstY float64, now time.Duration, leftHanded bool) {
	if down {
		c.methodLocked = true
		switch c.method {
		case ClickMethodClickfinger:
			switch fingerCount {
			case 1:
				c.downButton = btnLeft
			case 2:
				c.downButton = btnRight
			case 3:
				c.downButton = btnMiddle
			default:
				c.downButton = 0
			}
			if c.downButton != 0 {
				c.emit(c.downButton, true, now, false)
			}
		case ClickMethodButtonAreas:
			r := c.softButtons.OnButtonPress(firstX, firstY, now)
			c.downButton = regionToButton(r)
			if c.downButton != 0 {
				c.emit(c.downButton, true, now, leftHanded)
			}
		}
		return
	}

	if c.downButton != 0 {
		c.emit(c.downButton, false, now, c.method == ClickMethodButtonAreas && leftHanded)
	}
	if c.method == ClickMethodButtonAreas {
		c.softButtons.OnButtonRelease()
	}
	c.downButton = 0
	c.methodLocked = false
	if c.pendingMethod != c.method {
		c.method = c.pendingMethod
	}
}
