package touchpad

import (
	"time"

	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/timer"
)

type edgeScrollState int

const (
	edgeIdle edgeScrollState = iota
	edgeArming
	edgeActive
)

type edgeAxis int

const (
	edgeAxisVertical edgeAxis = iota
	edgeAxisHorizontal
)

// EdgeScroll implements spec.md §4.7: a touch that begins in the right
// or bottom edge strip and stays there for EDGE-SCROLL ms starts
// emitting scroll events proportional to its travel; once active, the
// finger may wander off the strip and scrolling continues along
// whichever axis dominated at activation.
type EdgeScroll struct {
	widthUnits, heightUnits float64
	stripFrac               float64

	t     *timer.Timer
	state edgeScrollState

	startX, startY float64
	lastX, lastY   float64
	dominant       edgeAxis

	dev           eventqueue.DeviceHandle
	q             *eventqueue.Queue
	naturalScroll bool
}

// NewEdgeScroll builds an edge-scroll machine for one touchpad.
func NewEdgeScroll(widthUnits, heightUnits float64, dev eventqueue.DeviceHandle, q *eventqueue.Queue, naturalScroll bool) *EdgeScroll {
	e := &EdgeScroll{
		widthUnits: widthUnits, heightUnits: heightUnits, stripFrac: 0.1,
		dev: dev, q: q, naturalScroll: naturalScroll,
	}
	e.t = timer.New("EDGE-SCROLL", e.onTimeout)
	return e
}

// Timer returns the underlying EDGE-SCROLL timer, for TrackTimer.
func (e *EdgeScroll) Timer() *timer.Timer { return e.t }

func (e *EdgeScroll) inStrip(x, y float64) bool {
	return x > e.widthUnits*(1-e.stripFrac) || y > e.heightUnits*(1-e.stripFrac)
}

// Active reports whether motion should currently be diverted to scroll.
func (e *EdgeScroll) Active() bool { return e.state == edgeActive }

// OnTouchBegin arms the timer if the touch started inside the edge
// strip. dwtMuted suppresses arming entirely (spec.md §4.7: "edge-scroll
// is suppressed while DWT is active").
func (e *EdgeScroll) OnTouchBegin(x, y float64, now time.Duration, dwtMuted bool) {
	if dwtMuted || !e.inStrip(x, y) {
		e.state = edgeIdle
		return
	}
	e.state = edgeArming
	e.startX, e.startY = x, y
	e.lastX, e.lastY = x, y
	e.t.Set(now, timer.EdgeScroll)
}

func (e *EdgeScroll) onTimeout(now time.Duration) {
	if e.state == edgeArming {
		e.state = edgeActive
		dx, dy := e.lastX-e.startX, e.lastY-e.startY
		if absF(dx) >= absF(dy) {
			e.dominant = edgeAxisHorizontal
		} else {
			e.dominant = edgeAxisVertical
		}
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// OnTouchMotion feeds a new touch position. Returns true if edge-scroll
// consumed this motion (the caller must not also treat it as pointer
// motion or tap input).
func (e *EdgeScroll) OnTouchMotion(x, y float64, now time.Duration) bool {
	switch e.state {
	case edgeArming:
		e.lastX, e.lastY = x, y
		return true
	case edgeActive:
		var delta float64
		var axis eventqueue.Axis
		if e.dominant == edgeAxisVertical {
			delta = y - e.lastY
			axis = eventqueue.AxisScrollVertical
		} else {
			delta = x - e.lastX
			axis = eventqueue.AxisScrollHorizontal
		}
		e.lastX, e.lastY = x, y
		if delta == 0 {
			return true
		}
		if e.naturalScroll {
			delta = -delta
		}
		e.q.Push(eventqueue.PointerAxisEvent{
			Time: now, Device: e.dev, Axis: axis, Value: delta, Source: eventqueue.AxisSourceFinger,
		})
		return true
	}
	return false
}

// OnTouchEnd ends the stroke. If edge-scroll was active, emits exactly
// one zero-valued scroll-stop event (spec.md §4.4's invariant) unless
// dwtStop is true — a DWT-active interlock doesn't inject its own stop,
// per spec.md §4.14.
func (e *EdgeScroll) OnTouchEnd(now time.Duration, dwtStop bool) {
	wasActive := e.state == edgeActive
	e.t.Cancel()
	e.state = edgeIdle
	if wasActive && !dwtStop {
		e.q.Push(eventqueue.PointerAxisEvent{
			Time: now, Device: e.dev, Axis: e.axisOf(e.dominant), Value: 0, Source: eventqueue.AxisSourceFinger,
		})
	}
}

func (e *EdgeScroll) axisOf(a edgeAxis) eventqueue.Axis {
	if a == edgeAxisVertical {
		return eventqueue.AxisScrollVertical
	}
	return eventqueue.AxisScrollHorizontal
}
