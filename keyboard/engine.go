package keyboard

import (
	"time"

	"github.com/evseat/evseat/device"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/pointer"
	"github.com/evseat/evseat/touchpad"
)

// Engine is the C11 keyboard device.Dispatcher.
type Engine struct {
	dev *device.Device
	q   *eventqueue.Queue

	keys *pointer.KeyTracker
	dwt  *touchpad.DWTInterlock // shared seat-wide interlock; nil if none wired

	state         spaceState
	virtuallyDown map[uint16]bool // mirror code -> currently injected down

	enabled, wantEnabled bool
}

// NewEngine builds a keyboard dispatcher. dwt is the seat-wide C8
// interlock shared with every touchpad on the same seat (spec.md §4.14);
// pass nil for a seat with no touchpad to interlock against.
func NewEngine(dev *device.Device, q *eventqueue.Queue, dwt *touchpad.DWTInterlock) *Engine {
	return &Engine{
		dev: dev, q: q,
		keys:          pointer.NewKeyTracker(),
		dwt:           dwt,
		virtuallyDown: make(map[uint16]bool),
		enabled:       true, wantEnabled: true,
	}
}

// SetHalfkeyEnabled requests enabling or disabling the remapper
// (spec.md §6's halfkey-enable option). Per §4.13 the change is deferred
// until the virtual-key bitmap is empty, to avoid stuck keys.
func (e *Engine) SetHalfkeyEnabled(want bool) {
	e.wantEnabled = want
	e.tryApplyEnabled()
}

func (e *Engine) tryApplyEnabled() {
	if len(e.virtuallyDown) == 0 {
		e.enabled = e.wantEnabled
	}
}

// HandleEvdevFrame processes one decoded key transition immediately —
// the remap decision for a given key depends only on that key's own
// down/up edge, not on end-of-frame aggregation.
func (e *Engine) HandleEvdevFrame(f evdevcodec.Frame) {
	if !isEvKey(f) {
		return
	}
	e.handleKey(f.Code, f.Value != 0, f.Time)
}

func (e *Engine) emit(code uint16, down bool, now time.Duration) {
	e.keys.SetState(code, down, now, e.dev.Seat(), e.dev, e.q)
}

func (e *Engine) handleKey(code uint16, down bool, now time.Duration) {
	if down && e.dwt != nil {
		e.dwt.NoteKeyPress(now)
	}

	if !e.enabled {
		e.emit(code, down, now)
		return
	}

	if code == keySpace {
		e.handleSpace(down, now)
		return
	}

	mirror, isMirror := mirrorOf[code]
	// MIRROR_UP: the bitmap is the source of truth for "release of the
	// original key while the mirror is down forces a mirror-release",
	// whichever state SPACE has moved to since the mirror went down.
	if isMirror && !down && e.virtuallyDown[mirror] {
		delete(e.virtuallyDown, mirror)
		e.emit(mirror, false, now)
		e.tryApplyEnabled()
		return
	}
	if !isMirror || e.state == spaceIdle {
		e.emit(code, down, now)
		return
	}

	if down {
		e.state = spaceModified
		e.virtuallyDown[mirror] = true
		e.emit(mirror, true, now)
	}
}

func (e *Engine) handleSpace(down bool, now time.Duration) {
	switch e.state {
	case spaceIdle:
		if down {
			e.state = spacePressed // SPACE_DOWN: DISCARD
		}
	case spacePressed:
		if !down {
			// SPACE_UP from PRESSED: PASSTHROUGH, injecting a retroactive
			// SPACE_DOWN first so a brief tap still reads as a space.
			e.emit(keySpace, true, now)
			e.emit(keySpace, false, now)
			e.state = spaceIdle
		}
	case spaceModified:
		if !down {
			e.state = spaceIdle // SPACE_UP from MODIFIED: DISCARD
			e.tryApplyEnabled()
		}
	}
}

// EndFrame has nothing to flush: every remap decision is emitted
// immediately on its own key edge.
func (e *Engine) EndFrame(now time.Duration) {}

// Suspend force-releases every physical and virtually-down key and
// resets the state machine to idle.
func (e *Engine) Suspend(now time.Duration) {
	e.keys.ForceReleaseAll(now, e.dev.Seat(), e.dev, e.q)
	for code := range e.virtuallyDown {
		delete(e.virtuallyDown, code)
	}
	e.state = spaceIdle
	e.tryApplyEnabled()
}

// PostAdded has no setup that itself emits events.
func (e *Engine) PostAdded() {}

// Destroy releases no resources of its own.
func (e *Engine) Destroy() {}
