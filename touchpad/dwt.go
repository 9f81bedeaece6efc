package touchpad

import (
	"time"

	"github.com/evseat/evseat/timer"
)

// sustainedTypingThreshold is the key-press count within a DWT-SHORT
// window that escalates the interlock from DWT-SHORT to DWT-LONG
// (spec.md §4.14: "sustained typing (>=5 keys in a DWT-SHORT window)").
const sustainedTypingThreshold = 5

// DWTInterlock is the C8 disable-while-typing cross-device interlock
// (spec.md §4.14). One instance is shared by every keyboard and
// touchpad dispatcher on the same seat (wired by Context, since it is
// the only component that sees both device classes together) — keyboard
// dispatchers call NoteKeyPress, touchpad dispatchers consult Muted.
type DWTInterlock struct {
	t       *timer.Timer
	exempt  bool
	lastKey time.Duration
	streak  int
}

// NewDWTInterlock builds an interlock. exempt disables it entirely for
// vendor-allowlisted devices (spec.md §4.14: "certain vendors ... do not
// participate in DWT").
func NewDWTInterlock(exempt bool) *DWTInterlock {
	d := &DWTInterlock{exempt: exempt}
	d.t = timer.New("DWT", func(time.Duration) {})
	return d
}

// Timer returns the underlying timer, for TrackTimer.
func (d *DWTInterlock) Timer() *timer.Timer { return d.t }

// NoteKeyPress is called for every key-down on a keyboard device on the
// interlocked seat. It arms (or escalates) the mute timer.
func (d *DWTInterlock) NoteKeyPress(now time.Duration) {
	if d.exempt {
		return
	}
	if d.streak == 0 || now-d.lastKey > timer.DWTShort {
		d.streak = 1
	} else {
		d.streak++
	}
	d.lastKey = now
	if d.streak >= sustainedTypingThreshold {
		d.t.Set(now, timer.DWTLong)
	} else {
		d.t.Set(now, timer.DWTShort)
	}
}

// Muted reports whether a touch beginning right now should be
// suppressed. Per spec.md §4.14 this decision is made once, at
// touch-begin, and then sticky for that touch's whole lifetime — the
// engine is responsible for latching the result onto the slot rather
// than re-querying every frame.
func (d *DWTInterlock) Muted() bool {
	return !d.exempt && d.t.IsArmed()
}
