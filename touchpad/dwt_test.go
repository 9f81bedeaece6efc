package touchpad

import (
	"testing"
	"time"

	"github.com/evseat/evseat/timer"
)

func TestDWTInterlockMutesAfterKeyPress(t *testing.T) {
	d := NewDWTInterlock(false)
	wheel := timer.NewWheel()
	wheel.Track(d.Timer())

	d.NoteKeyPress(0)
	if !d.Muted() {
		t.Fatal("expected a mute window to open right after a key press")
	}

	wheel.Advance(timer.DWTShort + time.Millisecond)
	if d.Muted() {
		t.Fatal("expected the mute window to expire after DWT-SHORT")
	}
}

func TestDWTInterlockEscalatesOnSustainedTyping(t *testing.T) {
	d := NewDWTInterlock(false)
	wheel := timer.NewWheel()
	wheel.Track(d.Timer())

	now := time.Duration(0)
	for i := 0; i < sustainedTypingThreshold; i++ {
		d.NoteKeyPress(now)
		now += 10 * time.Millisecond
	}

	wheel.Advance(now + timer.DWTShort + time.Millisecond)
	if !d.Muted() {
		t.Fatal("expected sustained typing to escalate the mute window to DWT-LONG, outlasting DWT-SHORT")
	}
}

func TestDWTInterlockExemptDeviceNeverMutes(t *testing.T) {
	d := NewDWTInterlock(true)
	d.NoteKeyPress(0)
	if d.Muted() {
		t.Fatal("an exempt (allowlisted) seat must never mute")
	}
}
