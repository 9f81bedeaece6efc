package uinputsink

import (
	"os"
	"testing"
)

// requireUinput skips the test unless /dev/uinput is present and writable
// by this process — true in a container granted --device=/dev/uinput,
// false in an ordinary sandboxed CI run.
func requireUinput(t *testing.T) {
	t.Helper()
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		t.Skipf("/dev/uinput not usable: %v", err)
	}
	f.Close()
}

// TestCreateAndReplayEvents exercises the real kernel uinput ioctl path:
// register a virtual mouse, emit a button press/release and a relative
// motion, and confirm none of it errors. It intentionally does not read
// the resulting /dev/input node back — that would require enumerating
// and opening a freshly created device node, which is exactly what
// evdevcodec already covers from the read side.
func TestCreateAndReplayEvents(t *testing.T) {
	requireUinput(t)

	dev, err := Create(Config{
		Name:     "evseat uinputsink test",
		KeyCodes: []uint16{0x110}, // BTN_LEFT
		RelCodes: []uint16{0x00, 0x01},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer dev.Close()

	if err := dev.Key(0x110, true); err != nil {
		t.Fatalf("Key(press): %v", err)
	}
	if err := dev.Key(0x110, false); err != nil {
		t.Fatalf("Key(release): %v", err)
	}
	if err := dev.Rel(0x00, 5); err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if err := dev.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
