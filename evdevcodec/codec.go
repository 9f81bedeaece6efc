// Package evdevcodec pins the "evdev packet decoder" collaborator that
// spec.md §1 explicitly treats as external plumbing: we assume it delivers
// (type, code, value, time) tuples framed by SYN_REPORT, and this package
// is the thin typed wrapper around github.com/gvalkov/golang-evdev (the
// teacher's own dependency) that makes that assumption concrete.
//
// Nothing in here does gesture recognition; it only turns raw kernel bytes
// into a Frame stream and a capability snapshot, modeled after the typed
// EventType/AbsoluteType/Axis enums of the vendored viamrobotics-rdk evdev
// client (see DESIGN.md).
package evdevcodec

import (
	"fmt"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
)

// EventType mirrors the kernel's struct input_event "type" field.
type EventType uint16

const (
	EvSyn EventType = 0x00
	EvKey EventType = 0x01
	EvRel EventType = 0x02
	EvAbs EventType = 0x03
	EvMsc EventType = 0x04
	EvSw  EventType = 0x05
)

// SynCode values for EvSyn frames.
const (
	SynReport   = 0
	SynConfig   = 1
	SynMtReport = 2
	SynDropped  = 3
)

// Frame is one decoded evdev record. Time is the kernel-reported
// timestamp of the record. Open does not issue EVIOCSCLOCKID, so the
// kernel stamps records with its default evdev clock, CLOCK_REALTIME
// (wall clock), not CLOCK_MONOTONIC.
type Frame struct {
	Time  time.Duration
	Type  EventType
	Code  uint16
	Value int32
}

// IsFrameEnd reports whether this frame is the SYN_REPORT that closes a
// kernel report — the frame boundary §4 dispatchers act on.
func (f Frame) IsFrameEnd() bool {
	return f.Type == EvSyn && f.Code == SynReport
}

// Decoder reads frames from one evdev device node.
type Decoder struct {
	dev *evdev.InputDevice
	buf []Frame
}

// Open opens the device node at path and grabs it exclusively, matching
// the teacher's dev.Grab()/defer dev.Release() pattern — we hold the
// device so no other process sees duplicate raw events once we start
// re-emitting semantic ones.
func Open(path string) (*Decoder, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdevcodec: open %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		dev.Release()
		return nil, fmt.Errorf("evdevcodec: grab %s: %w", path, err)
	}
	return &Decoder{dev: dev}, nil
}

// Close releases the exclusive grab and closes the device node.
func (d *Decoder) Close() error {
	d.dev.Release()
	return d.dev.File.Close()
}

// Path returns the physical device node path, used by Context on resume to
// re-open a device by sysname.
func (d *Decoder) Path() string {
	return d.dev.Fn
}

// Name returns the kernel-reported device name.
func (d *Decoder) Name() string {
	return d.dev.Name
}

// Fd returns the underlying file descriptor number, exposed so the host's
// readable-fd wait loop (§5) can select/poll/epoll on it directly.
func (d *Decoder) Fd() uintptr {
	return d.dev.File.Fd()
}

// ReadFrames blocks until the kernel has delivered at least one batch of
// events, then returns every buffered Frame since the last call. As the
// teacher's main loop does, one call may return several SYN_REPORT-
// delimited groups if the host woke up late.
func (d *Decoder) ReadFrames() ([]Frame, error) {
	events, err := d.dev.Read()
	if err != nil {
		return nil, err
	}
	d.buf = d.buf[:0]
	for _, e := range events {
		d.buf = append(d.buf, Frame{
			Time:  time.Duration(e.Time.Sec)*time.Second + time.Duration(e.Time.Usec)*time.Microsecond,
			Type:  EventType(e.Type),
			Code:  e.Code,
			Value: e.Value,
		})
	}
	return d.buf, nil
}

// ListInputDevices enumerates evdev nodes, matching the teacher's
// findDevice/evdev.ListInputDevices usage; the udev/path enumeration front
// end (spec.md §1 Out of scope) is expected to filter the result further.
func ListInputDevices() ([]DeviceInfo, error) {
	devs, err := evdev.ListInputDevices()
	if err != nil {
		return nil, err
	}
	out := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		out = append(out, DeviceInfo{Path: d.Fn, Name: d.Name})
	}
	return out, nil
}

// DeviceInfo is the minimal enumeration record the device registry needs
// to decide whether and how to open a node.
type DeviceInfo struct {
	Path string
	Name string
}
