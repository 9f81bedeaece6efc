// Package uinputsink gives a concrete shape to the "restricted-fd
// open/close interface the host provides" (spec.md §1, §5): a
// /dev/uinput-backed virtual device. It is a direct generalization of the
// teacher driver's hand-rolled createVirtualDevice/writeEvent block —
// widened from a fixed REL-only mouse to EV_KEY/EV_REL/EV_ABS so the same
// sink can back a synthetic tablet or button-set as well as a plain mouse.
//
// cmd/evseat-debug-events's --replay flag is this package's real
// importer: it drains the decoded event stream through a sink built here
// instead of printing it, the same end-to-end shape as the teacher's own
// main(). uinput_test.go's TestCreateAndReplayEvents exercises the real
// ioctl path directly (skipped when /dev/uinput isn't available).
//
// The teacher's go.mod lists github.com/bendahl/uinput but its own code
// never calls it — it hand-rolls the three ioctls it needs instead. We
// keep that idiom rather than introducing the wrapper dependency, since
// the generalized sink needs UI_SET_ABSBIT and the absmin/absmax arrays
// of the legacy uinput_user_dev struct, which the high-level wrapper does
// not expose as directly.
package uinputsink

import (
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"time"
	"unsafe"
)

const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	synReport = 0x00

	uinputMaxNameSize = 80

	uiSetEvbit  = 0x40045564
	uiSetKeybit = 0x40045565
	uiSetRelbit = 0x40045566
	uiSetAbsbit = 0x40045567
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502
)

type inputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [64]int32
	Absmin     [64]int32
	Absfuzz    [64]int32
	Absflat    [64]int32
}

// AbsAxis describes one EV_ABS axis to register on the virtual device,
// e.g. for a synthetic tablet or touch surface.
type AbsAxis struct {
	Code           uint16
	Min, Max       int32
	Fuzz, Flat     int32
}

// Config describes the capabilities the virtual device should advertise.
type Config struct {
	Name      string
	KeyCodes  []uint16
	RelCodes  []uint16
	AbsAxes   []AbsAxis
	Vendor    uint16
	Product   uint16
	Version   uint16
}

// Device is an open /dev/uinput virtual input device.
type Device struct {
	fd *os.File
}

func ioctl(fd uintptr, request uintptr, val uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, request, val)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlInt(fd uintptr, request uintptr, val int) error {
	return ioctl(fd, request, uintptr(val))
}

// Create opens /dev/uinput and registers a virtual device per cfg.
func Create(cfg Config) (*Device, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uinputsink: open /dev/uinput: %w", err)
	}

	evbits := []int{evSyn}
	if len(cfg.KeyCodes) > 0 {
		evbits = append(evbits, evKey)
	}
	if len(cfg.RelCodes) > 0 {
		evbits = append(evbits, evRel)
	}
	if len(cfg.AbsAxes) > 0 {
		evbits = append(evbits, evAbs)
	}
	for _, ev := range evbits {
		if err := ioctlInt(f.Fd(), uiSetEvbit, ev); err != nil {
			f.Close()
			return nil, fmt.Errorf("uinputsink: set evbit %d: %w", ev, err)
		}
	}

	for _, key := range cfg.KeyCodes {
		if err := ioctlInt(f.Fd(), uiSetKeybit, int(key)); err != nil {
			f.Close()
			return nil, fmt.Errorf("uinputsink: set keybit %d: %w", key, err)
		}
	}
	for _, rel := range cfg.RelCodes {
		if err := ioctlInt(f.Fd(), uiSetRelbit, int(rel)); err != nil {
			f.Close()
			return nil, fmt.Errorf("uinputsink: set relbit %d: %w", rel, err)
		}
	}
	for _, abs := range cfg.AbsAxes {
		if err := ioctlInt(f.Fd(), uiSetAbsbit, int(abs.Code)); err != nil {
			f.Close()
			return nil, fmt.Errorf("uinputsink: set absbit %d: %w", abs.Code, err)
		}
	}

	var dev uinputUserDev
	name := cfg.Name
	if name == "" {
		name = "evseat virtual device"
	}
	copy(dev.Name[:], name)
	dev.ID.Bustype = 0x03
	dev.ID.Vendor = cfg.Vendor
	dev.ID.Product = cfg.Product
	dev.ID.Version = cfg.Version
	if dev.ID.Version == 0 {
		dev.ID.Version = 1
	}
	for _, abs := range cfg.AbsAxes {
		dev.Absmin[abs.Code] = abs.Min
		dev.Absmax[abs.Code] = abs.Max
		dev.Absfuzz[abs.Code] = abs.Fuzz
		dev.Absflat[abs.Code] = abs.Flat
	}

	buf := (*[unsafe.Sizeof(dev)]byte)(unsafe.Pointer(&dev))[:]
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("uinputsink: write dev info: %w", err)
	}

	if err := ioctl(f.Fd(), uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("uinputsink: dev create: %w", err)
	}

	// The kernel needs a moment to register the new node before the
	// first event is accepted; matches the teacher's behavior.
	time.Sleep(200 * time.Millisecond)
	return &Device{fd: f}, nil
}

// WriteEvent emits one raw evdev record.
func (v *Device) WriteEvent(typ, code uint16, value int32) error {
	var tv syscall.Timeval
	syscall.Gettimeofday(&tv)
	return binary.Write(v.fd, binary.LittleEndian, inputEvent{Time: tv, Type: typ, Code: code, Value: value})
}

// Key emits an EV_KEY record.
func (v *Device) Key(code uint16, pressed bool) error {
	val := int32(0)
	if pressed {
		val = 1
	}
	return v.WriteEvent(evKey, code, val)
}

// Rel emits an EV_REL record.
func (v *Device) Rel(code uint16, value int32) error {
	return v.WriteEvent(evRel, code, value)
}

// Abs emits an EV_ABS record.
func (v *Device) Abs(code uint16, value int32) error {
	return v.WriteEvent(evAbs, code, value)
}

// Sync emits the SYN_REPORT frame terminator.
func (v *Device) Sync() error {
	return v.WriteEvent(evSyn, synReport, 0)
}

// Close destroys the virtual device and releases the fd.
func (v *Device) Close() error {
	_ = ioctl(v.fd.Fd(), uiDevDestroy, 0)
	return v.fd.Close()
}
