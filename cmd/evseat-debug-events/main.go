// Command evseat-debug-events opens one evdev node, feeds it through an
// evseat Context as a chosen device class, and prints every semantic
// event as it's produced. It is the library's equivalent of the
// teacher's main(): a single-device, single-process loop, generalized
// from "hardcoded touchpad, hardcoded uinput mouse out" to "any of the
// five device classes, printed instead of re-injected".
//
// Flag parsing follows canonical-snapd's cmd/snap convention of a
// struct of `long`/`description`-tagged fields fed to go-flags, the
// only repo in the retrieval pack with a real argv parser for a small
// system tool.
package main

import (
	"fmt"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	evseat "github.com/evseat/evseat"
	"github.com/evseat/evseat/buttonset"
	"github.com/evseat/evseat/eventqueue"
	"github.com/evseat/evseat/evdevcodec"
	"github.com/evseat/evseat/internal/log"
	"github.com/evseat/evseat/tablet"
	"github.com/evseat/evseat/touchpad"
	"github.com/evseat/evseat/uinputsink"
)

type options struct {
	Device   string `long:"device" short:"d" description:"evdev node to open (e.g. /dev/input/event4)"`
	Match    string `long:"match" short:"m" description:"open the first enumerated device whose name contains this substring"`
	Class    string `long:"class" short:"c" default:"touchpad" description:"device class: touchpad, tablet, buttonset, keyboard, pointer"`
	Seat     string `long:"seat" default:"seat0" description:"seat logical name"`
	Verbose  bool   `long:"verbose" short:"v" description:"log at debug level"`
	Physical string `long:"physical" default:"debug" description:"seat physical name (groups devices sharing one physical seat)"`
	Replay   bool   `long:"replay" description:"replay the decoded pointer stream to a virtual /dev/uinput mouse instead of printing it"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "print evseat semantic events decoded from one evdev node"
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	path, err := resolveDevicePath(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "evseat-debug-events:", err)
		os.Exit(1)
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	logger := log.New(level)

	decoder, err := evdevcodec.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "evseat-debug-events: open:", err)
		os.Exit(1)
	}

	ctx := evseat.NewContext(logger)
	sysname := decoder.Path()
	if err := addDevice(ctx, opts, sysname, decoder); err != nil {
		fmt.Fprintln(os.Stderr, "evseat-debug-events:", err)
		os.Exit(1)
	}

	var sink *uinputsink.Device
	if opts.Replay {
		sink, err = newReplaySink(decoder.Name())
		if err != nil {
			fmt.Fprintln(os.Stderr, "evseat-debug-events: replay:", err)
			os.Exit(1)
		}
		defer sink.Close()
	}

	for {
		if err := ctx.Dispatch(sysname); err != nil {
			fmt.Fprintln(os.Stderr, "evseat-debug-events: dispatch:", err)
			return
		}
		if sink != nil {
			if err := replay(ctx.Queue, sink); err != nil {
				fmt.Fprintln(os.Stderr, "evseat-debug-events: replay:", err)
				return
			}
			continue
		}
		drain(ctx.Queue)
	}
}

func resolveDevicePath(opts options) (string, error) {
	if opts.Device != "" {
		return opts.Device, nil
	}
	if opts.Match == "" {
		return "", fmt.Errorf("one of --device or --match is required")
	}
	devs, err := evdevcodec.ListInputDevices()
	if err != nil {
		return "", fmt.Errorf("enumerate devices: %w", err)
	}
	for _, d := range devs {
		if strings.Contains(d.Name, opts.Match) {
			return d.Path, nil
		}
	}
	return "", fmt.Errorf("no device matching %q", opts.Match)
}

func addDevice(ctx *evseat.Context, opts options, sysname string, decoder *evdevcodec.Decoder) error {
	switch opts.Class {
	case "touchpad":
		ctx.AddTouchpad(sysname, decoder.Name(), opts.Physical, opts.Seat, evseat.TouchpadSpec{
			Geometry: touchpad.Geometry{WidthUnits: 1, HeightUnits: 1, WidthMM: 100, HeightMM: 60},
		}, decoder)
	case "tablet":
		ctx.AddTablet(sysname, decoder.Name(), opts.Physical, opts.Seat, tablet.AxisRanges{}, decoder)
	case "buttonset":
		ctx.AddButtonSet(sysname, decoder.Name(), opts.Physical, opts.Seat,
			buttonset.AxisRange{Min: 0, Max: 360}, buttonset.AxisRange{Min: 0, Max: 4096}, 24, decoder)
	case "keyboard":
		ctx.AddKeyboard(sysname, decoder.Name(), opts.Physical, opts.Seat, true, decoder)
	case "pointer":
		ctx.AddPointer(sysname, decoder.Name(), opts.Physical, opts.Seat, evseat.PointerSpec{Profile: "linear"}, decoder)
	default:
		return fmt.Errorf("unknown --class %q", opts.Class)
	}
	return nil
}

func drain(q *eventqueue.Queue) {
	for {
		e, ok := q.Next()
		if !ok {
			return
		}
		printEvent(e)
	}
}

func printEvent(e eventqueue.Event) {
	switch ev := e.(type) {
	case eventqueue.DeviceAddedEvent:
		fmt.Printf("device-added %s\n", ev.Device.DeviceSysname())
	case eventqueue.DeviceRemovedEvent:
		fmt.Printf("device-removed %s\n", ev.Device.DeviceSysname())
	case eventqueue.KeyboardKeyEvent:
		fmt.Printf("key code=%d state=%v seat-count=%d\n", ev.Code, ev.State, ev.SeatKeyCount)
	case eventqueue.PointerMotionEvent:
		fmt.Printf("motion dx=%.3f dy=%.3f\n", ev.Dx, ev.Dy)
	case eventqueue.PointerMotionAbsoluteEvent:
		fmt.Printf("motion-absolute x=%.3f y=%.3f\n", ev.X, ev.Y)
	case eventqueue.PointerButtonEvent:
		fmt.Printf("button code=%d state=%v seat-count=%d\n", ev.Code, ev.State, ev.SeatButtonCount)
	case eventqueue.PointerAxisEvent:
		fmt.Printf("axis axis=%v value=%.3f source=%v\n", ev.Axis, ev.Value, ev.Source)
	case eventqueue.TouchEvent:
		fmt.Printf("touch slot=%d seat-slot=%d state=%v x=%.3f y=%.3f\n", ev.Slot, ev.SeatSlot, ev.State, ev.X, ev.Y)
	case eventqueue.TabletProximityEvent:
		fmt.Printf("tablet-proximity in=%v tool=%+v\n", ev.In, ev.Tool)
	case eventqueue.TabletAxisEvent:
		fmt.Printf("tablet-axis changed=%v axes=%+v\n", ev.Changed, ev.Axes)
	case eventqueue.TabletButtonEvent:
		fmt.Printf("tablet-button code=%d state=%v\n", ev.Code, ev.State)
	case eventqueue.ButtonSetAxisEvent:
		fmt.Printf("buttonset-axis axis=%v number=%d position=%.3f delta=%.3f\n", ev.Axis, ev.Number, ev.Position, ev.Delta)
	case eventqueue.ButtonSetButtonEvent:
		fmt.Printf("buttonset-button code=%d state=%v\n", ev.Code, ev.State)
	default:
		fmt.Printf("event %+v\n", ev)
	}
}
