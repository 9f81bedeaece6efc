package accel

import (
	"testing"
	"time"
)

func TestLinearProfileFlatAtLowSpeed(t *testing.T) {
	f := NewLinear()
	t0 := time.Duration(0)
	var lastX float64
	for i := 0; i < 5; i++ {
		adx, _ := f.Dispatch(0.1, 0, t0)
		t0 += 20 * time.Millisecond
		if i > 1 && adx != lastX {
			t.Fatalf("expected flat low-speed output, got %v then %v", lastX, adx)
		}
		lastX = adx
	}
}

func TestLinearProfileSaturatesAtHighSpeed(t *testing.T) {
	f := NewLinear()
	t0 := time.Duration(0)
	var out float64
	for i := 0; i < 20; i++ {
		out, _ = f.Dispatch(50, 0, t0)
		t0 += time.Millisecond
	}
	// Past highVelocitySaturation the linear profile's factor is its
	// ceiling, baseSensitivity*accelFactor (0.9 at the default speed).
	want := 50 * (baseSensitivity * accelFactor)
	if diff := out - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected saturated output %v at high speed, got %v", want, out)
	}
}

func TestSetSpeedClamped(t *testing.T) {
	f := NewLinear()
	f.SetSpeed(5)
	if f.Speed() != 1 {
		t.Fatalf("expected clamp to 1, got %v", f.Speed())
	}
	f.SetSpeed(-5)
	if f.Speed() != -1 {
		t.Fatalf("expected clamp to -1, got %v", f.Speed())
	}
}

func TestResetClearsHistory(t *testing.T) {
	f := NewLinear()
	t0 := time.Duration(0)
	for i := 0; i < 10; i++ {
		f.Dispatch(50, 0, t0)
		t0 += time.Millisecond
	}
	f.Reset()
	adx, _ := f.Dispatch(0.1, 0, t0)
	// Immediately after reset, the filter should behave like a fresh one:
	// a small delta should not be accelerated.
	if adx > 0.2 {
		t.Fatalf("expected flat small delta right after reset, got %v", adx)
	}
}

func TestSmoothSimpleDPIScaling(t *testing.T) {
	lowDPI := NewSmoothSimple(400)
	highDPI := NewSmoothSimple(1600)
	t0 := time.Duration(0)
	var lowOut, highOut float64
	for i := 0; i < 20; i++ {
		lowOut, _ = lowDPI.Dispatch(10, 0, t0)
		highOut, _ = highDPI.Dispatch(10, 0, t0)
		t0 += time.Millisecond
	}
	// Same raw delta sequence, higher DPI should need more speed to reach
	// the same acceleration, so its factor should be <= the low-DPI one.
	if highOut > lowOut {
		t.Fatalf("expected higher-DPI profile to accelerate less for the same raw delta, low=%v high=%v", lowOut, highOut)
	}
}
