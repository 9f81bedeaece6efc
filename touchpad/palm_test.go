package touchpad

import "testing"

func TestPalmDetectorMarksLateralStripPermanently(t *testing.T) {
	p := NewPalmDetector(150, 100, 1000, 1000, false)

	s := &slot{x: 10, y: 500}
	p.ClassifyBegin(s)
	if !s.palm {
		t.Fatal("expected a touch beginning in the lateral strip to be classified as palm")
	}
}

func TestPalmDetectorLeavesCenterTouchesAlone(t *testing.T) {
	p := NewPalmDetector(150, 100, 1000, 1000, false)

	s := &slot{x: 500, y: 500}
	p.ClassifyBegin(s)
	if s.palm {
		t.Fatal("a center touch must never be classified as palm")
	}
}

func TestPalmDetectorCornerOnlyOnBigPads(t *testing.T) {
	small := NewPalmDetector(60, 40, 1000, 1000, false)
	s := &slot{x: 950, y: 950}
	small.ClassifyBegin(s)
	if s.palm {
		t.Fatal("a small pad should not run corner palm detection")
	}

	big := NewPalmDetector(80, 50, 1000, 1000, false)
	s2 := &slot{x: 950, y: 950}
	big.ClassifyBegin(s2)
	if !s2.palm {
		t.Fatal("a big pad's bottom corner should classify as palm")
	}
}

func TestPalmDetectorAllowlistedDeviceNeverClassifiesPalm(t *testing.T) {
	p := NewPalmDetector(150, 100, 1000, 1000, true)
	s := &slot{x: 10, y: 950}
	p.ClassifyBegin(s)
	if s.palm {
		t.Fatal("an allowlisted device must never run palm detection")
	}
}
