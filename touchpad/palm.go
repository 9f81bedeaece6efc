package touchpad

// PalmDetector implements spec.md §4.8: a touch whose initial contact
// lies within the lateral palm strip is permanently palm for its whole
// lifetime; a touch that begins outside the strip and later moves into
// it remains a pointer. On large pads (>=70mm wide) the bottom corners
// additionally detect palm; vendor-allowlisted devices (small pads,
// tablets used as touchpads) skip the strip detector entirely.
type PalmDetector struct {
	widthUnits, heightUnits float64
	stripFrac               float64
	cornerHeightFrac        float64
	enabled                 bool
	corners                 bool
}

// isBigPadMM is the spec.md §4.8 physical-width cutoff, in millimeters,
// above which corner palm detection additionally runs.
const isBigPadMM = 70.0

// NewPalmDetector builds a detector for one touchpad. widthMM/heightMM
// are the device's physical dimensions (from its reported resolution);
// widthUnits/heightUnits are its ABS_X/ABS_Y device-unit ranges.
// allowlisted devices (per spec.md §4.8's vendor allowlist — small pads
// and tablets-as-touchpads) never run the strip detector.
func NewPalmDetector(widthMM, heightMM, widthUnits, heightUnits float64, allowlisted bool) *PalmDetector {
	return &PalmDetector{
		widthUnits:       widthUnits,
		heightUnits:      heightUnits,
		stripFrac:        0.05,
		cornerHeightFrac: 0.1,
		enabled:          !allowlisted,
		corners:          widthMM >= isBigPadMM,
	}
}

// ClassifyBegin marks a freshly-begun touch as permanently palm if its
// initial contact point lies in the lateral strip (or, on large pads,
// the bottom corners).
func (p *PalmDetector) ClassifyBegin(s *slot) {
	if !p.enabled {
		return
	}
	left := p.widthUnits * p.stripFrac
	right := p.widthUnits * (1 - p.stripFrac)
	if s.x < left || s.x > right {
		s.palm = true
		return
	}
	if p.corners {
		bottom := p.heightUnits * (1 - p.cornerHeightFrac)
		if s.y > bottom && (s.x < p.widthUnits*0.15 || s.x > p.widthUnits*0.85) {
			s.palm = true
		}
	}
}
