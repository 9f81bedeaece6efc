// Package seat implements the Seat data model of spec.md §3: a
// (physical, logical) name pair holding seat-wide pressed counters for
// keys and buttons.
//
// Devices refer to their seat, but per spec.md §9's "cyclic references"
// design note, the seat's membership is modeled as a weak set of device
// ids rather than a slice of *device.Device — ownership lives in the
// device registry's table, so this package has no dependency on package
// device at all.
package seat

// Seat identifies a group of input devices nominally controlled by one
// user. Physical name is immutable after creation; logical name may
// change (see device.Registry.SetSeatLogicalName).
type Seat struct {
	physical string
	logical  string

	members map[string]struct{} // device sysnames, weak membership

	keyCounts    map[uint16]uint32
	buttonCounts map[uint16]uint32

	slotsUsed map[int]struct{} // assigned seat-slot indices
}

// New creates a seat with the given immutable physical name and initial
// logical name.
func New(physical, logical string) *Seat {
	return &Seat{
		physical:     physical,
		logical:      logical,
		members:      make(map[string]struct{}),
		keyCounts:    make(map[uint16]uint32),
		buttonCounts: make(map[uint16]uint32),
		slotsUsed:    make(map[int]struct{}),
	}
}

// Physical returns the immutable physical seat name.
func (s *Seat) Physical() string { return s.physical }

// Logical returns the current logical seat name.
func (s *Seat) Logical() string { return s.logical }

// SetLogical updates the logical name. Callers are responsible for the
// device-remove/device-add pair this implies (see device.Registry).
func (s *Seat) SetLogical(name string) { s.logical = name }

// AddMember records sysname as belonging to this seat.
func (s *Seat) AddMember(sysname string) {
	s.members[sysname] = struct{}{}
}

// RemoveMember drops sysname from this seat's weak membership set.
func (s *Seat) RemoveMember(sysname string) {
	delete(s.members, sysname)
}

// Members returns the sysnames of devices currently claiming membership.
func (s *Seat) Members() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}

// KeyPressed increments the seat-wide pressed counter for a key code and
// returns the post-increment count (spec.md §3, §8 property 1).
func (s *Seat) KeyPressed(code uint16) uint32 {
	s.keyCounts[code]++
	return s.keyCounts[code]
}

// KeyReleased decrements the seat-wide pressed counter for a key code and
// returns the post-decrement count. Never underflows past zero — a
// release with no matching press (possible after a reseat or device-gone
// force-release, see §7) is clamped.
func (s *Seat) KeyReleased(code uint16) uint32 {
	if s.keyCounts[code] > 0 {
		s.keyCounts[code]--
	}
	return s.keyCounts[code]
}

// KeyCount returns the current pressed count for a key code without
// mutating it.
func (s *Seat) KeyCount(code uint16) uint32 {
	return s.keyCounts[code]
}

// ButtonPressed increments the seat-wide pressed counter for a button
// code and returns the post-increment count.
func (s *Seat) ButtonPressed(code uint16) uint32 {
	s.buttonCounts[code]++
	return s.buttonCounts[code]
}

// ButtonReleased decrements the seat-wide pressed counter for a button
// code and returns the post-decrement count, clamped at zero.
func (s *Seat) ButtonReleased(code uint16) uint32 {
	if s.buttonCounts[code] > 0 {
		s.buttonCounts[code]--
	}
	return s.buttonCounts[code]
}

// ButtonCount returns the current pressed count for a button code without
// mutating it.
func (s *Seat) ButtonCount(code uint16) uint32 {
	return s.buttonCounts[code]
}

// AllocateSlot returns the lowest-numbered seat-slot index not currently
// in use, per spec.md §3's "dense non-negative integer ... unique across
// the whole seat" rule — every touch-down and single-touch pointer
// device alike claims one of these from its seat.
func (s *Seat) AllocateSlot() int {
	for i := 0; ; i++ {
		if _, used := s.slotsUsed[i]; !used {
			s.slotsUsed[i] = struct{}{}
			return i
		}
	}
}

// FreeSlot releases a seat-slot index previously returned by
// AllocateSlot, so it can be reused by a later touch-down.
func (s *Seat) FreeSlot(index int) {
	delete(s.slotsUsed, index)
}

// Table owns every Seat in a Context, keyed by (physical, logical).
type Table struct {
	seats map[key]*Seat
}

type key struct {
	physical, logical string
}

// NewTable returns an empty seat table.
func NewTable() *Table {
	return &Table{seats: make(map[key]*Seat)}
}

// GetOrCreate returns the seat for (physical, logical), creating it if
// this is the first device to reference it.
func (t *Table) GetOrCreate(physical, logical string) *Seat {
	k := key{physical, logical}
	if s, ok := t.seats[k]; ok {
		return s
	}
	s := New(physical, logical)
	t.seats[k] = s
	return s
}

// Relocate moves a seat to a new logical name, re-keying the table. It
// returns the same *Seat (identity preserved — only devices are
// destroyed/recreated on relocation per spec.md §3, not the seat itself).
func (t *Table) Relocate(s *Seat, newLogical string) {
	oldKey := key{s.physical, s.logical}
	delete(t.seats, oldKey)
	s.SetLogical(newLogical)
	t.seats[key{s.physical, newLogical}] = s
}

// All returns every seat currently tracked, for diagnostics.
func (t *Table) All() []*Seat {
	out := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		out = append(out, s)
	}
	return out
}
