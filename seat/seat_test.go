package seat

import "testing"

func TestAllocateSlotReusesLowestFreed(t *testing.T) {
	s := New("seat0", "seat0-default")
	a := s.AllocateSlot()
	b := s.AllocateSlot()
	if a != 0 || b != 1 {
		t.Fatalf("expected dense 0,1 allocation, got %d,%d", a, b)
	}
	s.FreeSlot(a)
	c := s.AllocateSlot()
	if c != 0 {
		t.Fatalf("expected freed slot 0 to be reused, got %d", c)
	}
}

func TestButtonCountsClampAtZero(t *testing.T) {
	s := New("seat0", "seat0-default")
	if got := s.ButtonReleased(0x110); got != 0 {
		t.Fatalf("expected release with no prior press to clamp at 0, got %d", got)
	}
	s.ButtonPressed(0x110)
	s.ButtonPressed(0x110)
	if got := s.ButtonReleased(0x110); got != 1 {
		t.Fatalf("expected count 1 after one release of two presses, got %d", got)
	}
}

func TestRelocatePreservesIdentity(t *testing.T) {
	table := NewTable()
	s := table.GetOrCreate("seat0", "seat0-default")
	s.AddMember("event3")
	table.Relocate(s, "seat0-relocated")
	if s.Logical() != "seat0-relocated" {
		t.Fatalf("expected logical name updated, got %q", s.Logical())
	}
	again := table.GetOrCreate("seat0", "seat0-relocated")
	if again != s {
		t.Fatal("expected relocate to re-key the same seat instance")
	}
}
