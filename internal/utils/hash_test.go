package utils

import "testing"

func TestVirtualTicketIDIsDeterministic(t *testing.T) {
	schedule := uint64(7)
	a := VirtualTicketID(1, &schedule, "A", 5)
	b := VirtualTicketID(1, &schedule, "A", 5)
	if a != b {
		t.Fatalf("same inputs produced different ids: %d != %d", a, b)
	}
	if a >= 0 {
		t.Fatalf("virtual ticket ids must be negative, got %d", a)
	}
	if a <= -1_000_000 {
		t.Fatalf("virtual ticket id out of range: %d", a)
	}
}

func TestVirtualTicketIDVariesBySeat(t *testing.T) {
	schedule := uint64(7)
	a := VirtualTicketID(1, &schedule, "A", 5)
	b := VirtualTicketID(1, &schedule, "A", 6)
	c := VirtualTicketID(1, &schedule, "B", 5)
	if a == b || a == c || b == c {
		t.Fatalf("distinct seats collided: a=%d b=%d c=%d", a, b, c)
	}
}

func TestVirtualTicketIDTreatsNilScheduleAsZero(t *testing.T) {
	withNil := VirtualTicketID(1, nil, "A", 5)
	zero := uint64(0)
	withZero := VirtualTicketID(1, &zero, "A", 5)
	if withNil != withZero {
		t.Fatalf("nil schedule should hash the same as an explicit 0: %d != %d", withNil, withZero)
	}
}
