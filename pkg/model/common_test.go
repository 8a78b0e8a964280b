package model

import (
	"sort"
	"testing"
)

func TestSlot_Less(t *testing.T) {
	slots := []Slot{{Day: 2, Shift: 0}, {Day: 0, Shift: 1}, {Day: 0, Shift: 0}, {Day: 1, Shift: 1}}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Less(slots[j]) })

	expected := []Slot{{0, 0}, {0, 1}, {1, 1}, {2, 0}}
	for i := range expected {
		if slots[i] != expected[i] {
			t.Errorf("slots[%d] = %v, expected %v", i, slots[i], expected[i])
		}
	}
}

func TestSlot_String(t *testing.T) {
	if got := (Slot{Day: 3, Shift: 1}).String(); got != "d3/s1" {
		t.Errorf("String() = %s, expected d3/s1", got)
	}
}
