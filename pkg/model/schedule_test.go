package model

import (
	"testing"
)

func TestNewSchedule(t *testing.T) {
	s, err := NewSchedule(3, 2, 2, []Assignment{
		{Worker: 2, Day: 0, Shift: 0},
		{Worker: 0, Day: 0, Shift: 0},
		{Worker: 1, Day: 1, Shift: 1},
		{Worker: 0, Day: 1, Shift: 0},
		{Worker: 0, Day: 1, Shift: 0}, // 重复分配只计一次
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Total() != 4 {
		t.Errorf("Total() = %d, expected 4", s.Total())
	}
	if got := s.WorkersAt(0, 0); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("WorkersAt(0,0) = %v, expected [0 2]", got)
	}
	if got := s.SlotsOf(0); len(got) != 2 || got[0] != (Slot{0, 0}) || got[1] != (Slot{1, 0}) {
		t.Errorf("SlotsOf(0) = %v", got)
	}
	if loads := s.Loads(); loads[0] != 2 || loads[1] != 1 || loads[2] != 1 {
		t.Errorf("Loads() = %v", loads)
	}
	if !s.Has(1, 1, 1) || s.Has(1, 0, 0) {
		t.Error("Has() 结果错误")
	}
	if s.ShiftsOnDay(0, 1) != 1 {
		t.Errorf("ShiftsOnDay(0,1) = %d, expected 1", s.ShiftsOnDay(0, 1))
	}
}

func TestNewSchedule_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		a    Assignment
	}{
		{"员工越界", Assignment{Worker: 3, Day: 0, Shift: 0}},
		{"天越界", Assignment{Worker: 0, Day: 2, Shift: 0}},
		{"班次越界", Assignment{Worker: 0, Day: 0, Shift: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSchedule(3, 2, 2, []Assignment{tt.a}); err == nil {
				t.Error("期望返回错误")
			}
		})
	}
}

func TestSchedule_UnwantedAssigned(t *testing.T) {
	w0, _ := NewWorker(0, "a", matrix(1, 2, Slot{0, 0}), 1, 2)
	w1, _ := NewWorker(1, "b", matrix(1, 2), 1, 2)
	s, _ := NewSchedule(2, 1, 2, []Assignment{{0, 0, 0}, {1, 0, 1}})

	if got := s.UnwantedAssigned([]*Worker{w0, w1}); got != 1 {
		t.Errorf("UnwantedAssigned() = %d, expected 1", got)
	}
}

func TestSchedule_AssignmentsOrder(t *testing.T) {
	s, _ := NewSchedule(2, 2, 1, []Assignment{{1, 1, 0}, {0, 1, 0}, {1, 0, 0}})
	got := s.Assignments()
	expected := []Assignment{{1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	if len(got) != len(expected) {
		t.Fatalf("len = %d, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Assignments()[%d] = %v, expected %v", i, got[i], expected[i])
		}
	}
}
