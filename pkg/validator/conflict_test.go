package validator

import (
	"testing"

	"github.com/paiban/shiftsat/pkg/model"
)

func setup(t *testing.T) ([]*model.Worker, *model.ScheduleParameters) {
	t.Helper()
	params := &model.ScheduleParameters{
		NumDays:            2,
		NumShiftsPerDay:    2,
		CoveragePerSlot:    1,
		MinShiftsPerWorker: 1,
		MaxShiftsPerWorker: model.IntPtr(2),
		OneShiftPerDay:     true,
	}
	workers, err := model.BuildWorkers([]model.WorkerSpec{
		{Name: "员工1", UnwantedSlots: []model.Slot{{Day: 0, Shift: 0}}},
		{Name: "员工2"},
		{Name: "员工3"},
	}, params)
	if err != nil {
		t.Fatalf("BuildWorkers: %v", err)
	}
	return workers, params
}

func mustSchedule(t *testing.T, assignments ...model.Assignment) *model.Schedule {
	t.Helper()
	s, err := model.NewSchedule(3, 2, 2, assignments)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	return s
}

func TestConflictDetector_Validate(t *testing.T) {
	workers, params := setup(t)
	detector := NewConflictDetector(DefaultDetectorConfig())

	tests := []struct {
		name         string
		schedule     *model.Schedule
		wantValid    bool
		wantTypes    []ConflictType
		wantUnwanted int
	}{
		{
			name: "正常排班",
			schedule: mustSchedule(t,
				model.Assignment{Worker: 1, Day: 0, Shift: 0},
				model.Assignment{Worker: 0, Day: 0, Shift: 1},
				model.Assignment{Worker: 2, Day: 1, Shift: 0},
				model.Assignment{Worker: 0, Day: 1, Shift: 1},
			),
			wantValid: true,
		},
		{
			name: "不希望的时段只产生警告",
			schedule: mustSchedule(t,
				model.Assignment{Worker: 0, Day: 0, Shift: 0},
				model.Assignment{Worker: 1, Day: 0, Shift: 1},
				model.Assignment{Worker: 2, Day: 1, Shift: 0},
				model.Assignment{Worker: 1, Day: 1, Shift: 1},
			),
			wantValid:    true,
			wantTypes:    []ConflictType{ConflictUnwanted},
			wantUnwanted: 1,
		},
		{
			name: "同一天两班且时段缺人",
			schedule: mustSchedule(t,
				model.Assignment{Worker: 1, Day: 0, Shift: 0},
				model.Assignment{Worker: 1, Day: 0, Shift: 1},
				model.Assignment{Worker: 2, Day: 1, Shift: 0},
				model.Assignment{Worker: 0, Day: 1, Shift: 0},
			),
			wantValid: false,
			// 按天、班次排序：员工2 第0天两班，d1/s0 多一人，d1/s1 缺人
			wantTypes: []ConflictType{ConflictDoubleShift, ConflictCoverage, ConflictCoverage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := detector.Validate(tt.schedule, workers, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, expected %v", report.IsValid, tt.wantValid)
			}
			if report.UnwantedAssigned != tt.wantUnwanted {
				t.Errorf("UnwantedAssigned = %d, expected %d", report.UnwantedAssigned, tt.wantUnwanted)
			}
			if len(report.Conflicts) != len(tt.wantTypes) {
				for _, c := range report.Conflicts {
					t.Logf("Conflict: %s", c.Message)
				}
				t.Fatalf("len(Conflicts) = %d, expected %d", len(report.Conflicts), len(tt.wantTypes))
			}
			for i, typ := range tt.wantTypes {
				if report.Conflicts[i].Type != typ {
					t.Errorf("Conflicts[%d].Type = %s, expected %s", i, report.Conflicts[i].Type, typ)
				}
			}
		})
	}
}

func TestConflictDetector_WithoutWarnings(t *testing.T) {
	workers, params := setup(t)
	detector := NewConflictDetector(&DetectorConfig{IncludeWarnings: false})

	conflicts, err := detector.DetectAll(mustSchedule(t,
		model.Assignment{Worker: 0, Day: 0, Shift: 0},
		model.Assignment{Worker: 1, Day: 0, Shift: 1},
		model.Assignment{Worker: 2, Day: 1, Shift: 0},
		model.Assignment{Worker: 1, Day: 1, Shift: 1},
	), workers, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("Expected 0 conflicts, got %d", len(conflicts))
	}
}

func TestConflictDetector_DimensionMismatch(t *testing.T) {
	workers, params := setup(t)
	s, _ := model.NewSchedule(3, 1, 2, nil)

	if _, err := NewConflictDetector(nil).Validate(s, workers, params); err == nil {
		t.Error("尺寸不一致应返回错误")
	}
}
