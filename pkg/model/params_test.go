package model

import (
	"math"
	"testing"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
)

func TestScheduleParameters_Validate(t *testing.T) {
	tests := []struct {
		name   string
		params ScheduleParameters
		code   apperrors.Code
	}{
		{"合法参数", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: 2}, ""},
		{"天数为0", ScheduleParameters{NumDays: 0, NumShiftsPerDay: 2, CoveragePerSlot: 1}, apperrors.CodeValidationFail},
		{"班次数为0", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 0, CoveragePerSlot: 1}, apperrors.CodeValidationFail},
		{"覆盖人数为0", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 0}, apperrors.CodeValidationFail},
		{"最小负荷为负", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: -1}, apperrors.CodeValidationFail},
		{"最大小于最小", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: 3, MaxShiftsPerWorker: IntPtr(2)}, apperrors.CodeConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("错误码 = %s, expected %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestScheduleParameters_EffectiveMax(t *testing.T) {
	p := ScheduleParameters{NumDays: 7, NumShiftsPerDay: 3, CoveragePerSlot: 1}
	if p.EffectiveMax() != 21 {
		t.Errorf("EffectiveMax() = %d, expected 21", p.EffectiveMax())
	}
	p.OneShiftPerDay = true
	if p.EffectiveMax() != 7 {
		t.Errorf("EffectiveMax() = %d, expected 7", p.EffectiveMax())
	}
	p.MaxShiftsPerWorker = IntPtr(4)
	if p.EffectiveMax() != 4 {
		t.Errorf("EffectiveMax() = %d, expected 4", p.EffectiveMax())
	}
	// 配置值超过时段总数时按时段总数计算
	p.MaxShiftsPerWorker = IntPtr(math.MaxInt / 2)
	if p.EffectiveMax() != 21 {
		t.Errorf("EffectiveMax() = %d, expected 21", p.EffectiveMax())
	}
}

func TestScheduleParameters_CheckCapacity(t *testing.T) {
	tests := []struct {
		name    string
		params  ScheduleParameters
		workers int
		wantErr bool
	}{
		// 5*3 >= 14 >= 5*2
		{"容量充足", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: 2, MaxShiftsPerWorker: IntPtr(3)}, 5, false},
		// 3*2 = 6 < 2*2*2 = 8
		{"最大负荷不足", ScheduleParameters{NumDays: 2, NumShiftsPerDay: 2, CoveragePerSlot: 2, MaxShiftsPerWorker: IntPtr(2)}, 3, true},
		// 4*3 = 12 > 1*2*2 = 4
		{"最小负荷过高", ScheduleParameters{NumDays: 2, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: 3}, 4, true},
		// 未配置最大负荷时取物理上限: 1*2 < 2*2*1
		{"单人每天一班", ScheduleParameters{NumDays: 2, NumShiftsPerDay: 2, CoveragePerSlot: 1, OneShiftPerDay: true}, 1, true},
		{"恰好相等", ScheduleParameters{NumDays: 1, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: 1, MaxShiftsPerWorker: IntPtr(1)}, 2, false},
		// 最大负荷按时段总数 14 计算，不会溢出
		{"最大负荷极大", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: 2, MaxShiftsPerWorker: IntPtr(math.MaxInt / 2)}, 4, false},
		{"最小负荷极大", ScheduleParameters{NumDays: 7, NumShiftsPerDay: 2, CoveragePerSlot: 1, MinShiftsPerWorker: math.MaxInt / 2, MaxShiftsPerWorker: IntPtr(math.MaxInt / 2)}, 4, true},
		{"覆盖人数超过员工数", ScheduleParameters{NumDays: 1, NumShiftsPerDay: 1, CoveragePerSlot: math.MaxInt / 2}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.CheckCapacity(tt.workers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckCapacity() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.CodeConfiguration) {
				t.Errorf("错误码 = %s, expected %s", apperrors.GetCode(err), apperrors.CodeConfiguration)
			}
		})
	}
}

func TestFairParameters(t *testing.T) {
	tests := []struct {
		name           string
		days, shifts   int
		k              int
		workers        int
		expMin, expMax int
	}{
		{"5人14班", 7, 2, 1, 5, 2, 3},
		{"整除", 7, 2, 1, 7, 2, 2},
		{"双人覆盖", 7, 3, 2, 6, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FairParameters(tt.days, tt.shifts, tt.k, tt.workers, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.MinShiftsPerWorker != tt.expMin || *p.MaxShiftsPerWorker != tt.expMax {
				t.Errorf("min/max = %d/%d, expected %d/%d", p.MinShiftsPerWorker, *p.MaxShiftsPerWorker, tt.expMin, tt.expMax)
			}
			if err := p.CheckCapacity(tt.workers); err != nil {
				t.Errorf("公平参数应满足容量校验: %v", err)
			}
		})
	}

	if _, err := FairParameters(7, 2, 1, 0, true); err == nil {
		t.Error("0 人应返回错误")
	}
}
