// Package validator 提供排班验证功能
package validator

import (
	"fmt"
	"sort"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint/builtin"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictCoverage    ConflictType = "coverage"     // 时段人数不等于 K
	ConflictDoubleShift ConflictType = "double_shift" // 同一天多个班次
	ConflictUnderLoad   ConflictType = "under_load"   // 低于最小负荷
	ConflictOverLoad    ConflictType = "over_load"    // 超过最大负荷
	ConflictUnwanted    ConflictType = "unwanted"     // 安排在不希望的时段
)

var conflictTypes = map[constraint.Type]ConflictType{
	constraint.TypeSlotCoverage:     ConflictCoverage,
	constraint.TypeOneShiftPerDay:   ConflictDoubleShift,
	constraint.TypeMinLoad:          ConflictUnderLoad,
	constraint.TypeMaxLoad:          ConflictOverLoad,
	constraint.TypeWorkerPreference: ConflictUnwanted,
}

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity string       `json:"severity"` // error/warning
	Worker   *int         `json:"worker,omitempty"`
	Day      *int         `json:"day,omitempty"`
	Shift    *int         `json:"shift,omitempty"`
	Message  string       `json:"message"`
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	IncludeWarnings bool // 是否返回不希望时段等软冲突
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{IncludeWarnings: true}
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// Report 验证报告
type Report struct {
	IsValid          bool       `json:"is_valid"`
	Errors           int        `json:"errors"`
	Warnings         int        `json:"warnings"`
	UnwantedAssigned int        `json:"unwanted_assigned"`
	Score            float64    `json:"score"`
	Conflicts        []Conflict `json:"conflicts"`
}

// Validate 按排班参数复核排班
func (d *ConflictDetector) Validate(schedule *model.Schedule, workers []*model.Worker, params *model.ScheduleParameters) (*Report, error) {
	if err := model.ValidateWorkers(workers, params); err != nil {
		return nil, err
	}
	grid, err := problem.NewGrid(len(workers), params.NumDays, params.NumShiftsPerDay)
	if err != nil {
		return nil, err
	}
	if schedule.NumWorkers() != grid.Workers || schedule.NumDays() != grid.Days || schedule.NumShifts() != grid.Shifts {
		return nil, apperrors.Validation("schedule", fmt.Sprintf("排班尺寸 %dx%dx%d 与参数 %dx%dx%d 不一致",
			schedule.NumWorkers(), schedule.NumDays(), schedule.NumShifts(), grid.Workers, grid.Days, grid.Shifts))
	}

	ctx := constraint.NewContext(workers, params, grid).WithSchedule(schedule)
	result := builtin.NewManagerFor(params).Evaluate(ctx)

	report := &Report{
		IsValid:   result.IsValid,
		Score:     result.Score,
		Conflicts: make([]Conflict, 0, len(result.HardViolations)),
	}
	for _, v := range result.HardViolations {
		report.Conflicts = append(report.Conflicts, toConflict(v))
		report.Errors++
	}
	for _, v := range result.SoftViolations {
		if v.ConstraintType == constraint.TypeWorkerPreference {
			report.UnwantedAssigned++
		}
		report.Warnings++
		if d.config.IncludeWarnings {
			report.Conflicts = append(report.Conflicts, toConflict(v))
		}
	}

	sortConflicts(report.Conflicts)
	return report, nil
}

// DetectAll 返回所有冲突
func (d *ConflictDetector) DetectAll(schedule *model.Schedule, workers []*model.Worker, params *model.ScheduleParameters) ([]Conflict, error) {
	report, err := d.Validate(schedule, workers, params)
	if err != nil {
		return nil, err
	}
	return report.Conflicts, nil
}

func toConflict(v constraint.ViolationDetail) Conflict {
	typ, ok := conflictTypes[v.ConstraintType]
	if !ok {
		typ = ConflictType(v.ConstraintType)
	}
	return Conflict{
		Type:     typ,
		Severity: v.Severity,
		Worker:   v.Worker,
		Day:      v.Day,
		Shift:    v.Shift,
		Message:  v.Message,
	}
}

// sortConflicts 错误在前，其余按天、班次、员工排序
func sortConflicts(conflicts []Conflict) {
	key := func(p *int) int {
		if p == nil {
			return -1
		}
		return *p
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Severity != b.Severity {
			return a.Severity == "error"
		}
		if key(a.Day) != key(b.Day) {
			return key(a.Day) < key(b.Day)
		}
		if key(a.Shift) != key(b.Shift) {
			return key(a.Shift) < key(b.Shift)
		}
		return key(a.Worker) < key(b.Worker)
	})
}
