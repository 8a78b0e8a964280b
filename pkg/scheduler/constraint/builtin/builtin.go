package builtin

import (
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
)

// RegisterDefaultConstraints 按排班参数注册约束
func RegisterDefaultConstraints(manager *constraint.Manager, params *model.ScheduleParameters) {
	// 硬约束
	manager.Register(NewSlotCoverageConstraint())
	if params.OneShiftPerDay {
		manager.Register(NewOneShiftPerDayConstraint())
	}
	manager.Register(NewMinLoadConstraint(params.MinShiftsPerWorker))
	if params.HasMax() {
		manager.Register(NewMaxLoadConstraint(*params.MaxShiftsPerWorker))
	}

	// 软约束
	manager.Register(NewWorkerPreferenceConstraint())
}

// NewManagerFor 创建已注册默认约束的管理器
func NewManagerFor(params *model.ScheduleParameters) *constraint.Manager {
	m := constraint.NewManager()
	RegisterDefaultConstraints(m, params)
	return m
}
