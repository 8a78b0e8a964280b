package builtin

import (
	"fmt"

	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// WorkerPreferenceConstraint 员工偏好约束（软约束）
//
// 每个落在员工不希望时段上的分配计 1 分，目标为总分最小。
type WorkerPreferenceConstraint struct {
	*BaseConstraint
}

// NewWorkerPreferenceConstraint 创建员工偏好约束
func NewWorkerPreferenceConstraint() *WorkerPreferenceConstraint {
	return &WorkerPreferenceConstraint{
		BaseConstraint: NewBaseConstraint(
			"员工偏好",
			constraint.TypeWorkerPreference,
			constraint.CategorySoft,
			1,
		),
	}
}

// Terms 目标项：preference[w][d][s] * x[w][d][s]，只保留系数为 1 的项
func (c *WorkerPreferenceConstraint) Terms(ctx *constraint.Context) []problem.Term {
	var terms []problem.Term
	for _, w := range ctx.Workers {
		for _, sl := range w.UnwantedSlots() {
			terms = append(terms, problem.Term{
				Var:  ctx.Grid.Index(w.ID(), sl.Day, sl.Shift),
				Coef: c.Weight(),
			})
		}
	}
	return terms
}

// Evaluate 统计落在不希望时段的分配
func (c *WorkerPreferenceConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalPenalty := 0

	for _, w := range ctx.Workers {
		for _, sl := range ctx.Schedule.SlotsOf(w.ID()) {
			if !w.Unwanted(sl.Day, sl.Shift) {
				continue
			}
			totalPenalty += c.Weight()
			violations = append(violations, c.CreateViolation(w.ID(), sl.Day, sl.Shift,
				fmt.Sprintf("员工 %s 不希望第 %d 天班次 %d", w.Name(), sl.Day, sl.Shift), c.Weight()))
		}
	}

	return len(violations) == 0, totalPenalty, violations
}
