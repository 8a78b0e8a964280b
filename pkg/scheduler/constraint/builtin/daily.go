package builtin

import (
	"fmt"

	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// OneShiftPerDayConstraint 每人每天最多一个班次
type OneShiftPerDayConstraint struct {
	*BaseConstraint
}

// NewOneShiftPerDayConstraint 创建每日单班约束
func NewOneShiftPerDayConstraint() *OneShiftPerDayConstraint {
	return &OneShiftPerDayConstraint{
		BaseConstraint: NewBaseConstraint(
			"每日最多一班",
			constraint.TypeOneShiftPerDay,
			constraint.CategoryHard,
			100,
		),
	}
}

// Encode 对每个 (w,d): sum_s x[w][d][s] <= 1
func (c *OneShiftPerDayConstraint) Encode(ctx *constraint.Context) []problem.Linear {
	g := ctx.Grid
	if g.Shifts < 2 {
		return nil
	}
	rows := make([]problem.Linear, 0, g.Workers*g.Days)
	for w := 0; w < g.Workers; w++ {
		for d := 0; d < g.Days; d++ {
			vars := make([]problem.Var, g.Shifts)
			for s := 0; s < g.Shifts; s++ {
				vars[s] = g.Index(w, d, s)
			}
			rows = append(rows, problem.Unit(string(c.Type()), fmt.Sprintf("daily_w%d_d%d", w, d),
				vars, problem.OpLE, 1))
		}
	}
	return rows
}

// Evaluate 检查每人每天的班次数
func (c *OneShiftPerDayConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalPenalty := 0

	for w := 0; w < ctx.Schedule.NumWorkers(); w++ {
		for d := 0; d < ctx.Schedule.NumDays(); d++ {
			n := ctx.Schedule.ShiftsOnDay(w, d)
			if n <= 1 {
				continue
			}
			penalty := c.Weight() * (n - 1)
			totalPenalty += penalty
			violations = append(violations, c.CreateViolation(w, d, -1,
				fmt.Sprintf("员工 %s 第 %d 天安排了 %d 个班次", ctx.WorkerName(w), d, n), penalty))
		}
	}

	return len(violations) == 0, totalPenalty, violations
}
