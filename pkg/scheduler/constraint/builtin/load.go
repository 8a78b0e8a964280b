package builtin

import (
	"fmt"

	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// workerVars 返回员工在整个周期内的所有变量
func workerVars(g *problem.Grid, w int) []problem.Var {
	vars := make([]problem.Var, 0, g.Days*g.Shifts)
	for d := 0; d < g.Days; d++ {
		for s := 0; s < g.Shifts; s++ {
			vars = append(vars, g.Index(w, d, s))
		}
	}
	return vars
}

// MinLoadConstraint 每人至少 M 个班次
type MinLoadConstraint struct {
	*BaseConstraint
	minShifts int
}

// NewMinLoadConstraint 创建最小负荷约束
func NewMinLoadConstraint(minShifts int) *MinLoadConstraint {
	return &MinLoadConstraint{
		BaseConstraint: NewBaseConstraint(
			"最小负荷",
			constraint.TypeMinLoad,
			constraint.CategoryHard,
			90,
		),
		minShifts: minShifts,
	}
}

// Encode 对每个 w: sum_(d,s) x[w][d][s] >= M
func (c *MinLoadConstraint) Encode(ctx *constraint.Context) []problem.Linear {
	if c.minShifts <= 0 {
		return nil
	}
	g := ctx.Grid
	rows := make([]problem.Linear, 0, g.Workers)
	for w := 0; w < g.Workers; w++ {
		rows = append(rows, problem.Unit(string(c.Type()), fmt.Sprintf("min_w%d", w),
			workerVars(g, w), problem.OpGE, c.minShifts))
	}
	return rows
}

// Evaluate 检查每人的班次数下限
func (c *MinLoadConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalPenalty := 0

	for w, load := range ctx.Schedule.Loads() {
		if load >= c.minShifts {
			continue
		}
		penalty := c.Weight() * (c.minShifts - load)
		totalPenalty += penalty
		violations = append(violations, c.CreateViolation(w, -1, -1,
			fmt.Sprintf("员工 %s 只有 %d 个班次，至少需要 %d 个", ctx.WorkerName(w), load, c.minShifts), penalty))
	}

	return len(violations) == 0, totalPenalty, violations
}

// MaxLoadConstraint 每人至多 max 个班次
type MaxLoadConstraint struct {
	*BaseConstraint
	maxShifts int
}

// NewMaxLoadConstraint 创建最大负荷约束
func NewMaxLoadConstraint(maxShifts int) *MaxLoadConstraint {
	return &MaxLoadConstraint{
		BaseConstraint: NewBaseConstraint(
			"最大负荷",
			constraint.TypeMaxLoad,
			constraint.CategoryHard,
			90,
		),
		maxShifts: maxShifts,
	}
}

// Encode 对每个 w: sum_(d,s) x[w][d][s] <= max
func (c *MaxLoadConstraint) Encode(ctx *constraint.Context) []problem.Linear {
	g := ctx.Grid
	if c.maxShifts >= g.Days*g.Shifts {
		return nil
	}
	rows := make([]problem.Linear, 0, g.Workers)
	for w := 0; w < g.Workers; w++ {
		rows = append(rows, problem.Unit(string(c.Type()), fmt.Sprintf("max_w%d", w),
			workerVars(g, w), problem.OpLE, c.maxShifts))
	}
	return rows
}

// Evaluate 检查每人的班次数上限
func (c *MaxLoadConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalPenalty := 0

	for w, load := range ctx.Schedule.Loads() {
		if load <= c.maxShifts {
			continue
		}
		penalty := c.Weight() * (load - c.maxShifts)
		totalPenalty += penalty
		violations = append(violations, c.CreateViolation(w, -1, -1,
			fmt.Sprintf("员工 %s 有 %d 个班次，超过上限 %d 个", ctx.WorkerName(w), load, c.maxShifts), penalty))
	}

	return len(violations) == 0, totalPenalty, violations
}
