package builtin

import (
	"fmt"

	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// SlotCoverageConstraint 每个时段恰好 K 人
type SlotCoverageConstraint struct {
	*BaseConstraint
}

// NewSlotCoverageConstraint 创建时段覆盖约束
func NewSlotCoverageConstraint() *SlotCoverageConstraint {
	return &SlotCoverageConstraint{
		BaseConstraint: NewBaseConstraint(
			"时段覆盖",
			constraint.TypeSlotCoverage,
			constraint.CategoryHard,
			100,
		),
	}
}

// Encode 对每个 (d,s): sum_w x[w][d][s] = K
func (c *SlotCoverageConstraint) Encode(ctx *constraint.Context) []problem.Linear {
	g := ctx.Grid
	rows := make([]problem.Linear, 0, g.Days*g.Shifts)
	for d := 0; d < g.Days; d++ {
		for s := 0; s < g.Shifts; s++ {
			vars := make([]problem.Var, g.Workers)
			for w := 0; w < g.Workers; w++ {
				vars[w] = g.Index(w, d, s)
			}
			rows = append(rows, problem.Unit(string(c.Type()), fmt.Sprintf("cover_d%d_s%d", d, s),
				vars, problem.OpEQ, ctx.Params.CoveragePerSlot))
		}
	}
	return rows
}

// Evaluate 检查每个时段的人数
func (c *SlotCoverageConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalPenalty := 0
	k := ctx.Params.CoveragePerSlot

	for d := 0; d < ctx.Schedule.NumDays(); d++ {
		for s := 0; s < ctx.Schedule.NumShifts(); s++ {
			n := len(ctx.Schedule.WorkersAt(d, s))
			if n == k {
				continue
			}
			penalty := c.Weight() * abs(n-k)
			totalPenalty += penalty
			violations = append(violations, c.CreateViolation(-1, d, s,
				fmt.Sprintf("第 %d 天班次 %d 安排了 %d 人，需要 %d 人", d, s, n, k), penalty))
		}
	}

	return len(violations) == 0, totalPenalty, violations
}
