// Package decoder 将求解器赋值还原为排班并复核
package decoder

import (
	"fmt"

	"github.com/samber/lo"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/builder"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
	"github.com/paiban/shiftsat/pkg/scheduler/solver"
	"github.com/paiban/shiftsat/pkg/stats"
	"github.com/paiban/shiftsat/pkg/validator"
)

// Decoded 解码结果
//
// Status 为 INFEASIBLE 或 UNKNOWN 时 Schedule 与 Statistics 均为空。
type Decoded struct {
	Status     solver.Status     `json:"status"`
	Schedule   *model.Schedule   `json:"schedule,omitempty"`
	Statistics *model.Statistics `json:"statistics,omitempty"`
}

// Feasible 是否得到排班
func (d *Decoded) Feasible() bool {
	return d.Schedule != nil
}

// Decode 还原排班，复核硬约束并核对目标值
//
// 复核失败说明建模或求解存在缺陷，返回 INTERNAL_ERROR。
func Decode(m *builder.Model, res *solver.Result) (*Decoded, error) {
	if res == nil {
		return nil, apperrors.Internal("求解结果为空")
	}
	if !res.Status.HasSolution() {
		return &Decoded{Status: res.Status}, nil
	}

	p := m.Problem
	if len(res.Assignment) != p.NumVars {
		return nil, apperrors.Internal(fmt.Sprintf("赋值长度 %d 与变量数 %d 不一致", len(res.Assignment), p.NumVars))
	}
	if violated := p.Violated(res.Assignment); len(violated) > 0 {
		return nil, apperrors.Internal("求解器返回的赋值违反约束").
			WithDetails(violated[0].String()).
			WithField("violated", len(violated))
	}

	assignments := lo.FilterMap(res.Assignment, func(on bool, i int) (model.Assignment, bool) {
		if !on {
			return model.Assignment{}, false
		}
		w, d, s := p.Grid.Coord(problem.Var(i))
		return model.Assignment{Worker: w, Day: d, Shift: s}, true
	})

	schedule, err := model.NewSchedule(p.Grid.Workers, p.Grid.Days, p.Grid.Shifts, assignments)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "还原排班失败")
	}

	workers := m.Context.Workers
	report, err := validator.NewConflictDetector(&validator.DetectorConfig{IncludeWarnings: false}).
		Validate(schedule, workers, m.Context.Params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "复核排班失败")
	}
	if !report.IsValid {
		return nil, apperrors.Internal("排班未通过复核").
			WithDetails(report.Conflicts[0].Message).
			WithField("conflicts", len(report.Conflicts))
	}

	unwanted := schedule.UnwantedAssigned(workers)
	if unwanted != res.Objective {
		return nil, apperrors.Internal(fmt.Sprintf("不希望分配数 %d 与目标值 %d 不一致", unwanted, res.Objective))
	}

	fairness := stats.NewFairnessAnalyzer().Analyze(schedule, workers)
	statistics := &model.Statistics{
		Status:           string(res.Status),
		UnwantedAssigned: unwanted,
		ObjectiveValue:   res.Objective,
		WallTime:         res.WallTime,
		SolverCalls:      res.Calls,
		Loads:            schedule.Loads(),
		UnwantedByWorker: lo.Map(fairness.WorkerStats, func(s stats.WorkerStat, _ int) int { return s.Unwanted }),
		MinLoad:          fairness.MinLoad,
		MaxLoad:          fairness.MaxLoad,
		LoadGini:         fairness.LoadGini,
	}

	return &Decoded{Status: res.Status, Schedule: schedule, Statistics: statistics}, nil
}
