// Package builder 将员工与排班参数构建为求解器模型
package builder

import (
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint/builtin"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// Model 构建结果
type Model struct {
	Problem     *problem.Problem
	Constraints *constraint.Manager
	Context     *constraint.Context
}

// Build 校验输入并构建模型
//
// 参数不满足 W*max >= K*D*S >= W*min 时返回 CONFIGURATION_ERROR，不调用求解器。
func Build(workers []*model.Worker, params *model.ScheduleParameters) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateWorkers(workers, params); err != nil {
		return nil, err
	}
	if err := params.CheckCapacity(len(workers)); err != nil {
		return nil, err
	}

	grid, err := problem.NewGrid(len(workers), params.NumDays, params.NumShiftsPerDay)
	if err != nil {
		return nil, err
	}

	ctx := constraint.NewContext(workers, params, grid)
	manager := builtin.NewManagerFor(params)

	p := problem.New(grid)
	manager.Encode(ctx, p)

	return &Model{
		Problem:     p,
		Constraints: manager,
		Context:     ctx,
	}, nil
}
