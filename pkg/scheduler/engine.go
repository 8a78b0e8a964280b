// Package scheduler 排班引擎：构建模型、调用求解器、解码结果
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/builder"
	"github.com/paiban/shiftsat/pkg/scheduler/decoder"
	"github.com/paiban/shiftsat/pkg/scheduler/solver"
)

// Phase 运行阶段
type Phase string

const (
	PhaseBuilding Phase = "BUILDING"
	PhaseSolving  Phase = "SOLVING"
	PhaseDecoding Phase = "DECODING"
	PhaseDone     Phase = "DONE"
	PhaseFailed   Phase = "FAILED"
)

// Outcome 一次运行的结果
//
// Status 为 INFEASIBLE 或 UNKNOWN 时 Schedule 为空，不返回部分排班。
type Outcome struct {
	RunID      string                    `json:"run_id"`
	Phase      Phase                     `json:"phase"`
	Status     solver.Status             `json:"status"`
	Workers    []*model.Worker           `json:"workers"`
	Params     *model.ScheduleParameters `json:"params"`
	Schedule   *model.Schedule           `json:"schedule,omitempty"`
	Statistics *model.Statistics         `json:"statistics,omitempty"`
	Duration   time.Duration             `json:"duration"`
}

// Feasible 是否得到排班
func (o *Outcome) Feasible() bool {
	return o.Schedule != nil
}

// Engine 排班引擎，本身无状态，可并发使用
type Engine struct {
	solver solver.Solver
	budget time.Duration
	logger *logger.SchedulerLogger
}

// Option 引擎选项
type Option func(*Engine)

// WithSolver 指定求解器
func WithSolver(s solver.Solver) Option {
	return func(e *Engine) {
		if s != nil {
			e.solver = s
		}
	}
}

// WithTimeBudget 指定单次运行的求解时间预算
func WithTimeBudget(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.budget = d
		}
	}
}

// NewEngine 创建排班引擎，默认使用 gini 求解器、不限时间
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		solver: solver.NewGiniSolver(),
		logger: logger.NewSchedulerLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SolverName 返回求解器名称
func (e *Engine) SolverName() string {
	return e.solver.Name()
}

// TimeBudget 返回求解时间预算
func (e *Engine) TimeBudget() time.Duration {
	return e.budget
}

// Run 执行一次排班
//
// 输入非法返回 VALIDATION_FAILED 或 CONFIGURATION_ERROR；求解器故障返回
// SOLVER_FAULT；无解不是错误，返回 Status 为 INFEASIBLE 的 Outcome。
func (e *Engine) Run(ctx context.Context, workers []*model.Worker, params *model.ScheduleParameters) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{
		RunID:   uuid.New().String(),
		Phase:   PhaseBuilding,
		Workers: workers,
		Params:  params,
	}
	if params == nil {
		return e.fail(out, apperrors.Validation("params", "排班参数不能为空"))
	}
	e.logger.StartRun(out.RunID, len(workers), params.NumDays, params.NumShiftsPerDay)

	m, err := builder.Build(workers, params)
	if err != nil {
		return e.fail(out, err)
	}
	e.logger.ModelBuilt(out.RunID, m.Problem.NumVars, len(m.Problem.Rows), len(m.Problem.Objective.Terms))

	e.transition(out, PhaseSolving)
	res, err := e.solver.Solve(ctx, m.Problem, solver.Options{TimeBudget: e.budget})
	if err != nil {
		return e.fail(out, err)
	}
	out.Status = res.Status

	if !res.Status.HasSolution() {
		out.Duration = time.Since(start)
		e.transition(out, PhaseFailed)
		e.logger.RunFailed(out.RunID, string(out.Status), nil)
		return out, nil
	}

	e.transition(out, PhaseDecoding)
	decoded, err := decoder.Decode(m, res)
	if err != nil {
		return e.fail(out, err)
	}
	out.Schedule = decoded.Schedule
	out.Statistics = decoded.Statistics
	out.Duration = time.Since(start)

	e.transition(out, PhaseDone)
	e.logger.RunComplete(out.RunID, string(out.Status), out.Duration, out.Statistics.UnwantedAssigned)
	return out, nil
}

// transition 切换阶段并记录日志
func (e *Engine) transition(out *Outcome, to Phase) {
	e.logger.PhaseChange(out.RunID, string(out.Phase), string(to))
	out.Phase = to
}

// fail 以错误结束运行
func (e *Engine) fail(out *Outcome, err error) (*Outcome, error) {
	e.transition(out, PhaseFailed)
	e.logger.RunFailed(out.RunID, string(apperrors.GetCode(err)), err)
	return nil, err
}
