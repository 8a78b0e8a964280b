package solver

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

const defaultPollInterval = 2 * time.Millisecond

// GiniSolver 基于 gini SAT 求解器的实现
//
// 线性约束通过排序网络编码为 CNF，目标通过在目标排序网络上
// 逐步收紧上界（假设 cost <= best-1）求最小值。
type GiniSolver struct {
	logger       *logger.SchedulerLogger
	pollInterval time.Duration
}

// NewGiniSolver 创建 gini 求解器
func NewGiniSolver() *GiniSolver {
	return &GiniSolver{
		logger:       logger.NewSchedulerLogger(),
		pollInterval: defaultPollInterval,
	}
}

// Name 返回求解器名称
func (s *GiniSolver) Name() string {
	return "gini"
}

// SetPollInterval 设置后台求解的轮询间隔
func (s *GiniSolver) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.pollInterval = d
	}
}

// Solve 求解模型
//
// 调用方取消 ctx 时返回 CANCELED 错误；时间预算或 ctx 截止时间耗尽时
// 返回 FEASIBLE 或 UNKNOWN 状态。模型本身非法时返回 SOLVER_FAULT。
func (s *GiniSolver) Solve(ctx context.Context, p *problem.Problem, opts Options) (result *Result, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.SolverFault(fmt.Errorf("%v", r), "求解器内部故障")
		}
	}()

	if p == nil {
		return nil, apperrors.SolverFault(nil, "模型为空")
	}
	if err := p.Validate(); err != nil {
		return nil, apperrors.SolverFault(err, "模型非法")
	}

	// 时间预算从编码开始计算
	solveCtx := ctx
	if opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, opts.TimeBudget)
		defer cancel()
	}

	result = &Result{Status: StatusUnknown, Objective: -1}
	defer func() {
		if result != nil {
			result.WallTime = time.Since(start)
		}
	}()

	enc, err := encode(solveCtx, p)
	if solveCtx.Err() != nil {
		return s.interrupted(ctx, result)
	}
	if err != nil {
		return nil, apperrors.SolverFault(err, "模型编码失败")
	}

	res := s.solveOnce(solveCtx, enc.g)
	result.Calls++
	switch res {
	case -1:
		result.Status = StatusInfeasible
		return result, nil
	case 0:
		return s.interrupted(ctx, result)
	}

	for {
		result.Assignment = enc.snapshot()
		result.Objective = p.Objective.Eval(result.Assignment)
		s.logger.SolverImproved(s.Name(), result.Objective, result.Calls)

		if result.Objective == 0 {
			result.Status = StatusOptimal
			return result, nil
		}

		enc.g.Assume(enc.cost.Leq(result.Objective - 1))
		res = s.solveOnce(solveCtx, enc.g)
		result.Calls++
		switch res {
		case -1:
			result.Status = StatusOptimal
			return result, nil
		case 0:
			result.Status = StatusFeasible
			return s.interrupted(ctx, result)
		}
	}
}

// interrupted 区分调用方取消与时间预算耗尽
func (s *GiniSolver) interrupted(ctx context.Context, result *Result) (*Result, error) {
	if stderrors.Is(ctx.Err(), context.Canceled) {
		return nil, apperrors.Wrap(ctx.Err(), apperrors.CodeCanceled, "求解被取消")
	}
	return result, nil
}

// solveOnce 在后台运行一次 Solve，ctx 结束时停止
func (s *GiniSolver) solveOnce(ctx context.Context, g *gini.Gini) int {
	if ctx.Err() != nil {
		return 0
	}

	sv := g.GoSolve()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return sv.Stop()
		case <-ticker.C:
			if res, done := sv.Test(); done {
				return res
			}
		}
	}
}

// encoding 模型的 CNF 编码
type encoding struct {
	g      *gini.Gini
	inputs []z.Lit
	cost   *logic.CardSort
}

// encode 将线性约束编码为排序网络并写入 gini，ctx 结束时提前返回
func encode(ctx context.Context, p *problem.Problem) (*encoding, error) {
	c := logic.NewCCap(4*p.NumVars + 2)

	inputs := make([]z.Lit, p.NumVars)
	for i := range inputs {
		inputs[i] = c.Lit()
	}

	roots := make([]z.Lit, 0, 2*len(p.Rows))
	for _, row := range p.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lits, err := expand(row.Terms, inputs)
		if err != nil {
			return nil, fmt.Errorf("约束 %s: %w", row.Name, err)
		}
		cs := c.CardSort(lits)
		switch row.Op {
		case problem.OpEQ:
			roots = append(roots, cs.Leq(row.Bound), cs.Geq(row.Bound))
		case problem.OpLE:
			roots = append(roots, cs.Leq(row.Bound))
		case problem.OpGE:
			roots = append(roots, cs.Geq(row.Bound))
		}
	}

	objLits, err := expand(p.Objective.Terms, inputs)
	if err != nil {
		return nil, fmt.Errorf("目标: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cost := c.CardSort(objLits)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := gini.New()
	c.ToCnf(g)
	// 保证每个输入变量都在求解器中有值
	for _, m := range inputs {
		g.Add(m)
		g.Add(m.Not())
		g.Add(0)
	}
	for _, m := range roots {
		g.Add(m)
		g.Add(0)
	}

	return &encoding{g: g, inputs: inputs, cost: cost}, nil
}

// expand 按系数重复字面量，系数必须非负
func expand(terms []problem.Term, inputs []z.Lit) ([]z.Lit, error) {
	lits := make([]z.Lit, 0, len(terms))
	for _, t := range terms {
		if t.Coef < 0 {
			return nil, fmt.Errorf("变量 %d 的系数 %d 为负", t.Var, t.Coef)
		}
		for k := 0; k < t.Coef; k++ {
			lits = append(lits, inputs[t.Var])
		}
	}
	return lits, nil
}

// snapshot 读取当前模型的赋值
func (e *encoding) snapshot() []bool {
	out := make([]bool, len(e.inputs))
	for i, m := range e.inputs {
		out[i] = e.g.Value(m)
	}
	return out
}
