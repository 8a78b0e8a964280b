// Package solver 提供排班求解器
package solver

import (
	"context"
	"time"

	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// Status 求解状态
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"    // 找到并证明最优解
	StatusFeasible   Status = "FEASIBLE"   // 找到解，但时间预算内未证明最优
	StatusInfeasible Status = "INFEASIBLE" // 证明无解
	StatusUnknown    Status = "UNKNOWN"    // 时间预算内既未找到解也未证明无解
)

// HasSolution 状态是否附带赋值
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solver 求解器接口
type Solver interface {
	// Solve 求解 0/1 线性模型
	Solve(ctx context.Context, p *problem.Problem, opts Options) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Options 求解选项
type Options struct {
	// TimeBudget 单次求解的时间预算，0 表示只受 ctx 限制
	TimeBudget time.Duration `json:"time_budget"`
}

// Result 求解结果
type Result struct {
	Status     Status        `json:"status"`
	Assignment []bool        `json:"-"`
	Objective  int           `json:"objective"`
	WallTime   time.Duration `json:"wall_time"`
	Calls      int           `json:"calls"`
}
