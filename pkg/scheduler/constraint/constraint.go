// Package constraint 定义约束接口和管理器
package constraint

import (
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// Type 约束类型标识
type Type string

const (
	// 硬约束类型
	TypeSlotCoverage   Type = "slot_coverage"
	TypeOneShiftPerDay Type = "one_shift_per_day"
	TypeMinLoad        Type = "min_shifts_per_worker"
	TypeMaxLoad        Type = "max_shifts_per_worker"

	// 软约束类型
	TypeWorkerPreference Type = "worker_preference"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（进入目标函数）
)

// Constraint 约束接口
//
// 硬约束通过 Encode 生成线性约束交给求解器，
// 同时通过 Evaluate 对解码后的排班做复核。
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Category 返回约束类别
	Category() Category

	// Weight 返回约束权重 (1-100)
	Weight() int

	// Encode 生成线性约束
	Encode(ctx *Context) []problem.Linear

	// Evaluate 评估整个排班方案
	// 返回：是否满足、惩罚值、违反详情
	Evaluate(ctx *Context) (valid bool, penalty int, details []ViolationDetail)
}

// ObjectiveTerm 为目标函数贡献项的软约束
type ObjectiveTerm interface {
	Terms(ctx *Context) []problem.Term
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type   `json:"constraint_type"`
	ConstraintName string `json:"constraint_name"`
	Worker         *int   `json:"worker,omitempty"`
	Day            *int   `json:"day,omitempty"`
	Shift          *int   `json:"shift,omitempty"`
	Message        string `json:"message"`
	Severity       string `json:"severity"` // error/warning
	Penalty        int    `json:"penalty"`
}

// Context 约束上下文
type Context struct {
	Workers  []*model.Worker
	Params   *model.ScheduleParameters
	Grid     *problem.Grid
	Schedule *model.Schedule
}

// NewContext 创建建模用上下文
func NewContext(workers []*model.Worker, params *model.ScheduleParameters, grid *problem.Grid) *Context {
	return &Context{Workers: workers, Params: params, Grid: grid}
}

// WithSchedule 返回附带排班结果的上下文副本
func (c *Context) WithSchedule(s *model.Schedule) *Context {
	cp := *c
	cp.Schedule = s
	return &cp
}

// WorkerName 返回员工姓名
func (c *Context) WorkerName(w int) string {
	if w >= 0 && w < len(c.Workers) && c.Workers[w] != nil {
		return c.Workers[w].Name()
	}
	return ""
}

// Result 约束评估结果
type Result struct {
	IsValid        bool              `json:"is_valid"`
	TotalPenalty   int               `json:"total_penalty"`
	HardViolations []ViolationDetail `json:"hard_violations"`
	SoftViolations []ViolationDetail `json:"soft_violations"`
	Score          float64           `json:"score"` // 0-100
}

// CalculateScore 计算约束满足度得分
func (r *Result) CalculateScore(maxPenalty int) {
	if maxPenalty == 0 {
		r.Score = 100.0
		return
	}
	r.Score = 100.0 * float64(maxPenalty-r.TotalPenalty) / float64(maxPenalty)
	if r.Score < 0 {
		r.Score = 0
	}
}
