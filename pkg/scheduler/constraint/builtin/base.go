// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// BaseConstraint 约束基类
type BaseConstraint struct {
	name     string
	typ      constraint.Type
	category constraint.Category
	weight   int
}

// NewBaseConstraint 创建基础约束
func NewBaseConstraint(name string, typ constraint.Type, cat constraint.Category, weight int) *BaseConstraint {
	return &BaseConstraint{
		name:     name,
		typ:      typ,
		category: cat,
		weight:   weight,
	}
}

// Name 返回约束名称
func (c *BaseConstraint) Name() string { return c.name }

// Type 返回约束类型
func (c *BaseConstraint) Type() constraint.Type { return c.typ }

// Category 返回约束类别
func (c *BaseConstraint) Category() constraint.Category { return c.category }

// Weight 返回约束权重
func (c *BaseConstraint) Weight() int { return c.weight }

// Encode 默认不产生线性约束（子类需覆盖）
func (c *BaseConstraint) Encode(ctx *constraint.Context) []problem.Linear {
	return nil
}

// Evaluate 默认评估实现（子类需覆盖）
func (c *BaseConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return true, 0, nil
}

// CreateViolation 创建违反详情，worker/day/shift 为 -1 表示不涉及
func (c *BaseConstraint) CreateViolation(worker, day, shift int, message string, penalty int) constraint.ViolationDetail {
	severity := "warning"
	if c.category == constraint.CategoryHard {
		severity = "error"
	}

	v := constraint.ViolationDetail{
		ConstraintType: c.typ,
		ConstraintName: c.name,
		Message:        message,
		Severity:       severity,
		Penalty:        penalty,
	}
	if worker >= 0 {
		v.Worker = &worker
	}
	if day >= 0 {
		v.Day = &day
	}
	if shift >= 0 {
		v.Shift = &shift
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
