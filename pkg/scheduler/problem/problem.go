// Package problem 定义求解器无关的 0/1 线性模型
package problem

import (
	"fmt"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
)

// Var 决策变量下标（从0开始）
type Var int

// Grid 员工 x 天 x 班次 的稠密变量空间
type Grid struct {
	Workers int `json:"workers"`
	Days    int `json:"days"`
	Shifts  int `json:"shifts"`
}

// NewGrid 创建变量空间
func NewGrid(workers, days, shifts int) (*Grid, error) {
	if workers < 1 || days < 1 || shifts < 1 {
		return nil, apperrors.Configuration(fmt.Sprintf("无效的变量空间 %dx%dx%d", workers, days, shifts))
	}
	return &Grid{Workers: workers, Days: days, Shifts: shifts}, nil
}

// Size 变量总数
func (g *Grid) Size() int {
	return g.Workers * g.Days * g.Shifts
}

// Contains 坐标是否在空间内
func (g *Grid) Contains(w, d, s int) bool {
	return w >= 0 && w < g.Workers && d >= 0 && d < g.Days && s >= 0 && s < g.Shifts
}

// Index 坐标对应的变量，越界时 panic
func (g *Grid) Index(w, d, s int) Var {
	if !g.Contains(w, d, s) {
		panic(fmt.Sprintf("problem: 坐标 (%d,%d,%d) 超出 %dx%dx%d", w, d, s, g.Workers, g.Days, g.Shifts))
	}
	return Var((w*g.Days+d)*g.Shifts + s)
}

// Coord 变量对应的坐标
func (g *Grid) Coord(v Var) (w, d, s int) {
	i := int(v)
	s = i % g.Shifts
	i /= g.Shifts
	d = i % g.Days
	w = i / g.Days
	return w, d, s
}

// Op 比较运算
type Op string

const (
	OpEQ Op = "="
	OpLE Op = "<="
	OpGE Op = ">="
)

// Term 线性项 coef * x
type Term struct {
	Var  Var `json:"var"`
	Coef int `json:"coef"`
}

// Linear 线性约束 sum(terms) op bound
type Linear struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Terms []Term `json:"terms"`
	Op    Op     `json:"op"`
	Bound int    `json:"bound"`
}

// Unit 由单位系数变量构造线性约束
func Unit(kind, name string, vars []Var, op Op, bound int) Linear {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	return Linear{Kind: kind, Name: name, Terms: terms, Op: op, Bound: bound}
}

// Eval 在赋值下求左侧的值
func (l Linear) Eval(assignment []bool) int {
	return evalTerms(l.Terms, assignment)
}

// Satisfied 赋值是否满足约束
func (l Linear) Satisfied(assignment []bool) bool {
	v := l.Eval(assignment)
	switch l.Op {
	case OpEQ:
		return v == l.Bound
	case OpLE:
		return v <= l.Bound
	case OpGE:
		return v >= l.Bound
	}
	return false
}

// String 返回约束的可读形式
func (l Linear) String() string {
	return fmt.Sprintf("%s[%s]: %d terms %s %d", l.Kind, l.Name, len(l.Terms), l.Op, l.Bound)
}

// Objective 最小化目标
type Objective struct {
	Terms []Term `json:"terms"`
}

// Eval 在赋值下求目标值
func (o Objective) Eval(assignment []bool) int {
	return evalTerms(o.Terms, assignment)
}

// MaxValue 目标可能取到的最大值（系数均非负时）
func (o Objective) MaxValue() int {
	total := 0
	for _, t := range o.Terms {
		if t.Coef > 0 {
			total += t.Coef
		}
	}
	return total
}

func evalTerms(terms []Term, assignment []bool) int {
	total := 0
	for _, t := range terms {
		if assignment[t.Var] {
			total += t.Coef
		}
	}
	return total
}

// Problem 求解器输入
type Problem struct {
	Grid      *Grid     `json:"grid"`
	NumVars   int       `json:"num_vars"`
	Rows      []Linear  `json:"rows"`
	Objective Objective `json:"objective"`
}

// New 创建空模型
func New(grid *Grid) *Problem {
	return &Problem{Grid: grid, NumVars: grid.Size()}
}

// Add 添加约束
func (p *Problem) Add(rows ...Linear) {
	p.Rows = append(p.Rows, rows...)
}

// Minimize 追加目标项
func (p *Problem) Minimize(terms ...Term) {
	p.Objective.Terms = append(p.Objective.Terms, terms...)
}

// Validate 检查变量下标与运算符
func (p *Problem) Validate() error {
	if p.NumVars < 1 {
		return fmt.Errorf("模型没有变量")
	}
	check := func(where string, terms []Term) error {
		for _, t := range terms {
			if t.Var < 0 || int(t.Var) >= p.NumVars {
				return fmt.Errorf("%s 引用了不存在的变量 %d", where, t.Var)
			}
		}
		return nil
	}
	for _, r := range p.Rows {
		switch r.Op {
		case OpEQ, OpLE, OpGE:
		default:
			return fmt.Errorf("%s 使用了未知运算符 %q", r.Name, r.Op)
		}
		if err := check(r.Name, r.Terms); err != nil {
			return err
		}
	}
	return check("objective", p.Objective.Terms)
}

// Violated 返回赋值违反的约束
func (p *Problem) Violated(assignment []bool) []Linear {
	var out []Linear
	for _, r := range p.Rows {
		if !r.Satisfied(assignment) {
			out = append(out, r)
		}
	}
	return out
}
