// Package constraints 约束库：对外描述引擎支持的约束
package constraints

import (
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint"
	"github.com/paiban/shiftsat/pkg/scheduler/constraint/builtin"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"` // 对应 ScheduleParameters 的 JSON 字段
	Type        string `json:"type"` // int, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"`     // hard 硬约束, soft 软约束
	Category    string            `json:"category"` // 分类
	Description string            `json:"description"`
	Encoding    string            `json:"encoding"` // 线性形式
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
	Active  []ActiveConstraint     `json:"active,omitempty"`
}

// ActiveConstraint 给定参数下实际生效的约束
type ActiveConstraint struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}

// GetLibrary 获取完整的约束库
func GetLibrary() []ConstraintDefinition {
	return []ConstraintDefinition{
		{
			Name:        string(constraint.TypeSlotCoverage),
			DisplayName: "时段覆盖",
			Type:        "hard",
			Category:    "人员配置",
			Description: "每个时段（某天的某个班次）必须恰好安排 K 名员工。",
			Encoding:    "∀(d,s): Σ_w x[w][d][s] = K",
			Params: []ConstraintParam{
				{Name: "coverage_per_slot", Type: "int", Description: "每个时段的人数", Default: "1", Min: "1"},
			},
		},
		{
			Name:        string(constraint.TypeOneShiftPerDay),
			DisplayName: "每天最多一班",
			Type:        "hard",
			Category:    "休息保障",
			Description: "开启后每名员工每天最多安排一个班次。每天只有一个班次时不产生约束。",
			Encoding:    "∀(w,d): Σ_s x[w][d][s] ≤ 1",
			Params: []ConstraintParam{
				{Name: "one_shift_per_day", Type: "bool", Description: "是否开启", Default: "false"},
			},
		},
		{
			Name:        string(constraint.TypeMinLoad),
			DisplayName: "最小负荷",
			Type:        "hard",
			Category:    "公平性",
			Description: "每名员工在整个周期内至少安排 M 个班次。M 为 0 时不产生约束。",
			Encoding:    "∀w: Σ_(d,s) x[w][d][s] ≥ M",
			Params: []ConstraintParam{
				{Name: "min_shifts_per_worker", Type: "int", Description: "最少班次数", Default: "0", Min: "0"},
			},
		},
		{
			Name:        string(constraint.TypeMaxLoad),
			DisplayName: "最大负荷",
			Type:        "hard",
			Category:    "公平性",
			Description: "每名员工在整个周期内最多安排的班次数。未配置时不限制。",
			Encoding:    "∀w: Σ_(d,s) x[w][d][s] ≤ max",
			Params: []ConstraintParam{
				{Name: "max_shifts_per_worker", Type: "int", Description: "最多班次数", Min: "0"},
			},
		},
		{
			Name:        string(constraint.TypeWorkerPreference),
			DisplayName: "员工偏好",
			Type:        "soft",
			Category:    "偏好",
			Description: "最小化安排在员工标记为不希望的时段上的次数，即目标函数。",
			Encoding:    "min Σ_(w,d,s) unwanted[w][d][s] · x[w][d][s]",
			Params:      []ConstraintParam{},
		},
	}
}

// Find 按名称查找约束定义
func Find(name string) (ConstraintDefinition, bool) {
	for _, def := range GetLibrary() {
		if def.Name == name {
			return def, true
		}
	}
	return ConstraintDefinition{}, false
}

// ActiveFor 返回给定参数下注册的约束，顺序与建模顺序一致
func ActiveFor(params *model.ScheduleParameters) []ActiveConstraint {
	manager := builtin.NewManagerFor(params)
	all := manager.GetAll()
	out := make([]ActiveConstraint, 0, len(all))
	for _, c := range all {
		out = append(out, ActiveConstraint{
			Name:     c.Name(),
			Type:     string(c.Type()),
			Category: string(c.Category()),
			Weight:   c.Weight(),
		})
	}
	return out
}
