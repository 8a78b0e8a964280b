package constraint

import (
	"sort"
	"sync"

	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.SchedulerLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewSchedulerLogger(),
	}
}

// Register 注册约束
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 同类型约束直接替换
	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)

	// 硬约束在前，权重高的在前
	sort.SliceStable(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// GetByCategory 按类别获取约束
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// Encode 将硬约束编码进模型，软约束进入目标函数
func (m *Manager) Encode(ctx *Context, p *problem.Problem) {
	for _, c := range m.GetAll() {
		if c.Category() == CategoryHard {
			p.Add(c.Encode(ctx)...)
			continue
		}
		if obj, ok := c.(ObjectiveTerm); ok {
			p.Minimize(obj.Terms(ctx)...)
		}
	}
}

// Evaluate 评估所有约束，ctx 需附带排班结果
func (m *Manager) Evaluate(ctx *Context) *Result {
	constraints := m.GetAll()

	result := &Result{
		IsValid:        true,
		HardViolations: make([]ViolationDetail, 0),
		SoftViolations: make([]ViolationDetail, 0),
	}

	maxPenalty := 0
	for _, c := range constraints {
		valid, penalty, details := c.Evaluate(ctx)
		maxPenalty += c.Weight() * ctx.Params.Demand()

		result.TotalPenalty += penalty
		for _, d := range details {
			if c.Category() == CategoryHard {
				result.HardViolations = append(result.HardViolations, d)
				m.logger.ConstraintViolation(c.Name(), d.Message)
			} else {
				result.SoftViolations = append(result.SoftViolations, d)
			}
		}
		if !valid && c.Category() == CategoryHard {
			result.IsValid = false
		}
	}

	result.CalculateScore(maxPenalty)
	return result
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary 返回约束摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard := 0
	soft := 0
	for _, c := range m.constraints {
		if c.Category() == CategoryHard {
			hard++
		} else {
			soft++
		}
	}

	return map[string]interface{}{
		"total": len(m.constraints),
		"hard":  hard,
		"soft":  soft,
	}
}
