package model

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
)

// Worker 参与排班的员工
//
// 偏好矩阵 unwanted[d][s] 为 true 表示员工不希望在第 d 天上第 s 个班次。
// Worker 在一次运行中不可变，构造时复制矩阵。
type Worker struct {
	id       int
	name     string
	unwanted [][]bool
	count    int
}

// NewWorker 创建员工并校验偏好矩阵尺寸
func NewWorker(id int, name string, unwanted [][]bool, numDays, numShifts int) (*Worker, error) {
	if id < 0 {
		return nil, apperrors.Validation("id", fmt.Sprintf("员工编号不能为负数: %d", id))
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("name", fmt.Sprintf("员工 %d 缺少姓名", id))
	}
	if numDays < 1 || numShifts < 1 {
		return nil, apperrors.Validation("preference", fmt.Sprintf("无效的偏好矩阵尺寸 %dx%d", numDays, numShifts))
	}
	if len(unwanted) != numDays {
		return nil, apperrors.Validation("preference",
			fmt.Sprintf("员工 %s 的偏好矩阵有 %d 天，期望 %d 天", name, len(unwanted), numDays))
	}

	w := &Worker{
		id:       id,
		name:     name,
		unwanted: make([][]bool, numDays),
	}
	for d, row := range unwanted {
		if len(row) != numShifts {
			return nil, apperrors.Validation("preference",
				fmt.Sprintf("员工 %s 第 %d 天有 %d 个班次，期望 %d 个", name, d, len(row), numShifts))
		}
		w.unwanted[d] = append([]bool(nil), row...)
		for _, u := range row {
			if u {
				w.count++
			}
		}
	}
	return w, nil
}

// NewWorkerFromSlots 根据不希望的时段列表创建员工
func NewWorkerFromSlots(id int, name string, slots []Slot, numDays, numShifts int) (*Worker, error) {
	if numDays < 1 || numShifts < 1 {
		return nil, apperrors.Validation("preference", fmt.Sprintf("无效的偏好矩阵尺寸 %dx%d", numDays, numShifts))
	}
	matrix := make([][]bool, numDays)
	for d := range matrix {
		matrix[d] = make([]bool, numShifts)
	}
	for _, s := range slots {
		if s.Day < 0 || s.Day >= numDays || s.Shift < 0 || s.Shift >= numShifts {
			return nil, apperrors.Validation("unwanted_slots",
				fmt.Sprintf("员工 %s 的时段 %s 超出范围", name, s))
		}
		matrix[s.Day][s.Shift] = true
	}
	return NewWorker(id, name, matrix, numDays, numShifts)
}

// ID 返回员工在本次运行中的序号
func (w *Worker) ID() int {
	return w.id
}

// Name 返回员工姓名
func (w *Worker) Name() string {
	return w.name
}

// NumDays 返回偏好矩阵的天数
func (w *Worker) NumDays() int {
	return len(w.unwanted)
}

// NumShifts 返回偏好矩阵每天的班次数
func (w *Worker) NumShifts() int {
	if len(w.unwanted) == 0 {
		return 0
	}
	return len(w.unwanted[0])
}

// Unwanted 是否不希望该时段
func (w *Worker) Unwanted(day, shift int) bool {
	return w.unwanted[day][shift]
}

// UnwantedCount 不希望的时段数
func (w *Worker) UnwantedCount() int {
	return w.count
}

// Preference 返回偏好矩阵的副本
func (w *Worker) Preference() [][]bool {
	out := make([][]bool, len(w.unwanted))
	for d, row := range w.unwanted {
		out[d] = append([]bool(nil), row...)
	}
	return out
}

// UnwantedSlots 返回不希望的时段列表
func (w *Worker) UnwantedSlots() []Slot {
	slots := make([]Slot, 0, w.count)
	for d, row := range w.unwanted {
		for s, u := range row {
			if u {
				slots = append(slots, Slot{Day: d, Shift: s})
			}
		}
	}
	return slots
}

// workerJSON 序列化形式
type workerJSON struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Unwanted [][]bool `json:"unwanted"`
}

// MarshalJSON 实现 json.Marshaler
func (w *Worker) MarshalJSON() ([]byte, error) {
	return json.Marshal(workerJSON{ID: w.id, Name: w.name, Unwanted: w.unwanted})
}

// WorkerSpec 员工输入（请求体、名册文件）
type WorkerSpec struct {
	Name          string   `json:"name" yaml:"name" validate:"required"`
	Unwanted      [][]bool `json:"unwanted,omitempty" yaml:"unwanted,omitempty"`
	UnwantedSlots []Slot   `json:"unwanted_slots,omitempty" yaml:"unwanted_slots,omitempty"`
}

// SpecOf 将员工转换回输入形式
func SpecOf(w *Worker) WorkerSpec {
	return WorkerSpec{Name: w.name, UnwantedSlots: w.UnwantedSlots()}
}

// BuildWorkers 按输入顺序构建员工，序号即下标
func BuildWorkers(specs []WorkerSpec, params *ScheduleParameters) ([]*Worker, error) {
	if len(specs) == 0 {
		return nil, apperrors.Validation("workers", "员工列表不能为空")
	}
	workers := make([]*Worker, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		if seen[spec.Name] {
			return nil, apperrors.Validation("workers", fmt.Sprintf("员工姓名重复: %s", spec.Name))
		}
		seen[spec.Name] = true
		if spec.Unwanted != nil && len(spec.UnwantedSlots) > 0 {
			return nil, apperrors.Validation("workers",
				fmt.Sprintf("员工 %s 不能同时指定 unwanted 与 unwanted_slots", spec.Name))
		}

		var (
			w   *Worker
			err error
		)
		if spec.Unwanted != nil {
			w, err = NewWorker(i, spec.Name, spec.Unwanted, params.NumDays, params.NumShiftsPerDay)
		} else {
			w, err = NewWorkerFromSlots(i, spec.Name, spec.UnwantedSlots, params.NumDays, params.NumShiftsPerDay)
		}
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}

// ValidateWorkers 校验员工序号与偏好矩阵尺寸和参数一致
func ValidateWorkers(workers []*Worker, params *ScheduleParameters) error {
	if len(workers) == 0 {
		return apperrors.Validation("workers", "员工列表不能为空")
	}
	for i, w := range workers {
		if w == nil {
			return apperrors.Validation("workers", fmt.Sprintf("第 %d 个员工为空", i))
		}
		if w.id != i {
			return apperrors.Validation("workers", fmt.Sprintf("员工 %s 序号为 %d，应为 %d", w.name, w.id, i))
		}
		if w.NumDays() != params.NumDays || w.NumShifts() != params.NumShiftsPerDay {
			return apperrors.Validation("preference",
				fmt.Sprintf("员工 %s 的偏好矩阵为 %dx%d，期望 %dx%d",
					w.name, w.NumDays(), w.NumShifts(), params.NumDays, params.NumShiftsPerDay))
		}
	}
	return nil
}
