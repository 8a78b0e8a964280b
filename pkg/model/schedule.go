package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
)

// Assignment 一条分配：员工在某时段上班
type Assignment struct {
	Worker int `json:"worker" yaml:"worker"`
	Day    int `json:"day" yaml:"day"`
	Shift  int `json:"shift" yaml:"shift"`
}

// Slot 返回分配所在时段
func (a Assignment) Slot() Slot {
	return Slot{Day: a.Day, Shift: a.Shift}
}

// Schedule 排班结果，创建后只读
type Schedule struct {
	numWorkers int
	numDays    int
	numShifts  int
	slots      [][][]int // [day][shift] -> 升序员工序号
	byWorker   [][]Slot  // [worker] -> 按时间排序的时段
	total      int
}

// NewSchedule 根据分配列表构建排班
func NewSchedule(numWorkers, numDays, numShifts int, assignments []Assignment) (*Schedule, error) {
	if numWorkers < 1 || numDays < 1 || numShifts < 1 {
		return nil, apperrors.Validation("schedule",
			fmt.Sprintf("无效的排班尺寸 %dx%dx%d", numWorkers, numDays, numShifts))
	}

	s := &Schedule{
		numWorkers: numWorkers,
		numDays:    numDays,
		numShifts:  numShifts,
		slots:      make([][][]int, numDays),
		byWorker:   make([][]Slot, numWorkers),
	}
	for d := range s.slots {
		s.slots[d] = make([][]int, numShifts)
	}

	seen := make(map[Assignment]bool, len(assignments))
	for _, a := range assignments {
		if a.Worker < 0 || a.Worker >= numWorkers || a.Day < 0 || a.Day >= numDays || a.Shift < 0 || a.Shift >= numShifts {
			return nil, apperrors.Validation("assignments",
				fmt.Sprintf("分配 (员工%d, 第%d天, 班次%d) 超出范围", a.Worker, a.Day, a.Shift))
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		s.slots[a.Day][a.Shift] = append(s.slots[a.Day][a.Shift], a.Worker)
		s.byWorker[a.Worker] = append(s.byWorker[a.Worker], a.Slot())
		s.total++
	}

	for d := range s.slots {
		for sh := range s.slots[d] {
			sort.Ints(s.slots[d][sh])
		}
	}
	for w := range s.byWorker {
		slots := s.byWorker[w]
		sort.Slice(slots, func(i, j int) bool { return slots[i].Less(slots[j]) })
	}
	return s, nil
}

// NumWorkers 员工数
func (s *Schedule) NumWorkers() int { return s.numWorkers }

// NumDays 天数
func (s *Schedule) NumDays() int { return s.numDays }

// NumShifts 每天班次数
func (s *Schedule) NumShifts() int { return s.numShifts }

// Total 分配总数
func (s *Schedule) Total() int { return s.total }

// WorkersAt 返回时段上的员工序号（升序）
func (s *Schedule) WorkersAt(day, shift int) []int {
	return append([]int(nil), s.slots[day][shift]...)
}

// SlotsOf 返回员工的所有时段
func (s *Schedule) SlotsOf(worker int) []Slot {
	return append([]Slot(nil), s.byWorker[worker]...)
}

// Load 员工的班次数
func (s *Schedule) Load(worker int) int {
	return len(s.byWorker[worker])
}

// Loads 所有员工的班次数
func (s *Schedule) Loads() []int {
	loads := make([]int, s.numWorkers)
	for w := range s.byWorker {
		loads[w] = len(s.byWorker[w])
	}
	return loads
}

// ShiftsOnDay 员工在某天的班次数
func (s *Schedule) ShiftsOnDay(worker, day int) int {
	n := 0
	for _, sl := range s.byWorker[worker] {
		if sl.Day == day {
			n++
		}
	}
	return n
}

// Has 员工是否在该时段上班
func (s *Schedule) Has(worker, day, shift int) bool {
	for _, w := range s.slots[day][shift] {
		if w == worker {
			return true
		}
	}
	return false
}

// Assignments 按天、班次、员工顺序返回全部分配
func (s *Schedule) Assignments() []Assignment {
	out := make([]Assignment, 0, s.total)
	for d := range s.slots {
		for sh := range s.slots[d] {
			for _, w := range s.slots[d][sh] {
				out = append(out, Assignment{Worker: w, Day: d, Shift: sh})
			}
		}
	}
	return out
}

// UnwantedAssigned 统计落在员工不希望时段上的分配数
func (s *Schedule) UnwantedAssigned(workers []*Worker) int {
	n := 0
	for w, slots := range s.byWorker {
		for _, sl := range slots {
			if workers[w].Unwanted(sl.Day, sl.Shift) {
				n++
			}
		}
	}
	return n
}

// scheduleJSON 序列化形式
type scheduleJSON struct {
	NumWorkers  int          `json:"num_workers"`
	NumDays     int          `json:"num_days"`
	NumShifts   int          `json:"num_shifts_per_day"`
	Slots       [][][]int    `json:"slots"`
	Assignments []Assignment `json:"assignments"`
}

// MarshalJSON 实现 json.Marshaler
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(scheduleJSON{
		NumWorkers:  s.numWorkers,
		NumDays:     s.numDays,
		NumShifts:   s.numShifts,
		Slots:       s.slots,
		Assignments: s.Assignments(),
	})
}

// Statistics 一次成功求解的统计
type Statistics struct {
	Status           string        `json:"status"`
	UnwantedAssigned int           `json:"unwanted_assigned"`
	ObjectiveValue   int           `json:"objective_value"`
	WallTime         time.Duration `json:"wall_time"`
	SolverCalls      int           `json:"solver_calls"`
	Loads            []int         `json:"loads"`
	UnwantedByWorker []int         `json:"unwanted_by_worker"`
	MinLoad          int           `json:"min_load"`
	MaxLoad          int           `json:"max_load"`
	LoadGini         float64       `json:"load_gini"`
}
