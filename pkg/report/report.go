// Package report 生成排班报告
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/scheduler"
)

// Entry 某天的一条分配
type Entry struct {
	Worker   int    `json:"worker"`
	Name     string `json:"name"`
	Shift    int    `json:"shift"`
	Label    string `json:"label"`
	Unwanted bool   `json:"unwanted"`
}

// DayEntries 某天的全部分配，按员工、班次排序
type DayEntries struct {
	Day     int     `json:"day"`
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// Report 排班报告
//
// Feasible 为 false 时只有状态，没有任何分配。
type Report struct {
	ID                 string        `json:"id"`
	RunID              string        `json:"run_id"`
	Status             string        `json:"status"`
	Feasible           bool          `json:"feasible"`
	NumWorkers         int           `json:"num_workers"`
	NumDays            int           `json:"num_days"`
	NumShiftsPerDay    int           `json:"num_shifts_per_day"`
	Days               []DayEntries  `json:"days,omitempty"`
	UnwantedAssigned   int           `json:"unwanted_assigned"`
	MinimumAssignments int           `json:"minimum_assignments"`
	Loads              []int         `json:"loads,omitempty"`
	WallTime           time.Duration `json:"wall_time"`
	GeneratedAt        time.Time     `json:"generated_at"`
}

// FromOutcome 根据运行结果生成报告
func FromOutcome(out *scheduler.Outcome) (*Report, error) {
	if out == nil || out.Params == nil {
		return nil, apperrors.Internal("运行结果为空")
	}
	p := out.Params
	r := &Report{
		ID:                 uuid.New().String(),
		RunID:              out.RunID,
		Status:             string(out.Status),
		Feasible:           out.Feasible(),
		NumWorkers:         len(out.Workers),
		NumDays:            p.NumDays,
		NumShiftsPerDay:    p.NumShiftsPerDay,
		MinimumAssignments: len(out.Workers) * p.MinShiftsPerWorker,
		WallTime:           out.Duration,
		GeneratedAt:        time.Now(),
	}
	if !r.Feasible {
		return r, nil
	}

	s := out.Schedule
	r.Days = make([]DayEntries, p.NumDays)
	for d := range r.Days {
		var entries []Entry
		for w, worker := range out.Workers {
			for sh := 0; sh < p.NumShiftsPerDay; sh++ {
				if !s.Has(w, d, sh) {
					continue
				}
				entries = append(entries, Entry{
					Worker:   w,
					Name:     worker.Name(),
					Shift:    sh,
					Label:    ShiftLabel(sh, p.NumShiftsPerDay),
					Unwanted: worker.Unwanted(d, sh),
				})
			}
		}
		r.Days[d] = DayEntries{Day: d, Label: DayLabel(d), Entries: entries}
	}

	r.UnwantedAssigned = lo.SumBy(r.Days, func(day DayEntries) int {
		return lo.CountBy(day.Entries, func(e Entry) bool { return e.Unwanted })
	})
	r.Loads = s.Loads()
	if out.Statistics != nil {
		r.WallTime = out.Statistics.WallTime
	}
	return r, nil
}

// WriteText 按天输出文本报告
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	if !r.Feasible {
		fmt.Fprintf(&b, "未找到可行排班 (状态: %s)\n", r.Status)
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, day := range r.Days {
		fmt.Fprintf(&b, "第 %d 天 (%s)\n", day.Day, day.Label)
		for _, e := range day.Entries {
			mark := "希望"
			if e.Unwanted {
				mark = "不希望"
			}
			fmt.Fprintf(&b, "  员工 %d %s 上 %s (%s)\n", e.Worker, e.Name, e.Label, mark)
		}
		b.WriteString("\n")
	}

	b.WriteString("统计\n")
	fmt.Fprintf(&b, "  - 状态            : %s\n", r.Status)
	fmt.Fprintf(&b, "  - 不希望分配数    = %d (共 %d 个最少分配)\n", r.UnwantedAssigned, r.MinimumAssignments)
	fmt.Fprintf(&b, "  - 耗时            : %f s\n", r.WallTime.Seconds())

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON 输出 JSON 报告
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
