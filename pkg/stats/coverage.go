package stats

import (
	"fmt"
	"strings"

	"github.com/paiban/shiftsat/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots      int     `json:"total_slots"`      // 时段总数
	Demand          int     `json:"demand"`           // 需求人次 K*D*S
	Assigned        int     `json:"assigned"`         // 已分配人次
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按天统计
	DailyCoverage []DayCoverage `json:"daily_coverage"`

	// 按班次统计
	ShiftCoverage map[int]float64 `json:"shift_coverage"`

	// 人力需求满足度
	DemandSatisfaction float64 `json:"demand_satisfaction"`

	// 问题识别
	Understaffed []SlotGap `json:"understaffed"` // 人手不足时段
	Overstaffed  []SlotGap `json:"overstaffed"`  // 人手超出时段
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day          int     `json:"day"`
	Required     int     `json:"required"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
	StaffCount   int     `json:"staff_count"` // 当天上班的不同员工数
}

// SlotGap 时段人数偏差
type SlotGap struct {
	Day      int `json:"day"`
	Shift    int `json:"shift"`
	Required int `json:"required"`
	Assigned int `json:"assigned"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct {
	coverage int // 每个时段需要的人数
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(coveragePerSlot int) *CoverageAnalyzer {
	return &CoverageAnalyzer{coverage: coveragePerSlot}
}

// Analyze 分析排班覆盖率
func (c *CoverageAnalyzer) Analyze(schedule *model.Schedule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		ShiftCoverage: make(map[int]float64),
	}
	if schedule == nil {
		metrics.OverallCoverage = 100
		metrics.DemandSatisfaction = 100
		return metrics
	}

	metrics.TotalSlots = schedule.NumDays() * schedule.NumShifts()
	metrics.Demand = metrics.TotalSlots * c.coverage
	metrics.Assigned = schedule.Total()

	satisfied := 0
	shiftAssigned := make(map[int]int)
	for d := 0; d < schedule.NumDays(); d++ {
		day := DayCoverage{Day: d, Required: schedule.NumShifts() * c.coverage}
		staff := make(map[int]bool)
		for s := 0; s < schedule.NumShifts(); s++ {
			ws := schedule.WorkersAt(d, s)
			n := len(ws)
			day.Assigned += n
			shiftAssigned[s] += min(n, c.coverage)
			satisfied += min(n, c.coverage)
			for _, w := range ws {
				staff[w] = true
			}

			gap := SlotGap{Day: d, Shift: s, Required: c.coverage, Assigned: n}
			switch {
			case n < c.coverage:
				metrics.Understaffed = append(metrics.Understaffed, gap)
			case n > c.coverage:
				metrics.Overstaffed = append(metrics.Overstaffed, gap)
			}
		}
		day.StaffCount = len(staff)
		day.CoverageRate = percent(day.Assigned, day.Required)
		metrics.DailyCoverage = append(metrics.DailyCoverage, day)
	}

	for s := 0; s < schedule.NumShifts(); s++ {
		metrics.ShiftCoverage[s] = percent(shiftAssigned[s], schedule.NumDays()*c.coverage)
	}
	metrics.OverallCoverage = percent(metrics.Assigned, metrics.Demand)
	metrics.DemandSatisfaction = percent(satisfied, metrics.Demand)
	return metrics
}

func percent(part, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(part) / float64(total) * 100
}

// GenerateCoverageReport 生成覆盖率报告
func (c *CoverageAnalyzer) GenerateCoverageReport(metrics *CoverageMetrics) string {
	var b strings.Builder
	b.WriteString("=== 覆盖率分析报告 ===\n\n")

	b.WriteString("【整体覆盖情况】\n")
	fmt.Fprintf(&b, "  时段总数: %d\n", metrics.TotalSlots)
	fmt.Fprintf(&b, "  需求人次: %d\n", metrics.Demand)
	fmt.Fprintf(&b, "  已分配人次: %d\n", metrics.Assigned)
	fmt.Fprintf(&b, "  覆盖率: %.1f%%\n", metrics.OverallCoverage)
	fmt.Fprintf(&b, "  需求满足度: %.1f%%\n\n", metrics.DemandSatisfaction)

	if len(metrics.Understaffed) > 0 {
		b.WriteString("【人手不足时段】\n")
		for _, g := range metrics.Understaffed {
			fmt.Fprintf(&b, "  - 第%d天 班次%d (需要%d人，仅有%d人)\n", g.Day, g.Shift, g.Required, g.Assigned)
		}
		b.WriteString("\n")
	}

	if len(metrics.Overstaffed) > 0 {
		b.WriteString("【人手超出时段】\n")
		for _, g := range metrics.Overstaffed {
			fmt.Fprintf(&b, "  - 第%d天 班次%d (需要%d人，安排了%d人)\n", g.Day, g.Shift, g.Required, g.Assigned)
		}
	}

	return b.String()
}
