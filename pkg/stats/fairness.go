// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/shiftsat/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 负荷公平性
	LoadGini     float64 `json:"load_gini"`     // 班次数基尼系数 (0=完全公平, 1=完全不公平)
	LoadVariance float64 `json:"load_variance"` // 班次数方差
	LoadStdDev   float64 `json:"load_std_dev"`  // 班次数标准差
	AvgLoad      float64 `json:"avg_load"`      // 人均班次数
	MaxLoad      int     `json:"max_load"`      // 最大班次数
	MinLoad      int     `json:"min_load"`      // 最小班次数
	LoadRange    int     `json:"load_range"`    // 班次数极差

	// 偏好公平性
	UnwantedTotal int     `json:"unwanted_total"` // 不希望时段的分配总数
	UnwantedGini  float64 `json:"unwanted_gini"`  // 不希望分配的基尼系数

	// 员工级别统计
	WorkerStats []WorkerStat `json:"worker_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// WorkerStat 员工统计
type WorkerStat struct {
	Worker    int     `json:"worker"`
	Name      string  `json:"name"`
	Shifts    int     `json:"shifts"`
	Unwanted  int     `json:"unwanted"`
	Deviation float64 `json:"deviation"` // 与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性
func (f *FairnessAnalyzer) Analyze(schedule *model.Schedule, workers []*model.Worker) *FairnessMetrics {
	if schedule == nil || len(workers) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	stats := f.calculateWorkerStats(schedule, workers)
	loads := lo.Map(stats, func(s WorkerStat, _ int) float64 { return float64(s.Shifts) })
	unwanted := lo.Map(stats, func(s WorkerStat, _ int) float64 { return float64(s.Unwanted) })

	mean := Mean(loads)
	variance := Variance(loads, mean)
	maxLoad := lo.MaxBy(stats, func(a, b WorkerStat) bool { return a.Shifts > b.Shifts }).Shifts
	minLoad := lo.MinBy(stats, func(a, b WorkerStat) bool { return a.Shifts < b.Shifts }).Shifts

	for i := range stats {
		if mean > 0 {
			stats[i].Deviation = (float64(stats[i].Shifts) - mean) / mean * 100
		}
	}

	metrics := &FairnessMetrics{
		LoadGini:      Gini(loads),
		LoadVariance:  variance,
		LoadStdDev:    math.Sqrt(variance),
		AvgLoad:       mean,
		MaxLoad:       maxLoad,
		MinLoad:       minLoad,
		LoadRange:     maxLoad - minLoad,
		UnwantedTotal: lo.SumBy(stats, func(s WorkerStat) int { return s.Unwanted }),
		UnwantedGini:  Gini(unwanted),
		WorkerStats:   stats,
	}
	metrics.OverallFairnessScore = f.calculateOverallScore(metrics)
	return metrics
}

// calculateWorkerStats 计算每个员工的统计
func (f *FairnessAnalyzer) calculateWorkerStats(schedule *model.Schedule, workers []*model.Worker) []WorkerStat {
	return lo.Map(workers, func(w *model.Worker, _ int) WorkerStat {
		slots := schedule.SlotsOf(w.ID())
		return WorkerStat{
			Worker: w.ID(),
			Name:   w.Name(),
			Shifts: len(slots),
			Unwanted: lo.CountBy(slots, func(s model.Slot) bool {
				return w.Unwanted(s.Day, s.Shift)
			}),
		}
	})
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(m *FairnessMetrics) float64 {
	const (
		loadWeight     = 0.5
		unwantedWeight = 0.3
		cvWeight       = 0.2
	)

	loadScore := (1 - m.LoadGini) * 100
	unwantedScore := (1 - m.UnwantedGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if m.AvgLoad > 0 {
		cvScore = math.Max(0, 100-m.LoadStdDev/m.AvgLoad*200)
	}

	score := loadWeight*loadScore + unwantedWeight*unwantedScore + cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// Comparison 两个排班方案的公平性对比，差值为 candidate - baseline
type Comparison struct {
	BaselineScore    float64 `json:"baseline_score"`
	CandidateScore   float64 `json:"candidate_score"`
	OverallScoreDiff float64 `json:"overall_score_diff"`
	LoadGiniDiff     float64 `json:"load_gini_diff"`
	UnwantedDiff     int     `json:"unwanted_diff"`
}

// CompareSchedules 比较两个排班方案的公平性
func (f *FairnessAnalyzer) CompareSchedules(baseline, candidate *model.Schedule, workers []*model.Worker) *Comparison {
	m1 := f.Analyze(baseline, workers)
	m2 := f.Analyze(candidate, workers)

	return &Comparison{
		BaselineScore:    m1.OverallFairnessScore,
		CandidateScore:   m2.OverallFairnessScore,
		OverallScoreDiff: m2.OverallFairnessScore - m1.OverallFairnessScore,
		LoadGiniDiff:     m2.LoadGini - m1.LoadGini,
		UnwantedDiff:     m2.UnwantedTotal - m1.UnwantedTotal,
	}
}

// Mean 计算平均值
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// Variance 计算方差
func Variance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := lo.SumBy(values, func(v float64) float64 {
		diff := v - mean
		return diff * diff
	})
	return sumSquares / float64(len(values))
}

// Gini 计算基尼系数
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := lo.Sum(sorted)
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}
