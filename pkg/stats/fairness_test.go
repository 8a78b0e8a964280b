package stats

import (
	"math"
	"testing"

	"github.com/paiban/shiftsat/pkg/model"
)

func testWorkers(t *testing.T, n, days, shifts int, unwanted map[int][]model.Slot) []*model.Worker {
	t.Helper()
	workers := make([]*model.Worker, n)
	for i := range workers {
		w, err := model.NewWorkerFromSlots(i, string(rune('A'+i)), unwanted[i], days, shifts)
		if err != nil {
			t.Fatalf("NewWorkerFromSlots: %v", err)
		}
		workers[i] = w
	}
	return workers
}

func TestFairnessAnalyzer_Analyze(t *testing.T) {
	analyzer := NewFairnessAnalyzer()
	workers := testWorkers(t, 2, 2, 1, map[int][]model.Slot{0: {{Day: 0, Shift: 0}}})

	schedule, _ := model.NewSchedule(2, 2, 1, []model.Assignment{
		{Worker: 0, Day: 0, Shift: 0},
		{Worker: 0, Day: 1, Shift: 0},
		{Worker: 1, Day: 1, Shift: 0},
	})

	metrics := analyzer.Analyze(schedule, workers)

	if metrics == nil {
		t.Fatal("Metrics should not be nil")
	}

	// 员工A有2个班次，员工B有1个，应有一定差异
	if metrics.LoadGini <= 0 || metrics.LoadGini > 1 {
		t.Errorf("Gini coefficient should be in (0,1], got %f", metrics.LoadGini)
	}
	if metrics.MaxLoad != 2 || metrics.MinLoad != 1 || metrics.LoadRange != 1 {
		t.Errorf("max/min/range = %d/%d/%d", metrics.MaxLoad, metrics.MinLoad, metrics.LoadRange)
	}
	if metrics.UnwantedTotal != 1 {
		t.Errorf("UnwantedTotal = %d, expected 1", metrics.UnwantedTotal)
	}
	if len(metrics.WorkerStats) != 2 {
		t.Errorf("Expected 2 worker stats, got %d", len(metrics.WorkerStats))
	}
	if metrics.WorkerStats[0].Unwanted != 1 || metrics.WorkerStats[1].Unwanted != 0 {
		t.Errorf("WorkerStats = %+v", metrics.WorkerStats)
	}
}

func TestFairnessAnalyzer_CompareSchedules(t *testing.T) {
	analyzer := NewFairnessAnalyzer()
	workers := testWorkers(t, 2, 2, 1, map[int][]model.Slot{0: {{Day: 0, Shift: 0}}})

	// A 在不希望的时段上班，且负荷不均
	baseline, _ := model.NewSchedule(2, 2, 1, []model.Assignment{
		{Worker: 0, Day: 0, Shift: 0},
		{Worker: 0, Day: 1, Shift: 0},
	})
	// 每人一班，A 避开 d0
	candidate, _ := model.NewSchedule(2, 2, 1, []model.Assignment{
		{Worker: 1, Day: 0, Shift: 0},
		{Worker: 0, Day: 1, Shift: 0},
	})

	c := analyzer.CompareSchedules(baseline, candidate, workers)
	if c.UnwantedDiff != -1 {
		t.Errorf("UnwantedDiff = %d, expected -1", c.UnwantedDiff)
	}
	if c.LoadGiniDiff >= 0 {
		t.Errorf("LoadGiniDiff = %f, expected < 0", c.LoadGiniDiff)
	}
	if c.OverallScoreDiff <= 0 || c.CandidateScore <= c.BaselineScore {
		t.Errorf("候选方案应更公平: %+v", c)
	}
	if math.Abs(c.CandidateScore-c.BaselineScore-c.OverallScoreDiff) > 1e-9 {
		t.Errorf("OverallScoreDiff 与两者得分不一致: %+v", c)
	}
}

func TestFairnessAnalyzer_EmptyInput(t *testing.T) {
	analyzer := NewFairnessAnalyzer()

	metrics := analyzer.Analyze(nil, nil)

	if metrics.OverallFairnessScore != 100 {
		t.Errorf("Empty input should have 100 score, got %f", metrics.OverallFairnessScore)
	}
}

func TestFairnessAnalyzer_PerfectFairness(t *testing.T) {
	analyzer := NewFairnessAnalyzer()
	workers := testWorkers(t, 2, 2, 1, nil)
	schedule, _ := model.NewSchedule(2, 2, 1, []model.Assignment{
		{Worker: 0, Day: 0, Shift: 0},
		{Worker: 1, Day: 1, Shift: 0},
	})

	metrics := analyzer.Analyze(schedule, workers)

	if metrics.LoadGini != 0 {
		t.Errorf("Perfect fairness should have 0 gini, got %f", metrics.LoadGini)
	}
	if math.Abs(metrics.OverallFairnessScore-100) > 1e-9 {
		t.Errorf("OverallFairnessScore = %f, expected 100", metrics.OverallFairnessScore)
	}
}

func TestGini(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"空", nil, 0},
		{"全零", []float64{0, 0, 0}, 0},
		{"完全平均", []float64{3, 3, 3}, 0},
		{"一人独占", []float64{0, 0, 0, 4}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Gini(tt.values); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Gini() = %f, expected %f", got, tt.expected)
			}
		})
	}
}

func TestMeanVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(values)
	if mean != 5 {
		t.Errorf("Mean() = %f, expected 5", mean)
	}
	if v := Variance(values, mean); v != 4 {
		t.Errorf("Variance() = %f, expected 4", v)
	}
}
