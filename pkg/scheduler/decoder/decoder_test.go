package decoder

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/scheduler/builder"
	"github.com/paiban/shiftsat/pkg/scheduler/solver"
)

// buildModel 2 名员工 x 1 天 x 2 班次，A 不希望班次0
func buildModel(t *testing.T) *builder.Model {
	t.Helper()
	params := &model.ScheduleParameters{
		NumDays:            1,
		NumShiftsPerDay:    2,
		CoveragePerSlot:    1,
		MinShiftsPerWorker: 1,
		MaxShiftsPerWorker: model.IntPtr(1),
		OneShiftPerDay:     true,
	}
	workers, err := model.BuildWorkers([]model.WorkerSpec{
		{Name: "A", UnwantedSlots: []model.Slot{{Day: 0, Shift: 0}}},
		{Name: "B"},
	}, params)
	require.NoError(t, err)

	m, err := builder.Build(workers, params)
	require.NoError(t, err)
	return m
}

// assign 根据 (员工,班次) 对构造赋值
func assign(m *builder.Model, pairs ...[2]int) []bool {
	out := make([]bool, m.Problem.NumVars)
	for _, p := range pairs {
		out[m.Problem.Grid.Index(p[0], 0, p[1])] = true
	}
	return out
}

func TestDecode(t *testing.T) {
	m := buildModel(t)
	res := &solver.Result{
		Status:     solver.StatusOptimal,
		Assignment: assign(m, [2]int{0, 1}, [2]int{1, 0}),
		Objective:  0,
		WallTime:   3 * time.Millisecond,
		Calls:      1,
	}

	decoded, err := Decode(m, res)
	require.NoError(t, err)
	require.True(t, decoded.Feasible())

	expected := []model.Assignment{
		{Worker: 1, Day: 0, Shift: 0},
		{Worker: 0, Day: 0, Shift: 1},
	}
	if diff := cmp.Diff(expected, decoded.Schedule.Assignments()); diff != "" {
		t.Errorf("assignments mismatch (-want +got):\n%s", diff)
	}

	st := decoded.Statistics
	assert.Equal(t, "OPTIMAL", st.Status)
	assert.Equal(t, 0, st.UnwantedAssigned)
	assert.Equal(t, 3*time.Millisecond, st.WallTime)
	assert.Equal(t, []int{1, 1}, st.Loads)
	assert.Equal(t, []int{0, 0}, st.UnwantedByWorker)
	assert.Equal(t, 0.0, st.LoadGini)
}

func TestDecode_UnwantedRoundTrip(t *testing.T) {
	m := buildModel(t)
	res := &solver.Result{
		Status:     solver.StatusFeasible,
		Assignment: assign(m, [2]int{0, 0}, [2]int{1, 1}),
		Objective:  1,
	}

	decoded, err := Decode(m, res)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Statistics.UnwantedAssigned)
	assert.Equal(t, []int{1, 0}, decoded.Statistics.UnwantedByWorker)
	assert.Equal(t, solver.StatusFeasible, decoded.Status)
}

func TestDecode_NoSolution(t *testing.T) {
	m := buildModel(t)
	for _, status := range []solver.Status{solver.StatusInfeasible, solver.StatusUnknown} {
		t.Run(string(status), func(t *testing.T) {
			decoded, err := Decode(m, &solver.Result{Status: status, Objective: -1})
			require.NoError(t, err)
			assert.False(t, decoded.Feasible())
			assert.Nil(t, decoded.Statistics)
			assert.Equal(t, status, decoded.Status)
		})
	}
}

func TestDecode_InternalErrors(t *testing.T) {
	m := buildModel(t)

	tests := []struct {
		name string
		res  *solver.Result
	}{
		{"结果为空", nil},
		{"赋值长度不符", &solver.Result{Status: solver.StatusOptimal, Assignment: []bool{true}}},
		{"违反覆盖", &solver.Result{Status: solver.StatusOptimal, Assignment: assign(m, [2]int{1, 0})}},
		{"目标值不一致", &solver.Result{
			Status:     solver.StatusOptimal,
			Assignment: assign(m, [2]int{0, 0}, [2]int{1, 1}),
			Objective:  0,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(m, tt.res)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInternal, apperrors.GetCode(err))
		})
	}
}
