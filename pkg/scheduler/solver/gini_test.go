package solver

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/scheduler/problem"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// exactlyOne 1 名员工 x 1 天 x n 班次，必须恰好选一个班次
func exactlyOne(t *testing.T, n int, costs ...int) *problem.Problem {
	t.Helper()
	g, err := problem.NewGrid(1, 1, n)
	require.NoError(t, err)
	p := problem.New(g)
	vars := make([]problem.Var, n)
	for i := range vars {
		vars[i] = problem.Var(i)
	}
	p.Add(problem.Unit("cover", "one", vars, problem.OpEQ, 1))
	for i, c := range costs {
		if c != 0 {
			p.Minimize(problem.Term{Var: problem.Var(i), Coef: c})
		}
	}
	return p
}

func TestGiniSolver_Optimal(t *testing.T) {
	p := exactlyOne(t, 3, 1, 0, 1)

	result, err := NewGiniSolver().Solve(context.Background(), p, Options{TimeBudget: 5 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, result.Status)
	assert.Equal(t, 0, result.Objective)
	assert.Equal(t, []bool{false, true, false}, result.Assignment)
	assert.Empty(t, p.Violated(result.Assignment))
}

func TestGiniSolver_MinimizesWeightedObjective(t *testing.T) {
	// 所有选项都有代价，最优为代价最小的一项
	p := exactlyOne(t, 4, 3, 2, 5, 4)

	result, err := NewGiniSolver().Solve(context.Background(), p, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, result.Status)
	assert.Equal(t, 2, result.Objective)
	assert.True(t, result.Assignment[1])
	assert.GreaterOrEqual(t, result.Calls, 2)
}

func TestGiniSolver_Infeasible(t *testing.T) {
	g, _ := problem.NewGrid(1, 1, 2)
	p := problem.New(g)
	p.Add(problem.Unit("cover", "need3", []problem.Var{0, 1}, problem.OpGE, 3))

	result, err := NewGiniSolver().Solve(context.Background(), p, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusInfeasible, result.Status)
	assert.Nil(t, result.Assignment)
	assert.False(t, result.Status.HasSolution())
}

func TestGiniSolver_ConflictingRows(t *testing.T) {
	g, _ := problem.NewGrid(1, 1, 2)
	p := problem.New(g)
	p.Add(problem.Unit("a", "ge2", []problem.Var{0, 1}, problem.OpGE, 2))
	p.Add(problem.Unit("b", "le0", []problem.Var{1}, problem.OpLE, 0))

	result, err := NewGiniSolver().Solve(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, result.Status)
}

func TestGiniSolver_Faults(t *testing.T) {
	g, _ := problem.NewGrid(1, 1, 2)

	negative := problem.New(g)
	negative.Minimize(problem.Term{Var: 0, Coef: -1})

	outOfRange := problem.New(g)
	outOfRange.Add(problem.Unit("a", "bad", []problem.Var{7}, problem.OpLE, 1))

	tests := []struct {
		name string
		p    *problem.Problem
	}{
		{"空模型", nil},
		{"负系数", negative},
		{"变量越界", outOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGiniSolver().Solve(context.Background(), tt.p, Options{})
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeSolverFault, apperrors.GetCode(err))
		})
	}
}

func TestGiniSolver_DeadlineExpired(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result, err := NewGiniSolver().Solve(ctx, exactlyOne(t, 3, 1, 1, 1), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Nil(t, result.Assignment)
}

func TestGiniSolver_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGiniSolver().Solve(ctx, exactlyOne(t, 3, 1, 1, 1), Options{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCanceled, apperrors.GetCode(err))
}

// bruteForce 穷举求最优目标值，无解返回 -1
func bruteForce(p *problem.Problem) int {
	best := -1
	assignment := make([]bool, p.NumVars)
	for mask := 0; mask < 1<<p.NumVars; mask++ {
		for i := range assignment {
			assignment[i] = mask&(1<<i) != 0
		}
		if len(p.Violated(assignment)) > 0 {
			continue
		}
		if v := p.Objective.Eval(assignment); best < 0 || v < best {
			best = v
		}
	}
	return best
}

func TestGiniSolver_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ops := []problem.Op{problem.OpEQ, problem.OpLE, problem.OpGE}

	for i := 0; i < 40; i++ {
		g, _ := problem.NewGrid(2, 2, 2)
		p := problem.New(g)
		for r := 0; r < 3; r++ {
			var vars []problem.Var
			for v := 0; v < p.NumVars; v++ {
				if rng.Intn(2) == 0 {
					vars = append(vars, problem.Var(v))
				}
			}
			p.Add(problem.Unit("rand", "row", vars, ops[rng.Intn(len(ops))], rng.Intn(4)))
		}
		for v := 0; v < p.NumVars; v++ {
			if c := rng.Intn(3); c > 0 {
				p.Minimize(problem.Term{Var: problem.Var(v), Coef: c})
			}
		}

		expected := bruteForce(p)
		result, err := NewGiniSolver().Solve(context.Background(), p, Options{TimeBudget: 10 * time.Second})
		require.NoError(t, err)

		if expected < 0 {
			assert.Equal(t, StatusInfeasible, result.Status, "case %d", i)
			continue
		}
		require.Equal(t, StatusOptimal, result.Status, "case %d", i)
		assert.Equal(t, expected, result.Objective, "case %d", i)
		assert.Empty(t, p.Violated(result.Assignment), "case %d", i)
	}
}

// rosterLike 按排班模型的形状构造大模型：每个时段恰好 k 人、每天最多一班
func rosterLike(t *testing.T, workers, days, shifts, k int) *problem.Problem {
	t.Helper()
	g, err := problem.NewGrid(workers, days, shifts)
	require.NoError(t, err)
	p := problem.New(g)
	for d := 0; d < days; d++ {
		for s := 0; s < shifts; s++ {
			vars := make([]problem.Var, 0, workers)
			for w := 0; w < workers; w++ {
				vars = append(vars, g.Index(w, d, s))
			}
			p.Add(problem.Unit("cover", "slot", vars, problem.OpEQ, k))
		}
	}
	for w := 0; w < workers; w++ {
		for d := 0; d < days; d++ {
			vars := make([]problem.Var, 0, shifts)
			for s := 0; s < shifts; s++ {
				vars = append(vars, g.Index(w, d, s))
			}
			p.Add(problem.Unit("daily", "one", vars, problem.OpLE, 1))
		}
	}
	for v := 0; v < p.NumVars; v += 2 {
		p.Minimize(problem.Term{Var: problem.Var(v), Coef: 1})
	}
	return p
}

func TestGiniSolver_BudgetCoversEncoding(t *testing.T) {
	p := rosterLike(t, 40, 28, 3, 7)

	start := time.Now()
	result, err := NewGiniSolver().Solve(context.Background(), p, Options{TimeBudget: time.Millisecond})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Nil(t, result.Assignment)
	assert.Less(t, elapsed, 100*time.Millisecond, "编码阶段也应受时间预算约束")
}

func TestGiniSolver_CanceledDuringEncoding(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGiniSolver().Solve(ctx, rosterLike(t, 40, 28, 3, 7), Options{TimeBudget: time.Minute})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCanceled, apperrors.GetCode(err))
}

// pigeonhole n+1 个对象放入 n 个位置，未放入的对象计 1 分
//
// 第一个可行解很容易找到，但证明最优值 1 需要证明鸽巢原理，
// 规模稍大时在短时间预算内无法完成。
func pigeonhole(t *testing.T, n int) *problem.Problem {
	t.Helper()
	items := n + 1
	g, err := problem.NewGrid(1, items, n+1)
	require.NoError(t, err)
	p := problem.New(g)

	place := func(i, h int) problem.Var { return problem.Var(i*(n+1) + h) }
	skip := func(i int) problem.Var { return problem.Var(i*(n+1) + n) }

	for i := 0; i < items; i++ {
		vars := make([]problem.Var, 0, n+1)
		for h := 0; h < n; h++ {
			vars = append(vars, place(i, h))
		}
		vars = append(vars, skip(i))
		p.Add(problem.Unit("item", "placed-or-skipped", vars, problem.OpEQ, 1))
		p.Minimize(problem.Term{Var: skip(i), Coef: 1})
	}
	for h := 0; h < n; h++ {
		vars := make([]problem.Var, 0, items)
		for i := 0; i < items; i++ {
			vars = append(vars, place(i, h))
		}
		p.Add(problem.Unit("hole", "at-most-one", vars, problem.OpLE, 1))
	}
	return p
}

func TestGiniSolver_FeasibleWhenBudgetExpires(t *testing.T) {
	p := pigeonhole(t, 12)

	s := NewGiniSolver()
	s.SetPollInterval(time.Millisecond)
	result, err := s.Solve(context.Background(), p, Options{TimeBudget: 300 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, StatusFeasible, result.Status)
	assert.True(t, result.Status.HasSolution())
	require.Len(t, result.Assignment, p.NumVars)
	assert.Empty(t, p.Violated(result.Assignment), "未证明最优的解也必须满足全部约束")
	assert.Equal(t, p.Objective.Eval(result.Assignment), result.Objective)
	assert.GreaterOrEqual(t, result.Objective, 1)
	assert.GreaterOrEqual(t, result.Calls, 2)
	assert.Less(t, result.WallTime, 2*time.Second)
}
