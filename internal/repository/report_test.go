package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/report"
)

func newReport(status string, at time.Time) *report.Report {
	return &report.Report{
		ID:               uuid.New().String(),
		RunID:            uuid.New().String(),
		Status:           status,
		Feasible:         status == "OPTIMAL",
		NumWorkers:       3,
		NumDays:          7,
		NumShiftsPerDay:  2,
		UnwantedAssigned: 1,
		GeneratedAt:      at,
	}
}

func TestMemoryReportStore_SaveGet(t *testing.T) {
	store := NewMemoryReportStore(10)
	ctx := context.Background()
	rep := newReport("OPTIMAL", time.Now())

	require.NoError(t, store.Save(ctx, rep))

	got, err := store.Get(ctx, uuid.MustParse(rep.ID))
	require.NoError(t, err)
	assert.Equal(t, rep, got)

	_, err = store.Get(ctx, uuid.New())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	bad := newReport("OPTIMAL", time.Now())
	bad.ID = "not-a-uuid"
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(store.Save(ctx, bad)))
}

func TestMemoryReportStore_Eviction(t *testing.T) {
	store := NewMemoryReportStore(2)
	ctx := context.Background()
	base := time.Now()

	reps := []*report.Report{
		newReport("OPTIMAL", base),
		newReport("OPTIMAL", base.Add(time.Second)),
		newReport("OPTIMAL", base.Add(2*time.Second)),
	}
	for _, r := range reps {
		require.NoError(t, store.Save(ctx, r))
	}

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, uuid.MustParse(reps[0].ID))
	assert.Error(t, err, "最早的报告应被淘汰")
}

func TestMemoryReportStore_List(t *testing.T) {
	store := NewMemoryReportStore(10)
	ctx := context.Background()
	base := time.Now()

	a := newReport("OPTIMAL", base)
	b := newReport("INFEASIBLE", base.Add(time.Second))
	c := newReport("OPTIMAL", base.Add(2*time.Second))
	for _, r := range []*report.Report{a, b, c} {
		require.NoError(t, store.Save(ctx, r))
	}

	tests := []struct {
		name     string
		filter   ListFilter
		expected []string
		total    int
	}{
		{"全部倒序", DefaultListFilter(), []string{c.ID, b.ID, a.ID}, 3},
		{"按状态过滤", DefaultListFilter().WithStatus("OPTIMAL"), []string{c.ID, a.ID}, 2},
		{"分页", DefaultListFilter().WithLimit(1).WithOffset(1), []string{b.ID}, 3},
		{"越界偏移", DefaultListFilter().WithOffset(10), []string{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)

			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

// TestPostgresReportStore 需要设置 TEST_DATABASE_DSN 并已执行建表
func TestPostgresReportStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresReportStore(db)
	ctx := context.Background()
	rep := newReport("OPTIMAL", time.Now().UTC().Truncate(time.Millisecond))

	require.NoError(t, store.Save(ctx, rep))
	got, err := store.Get(ctx, uuid.MustParse(rep.ID))
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, got.RunID)

	list, total, err := store.List(ctx, DefaultListFilter().WithStatus("OPTIMAL"))
	require.NoError(t, err)
	assert.Positive(t, total)
	assert.NotEmpty(t, list)
}
