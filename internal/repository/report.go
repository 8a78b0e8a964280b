package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/report"
)

// PostgresReportStore 基于 PostgreSQL 的报告归档
type PostgresReportStore struct {
	db DB
}

// NewPostgresReportStore 创建报告仓储
func NewPostgresReportStore(db DB) *PostgresReportStore {
	return &PostgresReportStore{db: db}
}

// Name 返回存储名称
func (r *PostgresReportStore) Name() string {
	return "postgres"
}

// Save 保存报告
func (r *PostgresReportStore) Save(ctx context.Context, rep *report.Report) error {
	id, err := uuid.Parse(rep.ID)
	if err != nil {
		return apperrors.InvalidInput("id", "报告ID不是合法的UUID")
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化报告失败")
	}

	query := `
		INSERT INTO schedule_reports (
			id, run_id, status, feasible, num_workers, num_days, num_shifts,
			unwanted_assigned, wall_time_ms, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		id, rep.RunID, rep.Status, rep.Feasible, rep.NumWorkers, rep.NumDays, rep.NumShiftsPerDay,
		rep.UnwantedAssigned, rep.WallTime.Milliseconds(), payload, rep.GeneratedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存报告失败")
	}
	return nil
}

// Get 根据ID获取报告
func (r *PostgresReportStore) Get(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM schedule_reports WHERE id = $1`, id).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("report", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询报告失败")
	}

	rep := &report.Report{}
	if err := json.Unmarshal(payload, rep); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "解析报告失败")
	}
	return rep, nil
}

// List 列出报告摘要，按生成时间倒序
func (r *PostgresReportStore) List(ctx context.Context, filter ListFilter) ([]*ReportSummary, int, error) {
	filter = filter.Normalize()

	where := ""
	var args []interface{}
	if filter.Status != "" {
		where = "WHERE status = $1"
		args = append(args, filter.Status)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedule_reports %s", where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计报告数量失败")
	}

	query := fmt.Sprintf(`
		SELECT id, run_id, status, feasible, num_workers, num_days, num_shifts,
			unwanted_assigned, created_at
		FROM schedule_reports %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询报告列表失败")
	}
	defer rows.Close()

	var summaries []*ReportSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历报告列表失败")
	}
	return summaries, total, nil
}

// scanSummary 扫描一行摘要
func scanSummary(row Scanner) (*ReportSummary, error) {
	s := &ReportSummary{}
	var createdAt time.Time
	err := row.Scan(
		&s.ID, &s.RunID, &s.Status, &s.Feasible, &s.NumWorkers, &s.NumDays, &s.NumShiftsPerDay,
		&s.UnwantedAssigned, &createdAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描报告记录失败")
	}
	s.GeneratedAt = createdAt.Format(time.RFC3339)
	return s, nil
}

// MemoryReportStore 内存报告归档，超过容量时淘汰最早的报告
type MemoryReportStore struct {
	capacity int
	reports  map[uuid.UUID]*report.Report
	order    []uuid.UUID
	mu       sync.RWMutex
}

// NewMemoryReportStore 创建内存报告仓储
func NewMemoryReportStore(capacity int) *MemoryReportStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryReportStore{
		capacity: capacity,
		reports:  make(map[uuid.UUID]*report.Report),
	}
}

// Name 返回存储名称
func (m *MemoryReportStore) Name() string {
	return "memory"
}

// Save 保存报告
func (m *MemoryReportStore) Save(_ context.Context, rep *report.Report) error {
	id, err := uuid.Parse(rep.ID)
	if err != nil {
		return apperrors.InvalidInput("id", "报告ID不是合法的UUID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reports[id]; !exists {
		m.order = append(m.order, id)
	}
	m.reports[id] = rep

	for len(m.order) > m.capacity {
		delete(m.reports, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

// Get 根据ID获取报告
func (m *MemoryReportStore) Get(_ context.Context, id uuid.UUID) (*report.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rep, ok := m.reports[id]
	if !ok {
		return nil, apperrors.NotFound("report", id.String())
	}
	return rep, nil
}

// List 列出报告摘要，按生成时间倒序
func (m *MemoryReportStore) List(_ context.Context, filter ListFilter) ([]*ReportSummary, int, error) {
	filter = filter.Normalize()

	m.mu.RLock()
	matched := make([]*report.Report, 0, len(m.reports))
	for _, id := range m.order {
		rep := m.reports[id]
		if filter.Status == "" || rep.Status == filter.Status {
			matched = append(matched, rep)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].GeneratedAt.After(matched[j].GeneratedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*ReportSummary{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, total)

	summaries := make([]*ReportSummary, 0, end-filter.Offset)
	for _, rep := range matched[filter.Offset:end] {
		summaries = append(summaries, summarize(rep))
	}
	return summaries, total, nil
}

// Len 返回已保存的报告数
func (m *MemoryReportStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}
