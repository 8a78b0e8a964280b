// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/shiftsat/pkg/report"
)

// ReportStore 排班报告归档
type ReportStore interface {
	Save(ctx context.Context, r *report.Report) error
	Get(ctx context.Context, id uuid.UUID) (*report.Report, error)
	List(ctx context.Context, filter ListFilter) ([]*ReportSummary, int, error)
	Name() string
}

// ReportSummary 报告摘要
type ReportSummary struct {
	ID               string `json:"id"`
	RunID            string `json:"run_id"`
	Status           string `json:"status"`
	Feasible         bool   `json:"feasible"`
	NumWorkers       int    `json:"num_workers"`
	NumDays          int    `json:"num_days"`
	NumShiftsPerDay  int    `json:"num_shifts_per_day"`
	UnwantedAssigned int    `json:"unwanted_assigned"`
	GeneratedAt      string `json:"generated_at"`
}

// summarize 由报告生成摘要
func summarize(r *report.Report) *ReportSummary {
	return &ReportSummary{
		ID:               r.ID,
		RunID:            r.RunID,
		Status:           r.Status,
		Feasible:         r.Feasible,
		NumWorkers:       r.NumWorkers,
		NumDays:          r.NumDays,
		NumShiftsPerDay:  r.NumShiftsPerDay,
		UnwantedAssigned: r.UnwantedAssigned,
		GeneratedAt:      r.GeneratedAt.Format(time.RFC3339),
	}
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	Status string `json:"status,omitempty"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset: 0,
		Limit:  20,
	}
}

// WithLimit 设置限制
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset 设置偏移
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithStatus 设置状态过滤
func (f ListFilter) WithStatus(status string) ListFilter {
	f.Status = status
	return f
}

// Normalize 修正非法分页参数
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}
