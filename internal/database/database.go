// Package database 提供数据库连接和管理
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paiban/shiftsat/internal/config"
	"github.com/paiban/shiftsat/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// DB 数据库连接封装
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New 创建新的数据库连接
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	// 配置连接池
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 测试连接
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接成功")

	return &DB{DB: db, cfg: cfg}, nil
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	if db.DB != nil {
		logger.Info().Msg("关闭数据库连接")
		return db.DB.Close()
	}
	return nil
}

// schema 报告归档表结构
const schema = `
CREATE TABLE IF NOT EXISTS schedule_reports (
	id                UUID PRIMARY KEY,
	run_id            TEXT        NOT NULL,
	status            TEXT        NOT NULL,
	feasible          BOOLEAN     NOT NULL,
	num_workers       INTEGER     NOT NULL,
	num_days          INTEGER     NOT NULL,
	num_shifts        INTEGER     NOT NULL,
	unwanted_assigned INTEGER     NOT NULL,
	wall_time_ms      BIGINT      NOT NULL,
	payload           JSONB       NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_schedule_reports_created_at ON schedule_reports (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_schedule_reports_status ON schedule_reports (status);
`

// Migrate 创建报告归档表
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("初始化表结构失败: %w", err)
	}
	logger.Info().Msg("数据库表结构已就绪")
	return nil
}

// Health 健康检查
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Stats 返回数据库统计信息
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext 执行SQL语句，慢查询记录警告
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	logSlow(query, time.Since(start))
	return result, err
}

// QueryContext 执行查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	logSlow(query, time.Since(start))
	return rows, err
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := db.DB.QueryRowContext(ctx, query, args...)
	logSlow(query, time.Since(start))
	return row
}

// slowQueryThreshold 慢查询阈值
const slowQueryThreshold = 100 * time.Millisecond

// logSlow 记录慢查询
func logSlow(query string, duration time.Duration) {
	if duration > slowQueryThreshold {
		logger.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("慢SQL查询")
	}
}

// truncateQuery 截断长查询
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
