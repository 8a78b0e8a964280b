// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

type ctxKey string

// RequestIDKey 请求ID在上下文中的键
const RequestIDKey ctxKey = "request_id"

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// SchedulerLogger 排班引擎专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 创建排班引擎日志器
func NewSchedulerLogger() *SchedulerLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// StartRun 记录一次排班运行开始
func (l *SchedulerLogger) StartRun(runID string, workers, days, shifts int) {
	l.base.Info().
		Str("run_id", runID).
		Int("workers", workers).
		Int("days", days).
		Int("shifts_per_day", shifts).
		Msg("开始生成排班")
}

// PhaseChange 记录运行阶段切换
func (l *SchedulerLogger) PhaseChange(runID, from, to string) {
	l.base.Debug().
		Str("run_id", runID).
		Str("from", from).
		Str("to", to).
		Msg("阶段切换")
}

// ModelBuilt 记录模型规模
func (l *SchedulerLogger) ModelBuilt(runID string, vars, rows, objectiveTerms int) {
	l.base.Debug().
		Str("run_id", runID).
		Int("vars", vars).
		Int("rows", rows).
		Int("objective_terms", objectiveTerms).
		Msg("模型构建完成")
}

// SolverImproved 记录求解器找到更优解
func (l *SchedulerLogger) SolverImproved(solver string, objective, call int) {
	l.base.Debug().
		Str("solver", solver).
		Int("objective", objective).
		Int("call", call).
		Msg("找到更优解")
}

// ConstraintViolation 记录约束违反
func (l *SchedulerLogger) ConstraintViolation(constraint, details string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("details", details).
		Msg("约束违反")
}

// RunComplete 记录排班完成
func (l *SchedulerLogger) RunComplete(runID, status string, duration time.Duration, unwanted int) {
	l.base.Info().
		Str("run_id", runID).
		Str("status", status).
		Dur("duration", duration).
		Int("unwanted", unwanted).
		Msg("排班生成完成")
}

// RunFailed 记录排班失败
func (l *SchedulerLogger) RunFailed(runID, status string, err error) {
	ev := l.base.Warn().Str("run_id", runID).Str("status", status)
	if err != nil {
		ev = l.base.Error().Str("run_id", runID).Str("status", status).Err(err)
	}
	ev.Msg("排班生成失败")
}
