// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	API       APIConfig       `envPrefix:"API_"`
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name            string        `env:"NAME" envDefault:"shiftsat"`
	Env             string        `env:"ENV" envDefault:"development"`
	Port            int           `env:"PORT" envDefault:"7012"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig 报告归档数据库配置，Enabled 为 false 时报告只保存在内存
type DatabaseConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"false"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"shiftsat"`
	User            string        `env:"USER" envDefault:"shiftsat"`
	Password        string        `env:"PASSWORD"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit   int           `env:"RATE_LIMIT" envDefault:"100"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
	CORSEnabled bool          `env:"CORS_ENABLED" envDefault:"true"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	// APIKeys 非空时 /api/v1 下的接口需要携带其中之一
	APIKeys     []string      `env:"KEYS" envSeparator:","`
}

// SchedulerConfig 排班引擎配置
type SchedulerConfig struct {
	// TimeBudget 单次求解时间预算，0 表示不限
	TimeBudget       time.Duration `env:"TIME_BUDGET" envDefault:"30s"`
	BatchParallelism int           `env:"BATCH_PARALLELISM" envDefault:"4"`
	MaxBatchSize     int           `env:"MAX_BATCH_SIZE" envDefault:"20"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `env:"LEVEL" envDefault:"info"`
	Format   string `env:"FORMAT" envDefault:"console"`
	Output   string `env:"OUTPUT" envDefault:"stdout"`
	FilePath string `env:"FILE_PATH"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载配置，存在 .env 文件时先加载它
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("加载 %s 失败: %w", f, err)
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("无效的端口: %d", c.App.Port)
	}
	if c.Scheduler.TimeBudget < 0 {
		return fmt.Errorf("求解时间预算不能为负: %s", c.Scheduler.TimeBudget)
	}
	if c.Scheduler.BatchParallelism < 1 {
		return fmt.Errorf("批量并行度必须大于0: %d", c.Scheduler.BatchParallelism)
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
