// shiftsat 排班引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/shiftsat/internal/config"
	"github.com/paiban/shiftsat/internal/database"
	"github.com/paiban/shiftsat/internal/handler"
	"github.com/paiban/shiftsat/internal/repository"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/scheduler"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	})

	fmt.Printf("shiftsat 排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	if err := run(cfg); err != nil {
		logger.Error().Err(err).Msg("服务异常退出")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := handler.Deps{
		Config:  cfg,
		Engine:  scheduler.NewEngine(scheduler.WithTimeBudget(cfg.Scheduler.TimeBudget)),
		Version: handler.VersionInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
	}

	// 报告归档：启用数据库时使用 Postgres，否则使用内存
	if cfg.Database.Enabled {
		db, err := database.New(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		deps.Store = repository.NewPostgresReportStore(db)
		deps.DB = db
	} else {
		deps.Store = repository.NewMemoryReportStore(0)
	}

	h := handler.NewHandler(deps)
	h.RegisterRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      h.Mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Str("archive", deps.Store.Name()).
			Dur("time_budget", cfg.Scheduler.TimeBudget).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// 优雅关闭
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}

	logger.Info().Msg("服务器已关闭")
	return nil
}
