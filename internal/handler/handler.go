// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/shiftsat/internal/config"
	"github.com/paiban/shiftsat/internal/constraints"
	"github.com/paiban/shiftsat/internal/metrics"
	"github.com/paiban/shiftsat/internal/middleware"
	"github.com/paiban/shiftsat/internal/repository"
	"github.com/paiban/shiftsat/internal/security"
	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/scheduler"
)

// maxBodyBytes 请求体大小上限
const maxBodyBytes = 4 << 20

// VersionInfo 构建信息
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// HealthChecker 可做健康检查的依赖
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps 处理器依赖
//
// Store 为空时报告归档接口返回 NOT_FOUND；DB 为空时健康检查跳过数据库。
type Deps struct {
	Config  *config.Config
	Engine  *scheduler.Engine
	Store   repository.ReportStore
	DB      HealthChecker
	Version VersionInfo
}

// Handler 排班服务处理器
type Handler struct {
	cfg     *config.Config
	engine  *scheduler.Engine
	store   repository.ReportStore
	db      HealthChecker
	version VersionInfo

	Mux *chi.Mux
}

// NewHandler 创建处理器
func NewHandler(deps Deps) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	engine := deps.Engine
	if engine == nil {
		engine = scheduler.NewEngine(scheduler.WithTimeBudget(cfg.Scheduler.TimeBudget))
	}
	return &Handler{
		cfg:     cfg,
		engine:  engine,
		store:   deps.Store,
		db:      deps.DB,
		version: deps.Version,
		Mux:     chi.NewRouter(),
	}
}

// RegisterRoutes 注册中间件与路由
func (h *Handler) RegisterRoutes() {
	// 中间件执行顺序：requestID -> logging -> recovery -> 安全头 -> cors -> rateLimit -> handler
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(middleware.Logging(routePattern))
	h.Mux.Use(middleware.Recovery)
	h.Mux.Use(middleware.SecurityHeaders)
	if h.cfg.API.CORSEnabled {
		h.Mux.Use(middleware.CORS(h.cfg.API.CORSOrigins))
	}
	if h.cfg.API.RateLimit > 0 {
		h.Mux.Use(middleware.RateLimit(middleware.NewRateLimiter(float64(h.cfg.API.RateLimit))))
	}

	h.Mux.Get("/health", h.Health)
	h.Mux.Get("/version", h.Version)
	if h.cfg.Metrics.Enabled {
		path := h.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		h.Mux.Method(http.MethodGet, path, metrics.Handler())
	}

	h.Mux.Route("/api/v1", func(r chi.Router) {
		if keys := security.NewKeySet(h.cfg.API.APIKeys); keys.Len() > 0 {
			r.Use(security.RequireAPIKey(keys))
		}
		r.Get("/", h.Index)

		r.Route("/schedule", func(r chi.Router) {
			r.Post("/generate", h.Generate)
			r.Post("/validate", h.Validate)
			r.Post("/batch", h.Batch)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", h.ListReports)
				r.Get("/{id}", h.GetReport)
			})
		})

		r.Get("/constraints/library", h.ConstraintLibrary)

		r.Route("/stats", func(r chi.Router) {
			r.Post("/fairness", h.Fairness)
			r.Post("/coverage", h.Coverage)
		})
	})

	h.Mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, apperrors.New(apperrors.CodeNotFound, "接口不存在"))
	})
	h.Mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, apperrors.New(apperrors.CodeInvalidInput, "不支持的请求方法"))
	})
}

// routePattern 返回匹配到的路由模板，指标按模板聚合
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"service": "shiftsat",
		"solver":  h.engine.SolverName(),
	}
	if h.store != nil {
		resp["archive"] = h.store.Name()
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Health(ctx); err != nil {
			logger.WithContext(r.Context()).Warn().Err(err).Msg("数据库健康检查失败")
			resp["status"] = "degraded"
			resp["database"] = "down"
			respondJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "up"
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// Version 版本信息
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.version)
}

// Index API 根路由
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "shiftsat 排班引擎 API v1",
		"endpoints": map[string]interface{}{
			"schedule": map[string]string{
				"generate": "POST /api/v1/schedule/generate",
				"validate": "POST /api/v1/schedule/validate",
				"batch":    "POST /api/v1/schedule/batch",
				"reports":  "GET /api/v1/schedule/reports",
				"report":   "GET /api/v1/schedule/reports/{id}",
			},
			"constraints": map[string]string{
				"library": "GET /api/v1/constraints/library",
			},
			"stats": map[string]string{
				"fairness": "POST /api/v1/stats/fairness",
				"coverage": "POST /api/v1/stats/coverage",
			},
		},
	})
}

// ConstraintLibrary 返回引擎支持的约束
func (h *Handler) ConstraintLibrary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, constraints.LibraryResponse{Library: constraints.GetLibrary()})
}

// runContext 为一次求解请求加上接口超时
func (h *Handler) runContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.cfg.API.Timeout > 0 {
		return context.WithTimeout(r.Context(), h.cfg.API.Timeout)
	}
	return context.WithCancel(r.Context())
}

// readJSON 解析请求体，拒绝未知字段
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败")
	}
	return nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("写入响应失败")
	}
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := toAppError(err)
	event := logger.WithContext(r.Context()).Warn()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		event = logger.WithContext(r.Context()).Error()
	}
	event.Err(err).Str("code", string(appErr.Code)).Msg("请求失败")

	respondJSON(w, r, appErr.HTTPStatus, map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
		"fields":  appErr.Fields,
	})
}

// toAppError 转换为 AppError，未知错误视为内部错误
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, "服务器内部错误")
}
