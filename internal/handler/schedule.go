package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/paiban/shiftsat/internal/constraints"
	"github.com/paiban/shiftsat/internal/input"
	"github.com/paiban/shiftsat/internal/metrics"
	"github.com/paiban/shiftsat/internal/repository"
	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/report"
	"github.com/paiban/shiftsat/pkg/scheduler"
	"github.com/paiban/shiftsat/pkg/stats"
	"github.com/paiban/shiftsat/pkg/validator"
)

// ScheduleInput 排班输入：参数与员工偏好
//
// Fair 为 true 时按员工人数推导负荷上下限，忽略 params 中的配置。
type ScheduleInput struct {
	Params  model.ScheduleParameters `json:"params"`
	Fair    bool                     `json:"fair,omitempty"`
	Workers []model.WorkerSpec       `json:"workers" validate:"required,min=1,dive"`
}

// resolve 校验输入并构建员工与参数
func (in *ScheduleInput) resolve() ([]*model.Worker, *model.ScheduleParameters, error) {
	if err := model.ValidateStruct(in); err != nil {
		return nil, nil, err
	}
	roster := &input.Roster{Params: in.Params, Fair: in.Fair, Workers: in.Workers}
	return roster.Resolve()
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	ScheduleInput
	Archive *bool `json:"archive,omitempty"` // 默认归档
}

// GenerateResponse 排班生成响应
//
// 无解时 Success 为 false，HTTP 状态仍为 200。
type GenerateResponse struct {
	Success    bool                      `json:"success"`
	Message    string                    `json:"message"`
	Params     *model.ScheduleParameters `json:"params"`
	Report     *report.Report            `json:"report"`
	Statistics *model.Statistics         `json:"statistics,omitempty"`
	Archived   bool                      `json:"archived"`
	Duration   string                    `json:"duration"`
}

// Generate 生成排班
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	workers, params, err := req.resolve()
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.runContext(r)
	defer cancel()

	out, err := h.run(ctx, workers, params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rep, err := report.FromOutcome(out)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := GenerateResponse{
		Success:    out.Feasible(),
		Message:    outcomeMessage(out),
		Params:     params,
		Report:     rep,
		Statistics: out.Statistics,
		Duration:   out.Duration.String(),
	}
	if req.Archive == nil || *req.Archive {
		resp.Archived = h.archive(r.Context(), rep)
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// run 执行一次排班并记录指标
func (h *Handler) run(ctx context.Context, workers []*model.Worker, params *model.ScheduleParameters) (*scheduler.Outcome, error) {
	done := metrics.TrackActiveRun()
	defer done()

	start := time.Now()
	out, err := h.engine.Run(ctx, workers, params)
	if err != nil {
		metrics.RecordRun(string(apperrors.GetCode(err)), time.Since(start))
		return nil, err
	}
	recordOutcome(h.engine.SolverName(), out)
	return out, nil
}

// recordOutcome 记录运行结果指标
func recordOutcome(solverName string, out *scheduler.Outcome) {
	metrics.RecordRun(string(out.Status), out.Duration)
	if out.Statistics == nil {
		return
	}
	metrics.RecordSolverCalls(solverName, out.Statistics.SolverCalls)
	metrics.SetScheduleQuality(out.Statistics.UnwantedAssigned, out.Statistics.LoadGini)
}

// outcomeMessage 运行结果说明
func outcomeMessage(out *scheduler.Outcome) string {
	if out.Feasible() {
		return fmt.Sprintf("排班完成，不希望分配数 %d", out.Statistics.UnwantedAssigned)
	}
	return fmt.Sprintf("未找到可行排班 (状态: %s)", out.Status)
}

// archive 归档报告，失败只记录日志
func (h *Handler) archive(ctx context.Context, rep *report.Report) bool {
	if h.store == nil {
		return false
	}
	if err := h.store.Save(ctx, rep); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("report_id", rep.ID).Msg("报告归档失败")
		return false
	}
	if _, total, err := h.store.List(ctx, repository.DefaultListFilter().WithLimit(1)); err == nil {
		metrics.SetArchivedReports(h.store.Name(), total)
	}
	return true
}

// ValidateRequest 排班验证请求
//
// 不提供 assignments 时只检查参数与员工数据。
type ValidateRequest struct {
	ScheduleInput
	Assignments []model.Assignment `json:"assignments,omitempty"`
}

// ValidateResponse 验证响应
type ValidateResponse struct {
	IsValid     bool                           `json:"is_valid"`
	Params      *model.ScheduleParameters      `json:"params"`
	Demand      int                            `json:"demand"`   // K*D*S
	Capacity    int                            `json:"capacity"` // W*max
	Minimum     int                            `json:"minimum"`  // W*min
	Constraints []constraints.ActiveConstraint `json:"constraints"`
	Report      *validator.Report              `json:"report,omitempty"`
	Fairness    *stats.FairnessMetrics         `json:"fairness,omitempty"`
}

// Validate 验证排班参数，附带排班时复核排班
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	workers, params, err := req.resolve()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := params.CheckCapacity(len(workers)); err != nil {
		respondError(w, r, err)
		return
	}

	resp := ValidateResponse{
		IsValid:     true,
		Params:      params,
		Demand:      params.Demand(),
		Capacity:    len(workers) * params.EffectiveMax(),
		Minimum:     len(workers) * params.MinShiftsPerWorker,
		Constraints: constraints.ActiveFor(params),
	}

	if req.Assignments != nil {
		schedule, err := model.NewSchedule(len(workers), params.NumDays, params.NumShiftsPerDay, req.Assignments)
		if err != nil {
			respondError(w, r, err)
			return
		}
		rep, err := validator.NewConflictDetector(nil).Validate(schedule, workers, params)
		if err != nil {
			respondError(w, r, err)
			return
		}
		for _, c := range rep.Conflicts {
			if c.Severity == "error" {
				metrics.RecordConstraintViolation(string(c.Type))
			}
		}
		resp.IsValid = rep.IsValid
		resp.Report = rep
		resp.Fairness = stats.NewFairnessAnalyzer().Analyze(schedule, workers)
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// BatchJob 批量排班中的一项
type BatchJob struct {
	Name string `json:"name,omitempty"`
	ScheduleInput
}

// BatchRequest 批量排班请求
type BatchRequest struct {
	Jobs        []BatchJob `json:"jobs" validate:"required,min=1"`
	Parallelism int        `json:"parallelism,omitempty" validate:"min=0"`
}

// BatchItem 单项结果
type BatchItem struct {
	Index   int                 `json:"index"`
	Name    string              `json:"name,omitempty"`
	Success bool                `json:"success"`
	Report  *report.Report      `json:"report,omitempty"`
	Error   *apperrors.AppError `json:"error,omitempty"`
}

// BatchResponse 批量排班响应
type BatchResponse struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []BatchItem `json:"results"`
	Duration  string      `json:"duration"`
}

// Batch 批量排班，各项互不影响，结果保持请求顺序
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BatchRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := model.ValidateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}
	if limit := h.cfg.Scheduler.MaxBatchSize; limit > 0 && len(req.Jobs) > limit {
		respondError(w, r, apperrors.Validation("jobs", fmt.Sprintf("批量任务数 %d 超过上限 %d", len(req.Jobs), limit)))
		return
	}

	parallelism := h.cfg.Scheduler.BatchParallelism
	if req.Parallelism > 0 && (parallelism <= 0 || req.Parallelism < parallelism) {
		parallelism = req.Parallelism
	}

	items := make([]BatchItem, len(req.Jobs))
	jobs := make([]scheduler.Job, 0, len(req.Jobs))
	positions := make([]int, 0, len(req.Jobs))
	for i := range req.Jobs {
		items[i] = BatchItem{Index: i, Name: req.Jobs[i].Name}
		workers, params, err := req.Jobs[i].resolve()
		if err != nil {
			items[i].Error = toAppError(err)
			continue
		}
		jobs = append(jobs, scheduler.Job{Name: req.Jobs[i].Name, Workers: workers, Params: params})
		positions = append(positions, i)
	}

	ctx, cancel := h.runContext(r)
	defer cancel()

	done := metrics.TrackActiveRun()
	results := h.engine.RunBatch(ctx, jobs, parallelism)
	done()

	for _, res := range results {
		item := &items[positions[res.Index]]
		if res.Err != nil {
			metrics.RecordRun(string(apperrors.GetCode(res.Err)), 0)
			item.Error = toAppError(res.Err)
			continue
		}
		recordOutcome(h.engine.SolverName(), res.Outcome)
		rep, err := report.FromOutcome(res.Outcome)
		if err != nil {
			item.Error = toAppError(err)
			continue
		}
		item.Report = rep
		item.Success = rep.Feasible
	}

	resp := BatchResponse{Total: len(items), Results: items, Duration: time.Since(start).String()}
	for _, item := range items {
		if item.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	respondJSON(w, r, http.StatusOK, resp)
}
