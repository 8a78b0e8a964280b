package handler

import (
	"net/http"

	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/stats"
)

// StatsRequest 统计请求：排班输入加上一份排班
type StatsRequest struct {
	ScheduleInput
	Assignments []model.Assignment `json:"assignments"`
}

// FairnessRequest 公平性分析请求，CompareOptimal 为 true 时同时求解并与最优排班对比
type FairnessRequest struct {
	StatsRequest
	CompareOptimal bool `json:"compare_optimal"`
}

// FairnessResponse 公平性响应
type FairnessResponse struct {
	Success       bool                   `json:"success"`
	Data          *stats.FairnessMetrics `json:"data,omitempty"`
	OptimalStatus string                 `json:"optimal_status,omitempty"`
	Comparison    *stats.Comparison      `json:"comparison,omitempty"`
}

// CoverageResponse 覆盖率响应
type CoverageResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.CoverageMetrics `json:"data,omitempty"`
	Report  string                 `json:"report,omitempty"`
}

// schedule 解析请求中的员工、参数与排班
func (req *StatsRequest) schedule() ([]*model.Worker, *model.ScheduleParameters, *model.Schedule, error) {
	workers, params, err := req.resolve()
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := model.NewSchedule(len(workers), params.NumDays, params.NumShiftsPerDay, req.Assignments)
	if err != nil {
		return nil, nil, nil, err
	}
	return workers, params, s, nil
}

// Fairness 公平性分析API
func (h *Handler) Fairness(w http.ResponseWriter, r *http.Request) {
	var req FairnessRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	workers, params, schedule, err := req.schedule()
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Debug().
		Int("workers", len(workers)).
		Int("assignments", schedule.Total()).
		Bool("compare_optimal", req.CompareOptimal).
		Msg("公平性分析")

	analyzer := stats.NewFairnessAnalyzer()
	resp := FairnessResponse{
		Success: true,
		Data:    analyzer.Analyze(schedule, workers),
	}

	if req.CompareOptimal {
		ctx, cancel := h.runContext(r)
		defer cancel()

		out, err := h.run(ctx, workers, params)
		if err != nil {
			respondError(w, r, err)
			return
		}
		resp.OptimalStatus = string(out.Status)
		if out.Feasible() {
			resp.Comparison = analyzer.CompareSchedules(schedule, out.Schedule, workers)
		}
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// Coverage 覆盖率分析API，?format=text 时附带文本报告
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	_, params, schedule, err := req.schedule()
	if err != nil {
		respondError(w, r, err)
		return
	}

	analyzer := stats.NewCoverageAnalyzer(params.CoveragePerSlot)
	resp := CoverageResponse{Success: true, Data: analyzer.Analyze(schedule)}
	if r.URL.Query().Get("format") == "text" {
		resp.Report = analyzer.GenerateCoverageReport(resp.Data)
	}
	respondJSON(w, r, http.StatusOK, resp)
}
