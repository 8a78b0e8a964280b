package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paiban/shiftsat/internal/repository"
	apperrors "github.com/paiban/shiftsat/pkg/errors"
)

// ReportListResponse 报告列表响应
type ReportListResponse struct {
	Store   string                      `json:"store"`
	Total   int                         `json:"total"`
	Offset  int                         `json:"offset"`
	Limit   int                         `json:"limit"`
	Reports []*repository.ReportSummary `json:"reports"`
}

// ListReports 分页列出已归档的报告
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, r, apperrors.New(apperrors.CodeNotFound, "报告归档未启用"))
		return
	}

	filter := repository.DefaultListFilter().WithStatus(r.URL.Query().Get("status"))
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, apperrors.InvalidInput("limit", "必须是整数"))
			return
		}
		filter = filter.WithLimit(n)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, apperrors.InvalidInput("offset", "必须是整数"))
			return
		}
		filter = filter.WithOffset(n)
	}

	filter = filter.Normalize()
	summaries, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []*repository.ReportSummary{}
	}
	respondJSON(w, r, http.StatusOK, ReportListResponse{
		Store:   h.store.Name(),
		Total:   total,
		Offset:  filter.Offset,
		Limit:   filter.Limit,
		Reports: summaries,
	})
}

// GetReport 获取单个报告
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, r, apperrors.New(apperrors.CodeNotFound, "报告归档未启用"))
		return
	}

	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, r, apperrors.InvalidInput("id", "无效的报告ID格式"))
		return
	}

	rep, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = rep.WriteText(w)
		return
	}
	respondJSON(w, r, http.StatusOK, rep)
}
