package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/history"
)

// ListRuns возвращает список запусков с фильтрацией.
// GET /api/v1/runs?workflow=...&success=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := history.Filter{
		Workflow: query.Get("workflow"),
		Limit:    intParam(query.Get("limit"), 0),
		Offset:   intParam(query.Get("offset"), 0),
	}

	if successStr := query.Get("success"); successStr != "" {
		success, err := strconv.ParseBool(successStr)
		if err != nil {
			BadRequest(w, "invalid success filter")
			return
		}
		filter.Success = &success
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromRecord(run)
	}

	List(w, result, len(result))
}

// GetRun возвращает запуск по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromRecord(*run))
}

// ListRunSteps возвращает шаги запуска в порядке отчёта.
// GET /api/v1/runs/{id}/steps
func (h *Handler) ListRunSteps(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Пустой список шагов у существующего запуска — валидный ответ,
	// поэтому сначала проверяем сам запуск
	if _, err := h.runRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	steps, err := h.runRepo.ListSteps(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]StepResponse, len(steps))
	for i, step := range steps {
		result[i] = StepFromRecord(step)
	}

	List(w, result, len(result))
}

// GetStats возвращает агрегат по архиву.
// GET /api/v1/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.runRepo.Stats(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, StatsFromRecord(*stats))
}

// intParam парсит числовой query параметр с дефолтным значением.
func intParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
