package api

import (
	"net/http"
)

// RegisterRoutes регистрирует маршруты API.
// API читает архив и ничего не запускает: запуски создаются CLI и
// планировщиком, в архив их приносит архиватор.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("GET /api/v1/runs/{id}/steps", chain(http.HandlerFunc(h.ListRunSteps)))
	mux.Handle("GET /api/v1/stats", chain(http.HandlerFunc(h.GetStats)))
}
