package api

import (
	"log/slog"

	"github.com/shaiso/Cascade/internal/history"
)

// Handler — обработчик API архива запусков.
type Handler struct {
	runRepo *history.RunRepo
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	RunRepo *history.RunRepo
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		runRepo: cfg.RunRepo,
		logger:  logger,
	}
}
