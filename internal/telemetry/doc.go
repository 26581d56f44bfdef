// Package telemetry обеспечивает наблюдаемость движка.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики runs и шагов
//
// Бинарники используют единый формат логирования и экспортируют
// метрики на /metrics endpoint; движок пишет метрики через Metrics,
// который безопасен при nil (тесты работают без регистрации).
package telemetry
