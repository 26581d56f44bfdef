package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

const (
	// StepTypeDelay — тип шага задержки.
	StepTypeDelay = "delay"

	// Ключи конфигурации delay.
	configDurationSec = "duration_sec"
	configDurationMs  = "duration_ms"
)

// DelayStep — шаг задержки.
//
// Приостанавливает выполнение на указанное время. Отмена контекста
// (таймаут попытки, завершение запуска) прерывает ожидание.
//
// Конфигурация:
//
//	duration_sec: 1.5    # задержка в секундах
//	# или
//	duration_ms: 500     # задержка в миллисекундах
type DelayStep struct{}

// NewDelayStep создаёт новый DelayStep.
func NewDelayStep() *DelayStep {
	return &DelayStep{}
}

// Type возвращает тип шага.
func (s *DelayStep) Type() string {
	return StepTypeDelay
}

// Build собирает функцию задержки.
func (s *DelayStep) Build(config map[string]any) (engine.StepFunc, error) {
	duration, err := s.parseDuration(config)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, rc *engine.RunContext) (any, error) {
		timer := time.NewTimer(duration)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		res := domain.Success(fmt.Sprintf("Waited %s", duration)).
			SetMetric("duration_ms", duration.Milliseconds())
		return res, nil
	}, nil
}

// parseDuration извлекает длительность из конфигурации.
func (s *DelayStep) parseDuration(config map[string]any) (time.Duration, error) {
	// Сначала проверяем duration_sec
	if sec := GetConfigFloat(config, configDurationSec); sec > 0 {
		return time.Duration(sec * float64(time.Second)), nil
	}

	// Затем проверяем duration_ms
	if ms := GetConfigInt(config, configDurationMs); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}

	return 0, fmt.Errorf("%w: %s: duration_sec or duration_ms required",
		ErrInvalidConfig, StepTypeDelay)
}
