package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

const (
	// StepTypeTransform — тип шага трансформации.
	StepTypeTransform = "transform"

	// Ключ конфигурации.
	configMappings = "mappings"
)

// TransformStep — шаг трансформации данных.
//
// Рендерит шаблоны по снимку RunContext и записывает результаты
// обратно в контекст — это мост между данными предыдущих шагов
// и конфигурацией последующих.
//
// Конфигурация:
//
//	mappings:
//	  total: "{{ len .items }}"
//	  greeting: "hello {{ .name | upper }}"
//	  payload: "{{ .response | json }}"
//
// Каждый результат рендеринга пробуется как JSON: числа, булевы,
// объекты и списки получают свои типы, остальное остаётся строкой.
// Mappings видят только снимок контекста до шага — результаты друг
// друга им недоступны.
type TransformStep struct{}

// NewTransformStep создаёт новый TransformStep.
func NewTransformStep() *TransformStep {
	return &TransformStep{}
}

// Type возвращает тип шага.
func (s *TransformStep) Type() string {
	return StepTypeTransform
}

// Build собирает функцию трансформации.
func (s *TransformStep) Build(config map[string]any) (engine.StepFunc, error) {
	mappings := s.parseMappings(config)
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: %s: mappings required", ErrInvalidConfig, StepTypeTransform)
	}

	return func(ctx context.Context, rc *engine.RunContext) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		snapshot := rc.Snapshot()

		outputs := make(map[string]any, len(mappings))
		for key, tmpl := range mappings {
			rendered, err := Render(tmpl, snapshot)
			if err != nil {
				return nil, fmt.Errorf("transform %s: %w", key, err)
			}

			value := s.parseValue(rendered)
			outputs[key] = value
			rc.Set(key, value)
		}

		res := domain.Success(fmt.Sprintf("Rendered %d mappings", len(mappings))).
			WithData(outputs)
		return res, nil
	}, nil
}

// parseMappings извлекает mappings из конфигурации.
func (s *TransformStep) parseMappings(config map[string]any) map[string]string {
	raw := config[configMappings]
	if raw == nil {
		return nil
	}

	switch m := raw.(type) {
	case map[string]string:
		return m

	case map[string]any:
		result := make(map[string]string, len(m))
		for key, val := range m {
			if str, ok := val.(string); ok {
				result[key] = str
			}
		}
		return result

	default:
		return nil
	}
}

// parseValue пытается распарсить строку как JSON.
// Если не получается — возвращает строку как есть.
func (s *TransformStep) parseValue(value string) any {
	// Пробуем как JSON object
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err == nil {
		return obj
	}

	// Пробуем как JSON array
	var arr []any
	if err := json.Unmarshal([]byte(value), &arr); err == nil {
		return arr
	}

	// Пробуем как JSON number
	var num json.Number
	if err := json.Unmarshal([]byte(value), &num); err == nil {
		// Пробуем как int
		if i, err := num.Int64(); err == nil {
			return i
		}
		// Иначе как float
		if f, err := num.Float64(); err == nil {
			return f
		}
	}

	// Пробуем как JSON bool
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	// Возвращаем как строку
	return value
}
