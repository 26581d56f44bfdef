package steps

import (
	"errors"

	"github.com/shaiso/Cascade/internal/engine"
)

// Ошибки шагов.
var (
	// ErrStepNotFound — тип шага не найден в реестре.
	ErrStepNotFound = errors.New("step type not found")

	// ErrInvalidConfig — невалидная конфигурация шага.
	ErrInvalidConfig = errors.New("invalid step config")

	// ErrTemplateParse — ошибка разбора шаблона.
	ErrTemplateParse = errors.New("template parse error")

	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render error")
)

// Step — фабрика функций шага одного типа.
//
// Build проверяет конфигурацию и возвращает готовую к выполнению
// функцию шага. Ошибки конфигурации всплывают при сборке workflow,
// до начала запуска, а не в его середине.
type Step interface {
	// Type возвращает тип шага.
	Type() string

	// Build собирает функцию шага из конфигурации.
	// Возвращает ErrInvalidConfig, если конфигурация неполна или
	// противоречива.
	Build(config map[string]any) (engine.StepFunc, error)
}

// GetConfigString извлекает строковое значение из конфига.
func GetConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetConfigInt извлекает целочисленное значение из конфига.
func GetConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// GetConfigFloat извлекает число с плавающей точкой из конфига.
func GetConfigFloat(config map[string]any, key string) float64 {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return 0
}

// GetConfigBool извлекает булево значение из конфига.
func GetConfigBool(config map[string]any, key string, defaultVal bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetConfigMap извлекает map из конфига.
func GetConfigMap(config map[string]any, key string) map[string]any {
	if v, ok := config[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// GetConfigMapString извлекает map[string]string из конфига.
func GetConfigMapString(config map[string]any, key string) map[string]string {
	if v, ok := config[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string)
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}

// GetConfigStringSlice извлекает слайс строк из конфига.
// Нестроковые элементы пропускаются.
func GetConfigStringSlice(config map[string]any, key string) []string {
	switch s := config[key].(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, v := range s {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return nil
}
