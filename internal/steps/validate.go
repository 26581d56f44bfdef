package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

const (
	// StepTypeValidate — тип шага проверки контекста.
	StepTypeValidate = "validate"

	// Ключи конфигурации validate.
	configChecks        = "checks"
	configSkipIfMissing = "skip_if_missing"
)

// ValidateStep — шаг декларативной проверки RunContext.
//
// Прогоняет список проверок по снимку контекста. Проверка без правил
// требует лишь существования ключа.
//
// Конфигурация:
//
//	checks:
//	  - key: status
//	    equals: ok
//	  - key: items
//	    not_empty: true
//	  - key: total
//	    min: 1
//	    max: 100
//	  - key: region
//	    contains: eu
//	skip_if_missing: true    # отсутствие ключа — осознанный пропуск
//
// Неуспех перечисляет все непройденные проверки и возвращается
// готовым результатом: проверки детерминированы, повторять их
// бессмысленно. При skip_if_missing отсутствие ключа превращает шаг
// в пропуск, а не в ошибку — например, когда проверяемые данные
// пишет выключенный в этом запуске шаг.
type ValidateStep struct{}

// NewValidateStep создаёт новый ValidateStep.
func NewValidateStep() *ValidateStep {
	return &ValidateStep{}
}

// Type возвращает тип шага.
func (s *ValidateStep) Type() string {
	return StepTypeValidate
}

// Build собирает функцию проверки.
func (s *ValidateStep) Build(config map[string]any) (engine.StepFunc, error) {
	checks, err := s.parseChecks(config)
	if err != nil {
		return nil, err
	}
	skipIfMissing := GetConfigBool(config, configSkipIfMissing, false)

	return func(ctx context.Context, rc *engine.RunContext) (any, error) {
		snapshot := rc.Snapshot()

		var failures []string
		for _, c := range checks {
			value, ok := snapshot[c.Key]
			if !ok {
				if skipIfMissing {
					return domain.Skip(fmt.Sprintf("Context key %q is absent", c.Key)), nil
				}
				failures = append(failures, fmt.Sprintf("%s: key is missing", c.Key))
				continue
			}
			failures = append(failures, c.apply(value)...)
		}

		if len(failures) > 0 {
			return domain.Failure("Validation failed: " + strings.Join(failures, "; ")), nil
		}

		res := domain.Success(fmt.Sprintf("%d checks passed", len(checks))).
			SetMetric("checks", len(checks))
		return res, nil
	}, nil
}

// check — одна проверка значения контекста.
type check struct {
	Key       string
	Equals    any
	HasEquals bool
	NotEmpty  bool
	Min       *float64
	Max       *float64
	Contains  string
}

// apply возвращает список нарушений для значения.
func (c check) apply(value any) []string {
	var failures []string

	if c.HasEquals {
		if fmt.Sprint(value) != fmt.Sprint(c.Equals) {
			failures = append(failures, fmt.Sprintf("%s: expected %v, got %v", c.Key, c.Equals, value))
		}
	}

	if c.NotEmpty && isEmpty(value) {
		failures = append(failures, fmt.Sprintf("%s: value is empty", c.Key))
	}

	if c.Min != nil || c.Max != nil {
		n, ok := asFloat(value)
		switch {
		case !ok:
			failures = append(failures, fmt.Sprintf("%s: not a number: %v", c.Key, value))
		case c.Min != nil && n < *c.Min:
			failures = append(failures, fmt.Sprintf("%s: %v is below minimum %v", c.Key, n, *c.Min))
		case c.Max != nil && n > *c.Max:
			failures = append(failures, fmt.Sprintf("%s: %v is above maximum %v", c.Key, n, *c.Max))
		}
	}

	if c.Contains != "" {
		s, ok := value.(string)
		switch {
		case !ok:
			failures = append(failures, fmt.Sprintf("%s: not a string: %v", c.Key, value))
		case !strings.Contains(s, c.Contains):
			failures = append(failures, fmt.Sprintf("%s: %q does not contain %q", c.Key, s, c.Contains))
		}
	}

	return failures
}

// parseChecks извлекает проверки из конфигурации.
func (s *ValidateStep) parseChecks(config map[string]any) ([]check, error) {
	raw, ok := config[configChecks].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s: checks required", ErrInvalidConfig, StepTypeValidate)
	}

	checks := make([]check, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: checks[%d] must be a mapping", ErrInvalidConfig, StepTypeValidate, i)
		}

		c := check{
			Key:      GetConfigString(m, "key"),
			NotEmpty: GetConfigBool(m, "not_empty", false),
			Contains: GetConfigString(m, "contains"),
		}
		if c.Key == "" {
			return nil, fmt.Errorf("%w: %s: checks[%d]: key is required", ErrInvalidConfig, StepTypeValidate, i)
		}

		if eq, ok := m["equals"]; ok {
			c.Equals = eq
			c.HasEquals = true
		}

		for _, bound := range []struct {
			name string
			dst  **float64
		}{
			{"min", &c.Min},
			{"max", &c.Max},
		} {
			v, ok := m[bound.name]
			if !ok {
				continue
			}
			n, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: %s: checks[%d]: %s must be a number",
					ErrInvalidConfig, StepTypeValidate, i, bound.name)
			}
			*bound.dst = &n
		}

		checks = append(checks, c)
	}

	return checks, nil
}

// isEmpty сообщает, пусто ли значение контекста.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// asFloat приводит числовое значение к float64.
func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
