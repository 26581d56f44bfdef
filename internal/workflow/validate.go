package workflow

import (
	"fmt"

	"github.com/shaiso/Cascade/internal/steps"
)

// Validate выполняет полную валидацию определения.
//
// Проверяет:
// - Наличие шагов
// - Уникальность имён шагов
// - Известность типов шагов в реестре
// - Приём конфигурации сборщиком шага
// - Валидность зависимостей (requires)
//
// Движок при выполнении к зависимостям лоялен: неизвестное имя в
// Requires просто никогда не выполнится и приведёт к пропуску. Здесь,
// на уровне авторинга, это ошибки: файл с опечаткой в requires не
// должен дойти до запуска. Выключенные шаги проверяются наравне с
// включёнными — файл остаётся корректным независимо от флагов enabled.
func Validate(wf *Workflow, registry *steps.Registry) error {
	if wf == nil || len(wf.Steps) == 0 {
		return NewValidationError("", "steps", "workflow has no steps", ErrNoSteps)
	}

	names := make(map[string]bool, len(wf.Steps))

	for i := range wf.Steps {
		if err := validateStep(&wf.Steps[i], i, names, registry); err != nil {
			return err
		}
	}

	return validateDependencies(wf.Steps, names)
}

// validateStep валидирует одно объявление шага.
// names — уже встреченные имена (для проверки уникальности).
func validateStep(s *StepSpec, index int, names map[string]bool, registry *steps.Registry) error {
	if s.Name == "" {
		return NewValidationError("", "name",
			fmt.Sprintf("steps[%d] has empty name", index), ErrEmptyStepName)
	}

	if names[s.Name] {
		return NewValidationError(s.Name, "name",
			fmt.Sprintf("duplicate step name: %s", s.Name), ErrDuplicateStep)
	}
	names[s.Name] = true

	if s.Type == "" {
		return NewValidationError(s.Name, "type", "step has empty type", ErrUnknownStepType)
	}

	step, err := registry.Get(s.Type)
	if err != nil {
		return NewValidationError(s.Name, "type",
			fmt.Sprintf("unknown step type: %s", s.Type), ErrUnknownStepType)
	}

	// Сборщик — единственный, кто знает форму своей конфигурации.
	if _, err := step.Build(s.Config); err != nil {
		return NewValidationError(s.Name, "config", err.Error(), err)
	}

	for _, dep := range s.Requires {
		if dep == s.Name {
			return NewValidationError(s.Name, "requires",
				"step requires itself", ErrSelfDependency)
		}
	}

	return nil
}

// validateDependencies проверяет, что все requires ссылаются на
// объявленные шаги.
func validateDependencies(specs []StepSpec, names map[string]bool) error {
	for i := range specs {
		s := &specs[i]

		for _, dep := range s.Requires {
			if !names[dep] {
				return NewValidationError(s.Name, "requires",
					fmt.Sprintf("requires unknown step: %s", dep), ErrUnknownDependency)
			}
		}
	}

	return nil
}
