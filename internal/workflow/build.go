package workflow

import (
	"fmt"

	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/steps"
)

// Build превращает определение в готовый к запуску Runner.
//
// Определение сначала проходит Validate. Каждый включённый шаг
// разрешается через реестр в функцию, декларации регистрируются в
// порядке объявления в файле. Выключенные шаги не регистрируются:
// если от такого шага кто-то зависит, движок пропустит зависимого
// как шаг с невыполненной зависимостью.
//
// Имя из cfg имеет приоритет над именем определения.
func Build(wf *Workflow, registry *steps.Registry, cfg engine.Config) (*engine.Runner, error) {
	if err := Validate(wf, registry); err != nil {
		return nil, err
	}

	if cfg.Name == "" {
		cfg.Name = wf.Name
	}
	runner := engine.New(cfg)

	for i := range wf.Steps {
		s := &wf.Steps[i]
		if !s.IsEnabled() {
			continue
		}

		step, err := registry.Get(s.Type)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", s.Name, err)
		}
		fn, err := step.Build(s.Config)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", s.Name, err)
		}

		decl := engine.StepDeclaration{
			Name:          s.Name,
			Fn:            fn,
			Requires:      s.Requires,
			ParallelGroup: s.Group,
			Timeout:       s.Timeout(),
			MaxRetries:    s.Retries(),
			Description:   s.Description,
			Tags:          s.Tags,
		}
		if err := runner.Register(decl); err != nil {
			return nil, fmt.Errorf("register %s: %w", s.Name, err)
		}
	}

	return runner, nil
}
