package workflow

import (
	"time"

	"github.com/shaiso/Cascade/internal/engine"
)

// Workflow — декларативное определение рабочего процесса.
//
// Пример файла:
//
//	name: deploy
//	description: Выкатка сервиса
//	context:
//	  service: billing
//	steps:
//	  - name: fetch_release
//	    type: http
//	    config:
//	      url: "https://releases.local/{{ .service }}/latest"
//	      context_key: release
//	  - name: announce
//	    type: http
//	    group: notify
//	    requires: [fetch_release]
//	    config:
//	      method: POST
//	      url: "https://chat.local/api/send"
//	      body: "released {{ .release }}"
type Workflow struct {
	// Name — имя процесса. Попадает в логи, метрики и историю запусков.
	Name string `yaml:"name"`

	// Description — человекочитаемое описание.
	Description string `yaml:"description,omitempty"`

	// Context — начальное наполнение контекста запуска.
	Context map[string]any `yaml:"context,omitempty"`

	// Steps — шаги в порядке объявления.
	Steps []StepSpec `yaml:"steps"`
}

// StepSpec — объявление одного шага в файле определения.
type StepSpec struct {
	// Name — уникальное имя шага.
	Name string `yaml:"name"`

	// Type — тип шага из реестра (http, command, delay, transform, validate).
	Type string `yaml:"type"`

	// Config — конфигурация, передаваемая сборщику шага.
	Config map[string]any `yaml:"config,omitempty"`

	// Requires — имена шагов, которые должны успешно завершиться раньше.
	Requires []string `yaml:"requires,omitempty"`

	// Group — ключ группы параллельного выполнения.
	Group string `yaml:"group,omitempty"`

	// TimeoutSec — таймаут одной попытки в секундах. Дробные значения
	// допустимы. Ноль — таймаут движка по умолчанию.
	TimeoutSec float64 `yaml:"timeout_sec,omitempty"`

	// MaxRetries — число повторов после первой попытки. Отсутствие
	// ключа наследует значение движка, явный ноль отключает повторы.
	MaxRetries *int `yaml:"max_retries,omitempty"`

	// Enabled — участвует ли шаг в запуске. Отсутствие ключа — true.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Tags — метки, переносимые на результат шага.
	Tags []string `yaml:"tags,omitempty"`

	// Description — описание шага.
	Description string `yaml:"description,omitempty"`
}

// Seed собирает начальный контекст запуска. Слои по возрастанию
// приоритета: базовый контекст приложения, контекст определения,
// переменные конкретного запуска.
func (wf *Workflow) Seed(base map[string]any, vars map[string]string) map[string]any {
	seed := make(map[string]any, len(base)+len(wf.Context)+len(vars))
	for k, v := range base {
		seed[k] = v
	}
	for k, v := range wf.Context {
		seed[k] = v
	}
	for k, v := range vars {
		seed[k] = v
	}
	return seed
}

// EnabledSteps считает шаги, которые попадут в запуск.
func (wf *Workflow) EnabledSteps() int {
	total := 0
	for i := range wf.Steps {
		if wf.Steps[i].IsEnabled() {
			total++
		}
	}
	return total
}

// IsEnabled сообщает, участвует ли шаг в запуске.
func (s *StepSpec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Timeout возвращает таймаут попытки шага.
func (s *StepSpec) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec * float64(time.Second))
}

// Retries возвращает значение MaxRetries для декларации движка.
func (s *StepSpec) Retries() int {
	if s.MaxRetries == nil {
		return engine.UnsetRetries
	}
	return *s.MaxRetries
}
