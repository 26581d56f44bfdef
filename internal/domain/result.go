package domain

import (
	"slices"
	"time"
)

// Статусы результата для отчётов и метрик.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// StepResult — канонический результат обработки одного шага.
//
// Создаётся в начале обработки шага, мутируется только движком
// во время этой обработки и становится неизменяемым после добавления
// в список результатов run. Между runs не переиспользуется.
//
// Инварианты:
//   - Executed == false ⟺ Skipped == true (шаг либо выполнялся,
//     возможно с ошибкой, либо был пропущен до начала выполнения);
//     исключение — шаг, который выполнился и сам вернул skip:
//     у него Executed == true и Skipped == true.
//   - Attempts >= 1, если Executed == true.
type StepResult struct {
	// Name — имя шага.
	Name string `json:"name"`

	// Success — успешно ли завершился шаг.
	// Для пропущенных шагов всегда true: skip не является ошибкой.
	Success bool `json:"success"`

	// Message — человекочитаемое сообщение о результате.
	Message string `json:"message"`

	// Data — полезная нагрузка, возвращённая шагом.
	Data any `json:"data,omitempty"`

	// Skipped — был ли шаг пропущен (зависимости, short-circuit
	// или осознанный skip из самого шага).
	Skipped bool `json:"skipped"`

	// Executed — дошёл ли шаг до выполнения.
	Executed bool `json:"executed"`

	// TimeTaken — суммарное время всех попыток.
	TimeTaken time.Duration `json:"time_taken"`

	// Attempts — номер попытки, на которой шаг завершился
	// (или номер последней попытки при исчерпании retry).
	Attempts int `json:"attempts"`

	// Tags — метки шага в порядке добавления, без дубликатов.
	Tags []string `json:"tags,omitempty"`

	// Metrics — именованные метрики шага. Повторная запись
	// перезаписывает значение (last write wins).
	Metrics map[string]any `json:"metrics,omitempty"`

	// Metadata — произвольные дополнительные данные.
	Metadata map[string]any `json:"metadata,omitempty"`

	// LastError — текст последней ошибки выполнения, если была.
	LastError string `json:"last_error,omitempty"`
}

// Success создаёт успешный результат.
func Success(message string) *StepResult {
	return &StepResult{
		Success: true,
		Message: message,
	}
}

// Failure создаёт результат с ошибкой.
func Failure(message string) *StepResult {
	return &StepResult{
		Success: false,
		Message: message,
	}
}

// Skip создаёт результат пропуска.
// Пропуск не считается ошибкой, поэтому Success == true.
func Skip(message string) *StepResult {
	return &StepResult{
		Success: true,
		Message: message,
		Skipped: true,
	}
}

// WithData устанавливает полезную нагрузку. Возвращает сам результат
// для цепочки вызовов.
func (r *StepResult) WithData(data any) *StepResult {
	r.Data = data
	return r
}

// AddTag добавляет метку. Дубликаты игнорируются,
// порядок первого добавления сохраняется.
func (r *StepResult) AddTag(tag string) *StepResult {
	if slices.Contains(r.Tags, tag) {
		return r
	}
	r.Tags = append(r.Tags, tag)
	return r
}

// SetMetric записывает метрику. Повторная запись по тому же имени
// перезаписывает значение.
func (r *StepResult) SetMetric(name string, value any) *StepResult {
	if r.Metrics == nil {
		r.Metrics = make(map[string]any)
	}
	r.Metrics[name] = value
	return r
}

// SetMeta записывает значение в Metadata.
func (r *StepResult) SetMeta(key string, value any) *StepResult {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
	return r
}

// Status возвращает статус результата: succeeded, failed или skipped.
func (r *StepResult) Status() string {
	switch {
	case r.Skipped:
		return StatusSkipped
	case r.Success:
		return StatusSucceeded
	default:
		return StatusFailed
	}
}

// ToMap сериализует результат в плоский словарь для внешних
// потребителей (CLI, JSON, архив). Время — в секундах.
// Слайсы и словари копируются, чтобы потребитель не мог
// изменить уже зафиксированный результат.
func (r *StepResult) ToMap() map[string]any {
	m := map[string]any{
		"name":       r.Name,
		"success":    r.Success,
		"message":    r.Message,
		"data":       r.Data,
		"skipped":    r.Skipped,
		"executed":   r.Executed,
		"time_taken": r.TimeTaken.Seconds(),
		"attempts":   r.Attempts,
		"tags":       slices.Clone(r.Tags),
		"metrics":    copyMap(r.Metrics),
		"metadata":   copyMap(r.Metadata),
	}
	if r.LastError != "" {
		m["last_error"] = r.LastError
	}
	return m
}

// Legacy — возврат шага в форме тройки (success, message, data).
//
// Исторический формат результатов: шаги, не перешедшие на
// *StepResult, возвращают это значение, и движок нормализует его
// в канонический StepResult без тегов и метрик.
type Legacy struct {
	Success bool
	Message string
	Data    any
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
