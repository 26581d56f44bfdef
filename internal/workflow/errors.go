package workflow

import "errors"

// Ошибки разбора файла определения.
var (
	// ErrEmptyDefinition — пустой файл или пустой поток.
	ErrEmptyDefinition = errors.New("workflow definition is empty")

	// ErrParse — YAML не разобран.
	ErrParse = errors.New("workflow parse error")
)

// Ошибки валидации определения.
var (
	// ErrNoSteps — определение без шагов.
	ErrNoSteps = errors.New("workflow has no steps")

	// ErrEmptyStepName — шаг без имени.
	ErrEmptyStepName = errors.New("step has empty name")

	// ErrDuplicateStep — имя шага встречается дважды.
	ErrDuplicateStep = errors.New("duplicate step name")

	// ErrUnknownStepType — тип шага не зарегистрирован в реестре.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrUnknownDependency — requires ссылается на необъявленный шаг.
	ErrUnknownDependency = errors.New("requires unknown step")

	// ErrSelfDependency — шаг зависит от самого себя.
	ErrSelfDependency = errors.New("step requires itself")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Step    string // имя шага, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Step != "" {
		return "step " + e.Step + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(step, field, message string, err error) *ValidationError {
	return &ValidationError{
		Step:    step,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
