package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ошибки регистрации шагов.
var (
	// ErrDuplicateStep — шаг с таким именем уже зарегистрирован.
	ErrDuplicateStep = errors.New("step already registered")

	// ErrEmptyStepName — декларация без имени.
	ErrEmptyStepName = errors.New("step has empty name")

	// ErrNilStepFunc — декларация без функции.
	ErrNilStepFunc = errors.New("step has nil func")
)

// Ошибки выполнения попытки. Наружу они не выходят: в результат шага
// попадает только текст сообщения, сентинелы нужны для классификации
// исхода внутри цикла попыток.
var (
	// ErrTimeout — попытка не уложилась в таймаут.
	ErrTimeout = errors.New("step timed out")

	// ErrInvalidReturn — шаг вернул значение неподдерживаемого типа.
	ErrInvalidReturn = errors.New("invalid return type from step")
)

// msgSkippedPreviousFailure — сообщение шага, пропущенного из-за
// ошибки в предыдущей группе при включённом short-circuit.
const msgSkippedPreviousFailure = "Skipped due to previous failure"

// timeoutMessage — сообщение результата при таймауте.
// Лимит выводится в секундах.
func timeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf("Timeout after %g seconds", timeout.Seconds())
}

// executionMessage — сообщение результата при ошибке выполнения.
func executionMessage(err error) string {
	return "Error: " + err.Error()
}

// invalidReturnMessage — сообщение результата при неподдерживаемом
// типе возврата.
func invalidReturnMessage(value any) string {
	return fmt.Sprintf("Invalid return type from step: %T", value)
}

// missingDepsMessage — сообщение пропуска из-за невыполненных
// зависимостей. Имена идут в порядке объявления в Requires.
func missingDepsMessage(missing []string) string {
	return "Missing dependencies: " + strings.Join(missing, ", ")
}
