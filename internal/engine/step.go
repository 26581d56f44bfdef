package engine

import (
	"context"
	"time"
)

// UnsetRetries — значение MaxRetries, при котором шаг использует
// DefaultMaxRetries движка.
const UnsetRetries = -1

// StepFunc — функция шага.
//
// Выполняется в горутине пула. ctx несёт таймаут текущей попытки
// и отмену всего run; долгие шаги обязаны его уважать. Возвращаемое
// значение нормализуется движком: поддерживаются domain.Legacy и
// *domain.StepResult, всё остальное — ошибка контракта шага.
type StepFunc func(ctx context.Context, rc *RunContext) (any, error)

// StepDeclaration — декларация шага.
//
// Регистрируется в Runner до запуска и после регистрации не меняется:
// Runner хранит собственную копию.
type StepDeclaration struct {
	// Name — имя шага, уникальное в пределах одного Runner.
	Name string

	// Fn — функция шага.
	Fn StepFunc

	// Requires — имена шагов, которые должны успешно завершиться
	// до запуска этого шага. Разрешаются на момент старта группы,
	// а не на момент регистрации.
	Requires []string

	// ParallelGroup — ключ группы параллельного выполнения.
	// Шаги с одним ключом выполняются одновременно. Пустое значение —
	// шаг образует собственную группу из одного элемента.
	ParallelGroup string

	// Timeout — таймаут одной попытки. Ноль — DefaultTimeout движка.
	Timeout time.Duration

	// MaxRetries — число повторов после первой попытки.
	// Ноль — без повторов, UnsetRetries — DefaultMaxRetries движка.
	MaxRetries int

	// Description — описание шага для вывода в CLI.
	Description string

	// Tags — метки, переносимые на результат шага.
	Tags []string
}

// groupKey возвращает ключ группы выполнения шага.
func (d *StepDeclaration) groupKey() string {
	if d.ParallelGroup != "" {
		return d.ParallelGroup
	}
	return d.Name
}
