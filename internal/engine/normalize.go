package engine

import (
	"fmt"

	"github.com/shaiso/Cascade/internal/domain"
)

// normalize приводит возвращённое шагом значение к каноническому
// результату.
//
// Поддерживаются две формы:
//   - domain.Legacy — тройка (success, message, data), без тегов
//     и метрик;
//   - *domain.StepResult — структурный результат из конструкторов,
//     поля переносятся как есть.
//
// Всё остальное, включая nil, — ошибка контракта шага.
func normalize(value any) (*domain.StepResult, error) {
	switch v := value.(type) {
	case domain.Legacy:
		return &domain.StepResult{
			Success: v.Success,
			Message: v.Message,
			Data:    v.Data,
		}, nil

	case *domain.StepResult:
		if v != nil {
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidReturn, value)
}
