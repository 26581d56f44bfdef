package report

import (
	"time"

	"github.com/shaiso/Cascade/internal/domain"
)

// Summary — агрегированный итог одного run.
type Summary struct {
	// Total — общее число результатов.
	Total int

	// Executed — число шагов, дошедших до выполнения.
	Executed int

	// Succeeded — число успешных шагов (без пропущенных).
	Succeeded int

	// Failed — число выполненных шагов с ошибкой.
	Failed int

	// Skipped — число пропущенных шагов.
	Skipped int

	// Duration — суммарное время выполненных шагов.
	// Пропуски времени не тратят и в сумму не входят.
	Duration time.Duration

	// Success — run без единой ошибки выполнения.
	// Определяет код выхода CLI и статус в архиве.
	Success bool
}

// Summarize вычисляет итог по списку результатов.
// Чистая функция: входной список не меняется.
func Summarize(results []*domain.StepResult) Summary {
	s := Summary{Total: len(results)}

	for _, res := range results {
		if res.Executed {
			s.Executed++
			s.Duration += res.TimeTaken
		}

		switch res.Status() {
		case domain.StatusSucceeded:
			s.Succeeded++
		case domain.StatusFailed:
			s.Failed++
		case domain.StatusSkipped:
			s.Skipped++
		}
	}

	s.Success = s.Failed == 0
	return s
}

// ToMap сериализует итог в плоский словарь. Время — в секундах,
// в одном формате с domain.StepResult.ToMap.
func (s Summary) ToMap() map[string]any {
	return map[string]any{
		"total":      s.Total,
		"executed":   s.Executed,
		"succeeded":  s.Succeeded,
		"failed":     s.Failed,
		"skipped":    s.Skipped,
		"time_taken": s.Duration.Seconds(),
		"success":    s.Success,
	}
}

// ResultMaps сериализует результаты в список плоских словарей
// для JSON-вывода, публикации и архива.
func ResultMaps(results []*domain.StepResult) []map[string]any {
	out := make([]map[string]any, len(results))
	for i, res := range results {
		out[i] = res.ToMap()
	}
	return out
}
