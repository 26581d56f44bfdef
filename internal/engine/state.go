package engine

import "github.com/shaiso/Cascade/internal/domain"

// runState — состояние одного прохода Execute в памяти.
//
// Создаётся при входе в Execute и живёт до его выхода, между
// запусками не переиспользуется. Принадлежит горутине Execute:
// результаты добавляются только из неё, поэтому синхронизация
// не нужна.
type runState struct {
	// results — накопленные результаты в порядке завершения.
	results []*domain.StepResult

	// succeeded — имена шагов с Success == true (включая пропуски:
	// пропуск не считается ошибкой).
	succeeded map[string]bool

	// counts — счётчики итогов для журнала и метрик.
	counts runStats
}

// runStats — счётчики итогов одного run.
type runStats struct {
	Succeeded int
	Failed    int
	Skipped   int
}

func newRunState(capacity int) *runState {
	return &runState{
		results:   make([]*domain.StepResult, 0, capacity),
		succeeded: make(map[string]bool, capacity),
	}
}

// append фиксирует результат шага: добавляет его в список
// и обновляет множество успешных имён и счётчики.
func (s *runState) append(res *domain.StepResult) {
	s.results = append(s.results, res)

	if res.Success {
		s.succeeded[res.Name] = true
	}

	switch res.Status() {
	case domain.StatusSucceeded:
		s.counts.Succeeded++
	case domain.StatusFailed:
		s.counts.Failed++
	case domain.StatusSkipped:
		s.counts.Skipped++
	}
}

// hasFailure сообщает, был ли выполненный шаг с ошибкой.
func (s *runState) hasFailure() bool {
	return s.counts.Failed > 0
}

// succeededSnapshot возвращает копию множества успешных имён
// на момент старта группы. Шаги одной группы проверяют зависимости
// по этому снимку: параллельный сосед зависимость не удовлетворяет.
func (s *runState) succeededSnapshot() map[string]bool {
	snap := make(map[string]bool, len(s.succeeded))
	for name := range s.succeeded {
		snap[name] = true
	}
	return snap
}
