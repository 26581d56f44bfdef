package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/mq"
)

// RunRecord — строка таблицы runs: итог одного завершённого запуска.
// Архив хранит только отчёты, не состояние выполнения.
type RunRecord struct {
	ID            uuid.UUID
	Workflow      string
	Success       bool
	TotalSteps    int
	ExecutedSteps int
	Succeeded     int
	Failed        int
	Skipped       int

	// TotalTimeSec — суммарное время выполненных шагов в секундах.
	TotalTimeSec float64

	// Context — итоговый контекст запуска (JSONB).
	Context map[string]any

	StartedAt  time.Time
	FinishedAt time.Time
	CreatedAt  time.Time
}

// StepRecord — строка таблицы run_steps: результат одного шага.
type StepRecord struct {
	ID    uuid.UUID
	RunID uuid.UUID

	// Position — порядковый номер в отчёте запуска.
	Position int

	Name     string
	Success  bool
	Message  string
	Skipped  bool
	Executed bool

	// TimeTakenSec — время шага в секундах, включая повторы.
	TimeTakenSec float64

	Attempts  int
	Tags      []string
	Metrics   map[string]any
	Metadata  map[string]any
	Data      any
	LastError string
	CreatedAt time.Time
}

// recordsFromPayload превращает событие run.completed в строки архива.
// Числа в payload после JSON round-trip приходят как float64, хелперы
// ниже это учитывают.
func recordsFromPayload(p mq.RunCompletedPayload) (*RunRecord, []StepRecord, error) {
	if p.RunID == uuid.Nil {
		return nil, nil, fmt.Errorf("payload has no run_id")
	}
	if p.Workflow == "" {
		return nil, nil, fmt.Errorf("payload has no workflow name")
	}

	run := &RunRecord{
		ID:            p.RunID,
		Workflow:      p.Workflow,
		Success:       p.Success,
		TotalSteps:    mapInt(p.Summary, "total"),
		ExecutedSteps: mapInt(p.Summary, "executed"),
		Succeeded:     mapInt(p.Summary, "succeeded"),
		Failed:        mapInt(p.Summary, "failed"),
		Skipped:       mapInt(p.Summary, "skipped"),
		TotalTimeSec:  mapFloat(p.Summary, "time_taken"),
		Context:       p.Context,
		StartedAt:     p.StartedAt,
		FinishedAt:    p.FinishedAt,
	}

	steps := make([]StepRecord, 0, len(p.Results))
	for i, m := range p.Results {
		steps = append(steps, StepRecord{
			ID:           uuid.New(),
			RunID:        p.RunID,
			Position:     i,
			Name:         mapString(m, "name"),
			Success:      mapBool(m, "success"),
			Message:      mapString(m, "message"),
			Skipped:      mapBool(m, "skipped"),
			Executed:     mapBool(m, "executed"),
			TimeTakenSec: mapFloat(m, "time_taken"),
			Attempts:     mapInt(m, "attempts"),
			Tags:         mapStrings(m, "tags"),
			Metrics:      mapMap(m, "metrics"),
			Metadata:     mapMap(m, "metadata"),
			Data:         m["data"],
			LastError:    mapString(m, "last_error"),
		})
	}

	return run, steps, nil
}

func mapInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func mapFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func mapBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func mapString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func mapStrings(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

func mapMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}
