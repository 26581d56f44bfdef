package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/history"
)

// RunResponse — ответ с запуском.
type RunResponse struct {
	ID            uuid.UUID      `json:"id"`
	Workflow      string         `json:"workflow"`
	Success       bool           `json:"success"`
	TotalSteps    int            `json:"total_steps"`
	ExecutedSteps int            `json:"executed_steps"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	Skipped       int            `json:"skipped"`
	TotalTimeSec  float64        `json:"total_time_sec"`
	Context       map[string]any `json:"context,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// RunFromRecord конвертирует history.RunRecord в RunResponse.
func RunFromRecord(r history.RunRecord) RunResponse {
	return RunResponse{
		ID:            r.ID,
		Workflow:      r.Workflow,
		Success:       r.Success,
		TotalSteps:    r.TotalSteps,
		ExecutedSteps: r.ExecutedSteps,
		Succeeded:     r.Succeeded,
		Failed:        r.Failed,
		Skipped:       r.Skipped,
		TotalTimeSec:  r.TotalTimeSec,
		Context:       r.Context,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		CreatedAt:     r.CreatedAt,
	}
}

// StepResponse — ответ с шагом запуска.
type StepResponse struct {
	ID           uuid.UUID      `json:"id"`
	Position     int            `json:"position"`
	Name         string         `json:"name"`
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Skipped      bool           `json:"skipped"`
	Executed     bool           `json:"executed"`
	TimeTakenSec float64        `json:"time_taken_sec"`
	Attempts     int            `json:"attempts"`
	Tags         []string       `json:"tags,omitempty"`
	Metrics      map[string]any `json:"metrics,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Data         any            `json:"data,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
}

// StepFromRecord конвертирует history.StepRecord в StepResponse.
func StepFromRecord(s history.StepRecord) StepResponse {
	return StepResponse{
		ID:           s.ID,
		Position:     s.Position,
		Name:         s.Name,
		Success:      s.Success,
		Message:      s.Message,
		Skipped:      s.Skipped,
		Executed:     s.Executed,
		TimeTakenSec: s.TimeTakenSec,
		Attempts:     s.Attempts,
		Tags:         s.Tags,
		Metrics:      s.Metrics,
		Metadata:     s.Metadata,
		Data:         s.Data,
		LastError:    s.LastError,
	}
}

// StatsResponse — ответ с агрегатом архива.
type StatsResponse struct {
	TotalRuns  int64   `json:"total_runs"`
	Succeeded  int64   `json:"succeeded"`
	Failed     int64   `json:"failed"`
	Workflows  int64   `json:"workflows"`
	TotalSteps int64   `json:"total_steps"`
	AvgTimeSec float64 `json:"avg_time_sec"`
}

// StatsFromRecord конвертирует history.Stats в StatsResponse.
func StatsFromRecord(s history.Stats) StatsResponse {
	return StatsResponse{
		TotalRuns:  s.TotalRuns,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Workflows:  s.Workflows,
		TotalSteps: s.TotalSteps,
		AvgTimeSec: s.AvgTimeSec,
	}
}
