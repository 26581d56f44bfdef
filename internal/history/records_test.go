package history

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/mq"
)

// --- Разбор payload ---

func TestRecordsFromPayload(t *testing.T) {
	runID := uuid.New()
	started := time.Now().Add(-time.Minute)
	finished := time.Now()

	// Числа как float64 — так они приходят после JSON round-trip
	payload := mq.RunCompletedPayload{
		RunID:    runID,
		Workflow: "deploy",
		Success:  true,
		Summary: map[string]any{
			"total":      float64(3),
			"executed":   float64(2),
			"succeeded":  float64(2),
			"failed":     float64(0),
			"skipped":    float64(1),
			"time_taken": 1.25,
			"success":    true,
		},
		Results: []map[string]any{
			{
				"name":       "fetch",
				"success":    true,
				"message":    "GET / -> 200",
				"data":       map[string]any{"id": float64(7)},
				"executed":   true,
				"time_taken": 0.75,
				"attempts":   float64(1),
				"tags":       []any{"net", "release"},
				"metrics":    map[string]any{"status_code": float64(200)},
			},
			{
				"name":       "verify",
				"success":    true,
				"message":    "2 checks passed",
				"executed":   true,
				"time_taken": 0.5,
				"attempts":   float64(2),
				"last_error": "attempt 1: connection refused",
			},
			{
				"name":    "announce",
				"success": true,
				"message": "Context key \"dry_run\" is absent",
				"skipped": true,
			},
		},
		Context:    map[string]any{"region": "eu-west-1"},
		StartedAt:  started,
		FinishedAt: finished,
	}

	run, steps, err := recordsFromPayload(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.ID != runID {
		t.Errorf("unexpected run id: %v", run.ID)
	}
	if run.Workflow != "deploy" {
		t.Errorf("unexpected workflow: %q", run.Workflow)
	}
	if run.TotalSteps != 3 || run.ExecutedSteps != 2 || run.Succeeded != 2 || run.Skipped != 1 {
		t.Errorf("unexpected counters: %+v", run)
	}
	if run.TotalTimeSec != 1.25 {
		t.Errorf("expected total time 1.25, got %v", run.TotalTimeSec)
	}
	if run.Context["region"] != "eu-west-1" {
		t.Errorf("context lost: %v", run.Context)
	}

	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}

	fetch := steps[0]
	if fetch.Position != 0 || fetch.Name != "fetch" {
		t.Errorf("unexpected first step: %+v", fetch)
	}
	if fetch.ID == uuid.Nil {
		t.Error("step id should be generated")
	}
	if fetch.RunID != runID {
		t.Errorf("step should carry run id: %v", fetch.RunID)
	}
	if fetch.TimeTakenSec != 0.75 || fetch.Attempts != 1 {
		t.Errorf("unexpected timing: %+v", fetch)
	}
	if len(fetch.Tags) != 2 || fetch.Tags[0] != "net" {
		t.Errorf("tags should survive []any: %v", fetch.Tags)
	}
	if fetch.Metrics["status_code"] != float64(200) {
		t.Errorf("metrics lost: %v", fetch.Metrics)
	}

	verify := steps[1]
	if verify.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", verify.Attempts)
	}
	if !strings.Contains(verify.LastError, "connection refused") {
		t.Errorf("last error lost: %q", verify.LastError)
	}

	announce := steps[2]
	if !announce.Skipped || announce.Executed {
		t.Errorf("skip flags lost: %+v", announce)
	}
	if announce.Tags != nil {
		t.Errorf("absent tags should stay nil: %v", announce.Tags)
	}
}

func TestRecordsFromPayloadRejectsIncomplete(t *testing.T) {
	// Без run_id
	_, _, err := recordsFromPayload(mq.RunCompletedPayload{Workflow: "x"})
	if err == nil {
		t.Error("expected error for missing run_id")
	}

	// Без имени процесса
	_, _, err = recordsFromPayload(mq.RunCompletedPayload{RunID: uuid.New()})
	if err == nil {
		t.Error("expected error for missing workflow")
	}
}
