package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/report"
)

// --- Client ---

func TestClientListRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/runs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		q := r.URL.Query()
		if q.Get("workflow") != "deploy" {
			t.Errorf("expected workflow=deploy, got %q", q.Get("workflow"))
		}
		if q.Get("success") != "false" {
			t.Errorf("expected success=false, got %q", q.Get("success"))
		}
		if q.Get("limit") != "5" {
			t.Errorf("expected limit=5, got %q", q.Get("limit"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "11111111-1111-1111-1111-111111111111", "workflow": "deploy", "success": false, "total_steps": 3, "executed_steps": 2},
			},
			"total": 1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	runs, err := client.ListRuns(ListRunsOpts{Workflow: "deploy", Failed: true, Limit: 5})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Workflow != "deploy" || runs[0].Success || runs[0].TotalSteps != 3 {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestClientGetRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v1/runs/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id": "11111111-1111-1111-1111-111111111111", "workflow": "deploy",
				"success": true, "total_time_sec": 1.5,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	run, err := client.GetRun("11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if !run.Success || run.TotalTimeSec != 1.5 {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestClientGetStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/stats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"total_runs": 10, "succeeded": 8, "failed": 2, "avg_time_sec": 0.75},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	stats, err := client.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.TotalRuns != 10 || stats.Failed != 2 || stats.AvgTimeSec != 0.75 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "run not found"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetRun("missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

// --- Output ---

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{w: &buf, errW: &buf}

	out.Print([]string{"NAME", "STATUS"}, [][]string{{"build", "succeeded"}}, nil)

	got := buf.String()
	if !strings.Contains(got, "NAME") || !strings.Contains(got, "build") {
		t.Errorf("unexpected table output:\n%s", got)
	}
	if !strings.Contains(got, "----") {
		t.Errorf("expected header separator:\n%s", got)
	}
}

func TestOutputJSONMode(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{jsonMode: true, w: &buf, errW: &buf}

	out.Print([]string{"NAME"}, nil, map[string]int{"x": 1})

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["x"] != 1 {
		t.Errorf("unexpected JSON: %v", decoded)
	}
}

func TestOutputReport(t *testing.T) {
	ok := domain.Success("done")
	ok.Name = "build"
	ok.Executed = true
	failed := domain.Failure("boom")
	failed.Name = "deploy"
	failed.Executed = true
	results := []*domain.StepResult{ok, failed}

	// Табличный режим: шаги и итоговая строка.
	var buf bytes.Buffer
	out := &Output{w: &buf, errW: &buf}
	out.Report(results, report.Summarize(results))

	got := buf.String()
	if !strings.Contains(got, "build") || !strings.Contains(got, "deploy") {
		t.Errorf("expected step names in table:\n%s", got)
	}
	if !strings.Contains(got, "1 failed") {
		t.Errorf("expected summary line:\n%s", got)
	}

	// JSON режим: единый документ {summary, results}.
	buf.Reset()
	out = &Output{jsonMode: true, w: &buf, errW: &buf}
	out.Report(results, report.Summarize(results))

	var doc struct {
		Summary map[string]any   `json:"summary"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if doc.Summary["success"] != false {
		t.Errorf("expected success=false, got %v", doc.Summary["success"])
	}
	if len(doc.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(doc.Results))
	}
}

// --- Helpers ---

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"env=prod", "region=eu-west-1", "query=a=b"})
	if err != nil {
		t.Fatalf("parseVars failed: %v", err)
	}

	if vars["env"] != "prod" {
		t.Errorf("expected env=prod, got %q", vars["env"])
	}
	if vars["query"] != "a=b" {
		t.Errorf("expected value with '=', got %q", vars["query"])
	}

	if _, err := parseVars([]string{"novalue"}); err == nil {
		t.Error("expected error for pair without '='")
	}
	if _, err := parseVars([]string{"=x"}); err == nil {
		t.Error("expected error for empty key")
	}

	if vars, _ := parseVars(nil); vars != nil {
		t.Errorf("expected nil for empty input, got %v", vars)
	}
}

func TestStatusWords(t *testing.T) {
	if runStatus(true) != "succeeded" || runStatus(false) != "failed" {
		t.Error("unexpected run status words")
	}

	if stepStatus(StepResponse{Skipped: true, Success: true}) != "skipped" {
		t.Error("skipped flag must win")
	}
	if stepStatus(StepResponse{Success: true}) != "succeeded" {
		t.Error("expected succeeded")
	}
	if stepStatus(StepResponse{}) != "failed" {
		t.Error("expected failed")
	}
}
