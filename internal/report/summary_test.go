package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
)

func sampleResults() []*domain.StepResult {
	ok := domain.Success("done")
	ok.Name = "extract"
	ok.Executed = true
	ok.Attempts = 1
	ok.TimeTaken = 100 * time.Millisecond

	failed := domain.Failure("Error: boom")
	failed.Name = "load"
	failed.Executed = true
	failed.Attempts = 2
	failed.TimeTaken = 300 * time.Millisecond

	skipped := domain.Skip("Skipped due to previous failure")
	skipped.Name = "notify"

	return []*domain.StepResult{ok, failed, skipped}
}

// TestSummarize проверяет счётчики и флаг успеха.
func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())

	if s.Total != 3 {
		t.Errorf("Total = %d, ожидали 3", s.Total)
	}
	if s.Executed != 2 {
		t.Errorf("Executed = %d, ожидали 2", s.Executed)
	}
	if s.Succeeded != 1 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("счётчики: succeeded=%d failed=%d skipped=%d", s.Succeeded, s.Failed, s.Skipped)
	}
	if s.Success {
		t.Error("Success = true при упавшем шаге")
	}
}

// TestSummarizeDurationExecutedOnly проверяет, что в сумму времени
// входят только выполненные шаги.
func TestSummarizeDurationExecutedOnly(t *testing.T) {
	results := sampleResults()
	// Пропущенному шагу искусственно выставляем время: оно не должно
	// попасть в сумму.
	results[2].TimeTaken = time.Hour

	s := Summarize(results)
	if s.Duration != 400*time.Millisecond {
		t.Errorf("Duration = %v, ожидали 400ms", s.Duration)
	}
}

// TestSummarizeSuccess проверяет, что run без ошибок выполнения
// считается успешным, даже если есть пропуски.
func TestSummarizeSuccess(t *testing.T) {
	ok := domain.Success("done")
	ok.Name = "a"
	ok.Executed = true

	skipped := domain.Skip("nothing to do")
	skipped.Name = "b"

	s := Summarize([]*domain.StepResult{ok, skipped})
	if !s.Success {
		t.Error("Success = false без единой ошибки")
	}
}

// TestSummarizeEmpty проверяет итог пустого списка.
func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || !s.Success {
		t.Errorf("Total = %d, Success = %v", s.Total, s.Success)
	}
}

// TestSummaryToMap проверяет плоскую сериализацию итога.
func TestSummaryToMap(t *testing.T) {
	m := Summarize(sampleResults()).ToMap()

	if m["total"] != 3 {
		t.Errorf("total = %v", m["total"])
	}
	if m["success"] != false {
		t.Errorf("success = %v", m["success"])
	}
	if m["time_taken"] != 0.4 {
		t.Errorf("time_taken = %v, ожидали 0.4", m["time_taken"])
	}
}

// TestWriteTable проверяет табличный вывод и итоговую строку.
func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, sampleResults())
	out := buf.String()

	for _, want := range []string{"STEP", "extract", "succeeded", "load", "failed", "notify", "skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("в выводе нет %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "3 steps: 1 succeeded, 1 failed, 1 skipped") {
		t.Errorf("итоговая строка не найдена:\n%s", out)
	}
}

// TestWriteTableTruncatesDisplayOnly проверяет, что обрезка длинных
// сообщений не меняет сами результаты.
func TestWriteTableTruncatesDisplayOnly(t *testing.T) {
	long := strings.Repeat("x", 200)
	res := domain.Failure(long)
	res.Name = "verbose"
	res.Executed = true
	results := []*domain.StepResult{res}

	var buf bytes.Buffer
	WriteTable(&buf, results)

	if strings.Contains(buf.String(), long) {
		t.Error("сообщение не обрезано при отображении")
	}
	if !strings.Contains(buf.String(), "...") {
		t.Error("нет многоточия у обрезанного сообщения")
	}
	if results[0].Message != long {
		t.Error("обрезка изменила данные результата")
	}
}

// TestTruncate проверяет границы обрезки.
func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("exactly ten", 11); got != "exactly ten" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("0123456789", 8); got != "01234..." {
		t.Errorf("truncate = %q", got)
	}
}
