package domain

import (
	"testing"
	"time"
)

// TestConstructors проверяет начальное состояние результатов,
// созданных через конструкторы.
func TestConstructors(t *testing.T) {
	tests := []struct {
		name        string
		result      *StepResult
		wantSuccess bool
		wantSkipped bool
	}{
		{"успех", Success("ok"), true, false},
		{"ошибка", Failure("boom"), false, false},
		{"пропуск", Skip("not today"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, ожидали %v", tt.result.Success, tt.wantSuccess)
			}
			if tt.result.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %v, ожидали %v", tt.result.Skipped, tt.wantSkipped)
			}
			if tt.result.Executed {
				t.Error("Executed должен быть false до запуска движком")
			}
			if tt.result.Attempts != 0 {
				t.Errorf("Attempts = %d, ожидали 0", tt.result.Attempts)
			}
		})
	}
}

// TestChaining проверяет, что мутаторы возвращают тот же результат
// и позволяют строить цепочку вызовов.
func TestChaining(t *testing.T) {
	r := Success("done").
		WithData(map[string]any{"rows": 10}).
		AddTag("etl").
		SetMetric("rows", 10).
		SetMeta("source", "s3")

	if r.Data == nil {
		t.Error("Data не установлена")
	}
	if len(r.Tags) != 1 || r.Tags[0] != "etl" {
		t.Errorf("Tags = %v, ожидали [etl]", r.Tags)
	}
	if r.Metrics["rows"] != 10 {
		t.Errorf("Metrics[rows] = %v, ожидали 10", r.Metrics["rows"])
	}
	if r.Metadata["source"] != "s3" {
		t.Errorf("Metadata[source] = %v, ожидали s3", r.Metadata["source"])
	}
}

// TestAddTagDeduplicates проверяет, что дубликаты тегов игнорируются,
// а порядок первого добавления сохраняется.
func TestAddTagDeduplicates(t *testing.T) {
	r := Success("ok").AddTag("b").AddTag("a").AddTag("b").AddTag("c").AddTag("a")

	want := []string{"b", "a", "c"}
	if len(r.Tags) != len(want) {
		t.Fatalf("Tags = %v, ожидали %v", r.Tags, want)
	}
	for i := range want {
		if r.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %q, ожидали %q", i, r.Tags[i], want[i])
		}
	}
}

// TestSetMetricOverwrites проверяет перезапись метрики по тому же имени.
func TestSetMetricOverwrites(t *testing.T) {
	r := Success("ok").SetMetric("rows", 1).SetMetric("rows", 42)

	if got := r.Metrics["rows"]; got != 42 {
		t.Errorf("Metrics[rows] = %v, ожидали 42", got)
	}
	if len(r.Metrics) != 1 {
		t.Errorf("len(Metrics) = %d, ожидали 1", len(r.Metrics))
	}
}

// TestStatus проверяет вывод статуса из флагов результата.
func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		result *StepResult
		want   string
	}{
		{"успех", &StepResult{Success: true, Executed: true}, StatusSucceeded},
		{"ошибка", &StepResult{Success: false, Executed: true}, StatusFailed},
		{"пропуск до запуска", &StepResult{Success: true, Skipped: true}, StatusSkipped},
		{"пропуск из шага", &StepResult{Success: true, Skipped: true, Executed: true}, StatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Status(); got != tt.want {
				t.Errorf("Status() = %q, ожидали %q", got, tt.want)
			}
		})
	}
}

// TestToMap проверяет плоскую сериализацию: время в секундах,
// копии слайсов и словарей вместо ссылок.
func TestToMap(t *testing.T) {
	r := Success("done").AddTag("etl").SetMetric("rows", 10)
	r.Name = "extract"
	r.Executed = true
	r.Attempts = 2
	r.TimeTaken = 1500 * time.Millisecond

	m := r.ToMap()

	if m["name"] != "extract" {
		t.Errorf("name = %v", m["name"])
	}
	if m["success"] != true {
		t.Errorf("success = %v", m["success"])
	}
	if m["time_taken"] != 1.5 {
		t.Errorf("time_taken = %v, ожидали 1.5", m["time_taken"])
	}
	if m["attempts"] != 2 {
		t.Errorf("attempts = %v, ожидали 2", m["attempts"])
	}
	if _, ok := m["last_error"]; ok {
		t.Error("last_error не должен попадать в словарь без ошибки")
	}

	// Мутация копий не должна трогать оригинал.
	m["tags"].([]string)[0] = "changed"
	m["metrics"].(map[string]any)["rows"] = 0
	if r.Tags[0] != "etl" {
		t.Error("ToMap вернул ссылку на исходный слайс тегов")
	}
	if r.Metrics["rows"] != 10 {
		t.Error("ToMap вернул ссылку на исходный словарь метрик")
	}
}

// TestToMapLastError проверяет, что текст последней ошибки
// попадает в словарь только когда он непустой.
func TestToMapLastError(t *testing.T) {
	r := Failure("Error: boom")
	r.LastError = "boom"

	m := r.ToMap()
	if m["last_error"] != "boom" {
		t.Errorf("last_error = %v, ожидали boom", m["last_error"])
	}
}
