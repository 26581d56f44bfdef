package steps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

// mustBuild собирает функцию шага или завершает тест.
func mustBuild(t *testing.T, step Step, config map[string]any) engine.StepFunc {
	t.Helper()
	fn, err := step.Build(config)
	if err != nil {
		t.Fatalf("build %s: %v", step.Type(), err)
	}
	return fn
}

// --- Registry ---

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	// Пустой реестр
	if r.Count() != 0 {
		t.Errorf("expected empty registry")
	}

	// Регистрация
	r.Register(NewDelayStep())
	if r.Count() != 1 {
		t.Errorf("expected 1 step, got %d", r.Count())
	}

	// Получение
	step, err := r.Get("delay")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if step.Type() != "delay" {
		t.Errorf("expected delay, got %s", step.Type())
	}

	// Несуществующий тип
	_, err = r.Get("unknown")
	if !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected ErrStepNotFound, got %v", err)
	}

	// Has
	if !r.Has("delay") {
		t.Error("should have delay")
	}
	if r.Has("unknown") {
		t.Error("should not have unknown")
	}

	// Unregister
	r.Unregister("delay")
	if r.Has("delay") {
		t.Error("should not have delay after unregister")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	expectedTypes := []string{"command", "delay", "http", "transform", "validate"}
	for _, typ := range expectedTypes {
		if !r.Has(typ) {
			t.Errorf("default registry should have %s", typ)
		}
	}

	types := r.Types()
	if len(types) != len(expectedTypes) {
		t.Fatalf("expected %d types, got %d", len(expectedTypes), len(types))
	}
	// Types отсортирован
	for i, typ := range expectedTypes {
		if types[i] != typ {
			t.Errorf("expected %s at %d, got %s", typ, i, types[i])
		}
	}
}

// --- Delay ---

func TestDelayStep_Type(t *testing.T) {
	if NewDelayStep().Type() != "delay" {
		t.Errorf("expected 'delay', got %s", NewDelayStep().Type())
	}
}

func TestDelayStep_Execute(t *testing.T) {
	fn := mustBuild(t, NewDelayStep(), map[string]any{
		"duration_ms": 50,
	})

	start := time.Now()
	raw, err := fn(context.Background(), engine.NewRunContext(nil))
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("delay was too short: %v", elapsed)
	}

	res, ok := raw.(*domain.StepResult)
	if !ok {
		t.Fatalf("expected *domain.StepResult, got %T", raw)
	}
	if !res.Success {
		t.Error("delay should succeed")
	}
	if res.Metrics["duration_ms"] != int64(50) {
		t.Errorf("expected duration_ms metric 50, got %v", res.Metrics["duration_ms"])
	}
}

func TestDelayStep_Seconds(t *testing.T) {
	// duration_sec принимает дробные секунды.
	fn := mustBuild(t, NewDelayStep(), map[string]any{
		"duration_sec": 0.05,
	})

	start := time.Now()
	if _, err := fn(context.Background(), engine.NewRunContext(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("delay was too short: %v", elapsed)
	}
}

func TestDelayStep_Cancellation(t *testing.T) {
	fn := mustBuild(t, NewDelayStep(), map[string]any{
		"duration_ms": 1000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := fn(ctx, engine.NewRunContext(nil))
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("cancellation took too long: %v", elapsed)
	}
}

func TestDelayStep_InvalidConfig(t *testing.T) {
	_, err := NewDelayStep().Build(map[string]any{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// --- HTTP ---

func TestHTTPStep_Type(t *testing.T) {
	if NewHTTPStep().Type() != "http" {
		t.Errorf("expected 'http', got %s", NewHTTPStep().Type())
	}
}

func TestHTTPStep_GET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"data":   []int{1, 2, 3},
		})
	}))
	defer server.Close()

	fn := mustBuild(t, NewHTTPStep(), map[string]any{
		"method": "GET",
		"url":    server.URL,
	})

	raw, err := fn(context.Background(), engine.NewRunContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := raw.(*domain.StepResult)
	if !res.Success {
		t.Error("request should succeed")
	}
	if res.Metrics["status_code"] != 200 {
		t.Errorf("expected status_code 200, got %v", res.Metrics["status_code"])
	}

	body, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected body map, got %T", res.Data)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
}

func TestHTTPStep_POST_JSON(t *testing.T) {
	var receivedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json")
		}

		json.NewDecoder(r.Body).Decode(&receivedBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 123})
	}))
	defer server.Close()

	fn := mustBuild(t, NewHTTPStep(), map[string]any{
		"method":        "POST",
		"url":           server.URL,
		"expect_status": 201,
		"body": map[string]any{
			"name":  "test",
			"value": 42,
		},
	})

	raw, err := fn(context.Background(), engine.NewRunContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := raw.(*domain.StepResult)
	if res.Metrics["status_code"] != 201 {
		t.Errorf("expected status_code 201, got %v", res.Metrics["status_code"])
	}
	if receivedBody["name"] != "test" {
		t.Errorf("expected name 'test', got %v", receivedBody["name"])
	}
}

func TestHTTPStep_TemplatedRequest(t *testing.T) {
	// url и заголовки рендерятся по снимку контекста.
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fn := mustBuild(t, NewHTTPStep(), map[string]any{
		"url": "{{ .base_url }}/users/{{ .user_id }}",
		"headers": map[string]any{
			"Authorization": "Bearer {{ .token }}",
		},
	})

	rc := engine.NewRunContext(map[string]any{
		"base_url": server.URL,
		"user_id":  42,
		"token":    "secret123",
	})

	if _, err := fn(context.Background(), rc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receivedAuth != "Bearer secret123" {
		t.Errorf("expected rendered auth header, got %q", receivedAuth)
	}
}

func TestHTTPStep_ContextKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": float64(7)})
	}))
	defer server.Close()

	fn := mustBuild(t, NewHTTPStep(), map[string]any{
		"url":         server.URL,
		"context_key": "response",
	})

	rc := engine.NewRunContext(nil)
	if _, err := fn(context.Background(), rc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, ok := rc.Get("response")
	if !ok {
		t.Fatal("response should be stored in context")
	}
	if stored.(map[string]any)["id"] != float64(7) {
		t.Errorf("unexpected stored body: %v", stored)
	}
}

func TestHTTPStep_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// Без expect_status статус >= 400 — ошибка.
	fn := mustBuild(t, NewHTTPStep(), map[string]any{"url": server.URL})
	if _, err := fn(context.Background(), engine.NewRunContext(nil)); err == nil {
		t.Fatal("expected error for status 500")
	} else if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention status: %v", err)
	}

	// С expect_status любой другой статус — ошибка.
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()

	fn = mustBuild(t, NewHTTPStep(), map[string]any{
		"url":           okServer.URL,
		"expect_status": 204,
	})
	if _, err := fn(context.Background(), engine.NewRunContext(nil)); err == nil {
		t.Fatal("expected error for status mismatch")
	}
}

func TestHTTPStep_InvalidConfig(t *testing.T) {
	_, err := NewHTTPStep().Build(map[string]any{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestHTTPStep_Cancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fn := mustBuild(t, NewHTTPStep(), map[string]any{"url": server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fn(ctx, engine.NewRunContext(nil))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

// --- Command ---

func TestCommandStep_Type(t *testing.T) {
	if NewCommandStep().Type() != "command" {
		t.Errorf("expected 'command', got %s", NewCommandStep().Type())
	}
}

func TestCommandStep_Execute(t *testing.T) {
	fn := mustBuild(t, NewCommandStep(), map[string]any{
		"command": []any{"sh", "-c", "echo hello"},
	})

	raw, err := fn(context.Background(), engine.NewRunContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	legacy, ok := raw.(domain.Legacy)
	if !ok {
		t.Fatalf("expected domain.Legacy, got %T", raw)
	}
	if !legacy.Success {
		t.Errorf("command should succeed: %s", legacy.Message)
	}
	if legacy.Data != "hello" {
		t.Errorf("expected trimmed stdout 'hello', got %v", legacy.Data)
	}
}

func TestCommandStep_Template(t *testing.T) {
	fn := mustBuild(t, NewCommandStep(), map[string]any{
		"command":     []any{"sh", "-c", "echo {{ .name }}"},
		"context_key": "output",
	})

	rc := engine.NewRunContext(map[string]any{"name": "world"})
	raw, err := fn(context.Background(), rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if legacy := raw.(domain.Legacy); legacy.Data != "world" {
		t.Errorf("expected rendered output 'world', got %v", legacy.Data)
	}
	if stored, _ := rc.Get("output"); stored != "world" {
		t.Errorf("expected output in context, got %v", stored)
	}
}

func TestCommandStep_ExitCode(t *testing.T) {
	// Ненулевой код выхода — готовый неуспешный результат, не ошибка.
	fn := mustBuild(t, NewCommandStep(), map[string]any{
		"command": []any{"sh", "-c", "echo oops >&2; exit 3"},
	})

	raw, err := fn(context.Background(), engine.NewRunContext(nil))
	if err != nil {
		t.Fatalf("exit code should not be an error: %v", err)
	}

	legacy := raw.(domain.Legacy)
	if legacy.Success {
		t.Error("command should fail")
	}
	if !strings.Contains(legacy.Message, "oops") {
		t.Errorf("message should carry stderr: %q", legacy.Message)
	}

	data := legacy.Data.(map[string]any)
	if data["exit_code"] != 3 {
		t.Errorf("expected exit_code 3, got %v", data["exit_code"])
	}
}

func TestCommandStep_StartError(t *testing.T) {
	// Отсутствующий бинарь — ошибка запуска, попадает под повторы.
	fn := mustBuild(t, NewCommandStep(), map[string]any{
		"command": []any{"definitely-not-a-binary-5c1a"},
	})

	if _, err := fn(context.Background(), engine.NewRunContext(nil)); err == nil {
		t.Fatal("expected start error")
	}
}

func TestCommandStep_InvalidConfig(t *testing.T) {
	_, err := NewCommandStep().Build(map[string]any{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// --- Transform ---

func TestTransformStep_Type(t *testing.T) {
	if NewTransformStep().Type() != "transform" {
		t.Errorf("expected 'transform', got %s", NewTransformStep().Type())
	}
}

func TestTransformStep_Execute(t *testing.T) {
	fn := mustBuild(t, NewTransformStep(), map[string]any{
		"mappings": map[string]any{
			"total":    "{{ .count }}",
			"greeting": "hello {{ .name | upper }}",
		},
	})

	rc := engine.NewRunContext(map[string]any{
		"count": 2,
		"name":  "abc",
	})

	raw, err := fn(context.Background(), rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := raw.(*domain.StepResult)
	outputs := res.Data.(map[string]any)

	// "2" парсится как int64
	if outputs["total"] != int64(2) {
		t.Errorf("expected total 2, got %v (type %T)", outputs["total"], outputs["total"])
	}
	if outputs["greeting"] != "hello ABC" {
		t.Errorf("expected greeting 'hello ABC', got %v", outputs["greeting"])
	}

	// Результаты записаны в контекст
	if stored, _ := rc.Get("total"); stored != int64(2) {
		t.Errorf("expected total in context, got %v", stored)
	}
	if stored, _ := rc.Get("greeting"); stored != "hello ABC" {
		t.Errorf("expected greeting in context, got %v", stored)
	}
}

func TestTransformStep_JSONOutput(t *testing.T) {
	fn := mustBuild(t, NewTransformStep(), map[string]any{
		"mappings": map[string]any{
			"items": "{{ .raw | json }}",
		},
	})

	rc := engine.NewRunContext(map[string]any{
		"raw": []any{float64(1), float64(2)},
	})

	raw, err := fn(context.Background(), rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outputs := raw.(*domain.StepResult).Data.(map[string]any)
	items, ok := outputs["items"].([]any)
	if !ok {
		t.Fatalf("expected parsed array, got %T", outputs["items"])
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestTransformStep_RenderError(t *testing.T) {
	fn := mustBuild(t, NewTransformStep(), map[string]any{
		"mappings": map[string]any{
			"broken": "{{ .x",
		},
	})

	_, err := fn(context.Background(), engine.NewRunContext(nil))
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}
}

func TestTransformStep_InvalidConfig(t *testing.T) {
	_, err := NewTransformStep().Build(map[string]any{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// --- Validate ---

func TestValidateStep_Type(t *testing.T) {
	if NewValidateStep().Type() != "validate" {
		t.Errorf("expected 'validate', got %s", NewValidateStep().Type())
	}
}

func TestValidateStep_Pass(t *testing.T) {
	fn := mustBuild(t, NewValidateStep(), map[string]any{
		"checks": []any{
			map[string]any{"key": "status", "equals": "ok"},
			map[string]any{"key": "items", "not_empty": true},
			map[string]any{"key": "total", "min": 1, "max": 10},
			map[string]any{"key": "region", "contains": "eu"},
		},
	})

	rc := engine.NewRunContext(map[string]any{
		"status": "ok",
		"items":  []any{"a"},
		"total":  5,
		"region": "eu-west-1",
	})

	raw, err := fn(context.Background(), rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := raw.(*domain.StepResult)
	if !res.Success {
		t.Errorf("checks should pass: %s", res.Message)
	}
	if res.Metrics["checks"] != 4 {
		t.Errorf("expected checks metric 4, got %v", res.Metrics["checks"])
	}
}

func TestValidateStep_Failures(t *testing.T) {
	// Неуспех перечисляет все непройденные проверки.
	fn := mustBuild(t, NewValidateStep(), map[string]any{
		"checks": []any{
			map[string]any{"key": "status", "equals": "ok"},
			map[string]any{"key": "missing"},
			map[string]any{"key": "total", "min": 10},
		},
	})

	rc := engine.NewRunContext(map[string]any{
		"status": "error",
		"total":  5,
	})

	raw, err := fn(context.Background(), rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := raw.(*domain.StepResult)
	if res.Success {
		t.Fatal("checks should fail")
	}
	if res.Skipped {
		t.Error("failure is not a skip")
	}
	for _, fragment := range []string{"status", "missing", "total"} {
		if !strings.Contains(res.Message, fragment) {
			t.Errorf("message should mention %q: %s", fragment, res.Message)
		}
	}
}

func TestValidateStep_SkipIfMissing(t *testing.T) {
	// Отсутствие ключа при skip_if_missing — осознанный пропуск.
	fn := mustBuild(t, NewValidateStep(), map[string]any{
		"checks": []any{
			map[string]any{"key": "optional", "equals": "x"},
		},
		"skip_if_missing": true,
	})

	raw, err := fn(context.Background(), engine.NewRunContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := raw.(*domain.StepResult)
	if !res.Skipped {
		t.Error("expected skip")
	}
	if !res.Success {
		t.Error("skip implies success")
	}
}

func TestValidateStep_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
	}{
		{"без checks", map[string]any{}},
		{"проверка без key", map[string]any{
			"checks": []any{map[string]any{"equals": "x"}},
		}},
		{"min не число", map[string]any{
			"checks": []any{map[string]any{"key": "a", "min": "ten"}},
		}},
		{"элемент не mapping", map[string]any{
			"checks": []any{"just a string"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewValidateStep().Build(tt.config); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

// --- Шаблоны ---

func TestRender(t *testing.T) {
	data := map[string]any{"name": "cascade", "empty": ""}

	// Строка без выражений возвращается как есть
	out, err := Render("plain text", data)
	if err != nil || out != "plain text" {
		t.Errorf("expected passthrough, got %q, %v", out, err)
	}

	// Подстановка
	out, err = Render("hello {{ .name }}", data)
	if err != nil || out != "hello cascade" {
		t.Errorf("expected substitution, got %q, %v", out, err)
	}

	// Функция default
	out, err = Render(`{{ .empty | default "fallback" }}`, data)
	if err != nil || out != "fallback" {
		t.Errorf("expected fallback, got %q, %v", out, err)
	}

	// Функция upper
	out, err = Render("{{ .name | upper }}", data)
	if err != nil || out != "CASCADE" {
		t.Errorf("expected upper, got %q, %v", out, err)
	}
}

func TestRenderParseError(t *testing.T) {
	_, err := Render("{{ .broken", nil)
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}
}

func TestRenderValue(t *testing.T) {
	data := map[string]any{"host": "example.com"}

	value := map[string]any{
		"url":   "https://{{ .host }}/api",
		"count": 3,
		"tags":  []any{"{{ .host }}", "static"},
	}

	rendered, err := RenderValue(value, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := rendered.(map[string]any)
	if m["url"] != "https://example.com/api" {
		t.Errorf("unexpected url: %v", m["url"])
	}
	if m["count"] != 3 {
		t.Errorf("scalar should pass through, got %v", m["count"])
	}
	tags := m["tags"].([]any)
	if tags[0] != "example.com" || tags[1] != "static" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

// --- Извлечение значений конфига ---

func TestGetConfigHelpers(t *testing.T) {
	config := map[string]any{
		"string_val":     "test",
		"int_val":        42,
		"float_val":      3.14,
		"bool_val":       true,
		"map_val":        map[string]any{"key": "value"},
		"string_map_val": map[string]string{"key": "value"},
		"slice_val":      []any{"a", "b", 3},
	}

	// GetConfigString
	if GetConfigString(config, "string_val") != "test" {
		t.Error("GetConfigString failed")
	}
	if GetConfigString(config, "missing") != "" {
		t.Error("GetConfigString should return empty for missing")
	}

	// GetConfigInt
	if GetConfigInt(config, "int_val") != 42 {
		t.Error("GetConfigInt failed for int")
	}
	if GetConfigInt(config, "float_val") != 3 {
		t.Error("GetConfigInt failed for float")
	}
	if GetConfigInt(config, "missing") != 0 {
		t.Error("GetConfigInt should return 0 for missing")
	}

	// GetConfigFloat
	if GetConfigFloat(config, "float_val") != 3.14 {
		t.Error("GetConfigFloat failed for float")
	}
	if GetConfigFloat(config, "int_val") != 42.0 {
		t.Error("GetConfigFloat failed for int")
	}

	// GetConfigBool
	if !GetConfigBool(config, "bool_val", false) {
		t.Error("GetConfigBool failed")
	}
	if !GetConfigBool(config, "missing", true) {
		t.Error("GetConfigBool should return default for missing")
	}

	// GetConfigMap
	m := GetConfigMap(config, "map_val")
	if m == nil || m["key"] != "value" {
		t.Error("GetConfigMap failed")
	}

	// GetConfigMapString
	ms := GetConfigMapString(config, "string_map_val")
	if ms == nil || ms["key"] != "value" {
		t.Error("GetConfigMapString failed for string map")
	}
	ms = GetConfigMapString(config, "map_val")
	if ms == nil || ms["key"] != "value" {
		t.Error("GetConfigMapString failed for any map")
	}

	// GetConfigStringSlice: нестроковые элементы пропускаются
	s := GetConfigStringSlice(config, "slice_val")
	if len(s) != 2 || s[0] != "a" || s[1] != "b" {
		t.Errorf("GetConfigStringSlice failed: %v", s)
	}
	if GetConfigStringSlice(config, "missing") != nil {
		t.Error("GetConfigStringSlice should return nil for missing")
	}
}
