package steps

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

const (
	// StepTypeHTTP — тип HTTP шага.
	StepTypeHTTP = "http"

	// maxResponseBody ограничивает читаемый размер ответа.
	maxResponseBody = 10 * 1024 * 1024 // 10 MB
)

// Ключи конфигурации HTTP шага.
const (
	configMethod          = "method"
	configURL             = "url"
	configHeaders         = "headers"
	configBody            = "body"
	configFollowRedirects = "follow_redirects"
	configValidateSSL     = "validate_ssl"
	configExpectStatus    = "expect_status"
	configContextKey      = "context_key"
)

// HTTPStep — шаг HTTP запроса.
//
// Выполняет запрос к внешнему API. url, headers и body могут содержать
// шаблоны — они рендерятся по снимку RunContext перед каждой попыткой,
// так что шаг видит данные, записанные предыдущими шагами.
//
// Конфигурация:
//
//	method: POST                       # по умолчанию GET
//	url: "{{ .base_url }}/data"
//	headers:
//	  Authorization: "Bearer {{ .token }}"
//	body:
//	  query: "{{ .query }}"
//	follow_redirects: true             # по умолчанию true
//	validate_ssl: true                 # по умолчанию true
//	expect_status: 200                 # не задан — любой статус < 400
//	context_key: response              # сохранить body в RunContext
//
// Сетевые ошибки и неожиданный статус возвращаются как ошибки, то есть
// попадают под повторы движка. Успех — результат с метрикой status_code,
// телом ответа в Data и заголовками в Metadata.
type HTTPStep struct{}

// NewHTTPStep создаёт новый HTTPStep.
func NewHTTPStep() *HTTPStep {
	return &HTTPStep{}
}

// Type возвращает тип шага.
func (s *HTTPStep) Type() string {
	return StepTypeHTTP
}

// Build собирает функцию HTTP запроса.
func (s *HTTPStep) Build(config map[string]any) (engine.StepFunc, error) {
	cfg, err := s.parseConfig(config)
	if err != nil {
		return nil, err
	}

	// Клиент фиксируется на этапе сборки: настройки TLS и редиректов
	// не зависят от данных запуска.
	client := s.buildClient(cfg)

	return func(ctx context.Context, rc *engine.RunContext) (any, error) {
		snapshot := rc.Snapshot()

		httpReq, url, err := s.buildRequest(ctx, cfg, snapshot)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		defer resp.Body.Close()

		body, headers, err := s.parseResponse(resp)
		if err != nil {
			return nil, err
		}

		if cfg.ExpectStatus > 0 {
			if resp.StatusCode != cfg.ExpectStatus {
				return nil, fmt.Errorf("unexpected status %d, want %d", resp.StatusCode, cfg.ExpectStatus)
			}
		} else if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("http status %d", resp.StatusCode)
		}

		if cfg.ContextKey != "" {
			rc.Set(cfg.ContextKey, body)
		}

		res := domain.Success(fmt.Sprintf("%s %s -> %d", cfg.Method, url, resp.StatusCode)).
			WithData(body).
			SetMetric("status_code", resp.StatusCode).
			SetMeta("headers", headers)
		return res, nil
	}, nil
}

// httpConfig — распарсенная конфигурация HTTP шага.
type httpConfig struct {
	Method          string
	URL             string
	Headers         map[string]string
	Body            any
	FollowRedirects bool
	ValidateSSL     bool
	ExpectStatus    int
	ContextKey      string
}

// parseConfig парсит конфигурацию HTTP шага.
func (s *HTTPStep) parseConfig(config map[string]any) (*httpConfig, error) {
	cfg := &httpConfig{
		Method:          GetConfigString(config, configMethod),
		URL:             GetConfigString(config, configURL),
		Headers:         GetConfigMapString(config, configHeaders),
		Body:            config[configBody],
		FollowRedirects: GetConfigBool(config, configFollowRedirects, true),
		ValidateSSL:     GetConfigBool(config, configValidateSSL, true),
		ExpectStatus:    GetConfigInt(config, configExpectStatus),
		ContextKey:      GetConfigString(config, configContextKey),
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidConfig, StepTypeHTTP)
	}

	// Метод по умолчанию — GET
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)

	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}

	return cfg, nil
}

// buildClient создаёт HTTP клиент с нужными настройками.
// Таймаут не задаётся: попытку ограничивает контекст движка.
func (s *HTTPStep) buildClient(cfg *httpConfig) *http.Client {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: !cfg.ValidateSSL,
	}

	var checkRedirect func(*http.Request, []*http.Request) error
	if !cfg.FollowRedirects {
		checkRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &http.Client{
		CheckRedirect: checkRedirect,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}
}

// buildRequest рендерит url, заголовки и body по снимку контекста
// и создаёт HTTP запрос. Возвращает также отрендеренный url.
func (s *HTTPStep) buildRequest(ctx context.Context, cfg *httpConfig, snapshot map[string]any) (*http.Request, string, error) {
	url, err := Render(cfg.URL, snapshot)
	if err != nil {
		return nil, "", fmt.Errorf("render url: %w", err)
	}

	headers := make(map[string]string, len(cfg.Headers))
	for key, value := range cfg.Headers {
		rendered, err := Render(value, snapshot)
		if err != nil {
			return nil, "", fmt.Errorf("render header %s: %w", key, err)
		}
		headers[key] = rendered
	}

	var bodyReader io.Reader
	if cfg.Body != nil {
		rendered, err := RenderValue(cfg.Body, snapshot)
		if err != nil {
			return nil, "", fmt.Errorf("render body: %w", err)
		}

		bodyBytes, err := s.serializeBody(rendered)
		if err != nil {
			return nil, "", fmt.Errorf("serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)

		// Устанавливаем Content-Type, если не задан
		if _, hasContentType := headers["Content-Type"]; !hasContentType {
			headers["Content-Type"] = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, url, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return req, url, nil
}

// serializeBody сериализует body в bytes.
func (s *HTTPStep) serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// parseResponse читает body ответа и заголовки.
// JSON ответы парсятся, остальные возвращаются строкой.
func (s *HTTPStep) parseResponse(resp *http.Response) (any, map[string]string, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	var body any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			// Не удалось распарсить JSON — возвращаем строкой
			body = string(bodyBytes)
		}
	} else {
		body = string(bodyBytes)
	}

	headers := make(map[string]string)
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return body, headers, nil
}
