package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// RunResponse — запуск из API.
type RunResponse struct {
	ID            string         `json:"id"`
	Workflow      string         `json:"workflow"`
	Success       bool           `json:"success"`
	TotalSteps    int            `json:"total_steps"`
	ExecutedSteps int            `json:"executed_steps"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	Skipped       int            `json:"skipped"`
	TotalTimeSec  float64        `json:"total_time_sec"`
	Context       map[string]any `json:"context,omitempty"`
	StartedAt     string         `json:"started_at"`
	FinishedAt    string         `json:"finished_at"`
	CreatedAt     string         `json:"created_at"`
}

// StepResponse — шаг запуска из API.
type StepResponse struct {
	ID           string         `json:"id"`
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

// StatsResponse — сводка архива из API.
type StatsResponse struct {
	TotalRuns  int64   `json:"total_runs"`
	Succeeded  int64   `json:"succeeded"`
	Failed     int64   `json:"failed"`
	Workflows  int64   `json:"workflows"`
	TotalSteps int64   `json:"total_steps"`
	AvgTimeSec float64 `json:"avg_time_sec"`
}

// ListRunsOpts — параметры фильтрации запусков.
type ListRunsOpts struct {
	Workflow string
	Failed   bool
	Limit    int
	Offset   int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Cascade API.
// API отдаёт только чтение, поэтому клиент знает лишь GET запросы.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListRuns возвращает список запусков с фильтрацией.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, error) {
	params := url.Values{}
	if opts.Workflow != "" {
		params.Set("workflow", opts.Workflow)
	}
	if opts.Failed {
		params.Set("success", "false")
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var runs []RunResponse
	err := c.list("/api/v1/runs", params, &runs)
	return runs, err
}

// GetRun возвращает запуск по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// ListRunSteps возвращает шаги запуска в порядке отчёта.
func (c *Client) ListRunSteps(runID string) ([]StepResponse, error) {
	var steps []StepResponse
	err := c.list("/api/v1/runs/"+runID+"/steps", nil, &steps)
	return steps, err
}

// GetStats возвращает сводку по архиву.
func (c *Client) GetStats() (*StatsResponse, error) {
	var stats StatsResponse
	err := c.get("/api/v1/stats", &stats)
	return &stats, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	resp, err := c.do(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(dr.Data, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) do(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
