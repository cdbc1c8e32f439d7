package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ValidationResponse — результат валидации из API.
type ValidationResponse struct {
	Valid     bool       `json:"valid"`
	NodeCount int        `json:"node_count"`
	EdgeCount int        `json:"edge_count"`
	Order     []string   `json:"execution_order,omitempty"`
	Cycles    [][]string `json:"cycles,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ExecutionResponse — итог выполнения workflow из API.
type ExecutionResponse struct {
	Success         bool                      `json:"success"`
	RecordID        string                    `json:"record_id"`
	Validation      ValidationResponse        `json:"validation"`
	Results         map[string]map[string]any `json:"results,omitempty"`
	RolledBack      bool                      `json:"rolled_back"`
	DurationSeconds float64                   `json:"duration_seconds"`
	Error           string                    `json:"error,omitempty"`
}

// DefinitionResponse — определение workflow из API.
type DefinitionResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	AgentID   string            `json:"agent_id,omitempty"`
	Steps     []json.RawMessage `json:"steps"`
	Schedule  string            `json:"schedule,omitempty"`
	IsActive  bool              `json:"is_active"`
	CreatedAt string            `json:"created_at"`
}

// RecordResponse — запись о выполнении из API.
type RecordResponse struct {
	ID                string  `json:"id"`
	WorkflowID        string  `json:"workflow_id"`
	AgentID           string  `json:"agent_id,omitempty"`
	ValidationStatus  string  `json:"validation_status"`
	Status            string  `json:"status"`
	RollbackPerformed bool    `json:"rollback_performed"`
	Error             string  `json:"error,omitempty"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       string  `json:"completed_at,omitempty"`
	DurationSeconds   float64 `json:"duration_seconds"`
	CreatedAt         string  `json:"created_at"`
}

// --- Request types ---

// ExecuteWorkflowRequest — запуск ad-hoc workflow.
type ExecuteWorkflowRequest struct {
	WorkflowID string          `json:"workflow_id"`
	AgentID    string          `json:"agent_id,omitempty"`
	Steps      json.RawMessage `json:"steps"`
}

// CreateDefinitionRequest — создание определения.
type CreateDefinitionRequest struct {
	Name     string          `json:"name"`
	AgentID  string          `json:"agent_id,omitempty"`
	Steps    json.RawMessage `json:"steps"`
	Schedule string          `json:"schedule,omitempty"`
}

// ListRecordsOpts — параметры фильтрации записей.
type ListRecordsOpts struct {
	WorkflowID string
	Status     string
	Limit      int
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

// Client — HTTP-клиент для Conductor API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // выполнение workflow синхронное
		},
	}
}

// --- Workflows ---

// ValidateWorkflow проверяет граф зависимостей шагов.
func (c *Client) ValidateWorkflow(steps json.RawMessage) (*ValidationResponse, error) {
	body := map[string]json.RawMessage{"steps": steps}
	var result ValidationResponse
	err := c.post("/api/v1/workflows/validate", body, &result)
	return &result, err
}

// ExecuteWorkflow выполняет ad-hoc workflow и ждёт завершения.
func (c *Client) ExecuteWorkflow(req ExecuteWorkflowRequest) (*ExecutionResponse, error) {
	var result ExecutionResponse
	err := c.post("/api/v1/workflows/execute", req, &result)
	return &result, err
}

// --- Definitions ---

// ListDefinitions возвращает все определения.
func (c *Client) ListDefinitions() ([]DefinitionResponse, error) {
	var defs []DefinitionResponse
	err := c.list("/api/v1/definitions", nil, &defs)
	return defs, err
}

// CreateDefinition сохраняет новое определение.
func (c *Client) CreateDefinition(req CreateDefinitionRequest) (*DefinitionResponse, error) {
	var def DefinitionResponse
	err := c.post("/api/v1/definitions", req, &def)
	return &def, err
}

// GetDefinition возвращает определение по ID.
func (c *Client) GetDefinition(id string) (*DefinitionResponse, error) {
	var def DefinitionResponse
	err := c.get("/api/v1/definitions/"+id, &def)
	return &def, err
}

// DeleteDefinition удаляет определение.
func (c *Client) DeleteDefinition(id string) error {
	return c.delete("/api/v1/definitions/" + id)
}

// SetDefinitionActive включает или выключает определение.
func (c *Client) SetDefinitionActive(id string, active bool) (*DefinitionResponse, error) {
	body := map[string]bool{"is_active": active}
	var def DefinitionResponse
	err := c.put("/api/v1/definitions/"+id+"/active", body, &def)
	return &def, err
}

// ExecuteDefinition выполняет сохранённое определение.
func (c *Client) ExecuteDefinition(id string) (*ExecutionResponse, error) {
	var result ExecutionResponse
	err := c.post("/api/v1/definitions/"+id+"/execute", nil, &result)
	return &result, err
}

// --- Records ---

// ListRecords возвращает записи о выполнениях с фильтрацией.
func (c *Client) ListRecords(opts ListRecordsOpts) ([]RecordResponse, error) {
	params := url.Values{}
	if opts.WorkflowID != "" {
		params.Set("workflow_id", opts.WorkflowID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var records []RecordResponse
	err := c.list("/api/v1/records", params, &records)
	return records, err
}

// GetRecord возвращает запись по ID.
func (c *Client) GetRecord(id string) (*RecordResponse, error) {
	var rec RecordResponse
	err := c.get("/api/v1/records/"+id, &rec)
	return &rec, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
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

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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
