package skills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultInvokeTimeout = 30 * time.Second

// HTTPBackend вызывает навыки через внешний skill-runner сервис.
//
// Запрос: POST {baseURL}/skills/{skillID}/invoke с JSON-телом
// {"inputs": {...}, "agent_id": "..."}. Ответ — InvocationResult.
//
// Таймаут берётся из ctx (оркестратор ставит его из Step.TimeoutSec);
// если дедлайна в ctx нет, применяется defaultInvokeTimeout.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend создаёт backend для skill-runner по указанному адресу.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// ExecuteSkill выполняет навык через HTTP-вызов skill-runner'а.
func (b *HTTPBackend) ExecuteSkill(ctx context.Context, skillID string, inputs map[string]any, agentID string) (*InvocationResult, error) {
	if skillID == "" {
		return nil, fmt.Errorf("%w: skill id is required", ErrSkillRequest)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultInvokeTimeout)
		defer cancel()
	}

	payload := map[string]any{
		"inputs":   inputs,
		"agent_id": agentID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal inputs: %v", ErrSkillRequest, err)
	}

	url := fmt.Sprintf("%s/skills/%s/invoke", b.baseURL, skillID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrSkillRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSkillRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSkillRequest, err)
	}

	// 404 от skill-runner — навык не зарегистрирован
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSkill, skillID)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s",
			ErrSkillRequest, resp.StatusCode, truncate(string(respBody), 200))
	}

	var result InvocationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSkillRequest, err)
	}
	if result.Result == nil {
		result.Result = make(map[string]any)
	}

	return &result, nil
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
