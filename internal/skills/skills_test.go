package skills

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- HTTPBackend Tests ---

func TestHTTPBackend_Success(t *testing.T) {
	var receivedPath string
	var receivedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		receivedPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&receivedBody)
		json.NewEncoder(w).Encode(InvocationResult{
			Success: true,
			Result:  map[string]any{"output": 100},
		})
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	result, err := backend.ExecuteSkill(context.Background(), "fetch_data",
		map[string]any{"limit": 10}, "agent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPath != "/skills/fetch_data/invoke" {
		t.Errorf("unexpected path: %s", receivedPath)
	}
	inputs, ok := receivedBody["inputs"].(map[string]any)
	if !ok || inputs["limit"] != 10.0 {
		t.Errorf("inputs not forwarded: %v", receivedBody)
	}
	if receivedBody["agent_id"] != "agent-1" {
		t.Errorf("agent_id not forwarded: %v", receivedBody)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.Result["output"] != 100.0 {
		t.Errorf("expected output=100, got %v", result.Result["output"])
	}
}

func TestHTTPBackend_SkillFailure(t *testing.T) {
	// Навык выполнился, но сообщил о логической ошибке — это не error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(InvocationResult{
			Success: false,
			Error:   "record not found",
		})
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	result, err := backend.ExecuteSkill(context.Background(), "fetch_data", nil, "agent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Success {
		t.Error("expected failure")
	}
	if result.Error != "record not found" {
		t.Errorf("unexpected error message: %s", result.Error)
	}
	if result.Result == nil {
		t.Error("result should be empty map, not nil")
	}
}

func TestHTTPBackend_UnknownSkill(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	_, err := backend.ExecuteSkill(context.Background(), "no_such_skill", nil, "agent-1")
	if !errors.Is(err, ErrUnknownSkill) {
		t.Errorf("expected ErrUnknownSkill, got %v", err)
	}
}

func TestHTTPBackend_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	_, err := backend.ExecuteSkill(context.Background(), "fetch_data", nil, "agent-1")
	if !errors.Is(err, ErrSkillRequest) {
		t.Errorf("expected ErrSkillRequest, got %v", err)
	}
}

func TestHTTPBackend_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := backend.ExecuteSkill(ctx, "slow_skill", nil, "agent-1")
	if err == nil {
		t.Error("expected timeout error")
	}
}

func TestHTTPBackend_EmptySkillID(t *testing.T) {
	backend := NewHTTPBackend("http://localhost:1")
	_, err := backend.ExecuteSkill(context.Background(), "", nil, "agent-1")
	if !errors.Is(err, ErrSkillRequest) {
		t.Errorf("expected ErrSkillRequest, got %v", err)
	}
}

// --- LocalBackend Tests ---

func TestLocalBackend_Success(t *testing.T) {
	backend := NewLocalBackend()
	backend.Register("double", func(_ context.Context, inputs map[string]any, _ string) (*InvocationResult, error) {
		n, _ := inputs["value"].(int)
		return &InvocationResult{
			Success: true,
			Result:  map[string]any{"value": n * 2},
		}, nil
	})

	result, err := backend.ExecuteSkill(context.Background(), "double",
		map[string]any{"value": 21}, "agent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result["value"] != 42 {
		t.Errorf("expected 42, got %v", result.Result["value"])
	}
}

func TestLocalBackend_UnknownSkill(t *testing.T) {
	backend := NewLocalBackend()

	_, err := backend.ExecuteSkill(context.Background(), "missing", nil, "agent-1")
	if !errors.Is(err, ErrUnknownSkill) {
		t.Errorf("expected ErrUnknownSkill, got %v", err)
	}
}

func TestLocalBackend_NilResult(t *testing.T) {
	backend := NewLocalBackend()
	backend.Register("empty", func(context.Context, map[string]any, string) (*InvocationResult, error) {
		return &InvocationResult{Success: true}, nil
	})

	result, err := backend.ExecuteSkill(context.Background(), "empty", nil, "agent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result == nil {
		t.Error("result should be empty map, not nil")
	}
}
