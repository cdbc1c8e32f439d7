package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
	"github.com/shaiso/Conductor/internal/orchestrator"
)

// Workflow DTOs

// ValidateWorkflowRequest — запрос на валидацию workflow.
type ValidateWorkflowRequest struct {
	Steps []domain.Step `json:"steps"`
}

// ValidationResponse — результат валидации графа зависимостей.
type ValidationResponse struct {
	Valid     bool       `json:"valid"`
	NodeCount int        `json:"node_count"`
	EdgeCount int        `json:"edge_count"`
	Order     []string   `json:"execution_order,omitempty"`
	Cycles    [][]string `json:"cycles,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ValidationFromEngine конвертирует engine.ValidationResult в ответ API.
func ValidationFromEngine(res *engine.ValidationResult) ValidationResponse {
	return ValidationResponse{
		Valid:     res.Valid,
		NodeCount: res.NodeCount,
		EdgeCount: res.EdgeCount,
		Order:     res.Order,
		Cycles:    res.Cycles,
		Error:     res.ErrorMessage(),
	}
}

// ExecuteWorkflowRequest — запрос на выполнение ad-hoc workflow.
type ExecuteWorkflowRequest struct {
	WorkflowID string        `json:"workflow_id"`
	AgentID    string        `json:"agent_id,omitempty"`
	Steps      []domain.Step `json:"steps"`
}

// ExecutionResponse — итог выполнения workflow.
type ExecutionResponse struct {
	Success         bool               `json:"success"`
	RecordID        uuid.UUID          `json:"record_id"`
	Validation      ValidationResponse `json:"validation"`
	Results         engine.Results     `json:"results,omitempty"`
	RolledBack      bool               `json:"rolled_back"`
	DurationSeconds float64            `json:"duration_seconds"`
	Error           string             `json:"error,omitempty"`
}

// ExecutionFromResult конвертирует orchestrator.ExecutionResult в ответ API.
func ExecutionFromResult(res *orchestrator.ExecutionResult) ExecutionResponse {
	return ExecutionResponse{
		Success:         res.Success,
		RecordID:        res.RecordID,
		Validation:      ValidationFromEngine(res.Validation),
		Results:         res.Results,
		RolledBack:      res.RolledBack,
		DurationSeconds: res.DurationSeconds,
		Error:           res.Error,
	}
}

// Definition DTOs

// CreateDefinitionRequest — запрос на создание определения.
type CreateDefinitionRequest struct {
	Name     string        `json:"name"`
	AgentID  string        `json:"agent_id,omitempty"`
	Steps    []domain.Step `json:"steps"`
	Schedule string        `json:"schedule,omitempty"`
}

// SetActiveRequest — запрос на включение/выключение определения.
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// DefinitionResponse — ответ с определением workflow.
type DefinitionResponse struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	AgentID   string        `json:"agent_id,omitempty"`
	Steps     []domain.Step `json:"steps"`
	Schedule  string        `json:"schedule,omitempty"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

// DefinitionFromDomain конвертирует domain.WorkflowDefinition в ответ API.
func DefinitionFromDomain(d domain.WorkflowDefinition) DefinitionResponse {
	return DefinitionResponse{
		ID:        d.ID,
		Name:      d.Name,
		AgentID:   d.AgentID,
		Steps:     d.Steps,
		Schedule:  d.Schedule,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

// Record DTOs

// RecordResponse — ответ с записью о выполнении.
type RecordResponse struct {
	ID                uuid.UUID  `json:"id"`
	WorkflowID        string     `json:"workflow_id"`
	AgentID           string     `json:"agent_id,omitempty"`
	ValidationStatus  string     `json:"validation_status"`
	Status            string     `json:"status"`
	RollbackPerformed bool       `json:"rollback_performed"`
	Error             string     `json:"error,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	DurationSeconds   float64    `json:"duration_seconds"`
	CreatedAt         time.Time  `json:"created_at"`
}

// RecordFromDomain конвертирует domain.ExecutionRecord в ответ API.
func RecordFromDomain(r domain.ExecutionRecord) RecordResponse {
	return RecordResponse{
		ID:                r.ID,
		WorkflowID:        r.WorkflowID,
		AgentID:           r.AgentID,
		ValidationStatus:  string(r.ValidationStatus),
		Status:            string(r.Status),
		RollbackPerformed: r.RollbackPerformed,
		Error:             r.Error,
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
		DurationSeconds:   r.DurationSeconds,
		CreatedAt:         r.CreatedAt,
	}
}
