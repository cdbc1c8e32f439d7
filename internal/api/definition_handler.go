package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/scheduler"
)

// ListDefinitions возвращает все определения.
// GET /api/v1/definitions
func (h *Handler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.definitionRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]DefinitionResponse, len(defs))
	for i, d := range defs {
		result[i] = DefinitionFromDomain(d)
	}

	List(w, result, len(result))
}

// CreateDefinition сохраняет новое определение workflow.
// POST /api/v1/definitions
//
// Шаги валидируются при создании: определение с невалидным графом
// не сохраняется.
func (h *Handler) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var req CreateDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	if res := h.orch.ValidateWorkflow(req.Steps); !res.Valid {
		BadRequest(w, "invalid steps: "+res.ErrorMessage())
		return
	}

	if req.Schedule != "" {
		if err := scheduler.ValidateCronExpr(req.Schedule); err != nil {
			BadRequest(w, "invalid schedule: "+err.Error())
			return
		}
	}

	def := &domain.WorkflowDefinition{
		ID:        uuid.New(),
		Name:      req.Name,
		AgentID:   req.AgentID,
		Steps:     req.Steps,
		Schedule:  req.Schedule,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if err := h.definitionRepo.Create(r.Context(), def); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, DefinitionFromDomain(*def))
}

// GetDefinition возвращает определение по ID.
// GET /api/v1/definitions/{id}
func (h *Handler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid definition id")
		return
	}

	def, err := h.definitionRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "definition not found") {
		return
	}

	Success(w, DefinitionFromDomain(*def))
}

// DeleteDefinition удаляет определение.
// DELETE /api/v1/definitions/{id}
func (h *Handler) DeleteDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid definition id")
		return
	}

	if err := h.definitionRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "definition not found")
		return
	}

	NoContent(w)
}

// SetDefinitionActive включает или выключает определение.
// PUT /api/v1/definitions/{id}/active
func (h *Handler) SetDefinitionActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid definition id")
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := h.definitionRepo.SetActive(r.Context(), id, req.IsActive); err != nil {
		HandleRepoError(w, h.logger, err, "definition not found")
		return
	}

	def, err := h.definitionRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "definition not found") {
		return
	}

	Success(w, DefinitionFromDomain(*def))
}

// ExecuteDefinition выполняет сохранённое определение.
// POST /api/v1/definitions/{id}/execute
func (h *Handler) ExecuteDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid definition id")
		return
	}

	def, err := h.definitionRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "definition not found") {
		return
	}

	result := h.orch.ExecuteWorkflow(r.Context(), def.Name, def.Steps, def.AgentID)

	Success(w, ExecutionFromResult(result))
}
