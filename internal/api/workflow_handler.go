package api

import (
	"encoding/json"
	"net/http"
)

// ValidateWorkflow проверяет граф зависимостей без выполнения.
// POST /api/v1/workflows/validate
func (h *Handler) ValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req ValidateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	res := h.orch.ValidateWorkflow(req.Steps)

	// Невалидный workflow — не ошибка API: ответ 200 с valid=false
	Success(w, ValidationFromEngine(res))
}

// ExecuteWorkflow валидирует и выполняет ad-hoc workflow.
// POST /api/v1/workflows/execute
//
// Выполнение синхронное: ответ возвращается после завершения всех
// шагов (или rollback). Падение шага — не ошибка API: ответ 200
// с success=false и текстом ошибки.
func (h *Handler) ExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	var req ExecuteWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.WorkflowID == "" {
		BadRequest(w, "workflow_id is required")
		return
	}

	result := h.orch.ExecuteWorkflow(r.Context(), req.WorkflowID, req.Steps, req.AgentID)

	Success(w, ExecutionFromResult(result))
}
