package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/repo"
)

// ListRecords возвращает записи о выполнениях с фильтрацией.
// GET /api/v1/records?workflow_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := repo.RecordFilter{
		WorkflowID: r.URL.Query().Get("workflow_id"),
		Status:     domain.RecordStatus(r.URL.Query().Get("status")),
		Limit:      parseIntParam(r, "limit", 50),
		Offset:     parseIntParam(r, "offset", 0),
	}

	records, err := h.recordRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RecordResponse, len(records))
	for i, rec := range records {
		result[i] = RecordFromDomain(rec)
	}

	List(w, result, len(result))
}

// GetRecord возвращает запись по ID.
// GET /api/v1/records/{id}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid record id")
		return
	}

	rec, err := h.recordRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "record not found") {
		return
	}

	Success(w, RecordFromDomain(*rec))
}

// parseIntParam парсит числовой query-параметр с дефолтным значением.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
