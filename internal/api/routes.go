package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Workflows (ad-hoc: шаги в теле запроса)
	mux.Handle("POST /api/v1/workflows/validate", chain(http.HandlerFunc(h.ValidateWorkflow)))
	mux.Handle("POST /api/v1/workflows/execute", chain(http.HandlerFunc(h.ExecuteWorkflow)))

	// Definitions (сохранённые workflows)
	mux.Handle("GET /api/v1/definitions", chain(http.HandlerFunc(h.ListDefinitions)))
	mux.Handle("POST /api/v1/definitions", chain(http.HandlerFunc(h.CreateDefinition)))
	mux.Handle("GET /api/v1/definitions/{id}", chain(http.HandlerFunc(h.GetDefinition)))
	mux.Handle("DELETE /api/v1/definitions/{id}", chain(http.HandlerFunc(h.DeleteDefinition)))
	mux.Handle("PUT /api/v1/definitions/{id}/active", chain(http.HandlerFunc(h.SetDefinitionActive)))
	mux.Handle("POST /api/v1/definitions/{id}/execute", chain(http.HandlerFunc(h.ExecuteDefinition)))

	// Records (история выполнений)
	mux.Handle("GET /api/v1/records", chain(http.HandlerFunc(h.ListRecords)))
	mux.Handle("GET /api/v1/records/{id}", chain(http.HandlerFunc(h.GetRecord)))
}
