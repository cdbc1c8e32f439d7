package api

import (
	"log/slog"

	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	orch           *orchestrator.Orchestrator
	definitionRepo *repo.DefinitionRepo
	recordRepo     *repo.RecordRepo
	logger         *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Orchestrator   *orchestrator.Orchestrator
	DefinitionRepo *repo.DefinitionRepo
	RecordRepo     *repo.RecordRepo
	Logger         *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		orch:           cfg.Orchestrator,
		definitionRepo: cfg.DefinitionRepo,
		recordRepo:     cfg.RecordRepo,
		logger:         cfg.Logger,
	}
}
