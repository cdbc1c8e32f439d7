package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/orchestrator"
)

const defaultTickInterval = 30 * time.Second

// Definitions — источник определений с расписанием.
// Реализация: repo.DefinitionRepo.
type Definitions interface {
	ListScheduled(ctx context.Context) ([]domain.WorkflowDefinition, error)
}

// Executor — исполнитель workflows.
// Реализация: orchestrator.Orchestrator.
type Executor interface {
	ExecuteWorkflow(ctx context.Context, workflowID string, steps []domain.Step, agentID string) *orchestrator.ExecutionResult
}

// Scheduler — планировщик запусков по cron-расписанию.
type Scheduler struct {
	definitions  Definitions
	executor     Executor
	logger       *slog.Logger
	tickInterval time.Duration

	// nextDue — время следующего запуска по definition ID.
	// Доступ только из горутины Start — без блокировок.
	nextDue map[uuid.UUID]time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Definitions  Definitions
	Executor     Executor
	Logger       *slog.Logger
	TickInterval time.Duration // интервал проверки расписаний (default: 30s)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		definitions:  cfg.Definitions,
		executor:     cfg.Executor,
		logger:       logger,
		tickInterval: tickInterval,
		nextDue:      make(map[uuid.UUID]time.Time),
	}
}

// Start запускает цикл планировщика. Блокирует до отмены ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting scheduler", "tick_interval", s.tickInterval)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case now := <-ticker.C:
			if err := s.Tick(ctx, now); err != nil {
				s.logger.Error("scheduler tick failed", "error", err)
			}
		}
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Загружает активные определения с расписанием
// 2. Для новых определений вычисляет время первого запуска
// 3. Выполняет определения, у которых время наступило
// 4. Пересчитывает время следующего запуска
//
// Ошибки одного определения не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	defs, err := s.definitions.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled definitions: %w", err)
	}

	// Убираем из памяти определения, снятые с расписания
	active := make(map[uuid.UUID]bool, len(defs))
	for i := range defs {
		active[defs[i].ID] = true
	}
	for id := range s.nextDue {
		if !active[id] {
			delete(s.nextDue, id)
		}
	}

	for i := range defs {
		def := &defs[i]

		due, ok := s.nextDue[def.ID]
		if !ok {
			// Новое определение: планируем первый запуск, не выполняем сразу
			next, err := NextRun(def.Schedule, now)
			if err != nil {
				s.logger.Error("invalid schedule, skipping definition",
					"definition_id", def.ID,
					"name", def.Name,
					"schedule", def.Schedule,
					"error", err,
				)
				continue
			}
			s.nextDue[def.ID] = next
			continue
		}

		if now.Before(due) {
			continue
		}

		s.logger.Info("triggering scheduled workflow",
			"definition_id", def.ID,
			"name", def.Name,
			"schedule", def.Schedule,
		)

		result := s.executor.ExecuteWorkflow(ctx, def.Name, def.Steps, def.AgentID)
		if !result.Success {
			s.logger.Warn("scheduled workflow failed",
				"definition_id", def.ID,
				"name", def.Name,
				"record_id", result.RecordID,
				"error", result.Error,
			)
		}

		next, err := NextRun(def.Schedule, now)
		if err != nil {
			delete(s.nextDue, def.ID)
			continue
		}
		s.nextDue[def.ID] = next
	}

	return nil
}
