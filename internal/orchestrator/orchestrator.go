package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
	"github.com/shaiso/Conductor/internal/skills"
	"github.com/shaiso/Conductor/internal/telemetry"
)

// RecordStore — персистентность записей о выполнении.
// Реализация: repo.RecordRepo.
type RecordStore interface {
	Create(ctx context.Context, rec *domain.ExecutionRecord) error
	Update(ctx context.Context, rec *domain.ExecutionRecord) error
}

// EventPublisher — публикация событий жизненного цикла выполнения.
// Реализация: mq.Publisher.
type EventPublisher interface {
	PublishExecutionStarted(ctx context.Context, rec *domain.ExecutionRecord) error
	PublishExecutionCompleted(ctx context.Context, rec *domain.ExecutionRecord) error
	PublishExecutionFailed(ctx context.Context, rec *domain.ExecutionRecord) error
}

// Orchestrator выполняет workflows через skills.Backend.
type Orchestrator struct {
	backend   skills.Backend
	records   RecordStore
	publisher EventPublisher
	logger    *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Backend — обязателен: через него вызываются skills.
	Backend skills.Backend

	// Records — хранилище ExecutionRecord. Nil — записи не сохраняются
	// (полезно в тестах и для ad-hoc валидации).
	Records RecordStore

	// Publisher — публикация событий в RabbitMQ. Nil — события не публикуются.
	Publisher EventPublisher

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		backend:   cfg.Backend,
		records:   cfg.Records,
		publisher: cfg.Publisher,
		logger:    logger,
	}
}

// ExecutionResult — итог одного запуска workflow.
type ExecutionResult struct {
	// Success — завершились ли все шаги успешно.
	Success bool `json:"success"`

	// RecordID — ID созданной ExecutionRecord.
	RecordID uuid.UUID `json:"record_id"`

	// Validation — результат валидации графа.
	Validation *engine.ValidationResult `json:"validation"`

	// Results — результаты выполненных шагов (stepID → output).
	// Пропущенные по condition шаги отсутствуют.
	Results engine.Results `json:"results,omitempty"`

	// RolledBack — был ли запущен rollback после падения шага.
	RolledBack bool `json:"rolled_back"`

	// DurationSeconds — продолжительность запуска в секундах.
	DurationSeconds float64 `json:"duration_seconds"`

	// Error — текст ошибки при Success=false.
	Error string `json:"error,omitempty"`
}

// ValidateWorkflow проверяет граф зависимостей без выполнения.
func (o *Orchestrator) ValidateWorkflow(steps []domain.Step) *engine.ValidationResult {
	return engine.Validate(steps)
}

// ExecuteWorkflow валидирует и выполняет workflow.
//
// Возвращает ExecutionResult всегда, в том числе при провале валидации
// или падении шага — ошибки выполнения не являются error уровня вызова.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, workflowID string, steps []domain.Step, agentID string) *ExecutionResult {
	logger := telemetry.WithWorkflowID(o.logger, workflowID)

	rec := domain.NewExecutionRecord(workflowID, agentID)
	logger = telemetry.WithRecordID(logger, rec.ID.String())
	o.persistCreate(ctx, rec, logger)

	// Валидация
	validation := engine.Validate(steps)
	if !validation.Valid {
		rec.MarkInvalid(validation.ErrorMessage())
		o.persistUpdate(ctx, rec, logger)
		o.publishFailed(ctx, rec, logger)
		executionsTotal.WithLabelValues("invalid").Inc()

		logger.Warn("workflow validation failed", "error", validation.ErrorMessage())
		return &ExecutionResult{
			RecordID:        rec.ID,
			Validation:      validation,
			DurationSeconds: rec.DurationSeconds,
			Error:           validation.ErrorMessage(),
		}
	}

	rec.MarkRunning()
	o.persistUpdate(ctx, rec, logger)
	if o.publisher != nil {
		if err := o.publisher.PublishExecutionStarted(ctx, rec); err != nil {
			logger.Warn("failed to publish execution.started", "error", err)
		}
	}

	logger.Info("executing workflow",
		"steps", validation.NodeCount,
		"edges", validation.EdgeCount,
	)

	// Индекс шагов по ID; после валидации все ID уникальны
	stepIndex := make(map[string]*domain.Step, len(steps))
	for i := range steps {
		stepIndex[steps[i].ID] = &steps[i]
	}

	results := make(engine.Results, len(steps))
	var completed []string // порядок завершения для rollback

	for _, stepID := range validation.Order {
		step := stepIndex[stepID]

		output, skipped, err := o.executeStep(ctx, step, results, agentID, logger)
		if err != nil {
			rolledBack := o.rollback(ctx, stepIndex, completed, results, agentID, logger)
			rec.MarkFailed(err.Error(), rolledBack)
			o.persistUpdate(ctx, rec, logger)
			o.publishFailed(ctx, rec, logger)
			executionsTotal.WithLabelValues("failed").Inc()

			logger.Error("workflow failed",
				"step_id", stepID,
				"error", err,
				"rolled_back", rolledBack,
			)
			return &ExecutionResult{
				RecordID:        rec.ID,
				Validation:      validation,
				Results:         results,
				RolledBack:      rolledBack,
				DurationSeconds: rec.DurationSeconds,
				Error:           err.Error(),
			}
		}
		if skipped {
			continue
		}

		results[stepID] = output
		completed = append(completed, stepID)
	}

	rec.MarkCompleted()
	o.persistUpdate(ctx, rec, logger)
	if o.publisher != nil {
		if err := o.publisher.PublishExecutionCompleted(ctx, rec); err != nil {
			logger.Warn("failed to publish execution.completed", "error", err)
		}
	}
	executionsTotal.WithLabelValues("completed").Inc()

	logger.Info("workflow completed",
		"completed_steps", len(completed),
		"duration_sec", rec.DurationSeconds,
	)
	return &ExecutionResult{
		Success:         true,
		RecordID:        rec.ID,
		Validation:      validation,
		Results:         results,
		DurationSeconds: rec.DurationSeconds,
	}
}

// executeStep выполняет один шаг: предикат, входные данные, вызов skill'а.
//
// Возвращает (output, false, nil) при успехе, (nil, true, nil) при
// пропуске по condition и (nil, false, err) при падении.
func (o *Orchestrator) executeStep(ctx context.Context, step *domain.Step, results engine.Results, agentID string, logger *slog.Logger) (map[string]any, bool, error) {
	stepLogger := logger.With("step_id", step.ID)

	// Предикат: ошибка вычисления — падение шага, а не молчаливый пропуск
	ok, err := engine.EvaluateCondition(step.Condition, results)
	if err != nil {
		return nil, false, fmt.Errorf("%w: step %s: condition: %v", ErrStepFailed, step.ID, err)
	}
	if !ok {
		stepLogger.Info("step skipped", "condition", step.Condition)
		return nil, true, nil
	}

	inputs, collisions := engine.ResolveInputs(step, results)
	for _, c := range collisions {
		stepLogger.Debug("input key collision",
			"key", c.Key,
			"won_by", c.WonBy,
			"lost_by", c.LostBy,
		)
	}

	stepCtx := ctx
	if timeout := step.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stepLogger.Info("executing step", "skill_id", step.SkillID)
	start := time.Now()
	invocation, err := o.backend.ExecuteSkill(stepCtx, step.SkillID, inputs, agentID)
	stepDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, false, fmt.Errorf("%w: step %s: skill %s: %v",
			ErrStepFailed, step.ID, step.SkillID, err)
	}
	if !invocation.Success {
		return nil, false, fmt.Errorf("%w: step %s: skill %s: %s",
			ErrStepFailed, step.ID, step.SkillID, invocation.Error)
	}

	return invocation.Result, false, nil
}

// persistCreate сохраняет новую запись; ошибка БД не прерывает выполнение.
func (o *Orchestrator) persistCreate(ctx context.Context, rec *domain.ExecutionRecord, logger *slog.Logger) {
	if o.records == nil {
		return
	}
	if err := o.records.Create(ctx, rec); err != nil {
		logger.Warn("failed to persist execution record", "error", err)
	}
}

// persistUpdate обновляет запись; ошибка БД не прерывает выполнение.
func (o *Orchestrator) persistUpdate(ctx context.Context, rec *domain.ExecutionRecord, logger *slog.Logger) {
	if o.records == nil {
		return
	}
	if err := o.records.Update(ctx, rec); err != nil {
		logger.Warn("failed to update execution record", "error", err)
	}
}

func (o *Orchestrator) publishFailed(ctx context.Context, rec *domain.ExecutionRecord, logger *slog.Logger) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.PublishExecutionFailed(ctx, rec); err != nil {
		logger.Warn("failed to publish execution.failed", "error", err)
	}
}
