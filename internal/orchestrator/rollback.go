package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
)

const compensationTimeout = 30 * time.Second

// rollback вызывает компенсации завершённых шагов в обратном порядке
// завершения (saga-паттерн).
//
// Компенсация получает результат своего шага как входные данные —
// этого достаточно, чтобы отменить созданный шагом побочный эффект
// (ID созданной записи, адрес отправленного сообщения и т.п.).
//
// Best-effort: ошибка одной компенсации логируется и не останавливает
// остальные. Возвращает true — rollback был запущен; фиксируется
// в ExecutionRecord.RollbackPerformed независимо от числа компенсаций.
func (o *Orchestrator) rollback(ctx context.Context, steps map[string]*domain.Step, completed []string, results engine.Results, agentID string, logger *slog.Logger) bool {
	rollbacksTotal.Inc()
	logger.Info("starting rollback", "completed_steps", len(completed))

	// Компенсации должны отработать даже если исходный ctx уже отменён
	// (падение шага по таймауту вызывающего)
	ctx = context.WithoutCancel(ctx)

	for i := len(completed) - 1; i >= 0; i-- {
		step := steps[completed[i]]
		if !step.HasCompensation() {
			continue
		}

		compLogger := logger.With(
			"step_id", step.ID,
			"compensation", step.Compensation,
		)

		compCtx, cancel := context.WithTimeout(ctx, compensationTimeout)
		invocation, err := o.backend.ExecuteSkill(compCtx, step.Compensation, results[step.ID], agentID)
		cancel()

		switch {
		case err != nil:
			compLogger.Error("compensation failed", "error", err)
		case !invocation.Success:
			compLogger.Error("compensation reported failure", "error", invocation.Error)
		default:
			compLogger.Info("compensation applied")
		}
	}

	return true
}
