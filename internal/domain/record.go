package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionRecord — запись об одном выполнении workflow.
//
// Создаётся в начале ExecuteWorkflow и живёт дольше самого выполнения:
// это единственный персистентный след запуска (результаты шагов
// хранятся только в памяти на время выполнения).
//
// ID генерируется движком, поэтому повторные запуски с одним и тем же
// WorkflowID не конфликтуют — каждый запуск даёт новую запись.
type ExecutionRecord struct {
	// ID — уникальный идентификатор записи (генерируется движком).
	ID uuid.UUID `json:"id"`

	// WorkflowID — идентификатор workflow от вызывающего.
	// Не обязан быть уникальным между запусками.
	WorkflowID string `json:"workflow_id"`

	// AgentID — идентификатор агента, от имени которого выполняются skills.
	AgentID string `json:"agent_id,omitempty"`

	// ValidationStatus — результат валидации графа зависимостей.
	ValidationStatus ValidationStatus `json:"validation_status"`

	// Status — статус выполнения.
	Status RecordStatus `json:"status"`

	// RollbackPerformed — был ли запущен rollback после падения шага.
	RollbackPerformed bool `json:"rollback_performed"`

	// Error — текст ошибки, если выполнение завершилось с FAILED.
	Error string `json:"error,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения (успешного или с ошибкой).
	// Nil, если выполнение ещё идёт.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DurationSeconds — продолжительность выполнения в секундах.
	// Заполняется при завершении.
	DurationSeconds float64 `json:"duration_seconds"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}

// NewExecutionRecord создаёт запись для нового запуска workflow.
func NewExecutionRecord(workflowID, agentID string) *ExecutionRecord {
	now := time.Now()
	return &ExecutionRecord{
		ID:               uuid.New(),
		WorkflowID:       workflowID,
		AgentID:          agentID,
		ValidationStatus: ValidationStatusPending,
		Status:           RecordStatusPending,
		StartedAt:        now,
		CreatedAt:        now,
	}
}

// IsFinished возвращает true, если выполнение завершено.
func (r *ExecutionRecord) IsFinished() bool {
	return r.Status.IsTerminal()
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если выполнение ещё не завершено.
func (r *ExecutionRecord) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// MarkRunning фиксирует успешную валидацию и переход к выполнению шагов.
func (r *ExecutionRecord) MarkRunning() {
	r.ValidationStatus = ValidationStatusValid
	r.Status = RecordStatusRunning
}

// MarkInvalid фиксирует провал валидации. Шаги не выполнялись,
// rollback не требуется.
func (r *ExecutionRecord) MarkInvalid(errMsg string) {
	r.ValidationStatus = ValidationStatusInvalid
	r.finish(RecordStatusFailed, errMsg)
}

// MarkCompleted фиксирует успешное завершение всех шагов.
func (r *ExecutionRecord) MarkCompleted() {
	r.finish(RecordStatusCompleted, "")
}

// MarkFailed фиксирует падение шага и результат rollback.
func (r *ExecutionRecord) MarkFailed(errMsg string, rolledBack bool) {
	r.RollbackPerformed = rolledBack
	r.finish(RecordStatusFailed, errMsg)
}

// finish проставляет финальный статус, время завершения и duration.
func (r *ExecutionRecord) finish(status RecordStatus, errMsg string) {
	now := time.Now()
	r.Status = status
	r.Error = errMsg
	r.CompletedAt = &now
	r.DurationSeconds = now.Sub(r.StartedAt).Seconds()
}
