package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowDefinition — сохранённое определение workflow.
//
// Определение — это "рецепт": список шагов, который можно выполнять
// многократно — вручную через API/CLI или по расписанию (Scheduler).
// Каждое выполнение порождает отдельный ExecutionRecord.
type WorkflowDefinition struct {
	// ID — уникальный идентификатор определения.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя (например, "onboard-customer", "nightly-sync").
	Name string `json:"name"`

	// AgentID — агент, от имени которого выполняются skills.
	AgentID string `json:"agent_id,omitempty"`

	// Steps — шаги workflow.
	Steps []Step `json:"steps"`

	// Schedule — cron-выражение для запуска по расписанию.
	// Пустая строка — только ручной запуск.
	Schedule string `json:"schedule,omitempty"`

	// IsActive — флаг активности. Неактивные определения не запускаются
	// по расписанию.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания определения.
	CreatedAt time.Time `json:"created_at"`
}

// IsScheduled возвращает true, если определение запускается по расписанию.
func (d *WorkflowDefinition) IsScheduled() bool {
	return d.Schedule != ""
}
