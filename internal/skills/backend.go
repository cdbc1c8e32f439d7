package skills

import (
	"context"
	"errors"
)

// Ошибки вызова навыков.
var (
	// ErrUnknownSkill — навык с таким ID не зарегистрирован.
	ErrUnknownSkill = errors.New("unknown skill")

	// ErrSkillRequest — запрос к skill-runner завершился ошибкой.
	ErrSkillRequest = errors.New("skill request failed")
)

// Backend — интерфейс для выполнения навыка по ID.
//
// ctx может содержать таймаут, установленный из Step.TimeoutSec.
// agentID идентифицирует агента, от имени которого выполняется воркфлоу.
type Backend interface {
	ExecuteSkill(ctx context.Context, skillID string, inputs map[string]any, agentID string) (*InvocationResult, error)
}

// InvocationResult — результат вызова навыка.
type InvocationResult struct {
	// Success — выполнился ли навык успешно.
	Success bool `json:"success"`

	// Result — выходные данные навыка. Ключи этого map мёржатся
	// во входные данные зависимых шагов.
	Result map[string]any `json:"result"`

	// Error — сообщение об ошибке от навыка (логическая ошибка).
	// Инфраструктурные ошибки возвращаются через error в ExecuteSkill().
	Error string `json:"error,omitempty"`
}
