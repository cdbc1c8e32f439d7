package skills

import (
	"context"
	"fmt"
)

// SkillFunc — in-process реализация навыка.
type SkillFunc func(ctx context.Context, inputs map[string]any, agentID string) (*InvocationResult, error)

// LocalBackend — реестр in-process навыков.
//
// Используется во встроенном режиме (без skill-runner'а) и в тестах.
type LocalBackend struct {
	skills map[string]SkillFunc
}

// NewLocalBackend создаёт пустой реестр навыков.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{skills: make(map[string]SkillFunc)}
}

// Register добавляет навык под указанным ID.
func (b *LocalBackend) Register(skillID string, fn SkillFunc) {
	b.skills[skillID] = fn
}

// ExecuteSkill вызывает зарегистрированный навык.
func (b *LocalBackend) ExecuteSkill(ctx context.Context, skillID string, inputs map[string]any, agentID string) (*InvocationResult, error) {
	fn, ok := b.skills[skillID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSkill, skillID)
	}

	result, err := fn(ctx, inputs, agentID)
	if err != nil {
		return nil, err
	}
	if result.Result == nil {
		result.Result = make(map[string]any)
	}
	return result, nil
}
