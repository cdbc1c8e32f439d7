// Package skills вызывает атомарные навыки (skills) по их ID.
//
// # Обзор
//
// Навык — минимальная единица работы воркфлоу: детерминированная
// функция inputs → result, идентифицируемая строковым skill_id.
// Оркестратор не знает, как навык устроен внутри, — он вызывает его
// через интерфейс Backend и получает InvocationResult.
//
// # Backend
//
//	type Backend interface {
//	    ExecuteSkill(ctx context.Context, skillID string, inputs map[string]any, agentID string) (*InvocationResult, error)
//	}
//
// Реализации:
//   - HTTPBackend — вызов внешнего skill-runner сервиса по HTTP
//   - LocalBackend — реестр in-process функций (тесты, встроенные навыки)
//
// # Ошибки
//
// Пакет различает два уровня ошибок:
//   - Инфраструктурные (error от ExecuteSkill) — сеть упала, таймаут
//   - Логические (InvocationResult.Error при Success=false) — навык
//     выполнился, но сообщил о неудаче
//
// Обе приводят к провалу шага в оркестраторе, но логическая ошибка
// несёт диагностику от самого навыка.
package skills
