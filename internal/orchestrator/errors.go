package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrWorkflowInvalid — граф зависимостей не прошёл валидацию.
	ErrWorkflowInvalid = errors.New("workflow validation failed")

	// ErrStepFailed — выполнение шага завершилось ошибкой.
	ErrStepFailed = errors.New("step execution failed")

	// ErrRecordNotFound — запись о выполнении не найдена.
	ErrRecordNotFound = errors.New("execution record not found")
)
