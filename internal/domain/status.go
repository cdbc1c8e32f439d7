package domain

// ValidationStatus — результат валидации workflow перед выполнением.
type ValidationStatus string

const (
	// ValidationStatusPending — валидация ещё не выполнялась.
	ValidationStatusPending ValidationStatus = "PENDING"

	// ValidationStatusValid — граф зависимостей корректен (DAG, все
	// зависимости существуют).
	ValidationStatusValid ValidationStatus = "VALID"

	// ValidationStatusInvalid — обнаружен цикл или отсутствующая зависимость.
	ValidationStatusInvalid ValidationStatus = "INVALID"
)

// RecordStatus — статус выполнения workflow.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	(или) PENDING → FAILED (невалидный workflow, шаги не выполнялись)
type RecordStatus string

const (
	// RecordStatusPending — запись создана, валидация ещё не прошла.
	RecordStatusPending RecordStatus = "PENDING"

	// RecordStatusRunning — шаги выполняются.
	RecordStatusRunning RecordStatus = "RUNNING"

	// RecordStatusCompleted — все шаги завершены (или пропущены по condition).
	RecordStatusCompleted RecordStatus = "COMPLETED"

	// RecordStatusFailed — выполнение прервано: невалидный граф,
	// упавший шаг или таймаут шага.
	RecordStatusFailed RecordStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s RecordStatus) IsTerminal() bool {
	switch s {
	case RecordStatusCompleted, RecordStatusFailed:
		return true
	default:
		return false
	}
}
