// Package orchestrator выполняет workflows от начала до конца.
//
// # Обзор
//
// Orchestrator — центральный компонент системы Conductor, который:
//
//   - Валидирует граф зависимостей шагов (engine.Validate)
//   - Выполняет шаги в топологическом порядке
//   - Проверяет condition-предикаты и пропускает шаги
//   - Прокидывает результаты шагов во входы зависимых (engine.ResolveInputs)
//   - Вызывает skills через skills.Backend с таймаутом шага
//   - Запускает rollback компенсаций при падении шага (saga-паттерн)
//   - Ведёт ExecutionRecord через RecordStore
//   - Публикует события жизненного цикла в RabbitMQ
//
// # Использование
//
//	orch := orchestrator.New(orchestrator.Config{
//	    Backend:   backend,
//	    Records:   recordRepo,
//	    Publisher: publisher,
//	    Logger:    logger,
//	})
//
//	result := orch.ExecuteWorkflow(ctx, "wf-123", steps, "agent-1")
//	if !result.Success {
//	    log.Printf("failed: %s (rolled back: %v)", result.Error, result.RolledBack)
//	}
//
// # Модель выполнения
//
//  1. Создаётся ExecutionRecord (PENDING)
//  2. Валидация: при ошибке запись становится INVALID/FAILED, шаги не выполняются
//  3. Запись переходит в RUNNING, публикуется событие execution.started
//  4. Шаги выполняются последовательно в порядке из ValidationResult.Order
//  5. Успех всех шагов → COMPLETED; падение шага → rollback → FAILED
//
// Шаг считается упавшим, если backend вернул инфраструктурную ошибку,
// навык сообщил Success=false, истёк таймаут шага или предикат шага
// не удалось вычислить.
//
// # Rollback
//
// При падении шага оркестратор проходит по уже завершённым шагам
// в обратном порядке завершения и вызывает их компенсации
// (Step.Compensation). Компенсация получает результат своего шага
// как входные данные. Ошибки компенсаций логируются, но не прерывают
// rollback — это best-effort очистка.
//
// # Персистентность
//
// RecordStore — единственная точка персистентности выполнения.
// Ошибки записи логируются, но не прерывают выполнение: движок
// доводит workflow до конца даже при недоступной БД.
package orchestrator
