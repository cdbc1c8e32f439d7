// Package scheduler запускает workflows по расписанию.
//
// Scheduler периодически проверяет активные определения с cron-расписанием
// и выполняет те, у которых наступило время запуска.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Start, Tick)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Definitions: definitionRepo,
//	    Executor:    orch,
//	    Logger:      logger,
//	})
//
//	if err := sched.Start(ctx); err != nil {
//	    logger.Error("scheduler stopped", "error", err)
//	}
//
// Времена следующих запусков держатся в памяти (definition ID → next run).
// После рестарта расписания пересчитываются от текущего момента —
// пропущенные за время простоя запуски не навёрстываются.
package scheduler
