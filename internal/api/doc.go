// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go            — Handler с DI (оркестратор, репозитории, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (logging, recovery)
//   - response.go           — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                — Data Transfer Objects (request/response)
//   - workflow_handler.go   — валидация и выполнение ad-hoc workflows
//   - definition_handler.go — обработчики для /definitions
//   - record_handler.go     — обработчики для /records
//
// API предоставляет REST endpoints для валидации, выполнения workflows
// и управления сохранёнными определениями.
package api
