// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queues, bindings
//   - publisher.go  — публикация событий жизненного цикла выполнения
//
// Типы событий:
//   - execution.started   — workflow начал выполняться
//   - execution.completed — все шаги завершены успешно
//   - execution.failed    — валидация провалена или шаг упал
//
// Движок выполняет workflow синхронно и сам ничего не потребляет —
// события предназначены внешним подписчикам (аудит, алертинг).
package mq
