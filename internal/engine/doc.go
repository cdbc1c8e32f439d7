// Package engine содержит движок композиции skills.
//
// Включает:
//   - graph.go     — валидация графа зависимостей и топологический порядок
//   - inputs.go    — вычисление эффективных входных данных шага
//   - predicate.go — разбор и вычисление condition-предикатов
//
// Engine отвечает за понимание структуры workflow: в каком порядке
// выполнять шаги, какие данные им передавать и нужно ли их выполнять
// вообще. Сами skills выполняет внешний backend (internal/skills),
// координирует выполнение orchestrator.
//
// Все функции пакета — чистые: без I/O и без побочных эффектов.
package engine
