package engine

import (
	"fmt"
	"strings"

	"github.com/shaiso/Conductor/internal/domain"
)

// ValidationResult — результат валидации workflow.
type ValidationResult struct {
	// Valid — true, если граф зависимостей корректен.
	Valid bool `json:"valid"`

	// NodeCount — количество шагов.
	NodeCount int `json:"node_count"`

	// EdgeCount — количество уникальных рёбер зависимостей.
	EdgeCount int `json:"edge_count"`

	// Order — топологический порядок выполнения шагов.
	// Заполняется только при Valid=true. Детерминирован: одинаковый
	// входной список шагов даёт одинаковый порядок.
	Order []string `json:"execution_order,omitempty"`

	// Cycles — найденные циклы (каждый — путь, замкнутый на первый узел).
	Cycles [][]string `json:"cycles,omitempty"`

	// Err — ошибка валидации (nil при Valid=true).
	Err error `json:"-"`
}

// ErrorMessage возвращает текст ошибки валидации (пустая строка при Valid).
func (r *ValidationResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Validate выполняет полную валидацию списка шагов.
//
// Проверяет:
//   - наличие шагов и непустые уникальные ID
//   - что все dependencies ссылаются на существующие шаги
//   - отсутствие циклов (включая self-loop)
//
// При корректном графе возвращает топологический порядок выполнения.
// Чистая функция: не модифицирует steps и не имеет побочных эффектов.
func Validate(steps []domain.Step) *ValidationResult {
	res := &ValidationResult{NodeCount: len(steps)}

	if len(steps) == 0 {
		res.Err = ErrEmptySteps
		return res
	}

	// Индекс ID → позиция в списке
	index := make(map[string]int, len(steps))
	for i := range steps {
		step := &steps[i]

		if step.ID == "" {
			res.Err = NewValidationError("", "step_id",
				"step has empty ID", ErrEmptyStepID)
			return res
		}
		if _, exists := index[step.ID]; exists {
			res.Err = NewValidationError(step.ID, "step_id",
				fmt.Sprintf("duplicate step ID: %s", step.ID), ErrDuplicateStepID)
			return res
		}
		index[step.ID] = i
	}

	// Проверяем ссылки на несуществующие шаги — собираем все сразу,
	// чтобы сообщение перечисляло каждый отсутствующий ID.
	missing := findMissingDependencies(steps, index)
	res.EdgeCount = countEdges(steps)

	if len(missing) > 0 {
		res.Err = NewValidationError("", "dependencies",
			fmt.Sprintf("depends on unknown steps: %s", strings.Join(missing, ", ")),
			ErrMissingDependency)
		return res
	}

	// Поиск циклов: обход в глубину с трёхцветной раскраской.
	cycles := findCycles(steps, index)
	if len(cycles) > 0 {
		res.Cycles = cycles
		res.Err = NewValidationError("", "dependencies",
			fmt.Sprintf("cyclic dependency: %s", formatCycle(cycles[0])),
			ErrCyclicDependency)
		return res
	}

	res.Order = topologicalOrder(steps, index)
	res.Valid = true
	return res
}

// findMissingDependencies возвращает отсутствующие ID зависимостей
// в порядке первого упоминания, без дубликатов.
func findMissingDependencies(steps []domain.Step, index map[string]int) []string {
	var missing []string
	seen := make(map[string]bool)

	for i := range steps {
		for _, dep := range steps[i].DependsOn {
			if _, ok := index[dep]; ok {
				continue
			}
			if !seen[dep] {
				seen[dep] = true
				missing = append(missing, dep)
			}
		}
	}
	return missing
}

// countEdges считает уникальные рёбра (повторная зависимость шага
// от одного и того же предка учитывается один раз).
func countEdges(steps []domain.Step) int {
	edges := 0
	for i := range steps {
		local := make(map[string]bool, len(steps[i].DependsOn))
		for _, dep := range steps[i].DependsOn {
			if !local[dep] {
				local[dep] = true
				edges++
			}
		}
	}
	return edges
}

// Цвета узлов для обхода в глубину.
const (
	colorWhite = iota // не посещён
	colorGray         // в текущем пути обхода
	colorBlack        // полностью обработан
)

// findCycles ищет циклы обходом в глубину по рёбрам "шаг → его зависимость".
// Ребро в серый узел (включая self-loop) — цикл; возвращается замкнутый
// путь из текущего стека обхода.
func findCycles(steps []domain.Step, index map[string]int) [][]string {
	color := make([]int, len(steps))
	var stack []string
	var cycles [][]string

	var visit func(i int)
	visit = func(i int) {
		color[i] = colorGray
		stack = append(stack, steps[i].ID)

		for _, dep := range steps[i].DependsOn {
			j := index[dep]
			switch color[j] {
			case colorWhite:
				visit(j)
			case colorGray:
				cycles = append(cycles, extractCycle(stack, dep))
			}
		}

		stack = stack[:len(stack)-1]
		color[i] = colorBlack
	}

	for i := range steps {
		if color[i] == colorWhite {
			visit(i)
		}
	}
	return cycles
}

// extractCycle вырезает из стека обхода путь от узла from до вершины
// и замыкает его на from.
func extractCycle(stack []string, from string) []string {
	start := 0
	for i, id := range stack {
		if id == from {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(stack)-start+1)
	cycle = append(cycle, stack[start:]...)
	cycle = append(cycle, from)
	return cycle
}

// formatCycle форматирует цикл для сообщения об ошибке: "a -> b -> a".
func formatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}

// topologicalOrder строит топологический порядок алгоритмом Кана.
//
// Детерминизм: очередь заполняется в порядке объявления шагов,
// зависимые узлы обходятся в порядке объявления — одинаковый вход
// всегда даёт одинаковый порядок.
// Вызывается только для графа без циклов и без missing dependencies.
func topologicalOrder(steps []domain.Step, index map[string]int) []string {
	inDegree := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))

	for i := range steps {
		step := &steps[i]
		if _, ok := inDegree[step.ID]; !ok {
			inDegree[step.ID] = 0
		}

		local := make(map[string]bool, len(step.DependsOn))
		for _, dep := range step.DependsOn {
			if local[dep] {
				continue // дубликат ребра
			}
			local[dep] = true
			inDegree[step.ID]++
			dependents[dep] = append(dependents[dep], step.ID)
		}
	}

	// Очередь узлов с inDegree = 0, в порядке объявления
	queue := make([]string, 0, len(steps))
	for i := range steps {
		if inDegree[steps[i].ID] == 0 {
			queue = append(queue, steps[i].ID)
		}
	}

	order := make([]string, 0, len(steps))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	return order
}
