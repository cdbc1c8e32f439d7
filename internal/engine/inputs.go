package engine

import (
	"maps"

	"github.com/shaiso/Conductor/internal/domain"
)

// Results — результаты выполненных шагов одного запуска (stepID → output).
//
// Живут только в памяти на время оркестрации. Шаг, пропущенный по
// condition, в Results отсутствует — его ключи просто не участвуют
// в мёрже у зависимых шагов.
type Results map[string]map[string]any

// Collision — конфликт ключа при мёрже результатов зависимостей.
//
// Мёрж работает по принципу "последняя запись побеждает", конфликт —
// не ошибка, но оркестратор логирует его для диагностики.
type Collision struct {
	// Key — конфликтующий ключ.
	Key string

	// WonBy — источник, чьё значение осталось: ID зависимости,
	// обработанной позже.
	WonBy string

	// LostBy — источник перезаписанного значения: ID более ранней
	// зависимости или "inputs" для статических входных данных шага.
	LostBy string
}

// ResolveInputs вычисляет эффективные входные данные шага.
//
// База — статические Inputs шага; поверх них в порядке объявления
// DependsOn мёржатся результаты завершённых зависимостей. Ключи
// зависимостей имеют приоритет над статическими, при пересечении
// между зависимостями побеждает объявленная позже.
//
// Чистая функция: пересчитывает результат от текущего снимка results,
// не модифицируя ни шаг, ни results.
func ResolveInputs(step *domain.Step, results Results) (map[string]any, []Collision) {
	resolved := make(map[string]any, len(step.Inputs))
	maps.Copy(resolved, step.Inputs)

	// source — откуда пришло текущее значение ключа
	source := make(map[string]string, len(step.Inputs))
	for key := range step.Inputs {
		source[key] = "inputs"
	}

	var collisions []Collision

	for _, dep := range step.DependsOn {
		output, ok := results[dep]
		if !ok {
			continue // зависимость пропущена по condition
		}
		for key, value := range output {
			if prev, exists := source[key]; exists {
				collisions = append(collisions, Collision{
					Key:    key,
					WonBy:  dep,
					LostBy: prev,
				})
			}
			resolved[key] = value
			source[key] = dep
		}
	}

	return resolved, collisions
}
