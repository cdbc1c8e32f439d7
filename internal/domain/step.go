package domain

import "time"

// Step — один узел workflow.
//
// Step описывает вызов одного skill'а: какие входные данные передать,
// после каких шагов выполняться и при каком условии.
// Сам код skill'а выполняется внешним backend'ом (internal/skills).
type Step struct {
	// ID — уникальный идентификатор шага в рамках workflow.
	// Используется в dependencies и для ссылок на результаты в condition.
	ID string `json:"step_id"`

	// SkillID — идентификатор skill'а, который нужно вызвать.
	SkillID string `json:"skill_id"`

	// Inputs — статические входные данные шага.
	// Задаются при построении workflow; при выполнении поверх них
	// мёржатся результаты зависимостей (см. engine.ResolveInputs).
	Inputs map[string]any `json:"inputs,omitempty"`

	// DependsOn — упорядоченный список ID шагов, которые должны успешно
	// завершиться до запуска этого шага. Порядок значим: при конфликте
	// ключей в результатах побеждает зависимость, объявленная позже.
	DependsOn []string `json:"dependencies,omitempty"`

	// Condition — опциональный предикат над результатами предыдущих шагов.
	// Например: "validate.get('is_valid') == true && fetch.count > 10".
	// Пустая строка — шаг выполняется всегда (при готовых зависимостях).
	Condition string `json:"condition,omitempty"`

	// TimeoutSec — бюджет выполнения шага в секундах.
	// 0 — без отдельного таймаута (действует только ctx вызывающего).
	TimeoutSec int `json:"timeout_seconds,omitempty"`

	// Compensation — ID skill'а-компенсации для rollback (saga-паттерн).
	// Пустая строка — у шага нет компенсирующего действия, при rollback
	// он пропускается.
	Compensation string `json:"compensation,omitempty"`
}

// Timeout возвращает таймаут шага как time.Duration.
// Возвращает 0, если таймаут не задан.
func (s *Step) Timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSec) * time.Second
}

// HasCompensation возвращает true, если у шага объявлена компенсация.
func (s *Step) HasCompensation() bool {
	return s.Compensation != ""
}
