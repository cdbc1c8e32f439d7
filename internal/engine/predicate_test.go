package engine

import (
	"errors"
	"testing"
)

func TestEvaluateCondition_Empty(t *testing.T) {
	ok, err := EvaluateCondition("", Results{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("empty condition should evaluate to true")
	}

	ok, err = EvaluateCondition("   ", Results{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("blank condition should evaluate to true")
	}
}

func TestEvaluateCondition_Comparisons(t *testing.T) {
	results := Results{
		"validate": {"is_valid": true, "count": 15, "status": "ok"},
		"fetch":    {"count": 3.0, "name": "alpha"},
	}

	tests := []struct {
		condition string
		want      bool
	}{
		{"validate.get('is_valid') == true", true},
		{"validate.is_valid == true", true},
		{"validate.get('is_valid') == false", false},
		{"validate.count > 10", true},
		{"validate.count >= 15", true},
		{"validate.count < 15", false},
		{"fetch.count <= 3", true},
		{"validate.status == 'ok'", true},
		{"validate.status != 'ok'", false},
		{"fetch.name < 'beta'", true},
		// int из результата сравнивается с float-литералом
		{"validate.count == 15.0", true},
		{"fetch.count == 3", true},
	}

	for _, tt := range tests {
		got, err := EvaluateCondition(tt.condition, results)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.condition, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.condition, got, tt.want)
		}
	}
}

func TestEvaluateCondition_BooleanConnectives(t *testing.T) {
	results := Results{
		"a": {"x": 1},
		"b": {"y": 2},
	}

	tests := []struct {
		condition string
		want      bool
	}{
		{"a.x == 1 && b.y == 2", true},
		{"a.x == 1 && b.y == 3", false},
		{"a.x == 2 || b.y == 2", true},
		{"a.x == 2 || b.y == 3", false},
		{"a.x == 1 and b.y == 2", true},
		{"a.x == 2 or b.y == 2", true},
		{"!(a.x == 2)", true},
		{"not (a.x == 1)", false},
		{"(a.x == 1 || b.y == 3) && b.y == 2", true},
	}

	for _, tt := range tests {
		got, err := EvaluateCondition(tt.condition, results)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.condition, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.condition, got, tt.want)
		}
	}
}

func TestEvaluateCondition_MissingStepOrKey(t *testing.T) {
	results := Results{
		"a": {"x": 1},
	}

	// Отсутствующий шаг и отсутствующий ключ дают nil
	tests := []struct {
		condition string
		want      bool
	}{
		{"ghost.value == nil", true},
		{"a.missing == nil", true},
		{"a.get('missing') == nil", true},
		{"ghost.value == 1", false},
		{"a.missing != nil", false},
	}

	for _, tt := range tests {
		got, err := EvaluateCondition(tt.condition, results)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.condition, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.condition, got, tt.want)
		}
	}
}

func TestEvaluateCondition_SyntaxErrors(t *testing.T) {
	conditions := []string{
		"a.x ==",
		"a.",
		"== 5",
		"a.x == 'unterminated",
		"(a.x == 1",
		"a.x === 1",
		"a.get(x)",
		"a.get('x'",
		"@invalid",
	}

	for _, cond := range conditions {
		_, err := EvaluateCondition(cond, Results{"a": {"x": 1}})
		if err == nil {
			t.Errorf("%q: expected syntax error", cond)
			continue
		}
		if !errors.Is(err, ErrPredicateSyntax) {
			t.Errorf("%q: expected ErrPredicateSyntax, got %v", cond, err)
		}
	}
}

func TestEvaluateCondition_TypeErrors(t *testing.T) {
	results := Results{
		"a": {"x": 1, "s": "text"},
	}

	conditions := []string{
		"a.x > 'text'",     // число против строки
		"a.missing > 5",    // nil в ordering-сравнении
		"a.x && a.x == 1",  // не-bool в булевой связке
		"!a.x",             // не-bool под отрицанием
		"a.x",              // результат предиката не bool
	}

	for _, cond := range conditions {
		_, err := EvaluateCondition(cond, results)
		if err == nil {
			t.Errorf("%q: expected type error", cond)
			continue
		}
		if !errors.Is(err, ErrPredicateType) {
			t.Errorf("%q: expected ErrPredicateType, got %v", cond, err)
		}
	}
}

func TestEvaluateCondition_NoEnvironmentAccess(t *testing.T) {
	// Грамматика не содержит вызовов функций кроме .get() —
	// любая попытка вызвать что-то другое падает на разборе
	conditions := []string{
		"os.getenv('HOME') == ''",
		"a.read('/etc/passwd') == ''",
	}

	for _, cond := range conditions {
		_, err := EvaluateCondition(cond, Results{})
		if err == nil {
			t.Errorf("%q: expected error", cond)
		}
	}
}
