package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shaiso/Conductor/internal/domain"
)

func TestValidate_SimpleChain(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "fetch"},
		{ID: "B", SkillID: "transform", DependsOn: []string{"A"}},
		{ID: "C", SkillID: "store", DependsOn: []string{"B"}},
	}

	res := Validate(steps)
	if !res.Valid {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if res.NodeCount != 3 {
		t.Errorf("expected 3 nodes, got %d", res.NodeCount)
	}
	if res.EdgeCount != 2 {
		t.Errorf("expected 2 edges, got %d", res.EdgeCount)
	}

	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(res.Order, want) {
		t.Errorf("expected order %v, got %v", want, res.Order)
	}
}

func TestValidate_Diamond(t *testing.T) {
	// A → B → D
	// A → C → D
	steps := []domain.Step{
		{ID: "A", SkillID: "s"},
		{ID: "B", SkillID: "s", DependsOn: []string{"A"}},
		{ID: "C", SkillID: "s", DependsOn: []string{"A"}},
		{ID: "D", SkillID: "s", DependsOn: []string{"B", "C"}},
	}

	res := Validate(steps)
	if !res.Valid {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if res.EdgeCount != 4 {
		t.Errorf("expected 4 edges, got %d", res.EdgeCount)
	}

	assertTopological(t, steps, res.Order)
}

func TestValidate_TopologicalCorrectness(t *testing.T) {
	// Шаги объявлены в порядке, обратном зависимостям
	steps := []domain.Step{
		{ID: "report", SkillID: "s", DependsOn: []string{"enrich", "score"}},
		{ID: "score", SkillID: "s", DependsOn: []string{"fetch"}},
		{ID: "enrich", SkillID: "s", DependsOn: []string{"fetch"}},
		{ID: "fetch", SkillID: "s"},
	}

	res := Validate(steps)
	if !res.Valid {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	assertTopological(t, steps, res.Order)
}

func TestValidate_Deterministic(t *testing.T) {
	steps := []domain.Step{
		{ID: "a", SkillID: "s"},
		{ID: "b", SkillID: "s"},
		{ID: "c", SkillID: "s", DependsOn: []string{"a", "b"}},
		{ID: "d", SkillID: "s", DependsOn: []string{"b"}},
	}

	first := Validate(steps)
	if !first.Valid {
		t.Fatalf("unexpected error: %v", first.Err)
	}

	for i := 0; i < 10; i++ {
		res := Validate(steps)
		if !reflect.DeepEqual(res.Order, first.Order) {
			t.Fatalf("order not deterministic: %v vs %v", res.Order, first.Order)
		}
	}
}

func TestValidate_MissingDependency(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "s"},
		{ID: "B", SkillID: "s", DependsOn: []string{"A", "ghost", "phantom"}},
	}

	res := Validate(steps)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !errors.Is(res.Err, ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency, got %v", res.Err)
	}

	// Сообщение перечисляет каждый отсутствующий ID
	msg := res.Err.Error()
	if !strings.Contains(msg, "ghost") || !strings.Contains(msg, "phantom") {
		t.Errorf("error should name missing steps, got: %s", msg)
	}

	if res.Order != nil {
		t.Error("invalid workflow should have no execution order")
	}
}

func TestValidate_Cycle(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "s", DependsOn: []string{"C"}},
		{ID: "B", SkillID: "s", DependsOn: []string{"A"}},
		{ID: "C", SkillID: "s", DependsOn: []string{"B"}},
	}

	res := Validate(steps)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !errors.Is(res.Err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", res.Err)
	}
	if len(res.Cycles) == 0 {
		t.Error("expected cycle information")
	}
	if res.Order != nil {
		t.Error("cyclic workflow should have no execution order")
	}
}

func TestValidate_SelfLoop(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "s", DependsOn: []string{"A"}},
	}

	res := Validate(steps)
	if res.Valid {
		t.Fatal("expected invalid result for self-dependency")
	}
	if !errors.Is(res.Err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", res.Err)
	}
}

func TestValidate_EmptySteps(t *testing.T) {
	res := Validate(nil)
	if res.Valid {
		t.Fatal("expected invalid result for empty workflow")
	}
	if !errors.Is(res.Err, ErrEmptySteps) {
		t.Errorf("expected ErrEmptySteps, got %v", res.Err)
	}
}

func TestValidate_DuplicateStepID(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "s"},
		{ID: "A", SkillID: "s"},
	}

	res := Validate(steps)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !errors.Is(res.Err, ErrDuplicateStepID) {
		t.Errorf("expected ErrDuplicateStepID, got %v", res.Err)
	}
}

func TestValidate_EmptyStepID(t *testing.T) {
	steps := []domain.Step{
		{ID: "", SkillID: "s"},
	}

	res := Validate(steps)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !errors.Is(res.Err, ErrEmptyStepID) {
		t.Errorf("expected ErrEmptyStepID, got %v", res.Err)
	}
}

func TestValidate_DuplicateEdgeCountedOnce(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "s"},
		{ID: "B", SkillID: "s", DependsOn: []string{"A", "A"}},
	}

	res := Validate(steps)
	if !res.Valid {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.EdgeCount != 1 {
		t.Errorf("expected 1 edge, got %d", res.EdgeCount)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	steps := []domain.Step{
		{ID: "A", SkillID: "s"},
		{ID: "B", SkillID: "s", DependsOn: []string{"A"}},
	}
	before := make([]domain.Step, len(steps))
	copy(before, steps)

	Validate(steps)

	if !reflect.DeepEqual(steps, before) {
		t.Error("Validate should not mutate the step list")
	}
}

// assertTopological проверяет, что каждый шаг стоит в порядке строго
// после всех своих зависимостей.
func assertTopological(t *testing.T, steps []domain.Step, order []string) {
	t.Helper()

	if len(order) != len(steps) {
		t.Fatalf("order has %d entries, want %d", len(order), len(steps))
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	for i := range steps {
		for _, dep := range steps[i].DependsOn {
			if position[dep] >= position[steps[i].ID] {
				t.Errorf("step %s at %d must come after dependency %s at %d",
					steps[i].ID, position[steps[i].ID], dep, position[dep])
			}
		}
	}
}
