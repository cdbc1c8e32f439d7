package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/skills"
)

// --- Test doubles ---

type skillCall struct {
	skillID string
	inputs  map[string]any
	agentID string
}

// stubBackend записывает вызовы и возвращает заранее заданные результаты.
type stubBackend struct {
	calls   []skillCall
	outputs map[string]map[string]any // skillID → result
	fail    map[string]string         // skillID → логическая ошибка
	errs    map[string]error          // skillID → инфраструктурная ошибка
	block   map[string]bool           // skillID → висит до отмены ctx
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		outputs: make(map[string]map[string]any),
		fail:    make(map[string]string),
		errs:    make(map[string]error),
		block:   make(map[string]bool),
	}
}

func (b *stubBackend) ExecuteSkill(ctx context.Context, skillID string, inputs map[string]any, agentID string) (*skills.InvocationResult, error) {
	b.calls = append(b.calls, skillCall{skillID: skillID, inputs: inputs, agentID: agentID})

	if b.block[skillID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := b.errs[skillID]; ok {
		return nil, err
	}
	if msg, ok := b.fail[skillID]; ok {
		return &skills.InvocationResult{Success: false, Error: msg}, nil
	}

	result := b.outputs[skillID]
	if result == nil {
		result = map[string]any{}
	}
	return &skills.InvocationResult{Success: true, Result: result}, nil
}

func (b *stubBackend) calledSkills() []string {
	ids := make([]string, len(b.calls))
	for i, c := range b.calls {
		ids[i] = c.skillID
	}
	return ids
}

// memStore — in-memory RecordStore.
type memStore struct {
	records  map[uuid.UUID]domain.ExecutionRecord
	creates  int
	updates  int
	failNext bool
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]domain.ExecutionRecord)}
}

func (s *memStore) Create(_ context.Context, rec *domain.ExecutionRecord) error {
	s.creates++
	if s.failNext {
		return errors.New("db unavailable")
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *memStore) Update(_ context.Context, rec *domain.ExecutionRecord) error {
	s.updates++
	if s.failNext {
		return errors.New("db unavailable")
	}
	s.records[rec.ID] = *rec
	return nil
}

// --- ExecuteWorkflow Tests ---

func TestExecuteWorkflow_Success(t *testing.T) {
	backend := newStubBackend()
	backend.outputs["fetch"] = map[string]any{"output": 100}
	store := newMemStore()

	orch := New(Config{Backend: backend, Records: store})

	steps := []domain.Step{
		{ID: "A", SkillID: "fetch"},
		{ID: "B", SkillID: "process", Inputs: map[string]any{"mode": "full"}, DependsOn: []string{"A"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.RolledBack {
		t.Error("rollback should not run on success")
	}

	// Результат A прокинут во входы B поверх статических
	if len(backend.calls) != 2 {
		t.Fatalf("expected 2 skill calls, got %d", len(backend.calls))
	}
	processInputs := backend.calls[1].inputs
	if processInputs["output"] != 100 {
		t.Errorf("dependency output not propagated: %v", processInputs)
	}
	if processInputs["mode"] != "full" {
		t.Errorf("static input lost: %v", processInputs)
	}
	if backend.calls[0].agentID != "agent-1" {
		t.Errorf("agent_id not forwarded: %s", backend.calls[0].agentID)
	}

	// Запись завершена
	rec, ok := store.records[result.RecordID]
	if !ok {
		t.Fatal("record not persisted")
	}
	if rec.Status != domain.RecordStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", rec.Status)
	}
	if rec.ValidationStatus != domain.ValidationStatusValid {
		t.Errorf("expected VALID, got %s", rec.ValidationStatus)
	}
	if rec.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
}

func TestExecuteWorkflow_ValidationFailure(t *testing.T) {
	backend := newStubBackend()
	store := newMemStore()
	orch := New(Config{Backend: backend, Records: store})

	steps := []domain.Step{
		{ID: "A", SkillID: "s", DependsOn: []string{"B"}},
		{ID: "B", SkillID: "s", DependsOn: []string{"A"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Validation.Valid {
		t.Error("validation should have failed")
	}
	if len(backend.calls) != 0 {
		t.Errorf("no skills should run for invalid workflow, got %d calls", len(backend.calls))
	}
	if result.RolledBack {
		t.Error("no rollback for invalid workflow")
	}

	rec := store.records[result.RecordID]
	if rec.ValidationStatus != domain.ValidationStatusInvalid {
		t.Errorf("expected INVALID, got %s", rec.ValidationStatus)
	}
	if rec.Status != domain.RecordStatusFailed {
		t.Errorf("expected FAILED, got %s", rec.Status)
	}
}

func TestExecuteWorkflow_StepFailureTriggersRollback(t *testing.T) {
	backend := newStubBackend()
	backend.outputs["create_order"] = map[string]any{"order_id": "ord-42"}
	backend.fail["charge_payment"] = "card declined"
	store := newMemStore()

	orch := New(Config{Backend: backend, Records: store})

	steps := []domain.Step{
		{ID: "order", SkillID: "create_order", Compensation: "cancel_order"},
		{ID: "payment", SkillID: "charge_payment", DependsOn: []string{"order"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if result.Success {
		t.Fatal("expected failure")
	}
	if !result.RolledBack {
		t.Error("expected rollback")
	}
	if !strings.Contains(result.Error, "card declined") {
		t.Errorf("error should carry skill message, got: %s", result.Error)
	}

	// Компенсация вызвана с результатом своего шага
	called := backend.calledSkills()
	want := []string{"create_order", "charge_payment", "cancel_order"}
	if len(called) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, called)
	}
	for i := range want {
		if called[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, called)
		}
	}
	compInputs := backend.calls[2].inputs
	if compInputs["order_id"] != "ord-42" {
		t.Errorf("compensation should receive step result, got %v", compInputs)
	}

	rec := store.records[result.RecordID]
	if rec.Status != domain.RecordStatusFailed {
		t.Errorf("expected FAILED, got %s", rec.Status)
	}
	if !rec.RollbackPerformed {
		t.Error("rollback_performed should be set")
	}
}

func TestExecuteWorkflow_RollbackReverseOrder(t *testing.T) {
	backend := newStubBackend()
	backend.errs["boom"] = errors.New("connection refused")

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "A", SkillID: "skill_a", Compensation: "undo_a"},
		{ID: "B", SkillID: "skill_b", DependsOn: []string{"A"}, Compensation: "undo_b"},
		{ID: "C", SkillID: "boom", DependsOn: []string{"B"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if result.Success {
		t.Fatal("expected failure")
	}

	// Компенсации в обратном порядке завершения: undo_b, затем undo_a
	called := backend.calledSkills()
	want := []string{"skill_a", "skill_b", "boom", "undo_b", "undo_a"}
	if fmt.Sprint(called) != fmt.Sprint(want) {
		t.Errorf("expected calls %v, got %v", want, called)
	}
}

func TestExecuteWorkflow_RollbackSkipsStepsWithoutCompensation(t *testing.T) {
	backend := newStubBackend()
	backend.fail["boom"] = "failed"

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "A", SkillID: "skill_a"}, // без компенсации
		{ID: "B", SkillID: "skill_b", DependsOn: []string{"A"}, Compensation: "undo_b"},
		{ID: "C", SkillID: "boom", DependsOn: []string{"B"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if !result.RolledBack {
		t.Error("expected rollback")
	}
	called := backend.calledSkills()
	want := []string{"skill_a", "skill_b", "boom", "undo_b"}
	if fmt.Sprint(called) != fmt.Sprint(want) {
		t.Errorf("expected calls %v, got %v", want, called)
	}
}

func TestExecuteWorkflow_RollbackWithNoCompensations(t *testing.T) {
	backend := newStubBackend()
	backend.fail["boom"] = "failed"

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "A", SkillID: "skill_a"},
		{ID: "B", SkillID: "boom", DependsOn: []string{"A"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	// Rollback запущен, даже если компенсировать было нечего
	if !result.RolledBack {
		t.Error("rollback walk still counts without compensations")
	}
}

func TestExecuteWorkflow_CompensationFailureDoesNotStopRollback(t *testing.T) {
	backend := newStubBackend()
	backend.fail["boom"] = "failed"
	backend.errs["undo_b"] = errors.New("compensation service down")

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "A", SkillID: "skill_a", Compensation: "undo_a"},
		{ID: "B", SkillID: "skill_b", DependsOn: []string{"A"}, Compensation: "undo_b"},
		{ID: "C", SkillID: "boom", DependsOn: []string{"B"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	// undo_b упал, но undo_a всё равно вызван
	called := backend.calledSkills()
	want := []string{"skill_a", "skill_b", "boom", "undo_b", "undo_a"}
	if fmt.Sprint(called) != fmt.Sprint(want) {
		t.Errorf("expected calls %v, got %v", want, called)
	}
	if !result.RolledBack {
		t.Error("rollback is best-effort, still performed")
	}
}

func TestExecuteWorkflow_StepTimeoutTriggersRollback(t *testing.T) {
	backend := newStubBackend()
	backend.outputs["create_order"] = map[string]any{"order_id": "ord-7"}
	backend.block["slow_payment"] = true
	store := newMemStore()

	orch := New(Config{Backend: backend, Records: store})

	steps := []domain.Step{
		{ID: "order", SkillID: "create_order", Compensation: "cancel_order"},
		{ID: "payment", SkillID: "slow_payment", DependsOn: []string{"order"}, TimeoutSec: 1},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	// Таймаут шага == падение шага
	if result.Success {
		t.Fatal("expected failure on step timeout")
	}
	if !strings.Contains(result.Error, context.DeadlineExceeded.Error()) {
		t.Errorf("error should carry the deadline cause, got: %s", result.Error)
	}
	if !result.RolledBack {
		t.Error("timeout should trigger rollback")
	}

	// Компенсация первого шага вызвана с его результатом
	called := backend.calledSkills()
	want := []string{"create_order", "slow_payment", "cancel_order"}
	if fmt.Sprint(called) != fmt.Sprint(want) {
		t.Fatalf("expected calls %v, got %v", want, called)
	}
	if backend.calls[2].inputs["order_id"] != "ord-7" {
		t.Errorf("compensation should receive step result, got %v", backend.calls[2].inputs)
	}

	rec := store.records[result.RecordID]
	if rec.Status != domain.RecordStatusFailed {
		t.Errorf("expected FAILED, got %s", rec.Status)
	}
	if !rec.RollbackPerformed {
		t.Error("rollback_performed should be set")
	}
}

func TestExecuteWorkflow_ConditionSkipsStep(t *testing.T) {
	backend := newStubBackend()
	backend.outputs["validate"] = map[string]any{"is_valid": false}

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "validate", SkillID: "validate"},
		{ID: "publish", SkillID: "publish", DependsOn: []string{"validate"},
			Condition: "validate.get('is_valid') == true"},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}

	// publish пропущен и отсутствует в результатах
	called := backend.calledSkills()
	if fmt.Sprint(called) != fmt.Sprint([]string{"validate"}) {
		t.Errorf("publish should be skipped, got calls %v", called)
	}
	if _, ok := result.Results["publish"]; ok {
		t.Error("skipped step should not appear in results")
	}
}

func TestExecuteWorkflow_SkippedStepResultsOmittedDownstream(t *testing.T) {
	backend := newStubBackend()
	backend.outputs["validate"] = map[string]any{"is_valid": false}
	backend.outputs["fallback"] = map[string]any{"source": "cache"}

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "validate", SkillID: "validate"},
		{ID: "enrich", SkillID: "enrich", DependsOn: []string{"validate"},
			Condition: "validate.is_valid == true"},
		{ID: "fallback", SkillID: "fallback", DependsOn: []string{"validate"}},
		{ID: "report", SkillID: "report", DependsOn: []string{"enrich", "fallback"}},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}

	// report получает только ключи fallback — enrich был пропущен
	var reportInputs map[string]any
	for _, c := range backend.calls {
		if c.skillID == "report" {
			reportInputs = c.inputs
		}
	}
	if reportInputs == nil {
		t.Fatal("report was not executed")
	}
	if reportInputs["source"] != "cache" {
		t.Errorf("fallback output missing: %v", reportInputs)
	}
}

func TestExecuteWorkflow_ConditionErrorFailsStep(t *testing.T) {
	backend := newStubBackend()

	orch := New(Config{Backend: backend})

	steps := []domain.Step{
		{ID: "A", SkillID: "skill_a"},
		{ID: "B", SkillID: "skill_b", DependsOn: []string{"A"},
			Condition: "A.x ==="}, // синтаксическая ошибка
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if result.Success {
		t.Fatal("broken predicate should fail the step, not skip it")
	}
	if !strings.Contains(result.Error, "condition") {
		t.Errorf("error should mention condition, got: %s", result.Error)
	}
	if !result.RolledBack {
		t.Error("step failure triggers rollback")
	}
}

func TestExecuteWorkflow_PersistenceFailureNonFatal(t *testing.T) {
	backend := newStubBackend()
	store := newMemStore()
	store.failNext = true

	orch := New(Config{Backend: backend, Records: store})

	steps := []domain.Step{
		{ID: "A", SkillID: "skill_a"},
	}

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", steps, "agent-1")

	if !result.Success {
		t.Fatalf("db failure should not fail the workflow: %s", result.Error)
	}
	if store.creates == 0 || store.updates == 0 {
		t.Error("store should have been attempted")
	}
}

func TestExecuteWorkflow_NoRecordStore(t *testing.T) {
	backend := newStubBackend()
	orch := New(Config{Backend: backend})

	result := orch.ExecuteWorkflow(context.Background(), "wf-1", []domain.Step{
		{ID: "A", SkillID: "skill_a"},
	}, "agent-1")

	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.RecordID == uuid.Nil {
		t.Error("record id should be generated even without store")
	}
}

// --- ValidateWorkflow Tests ---

func TestValidateWorkflow(t *testing.T) {
	orch := New(Config{Backend: newStubBackend()})

	res := orch.ValidateWorkflow([]domain.Step{
		{ID: "A", SkillID: "s"},
		{ID: "B", SkillID: "s", DependsOn: []string{"A"}},
	})
	if !res.Valid {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	res = orch.ValidateWorkflow([]domain.Step{
		{ID: "A", SkillID: "s", DependsOn: []string{"A"}},
	})
	if res.Valid {
		t.Fatal("self-loop should be invalid")
	}
}
