package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Conductor/internal/domain"
)

// DefinitionRepo — репозиторий для работы с workflow definitions.
type DefinitionRepo struct {
	pool *pgxpool.Pool
}

// NewDefinitionRepo создаёт новый DefinitionRepo.
func NewDefinitionRepo(pool *pgxpool.Pool) *DefinitionRepo {
	return &DefinitionRepo{pool: pool}
}

// Create сохраняет новое определение.
func (r *DefinitionRepo) Create(ctx context.Context, def *domain.WorkflowDefinition) error {
	stepsJSON, err := json.Marshal(def.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	query := `
		INSERT INTO workflow_definitions (id, name, agent_id, steps, schedule, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		def.ID,
		def.Name,
		nullString(def.AgentID),
		stepsJSON,
		nullString(def.Schedule),
		def.IsActive,
		def.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: definition %q", ErrAlreadyExists, def.Name)
		}
		return fmt.Errorf("insert definition: %w", err)
	}
	return nil
}

// GetByID возвращает определение по ID.
func (r *DefinitionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, agent_id, steps, schedule, is_active, created_at
		FROM workflow_definitions
		WHERE id = $1
	`
	return scanDefinition(r.pool.QueryRow(ctx, query, id))
}

// GetByName возвращает определение по имени.
func (r *DefinitionRepo) GetByName(ctx context.Context, name string) (*domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, agent_id, steps, schedule, is_active, created_at
		FROM workflow_definitions
		WHERE name = $1
	`
	return scanDefinition(r.pool.QueryRow(ctx, query, name))
}

// List возвращает все определения, новые первыми.
func (r *DefinitionRepo) List(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, agent_id, steps, schedule, is_active, created_at
		FROM workflow_definitions
		ORDER BY created_at DESC
	`
	return r.queryDefinitions(ctx, query)
}

// ListScheduled возвращает активные определения с расписанием.
func (r *DefinitionRepo) ListScheduled(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, agent_id, steps, schedule, is_active, created_at
		FROM workflow_definitions
		WHERE is_active = true AND schedule IS NOT NULL
		ORDER BY created_at ASC
	`
	return r.queryDefinitions(ctx, query)
}

// SetActive включает или выключает определение.
func (r *DefinitionRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE workflow_definitions SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set definition active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет определение.
func (r *DefinitionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM workflow_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete definition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DefinitionRepo) queryDefinitions(ctx context.Context, query string, args ...any) ([]domain.WorkflowDefinition, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer rows.Close()

	var defs []domain.WorkflowDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// scanDefinition сканирует строку в WorkflowDefinition.
func scanDefinition(row pgx.Row) (*domain.WorkflowDefinition, error) {
	var def domain.WorkflowDefinition
	var stepsJSON []byte
	var agentID *string
	var schedule *string

	err := row.Scan(
		&def.ID,
		&def.Name,
		&agentID,
		&stepsJSON,
		&schedule,
		&def.IsActive,
		&def.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan definition: %w", err)
	}

	if stepsJSON != nil {
		if err := json.Unmarshal(stepsJSON, &def.Steps); err != nil {
			return nil, fmt.Errorf("unmarshal steps: %w", err)
		}
	}
	if agentID != nil {
		def.AgentID = *agentID
	}
	if schedule != nil {
		def.Schedule = *schedule
	}

	return &def, nil
}
