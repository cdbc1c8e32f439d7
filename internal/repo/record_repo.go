package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Conductor/internal/domain"
)

// RecordRepo — репозиторий для работы с execution records.
type RecordRepo struct {
	pool *pgxpool.Pool
}

// NewRecordRepo создаёт новый RecordRepo.
func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

// Create создаёт новую запись о выполнении.
func (r *RecordRepo) Create(ctx context.Context, rec *domain.ExecutionRecord) error {
	query := `
		INSERT INTO execution_records (id, workflow_id, agent_id, validation_status,
		       status, rollback_performed, error, started_at, completed_at,
		       duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.WorkflowID,
		nullString(rec.AgentID),
		rec.ValidationStatus,
		rec.Status,
		rec.RollbackPerformed,
		nullString(rec.Error),
		rec.StartedAt,
		rec.CompletedAt,
		rec.DurationSeconds,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert execution record: %w", err)
	}
	return nil
}

// Update обновляет статусы и итог выполнения.
func (r *RecordRepo) Update(ctx context.Context, rec *domain.ExecutionRecord) error {
	query := `
		UPDATE execution_records
		SET validation_status = $2, status = $3, rollback_performed = $4,
		    error = $5, completed_at = $6, duration_seconds = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.ValidationStatus,
		rec.Status,
		rec.RollbackPerformed,
		nullString(rec.Error),
		rec.CompletedAt,
		rec.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("update execution record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает запись по ID.
func (r *RecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExecutionRecord, error) {
	query := `
		SELECT id, workflow_id, agent_id, validation_status, status,
		       rollback_performed, error, started_at, completed_at,
		       duration_seconds, created_at
		FROM execution_records
		WHERE id = $1
	`
	return scanRecord(r.pool.QueryRow(ctx, query, id))
}

// List возвращает записи с фильтрацией, новые первыми.
func (r *RecordRepo) List(ctx context.Context, filter RecordFilter) ([]domain.ExecutionRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, workflow_id, agent_id, validation_status, status,
		       rollback_performed, error, started_at, completed_at,
		       duration_seconds, created_at
		FROM execution_records
		WHERE ($1::text IS NULL OR workflow_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.WorkflowID),
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list execution records: %w", err)
	}
	defer rows.Close()

	var records []domain.ExecutionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// RecordFilter — параметры фильтрации записей.
type RecordFilter struct {
	WorkflowID string
	Status     domain.RecordStatus
	Limit      int
	Offset     int
}

// scanRecord сканирует строку в ExecutionRecord.
func scanRecord(row pgx.Row) (*domain.ExecutionRecord, error) {
	var rec domain.ExecutionRecord
	var agentID *string
	var recError *string

	err := row.Scan(
		&rec.ID,
		&rec.WorkflowID,
		&agentID,
		&rec.ValidationStatus,
		&rec.Status,
		&rec.RollbackPerformed,
		&recError,
		&rec.StartedAt,
		&rec.CompletedAt,
		&rec.DurationSeconds,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan execution record: %w", err)
	}

	if agentID != nil {
		rec.AgentID = *agentID
	}
	if recError != nil {
		rec.Error = *recError
	}

	return &rec, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
