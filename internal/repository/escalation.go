package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskboard/internal/domain"
)

// escalationColumns is the shared list of columns for escalation queries.
var escalationColumns = []string{
	"id", "task_id", "escalated_by", "escalated_to", "message", "status",
	"resolved_by", "resolved_at", "created_at", "updated_at",
}

// EscalationRepository handles database operations for escalations.
type EscalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository creates a new EscalationRepository.
func NewEscalationRepository(pool *pgxpool.Pool) *EscalationRepository {
	return &EscalationRepository{pool: pool}
}

// scanEscalation scans a single row into an Escalation struct.
func scanEscalation(row pgx.Row) (*domain.Escalation, error) {
	var esc domain.Escalation
	err := row.Scan(
		&esc.ID,
		&esc.TaskID,
		&esc.EscalatedBy,
		&esc.EscalatedTo,
		&esc.Message,
		&esc.Status,
		&esc.ResolvedBy,
		&esc.ResolvedAt,
		&esc.CreatedAt,
		&esc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEscalationNotFound
		}
		return nil, fmt.Errorf("scan escalation: %w", err)
	}
	return &esc, nil
}

// scanEscalations scans multiple rows into a slice of Escalation structs.
func scanEscalations(rows pgx.Rows) ([]domain.Escalation, error) {
	defer rows.Close()

	var escalations []domain.Escalation
	for rows.Next() {
		esc, err := scanEscalation(rows)
		if err != nil {
			return nil, err
		}
		escalations = append(escalations, *esc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return escalations, nil
}

// List retrieves all escalations, newest first.
func (r *EscalationRepository) List(ctx context.Context) ([]domain.Escalation, error) {
	query, args, err := psql.
		Select(escalationColumns...).
		From("escalations").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for escalations: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query escalations: %w", err)
	}

	return scanEscalations(rows)
}

// ListOpen retrieves all open escalations, newest first.
func (r *EscalationRepository) ListOpen(ctx context.Context) ([]domain.Escalation, error) {
	query, args, err := psql.
		Select(escalationColumns...).
		From("escalations").
		Where(sq.Eq{"status": domain.EscalationStatusOpen}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListOpen query for escalations: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query open escalations: %w", err)
	}

	return scanEscalations(rows)
}

// GetByID retrieves an escalation by ID.
func (r *EscalationRepository) GetByID(ctx context.Context, escalationID string) (*domain.Escalation, error) {
	query, args, err := psql.
		Select(escalationColumns...).
		From("escalations").
		Where(sq.Eq{"id": escalationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for escalation: %w", err)
	}

	return scanEscalation(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves an escalation by ID with FOR UPDATE lock
// (within transaction).
func (r *EscalationRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, escalationID string) (*domain.Escalation, error) {
	query, args, err := psql.
		Select(escalationColumns...).
		From("escalations").
		Where(sq.Eq{"id": escalationID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for escalation %s: %w", escalationID, err)
	}

	return scanEscalation(tx.QueryRow(ctx, query, args...))
}

// Insert creates a new open escalation within a transaction. Returns the
// created escalation with ID, CreatedAt, and UpdatedAt populated by the
// database.
func (r *EscalationRepository) Insert(ctx context.Context, tx pgx.Tx, esc *domain.Escalation) (*domain.Escalation, error) {
	query, args, err := psql.
		Insert("escalations").
		Columns("task_id", "escalated_by", "escalated_to", "message", "status").
		Values(esc.TaskID, esc.EscalatedBy, esc.EscalatedTo, esc.Message, domain.EscalationStatusOpen).
		Suffix("RETURNING id, status, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Insert query for escalation: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&esc.ID, &esc.Status, &esc.CreatedAt, &esc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert escalation: %w", err)
	}

	return esc, nil
}

// Resolve flips an open escalation to resolved, stamping resolved_by and
// resolved_at atomically with the status change. The status guard in the
// WHERE clause makes the transition single-shot; zero rows affected means the
// escalation was already resolved under a concurrent request.
func (r *EscalationRepository) Resolve(ctx context.Context, tx pgx.Tx, escalationID, resolvedBy string) (*domain.Escalation, error) {
	query, args, err := psql.
		Update("escalations").
		Set("status", domain.EscalationStatusResolved).
		Set("resolved_by", resolvedBy).
		Set("resolved_at", sq.Expr("NOW()")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     escalationID,
			"status": domain.EscalationStatusOpen,
		}).
		Suffix("RETURNING " + columnList(escalationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Resolve query for escalation %s: %w", escalationID, err)
	}

	esc, err := scanEscalation(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, domain.ErrEscalationNotFound) {
			return nil, fmt.Errorf("%w: escalation %s is already resolved", domain.ErrInvalidState, escalationID)
		}
		return nil, err
	}
	return esc, nil
}
