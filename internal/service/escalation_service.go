package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
	"github.com/mtlprog/taskboard/internal/repository"
)

// EscalationService is the server side of the escalation workflow. The
// create path couples the escalation insert with the task status flip inside
// one transaction: either both writes commit or neither does.
type EscalationService struct {
	pool           *pgxpool.Pool
	escalationRepo *repository.EscalationRepository
	taskRepo       *repository.TaskRepository
	userRepo       *repository.UserRepository
}

// NewEscalationService creates a new EscalationService.
func NewEscalationService(
	pool *pgxpool.Pool,
	escalationRepo *repository.EscalationRepository,
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
) *EscalationService {
	return &EscalationService{
		pool:           pool,
		escalationRepo: escalationRepo,
		taskRepo:       taskRepo,
		userRepo:       userRepo,
	}
}

// ListEscalations returns every escalation, newest first.
func (s *EscalationService) ListEscalations(ctx context.Context, actor *domain.User) ([]domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.escalationRepo.List(ctx)
}

// ListOpenEscalations returns the escalations still awaiting resolution.
func (s *EscalationService) ListOpenEscalations(ctx context.Context, actor *domain.User) ([]domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.escalationRepo.ListOpen(ctx)
}

// InsertEscalation creates an open escalation for the task and flips the
// task to blocked in the same transaction. The recipient must be a manager,
// and the actor needs edit permission on the task for the status flip, so an
// employee can only escalate tasks assigned to them.
func (s *EscalationService) InsertEscalation(ctx context.Context, actor *domain.User, taskID, escalatedTo, message string) (*domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	var fields []string
	if strings.TrimSpace(message) == "" {
		fields = append(fields, "message")
	}
	recipient, err := s.userRepo.GetByID(ctx, escalatedTo)
	if err != nil || !recipient.IsManager() {
		fields = append(fields, "escalated_to")
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}

	if !permission.CanEditTask(actor, task) {
		return nil, domain.ErrPermissionDenied
	}

	esc := &domain.Escalation{
		TaskID:      taskID,
		EscalatedBy: actor.ID,
		EscalatedTo: escalatedTo,
		Message:     message,
	}
	esc, err = s.escalationRepo.Insert(ctx, tx, esc)
	if err != nil {
		return nil, err
	}

	blocked := domain.TaskStatusBlocked
	if _, err := s.taskRepo.Patch(ctx, tx, taskID, domain.TaskPatch{Status: &blocked}); err != nil {
		return nil, fmt.Errorf("block task %s: %w", taskID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task escalated",
		"task_id", taskID,
		"escalation_id", esc.ID,
		"escalated_by", actor.ID,
		"escalated_to", escalatedTo,
	)

	return esc, nil
}

// ResolveEscalation flips an open escalation to resolved, stamping
// resolved_by and resolved_at. Managers only. The linked task keeps its
// blocked status until someone changes it explicitly.
func (s *EscalationService) ResolveEscalation(ctx context.Context, actor *domain.User, id string) (*domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !permission.CanResolveEscalation(actor) {
		return nil, domain.ErrPermissionDenied
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	esc, err := s.escalationRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !esc.IsOpen() {
		return nil, fmt.Errorf("%w: escalation %s is already resolved", domain.ErrInvalidState, id)
	}

	resolved, err := s.escalationRepo.Resolve(ctx, tx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("escalation resolved",
		"escalation_id", id,
		"resolved_by", actor.ID,
	)

	return resolved, nil
}
