package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
	"github.com/mtlprog/taskboard/internal/repository"
)

// dateKeyLayout is the calendar-date format accepted by TasksByDate.
const dateKeyLayout = "2006-01-02"

// TaskService is the server side of the persistence gateway for tasks. It
// enforces the same permission engine the client store does; the gateway
// never trusts the client.
type TaskService struct {
	pool     *pgxpool.Pool
	taskRepo *repository.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(pool *pgxpool.Pool, taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{
		pool:     pool,
		taskRepo: taskRepo,
	}
}

// rollback discards the transaction, logging unexpected failures.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// ListTasks returns every task ordered by start time. Visibility filtering
// for non-managers is the presentation layer's responsibility.
func (s *TaskService) ListTasks(ctx context.Context, actor *domain.User) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.taskRepo.List(ctx)
}

// TasksByDate returns the tasks whose start time falls on the given local
// calendar date (format YYYY-MM-DD).
func (s *TaskService) TasksByDate(ctx context.Context, actor *domain.User, dateKey string) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	day, err := time.ParseInLocation(dateKeyLayout, dateKey, time.Local)
	if err != nil {
		return nil, domain.NewValidationError("date")
	}
	start := day
	end := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.taskRepo.ListByDateRange(ctx, start, end)
}

// ListTasksByDateRange returns tasks whose start time falls within the
// inclusive range.
func (s *TaskService) ListTasksByDateRange(ctx context.Context, actor *domain.User, start, end time.Time) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.taskRepo.ListByDateRange(ctx, start, end)
}

// TasksByEmployee returns the tasks assigned to the given user.
func (s *TaskService) TasksByEmployee(ctx context.Context, actor *domain.User, userID string) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.taskRepo.ListByAssignee(ctx, userID)
}

// GetTask returns a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.taskRepo.GetByID(ctx, id)
}

// InsertTask creates a new task. Managers only. Status defaults to pending
// and priority to medium when the draft leaves them unset.
func (s *TaskService) InsertTask(ctx context.Context, actor *domain.User, draft domain.TaskDraft) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !permission.CanCreateTask(actor) {
		return nil, domain.ErrPermissionDenied
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	status := draft.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	priority := draft.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	task := &domain.Task{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      status,
		Priority:    priority,
		AssignedTo:  draft.AssignedTo,
		CreatedBy:   actor.ID,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		Notes:       draft.Notes,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err = s.taskRepo.Insert(ctx, tx, task)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task created",
		"task_id", task.ID,
		"created_by", actor.ID,
		"status", task.Status,
	)

	return task, nil
}

// PatchTask applies a partial update. Managers may edit any task, employees
// only tasks assigned to them, and an employee's patch silently loses its
// assigned_to field before being applied. The merged result is validated
// inside the transaction, so a failed update leaves the row untouched.
func (s *TaskService) PatchTask(ctx context.Context, actor *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if actor.Role == domain.RoleEmployee {
		patch.AssignedTo = domain.Optional[string]{}
	}
	return s.applyPatch(ctx, actor, id, patch)
}

// AssignTask sets or clears the assignee. Managers only; bypasses the
// employee strip rule since the actor is already verified as a manager.
func (s *TaskService) AssignTask(ctx context.Context, actor *domain.User, id string, assignee *string) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !permission.CanAssignTask(actor) {
		return nil, domain.ErrPermissionDenied
	}
	patch := domain.TaskPatch{AssignedTo: domain.Optional[string]{Set: true, Value: assignee}}
	return s.applyPatch(ctx, actor, id, patch)
}

// SetTaskStatus changes the task status, subject to the same edit permission
// as PatchTask.
func (s *TaskService) SetTaskStatus(ctx context.Context, actor *domain.User, id string, status domain.TaskStatus) (*domain.Task, error) {
	return s.PatchTask(ctx, actor, id, domain.TaskPatch{Status: &status})
}

// DeleteTask removes a task. Managers only.
func (s *TaskService) DeleteTask(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !permission.CanDeleteTask(actor) {
		return domain.ErrPermissionDenied
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("task deleted",
		"task_id", id,
		"deleted_by", actor.ID,
	)

	return nil
}

// applyPatch runs the lock-merge-validate-patch sequence in one transaction.
func (s *TaskService) applyPatch(ctx context.Context, actor *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !permission.CanEditTask(actor, task) {
		return nil, domain.ErrPermissionDenied
	}

	merged := *task
	merged.ApplyPatch(patch)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.Patch(ctx, tx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task updated",
		"task_id", id,
		"updated_by", actor.ID,
		"status", updated.Status,
	)

	return updated, nil
}
