package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskboard/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "status", "priority", "assigned_to",
	"created_by", "start_time", "end_time", "notes", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.AssignedTo,
		&task.CreatedBy,
		&task.StartTime,
		&task.EndTime,
		&task.Notes,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// List retrieves all tasks ordered by start time.
func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for tasks: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	return scanTasks(rows)
}

// ListByDateRange retrieves tasks whose start time falls within the
// inclusive range, ordered by start time.
func (r *TaskRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.GtOrEq{"start_time": start}).
		Where(sq.LtOrEq{"start_time": end}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByDateRange query for tasks: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks by date range: %w", err)
	}

	return scanTasks(rows)
}

// ListByAssignee retrieves tasks assigned to the given user, ordered by
// start time.
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"assigned_to": userID}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByAssignee query for tasks: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks by assignee: %w", err)
	}

	return scanTasks(rows)
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// Insert creates a new task within a transaction. Returns the created task
// with ID, CreatedAt, and UpdatedAt populated by the database.
func (r *TaskRepository) Insert(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "status", "priority", "assigned_to",
			"created_by", "start_time", "end_time", "notes",
		).
		Values(
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.AssignedTo,
			task.CreatedBy,
			task.StartTime,
			task.EndTime,
			task.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Insert query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

// Patch applies the set fields of the patch and refreshes updated_at, within
// a transaction. An empty patch still refreshes updated_at. Returns the
// updated row.
func (r *TaskRepository) Patch(ctx context.Context, tx pgx.Tx, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	update := psql.
		Update("tasks").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID})

	if patch.Title != nil {
		update = update.Set("title", *patch.Title)
	}
	if patch.Description.Set {
		update = update.Set("description", patch.Description.Value)
	}
	if patch.Status != nil {
		update = update.Set("status", *patch.Status)
	}
	if patch.Priority != nil {
		update = update.Set("priority", *patch.Priority)
	}
	if patch.AssignedTo.Set {
		update = update.Set("assigned_to", patch.AssignedTo.Value)
	}
	if patch.StartTime != nil {
		update = update.Set("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		update = update.Set("end_time", *patch.EndTime)
	}
	if patch.Notes.Set {
		update = update.Set("notes", patch.Notes.Value)
	}

	query, args, err := update.
		Suffix("RETURNING " + columnList(taskColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Patch query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
