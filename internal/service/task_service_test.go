package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/taskboard/internal/database"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/repository"
	"github.com/mtlprog/taskboard/internal/service"
)

// TaskServiceTestSuite runs against a real PostgreSQL instance and is skipped
// when DATABASE_URL is not set.
type TaskServiceTestSuite struct {
	suite.Suite
	pool              *pgxpool.Pool
	taskService       *service.TaskService
	escalationService *service.EscalationService

	manager  *domain.User
	employee *domain.User
	other    *domain.User
}

func (s *TaskServiceTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set, skipping database tests")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, databaseURL)
	s.Require().NoError(err, "failed to connect to database")
	s.pool = db.Pool()

	err = database.Migrate(ctx, s.pool)
	s.Require().NoError(err, "failed to run migrations")

	taskRepo := repository.NewTaskRepository(s.pool)
	userRepo := repository.NewUserRepository(s.pool)
	escalationRepo := repository.NewEscalationRepository(s.pool)

	s.taskService = service.NewTaskService(s.pool, taskRepo)
	s.escalationService = service.NewEscalationService(s.pool, escalationRepo, taskRepo, userRepo)
}

func (s *TaskServiceTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, "TRUNCATE users, tasks, escalations CASCADE")
	s.Require().NoError(err, "failed to truncate tables")

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, email, full_name, role, api_token)
		VALUES
			('00000000-0000-0000-0000-000000000001', 'maria@example.com', 'Maria', 'manager', 'token-1'),
			('00000000-0000-0000-0000-000000000002', 'ivan@example.com', 'Ivan', 'employee', 'token-2'),
			('00000000-0000-0000-0000-000000000003', 'olga@example.com', 'Olga', 'employee', 'token-3')
	`)
	s.Require().NoError(err)

	s.manager = &domain.User{ID: "00000000-0000-0000-0000-000000000001", Role: domain.RoleManager}
	s.employee = &domain.User{ID: "00000000-0000-0000-0000-000000000002", Role: domain.RoleEmployee}
	s.other = &domain.User{ID: "00000000-0000-0000-0000-000000000003", Role: domain.RoleEmployee}
}

func (s *TaskServiceTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func (s *TaskServiceTestSuite) draft() domain.TaskDraft {
	return domain.TaskDraft{
		Title:      "Prepare report",
		AssignedTo: &s.employee.ID,
		StartTime:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC),
	}
}

func (s *TaskServiceTestSuite) TestInsertTaskDefaults() {
	ctx := context.Background()

	task, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	s.NotEmpty(task.ID)
	s.Equal(domain.TaskStatusPending, task.Status)
	s.Equal(domain.TaskPriorityMedium, task.Priority)
	s.Equal(s.manager.ID, task.CreatedBy)
	s.False(task.CreatedAt.IsZero())
}

func (s *TaskServiceTestSuite) TestInsertTaskPermissionAndValidation() {
	ctx := context.Background()

	_, err := s.taskService.InsertTask(ctx, s.employee, s.draft())
	s.ErrorIs(err, domain.ErrPermissionDenied)

	bad := s.draft()
	bad.EndTime = bad.StartTime.Add(-time.Hour)
	_, err = s.taskService.InsertTask(ctx, s.manager, bad)
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *TaskServiceTestSuite) TestPatchTaskStripsEmployeeReassign() {
	ctx := context.Background()

	task, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	notes := "picked this up"
	updated, err := s.taskService.PatchTask(ctx, s.employee, task.ID, domain.TaskPatch{
		Notes:      domain.Some(notes),
		AssignedTo: domain.Some(s.other.ID),
	})
	s.Require().NoError(err)

	s.Require().NotNil(updated.AssignedTo)
	s.Equal(s.employee.ID, *updated.AssignedTo)
	s.Require().NotNil(updated.Notes)
	s.Equal(notes, *updated.Notes)
}

func (s *TaskServiceTestSuite) TestPatchTaskNullClearsColumn() {
	ctx := context.Background()

	task, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	updated, err := s.taskService.PatchTask(ctx, s.manager, task.ID, domain.TaskPatch{
		AssignedTo: domain.Null[string](),
	})
	s.Require().NoError(err)
	s.Nil(updated.AssignedTo)
}

func (s *TaskServiceTestSuite) TestTasksByDate() {
	ctx := context.Background()

	_, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	next := s.draft()
	next.Title = "Tomorrow"
	next.StartTime = next.StartTime.AddDate(0, 0, 1)
	next.EndTime = next.EndTime.AddDate(0, 0, 1)
	_, err = s.taskService.InsertTask(ctx, s.manager, next)
	s.Require().NoError(err)

	tasks, err := s.taskService.TasksByDate(ctx, s.manager, "2026-03-10")
	s.Require().NoError(err)
	s.Len(tasks, 1)

	_, err = s.taskService.TasksByDate(ctx, s.manager, "not-a-date")
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *TaskServiceTestSuite) TestDeleteTask() {
	ctx := context.Background()

	task, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	err = s.taskService.DeleteTask(ctx, s.employee, task.ID)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	err = s.taskService.DeleteTask(ctx, s.manager, task.ID)
	s.Require().NoError(err)

	_, err = s.taskService.GetTask(ctx, s.manager, task.ID)
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestEscalationLifecycle() {
	ctx := context.Background()

	task, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	esc, err := s.escalationService.InsertEscalation(ctx, s.employee, task.ID, s.manager.ID, "Need the Q3 numbers")
	s.Require().NoError(err)
	s.Equal(domain.EscalationStatusOpen, esc.Status)

	// The task was blocked in the same transaction.
	blocked, err := s.taskService.GetTask(ctx, s.manager, task.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusBlocked, blocked.Status)

	// Employees cannot resolve.
	_, err = s.escalationService.ResolveEscalation(ctx, s.employee, esc.ID)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	resolved, err := s.escalationService.ResolveEscalation(ctx, s.manager, esc.ID)
	s.Require().NoError(err)
	s.Equal(domain.EscalationStatusResolved, resolved.Status)
	s.NotNil(resolved.ResolvedBy)
	s.NotNil(resolved.ResolvedAt)

	// The task stays blocked after resolution.
	still, err := s.taskService.GetTask(ctx, s.manager, task.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusBlocked, still.Status)

	// Resolved is terminal.
	_, err = s.escalationService.ResolveEscalation(ctx, s.manager, esc.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *TaskServiceTestSuite) TestEscalationValidation() {
	ctx := context.Background()

	task, err := s.taskService.InsertTask(ctx, s.manager, s.draft())
	s.Require().NoError(err)

	// Blank message and a non-manager recipient.
	_, err = s.escalationService.InsertEscalation(ctx, s.employee, task.ID, s.other.ID, "  ")
	s.ErrorIs(err, domain.ErrValidation)

	// An employee cannot escalate a task that is not theirs.
	_, err = s.escalationService.InsertEscalation(ctx, s.other, task.ID, s.manager.ID, "not mine")
	s.ErrorIs(err, domain.ErrPermissionDenied)

	// Nothing was blocked along the way.
	stored, err := s.taskService.GetTask(ctx, s.manager, task.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusPending, stored.Status)
}
