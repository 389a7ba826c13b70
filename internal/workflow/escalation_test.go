package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/store"
	"github.com/mtlprog/taskboard/internal/workflow"
)

type fixture struct {
	tasks       *store.TaskStore
	escalations *store.EscalationStore
	users       *store.UserStore
	flow        *workflow.Workflow

	manager  *domain.User
	employee *domain.User
	other    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tasks:       store.NewTaskStore(),
		escalations: store.NewEscalationStore(),
		users:       store.NewUserStore(),
		manager:     &domain.User{ID: "manager-1", FullName: "Maria", Role: domain.RoleManager},
		employee:    &domain.User{ID: "employee-1", FullName: "Ivan", Role: domain.RoleEmployee},
		other:       &domain.User{ID: "employee-2", FullName: "Olga", Role: domain.RoleEmployee},
	}
	f.users.ReplaceAll([]domain.User{*f.manager, *f.employee, *f.other})
	f.flow = workflow.New(f.tasks, f.escalations, f.users)
	return f
}

// ownTask creates a task assigned to the fixture employee.
func (f *fixture) ownTask(t *testing.T) *domain.Task {
	t.Helper()

	task, err := f.tasks.Create(domain.TaskDraft{
		Title:      "Prepare report",
		AssignedTo: &f.employee.ID,
		StartTime:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
		EndTime:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local),
	}, f.manager)
	require.NoError(t, err)
	return task
}

func TestEscalateBlocksTaskAndOpensEscalation(t *testing.T) {
	f := newFixture(t)
	task := f.ownTask(t)

	esc, err := f.flow.Escalate(task.ID, f.manager.ID, "Need the Q3 numbers", f.employee)
	require.NoError(t, err)

	assert.Equal(t, task.ID, esc.TaskID)
	assert.Equal(t, f.employee.ID, esc.EscalatedBy)
	assert.Equal(t, f.manager.ID, esc.EscalatedTo)
	assert.Equal(t, domain.EscalationStatusOpen, esc.Status)
	assert.Nil(t, esc.ResolvedBy)
	assert.Nil(t, esc.ResolvedAt)

	blocked, err := f.tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusBlocked, blocked.Status)
}

func TestEscalateValidation(t *testing.T) {
	f := newFixture(t)
	task := f.ownTask(t)

	t.Run("blank message and non-manager recipient collected together", func(t *testing.T) {
		_, err := f.flow.Escalate(task.ID, f.other.ID, "   ", f.employee)
		require.ErrorIs(t, err, domain.ErrValidation)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ElementsMatch(t, []string{"message", "escalated_to"}, verr.Fields)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := f.flow.Escalate(task.ID, "nobody", "help", f.employee)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := f.flow.Escalate("missing", f.manager.ID, "help", f.employee)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("nil actor", func(t *testing.T) {
		_, err := f.flow.Escalate(task.ID, f.manager.ID, "help", nil)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	assert.Empty(t, f.escalations.All(), "failed escalations must not leave records behind")

	stored, err := f.tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, stored.Status, "failed escalations must not flip the task")
}

func TestEscalateRequiresEditPermission(t *testing.T) {
	f := newFixture(t)
	task := f.ownTask(t)

	// The status flip goes through the regular update path, so an employee
	// cannot escalate someone else's task.
	_, err := f.flow.Escalate(task.ID, f.manager.ID, "not mine", f.other)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	assert.Empty(t, f.escalations.All())
	stored, err := f.tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, stored.Status)
}

func TestResolveStampsFieldsAndKeepsTaskBlocked(t *testing.T) {
	f := newFixture(t)
	task := f.ownTask(t)

	esc, err := f.flow.Escalate(task.ID, f.manager.ID, "Need help", f.employee)
	require.NoError(t, err)

	resolved, err := f.flow.Resolve(esc.ID, f.manager)
	require.NoError(t, err)

	assert.Equal(t, domain.EscalationStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.manager.ID, *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	stored, err := f.tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusBlocked, stored.Status, "resolving does not unblock the task")
}

func TestResolvePermissionsAndState(t *testing.T) {
	f := newFixture(t)
	task := f.ownTask(t)

	esc, err := f.flow.Escalate(task.ID, f.manager.ID, "Need help", f.employee)
	require.NoError(t, err)

	t.Run("employee cannot resolve", func(t *testing.T) {
		_, err := f.flow.Resolve(esc.ID, f.employee)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("unknown escalation", func(t *testing.T) {
		_, err := f.flow.Resolve("missing", f.manager)
		assert.ErrorIs(t, err, domain.ErrEscalationNotFound)
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		_, err := f.flow.Resolve(esc.ID, f.manager)
		require.NoError(t, err)

		_, err = f.flow.Resolve(esc.ID, f.manager)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestMultipleEscalationsPerTask(t *testing.T) {
	f := newFixture(t)
	task := f.ownTask(t)

	first, err := f.flow.Escalate(task.ID, f.manager.ID, "first", f.employee)
	require.NoError(t, err)
	_, err = f.flow.Resolve(first.ID, f.manager)
	require.NoError(t, err)

	second, err := f.flow.Escalate(task.ID, f.manager.ID, "second", f.employee)
	require.NoError(t, err)

	byTask := f.escalations.ByTask(task.ID)
	assert.Len(t, byTask, 2)

	open := f.escalations.Open()
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)
}
