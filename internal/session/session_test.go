package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/session"
)

var (
	manager  = domain.User{ID: "manager-1", FullName: "Maria", Role: domain.RoleManager, APIToken: "tok-m"}
	employee = domain.User{ID: "employee-1", FullName: "Ivan", Role: domain.RoleEmployee, APIToken: "tok-e"}
)

// identity returns an IdentityProvider fixed to the given user.
func identity(u *domain.User) session.IdentityProvider {
	return func(context.Context) *domain.User { return u }
}

func newGateway(t *testing.T) (*session.Memory, *domain.Task) {
	t.Helper()

	gw := session.NewMemory()
	gw.Users.ReplaceAll([]domain.User{manager, employee})

	task, err := gw.InsertTask(context.Background(), &manager, domain.TaskDraft{
		Title:      "Prepare report",
		AssignedTo: &employee.ID,
		StartTime:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
		EndTime:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	return gw, task
}

func TestReloadFillsAllStores(t *testing.T) {
	ctx := context.Background()
	gw, task := newGateway(t)
	_, err := gw.InsertEscalation(ctx, &employee, task.ID, manager.ID, "stuck")
	require.NoError(t, err)

	s := session.New(gw, identity(&manager))
	require.NoError(t, s.Reload(ctx))

	assert.Len(t, s.Tasks.All(), 1)
	assert.Len(t, s.Users.All(), 2)
	assert.Len(t, s.Escalations.All(), 1)
}

func TestReloadUnauthenticated(t *testing.T) {
	gw, _ := newGateway(t)

	s := session.New(gw, identity(nil))
	err := s.Reload(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Empty(t, s.Tasks.All())
}

func TestCreateTaskCachesAuthoritativeResult(t *testing.T) {
	ctx := context.Background()
	gw, _ := newGateway(t)

	s := session.New(gw, identity(&manager))
	require.NoError(t, s.Reload(ctx))

	task, err := s.CreateTask(ctx, domain.TaskDraft{
		Title:     "Review contracts",
		StartTime: time.Date(2026, 3, 11, 11, 0, 0, 0, time.Local),
		EndTime:   time.Date(2026, 3, 11, 12, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)

	// The cached copy is the gateway's stamped entity, not the draft.
	cached, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, cached.Status)
	assert.Equal(t, domain.TaskPriorityMedium, cached.Priority)
	assert.False(t, cached.CreatedAt.IsZero())

	// And the gateway has it too.
	remote, err := gw.GetTask(ctx, &manager, task.ID)
	require.NoError(t, err)
	assert.Equal(t, cached.ID, remote.ID)
}

func TestCreateTaskDeniedLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	gw, _ := newGateway(t)

	s := session.New(gw, identity(&employee))
	require.NoError(t, s.Reload(ctx))
	before := len(s.Tasks.All())

	_, err := s.CreateTask(ctx, domain.TaskDraft{
		Title:     "Not allowed",
		StartTime: time.Date(2026, 3, 11, 11, 0, 0, 0, time.Local),
		EndTime:   time.Date(2026, 3, 11, 12, 0, 0, 0, time.Local),
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Len(t, s.Tasks.All(), before)
}

func TestUpdateTaskReplacesLocalCopy(t *testing.T) {
	ctx := context.Background()
	gw, task := newGateway(t)

	s := session.New(gw, identity(&manager))
	require.NoError(t, s.Reload(ctx))

	title := "Prepare quarterly report"
	updated, err := s.UpdateTask(ctx, task.ID, domain.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	cached, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, title, cached.Title)
}

func TestDeleteTaskRemovesLocalCopy(t *testing.T) {
	ctx := context.Background()
	gw, task := newGateway(t)

	s := session.New(gw, identity(&manager))
	require.NoError(t, s.Reload(ctx))

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	_, err := s.Tasks.Get(task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = gw.GetTask(ctx, &manager, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestEscalateCachesBlockedTask(t *testing.T) {
	ctx := context.Background()
	gw, task := newGateway(t)

	s := session.New(gw, identity(&employee))
	require.NoError(t, s.Reload(ctx))

	esc, err := s.Escalate(ctx, task.ID, manager.ID, "Need the Q3 numbers")
	require.NoError(t, err)
	assert.Equal(t, domain.EscalationStatusOpen, esc.Status)

	// The session sees the side effect on the task without a full reload.
	cached, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusBlocked, cached.Status)
}

func TestResolveEscalationKeepsTaskBlocked(t *testing.T) {
	ctx := context.Background()
	gw, task := newGateway(t)
	esc, err := gw.InsertEscalation(ctx, &employee, task.ID, manager.ID, "stuck")
	require.NoError(t, err)

	s := session.New(gw, identity(&manager))
	require.NoError(t, s.Reload(ctx))

	resolved, err := s.ResolveEscalation(ctx, esc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscalationStatusResolved, resolved.Status)

	cached, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusBlocked, cached.Status)
}

func TestMemoryOverview(t *testing.T) {
	ctx := context.Background()
	gw, task := newGateway(t)

	_, err := gw.SetTaskStatus(ctx, &employee, task.ID, domain.TaskStatusCompleted)
	require.NoError(t, err)
	_, err = gw.InsertTask(ctx, &manager, domain.TaskDraft{
		Title:      "Second task",
		AssignedTo: &employee.ID,
		StartTime:  time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local),
		EndTime:    time.Date(2026, 3, 11, 10, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)

	t.Run("manager sees every employee", func(t *testing.T) {
		rows, err := gw.Overview(ctx, &manager)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		row := rows[0]
		assert.Equal(t, employee.ID, row.UserID)
		assert.Equal(t, 2, row.TotalTasks)
		assert.Equal(t, 1, row.Completed)
		assert.Equal(t, 1, row.Pending)
		assert.InDelta(t, 50.0, row.CompletionRate, 0.01)
	})

	t.Run("employee sees only their own row", func(t *testing.T) {
		rows, err := gw.Overview(ctx, &employee)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, employee.ID, rows[0].UserID)
	})
}
