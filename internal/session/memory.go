package session

import (
	"context"
	"math"
	"time"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
	"github.com/mtlprog/taskboard/internal/store"
	"github.com/mtlprog/taskboard/internal/workflow"
)

// Memory is a Gateway backed entirely by the in-memory stores, used for demo
// mode and for session tests. It enforces the same permission engine the
// server-side services do, so a session cannot tell the two apart.
type Memory struct {
	Tasks       *store.TaskStore
	Users       *store.UserStore
	Escalations *store.EscalationStore

	flow *workflow.Workflow
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	tasks := store.NewTaskStore()
	users := store.NewUserStore()
	escalations := store.NewEscalationStore()
	return &Memory{
		Tasks:       tasks,
		Users:       users,
		Escalations: escalations,
		flow:        workflow.New(tasks, escalations, users),
	}
}

// ListTasks returns every task. Visibility filtering for non-managers is the
// presentation layer's responsibility, mirroring the server behavior.
func (m *Memory) ListTasks(_ context.Context, actor *domain.User) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Tasks.All(), nil
}

// ListTasksByDateRange returns tasks whose start time falls within the
// inclusive range.
func (m *Memory) ListTasksByDateRange(_ context.Context, actor *domain.User, start, end time.Time) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	var out []domain.Task
	for _, task := range m.Tasks.All() {
		if task.StartTime.IsZero() {
			continue
		}
		if !task.StartTime.Before(start) && !task.StartTime.After(end) {
			out = append(out, task)
		}
	}
	return out, nil
}

// TasksByDate returns tasks scheduled on the given calendar day.
func (m *Memory) TasksByDate(_ context.Context, actor *domain.User, dateKey string) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Tasks.ByDate(dateKey), nil
}

// TasksByEmployee returns tasks assigned to the given user.
func (m *Memory) TasksByEmployee(_ context.Context, actor *domain.User, userID string) ([]domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Tasks.ByEmployee(userID), nil
}

// GetTask returns a single task by ID.
func (m *Memory) GetTask(_ context.Context, actor *domain.User, id string) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Tasks.Get(id)
}

// InsertTask creates a task through the store's validated path.
func (m *Memory) InsertTask(_ context.Context, actor *domain.User, draft domain.TaskDraft) (*domain.Task, error) {
	return m.Tasks.Create(draft, actor)
}

// PatchTask applies a partial update through the store's validated path.
func (m *Memory) PatchTask(_ context.Context, actor *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return m.Tasks.Update(id, patch, actor)
}

// AssignTask sets or clears the assignee, managers only.
func (m *Memory) AssignTask(_ context.Context, actor *domain.User, id string, assignee *string) (*domain.Task, error) {
	return m.Tasks.Assign(id, assignee, actor)
}

// SetTaskStatus changes the task status.
func (m *Memory) SetTaskStatus(_ context.Context, actor *domain.User, id string, status domain.TaskStatus) (*domain.Task, error) {
	return m.Tasks.SetStatus(id, status, actor)
}

// DeleteTask removes a task, managers only.
func (m *Memory) DeleteTask(_ context.Context, actor *domain.User, id string) error {
	return m.Tasks.Delete(id, actor)
}

// ListUsers returns every user.
func (m *Memory) ListUsers(_ context.Context, actor *domain.User) ([]domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Users.All(), nil
}

// GetUser returns a single user by ID.
func (m *Memory) GetUser(_ context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Users.Get(id)
}

// GetByToken resolves an API token to a user, used by the auth middleware in
// demo mode.
func (m *Memory) GetByToken(_ context.Context, token string) (*domain.User, error) {
	return m.Users.GetByToken(token)
}

// ListUsersByRole returns the users holding the given role.
func (m *Memory) ListUsersByRole(_ context.Context, actor *domain.User, role domain.Role) ([]domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Users.ByRole(role), nil
}

// ListEscalations returns every escalation.
func (m *Memory) ListEscalations(_ context.Context, actor *domain.User) ([]domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Escalations.All(), nil
}

// ListOpenEscalations returns the escalations still awaiting resolution.
func (m *Memory) ListOpenEscalations(_ context.Context, actor *domain.User) ([]domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.Escalations.Open(), nil
}

// InsertEscalation creates an escalation and blocks the task atomically via
// the workflow.
func (m *Memory) InsertEscalation(_ context.Context, actor *domain.User, taskID, escalatedTo, message string) (*domain.Escalation, error) {
	return m.flow.Escalate(taskID, escalatedTo, message, actor)
}

// ResolveEscalation resolves an open escalation via the workflow.
func (m *Memory) ResolveEscalation(_ context.Context, actor *domain.User, id string) (*domain.Escalation, error) {
	return m.flow.Resolve(id, actor)
}

// Overview aggregates per-employee schedule stats. Managers see every
// employee; an employee sees only their own row.
func (m *Memory) Overview(_ context.Context, actor *domain.User) ([]domain.EmployeeStats, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	employees := m.Users.ByRole(domain.RoleEmployee)
	if !permission.CanViewAllTasks(actor) {
		var own []domain.User
		for _, u := range employees {
			if u.ID == actor.ID {
				own = append(own, u)
			}
		}
		employees = own
	}

	tasks := m.Tasks.All()
	open := m.Escalations.Open()

	out := make([]domain.EmployeeStats, 0, len(employees))
	for _, emp := range employees {
		row := domain.EmployeeStats{UserID: emp.ID, FullName: emp.FullName}
		for _, task := range tasks {
			if !task.IsAssignedTo(emp.ID) {
				continue
			}
			row.TotalTasks++
			switch task.Status {
			case domain.TaskStatusPending:
				row.Pending++
			case domain.TaskStatusInProgress:
				row.InProgress++
			case domain.TaskStatusCompleted:
				row.Completed++
			case domain.TaskStatusBlocked:
				row.Blocked++
			}
		}
		for _, esc := range open {
			if esc.EscalatedBy == emp.ID {
				row.OpenEscalations++
			}
		}
		if row.TotalTasks > 0 {
			row.CompletionRate = math.Round(float64(row.Completed)/float64(row.TotalTasks)*1000) / 10
		}
		out = append(out, row)
	}
	return out, nil
}
