// Package session ties a client's in-memory stores to the persistence
// gateway. The session's copy of the data is a cache that may diverge from
// the durable record until the next Reload; there is no incremental sync,
// the last full reload wins.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/store"
)

// Gateway is the narrow persistence surface a session consumes. The gateway
// enforces its own server-side authorization for every call; the session
// must not assume it is trusted.
type Gateway interface {
	ListTasks(ctx context.Context, actor *domain.User) ([]domain.Task, error)
	ListTasksByDateRange(ctx context.Context, actor *domain.User, start, end time.Time) ([]domain.Task, error)
	GetTask(ctx context.Context, actor *domain.User, id string) (*domain.Task, error)
	InsertTask(ctx context.Context, actor *domain.User, draft domain.TaskDraft) (*domain.Task, error)
	PatchTask(ctx context.Context, actor *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor *domain.User, id string) error

	ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error)
	GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
	ListUsersByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error)

	ListEscalations(ctx context.Context, actor *domain.User) ([]domain.Escalation, error)
	ListOpenEscalations(ctx context.Context, actor *domain.User) ([]domain.Escalation, error)
	InsertEscalation(ctx context.Context, actor *domain.User, taskID, escalatedTo, message string) (*domain.Escalation, error)
	ResolveEscalation(ctx context.Context, actor *domain.User, id string) (*domain.Escalation, error)
}

// IdentityProvider yields the calling identity. A nil user means the session
// is unauthenticated; every write fails before any state is touched.
type IdentityProvider func(ctx context.Context) *domain.User

// Session owns one client's view of the schedule: the task, user and
// escalation stores, refreshed from the gateway per navigation. Mutations go
// to the gateway first and the local copy is then replaced with the
// authoritative entity the gateway returned, never with a locally guessed
// merge. A session has a single logical owner and is not safe for concurrent
// use.
type Session struct {
	Tasks       *store.TaskStore
	Users       *store.UserStore
	Escalations *store.EscalationStore

	gateway Gateway
	current IdentityProvider
}

// New creates a session over the given gateway and identity provider.
func New(gateway Gateway, current IdentityProvider) *Session {
	return &Session{
		Tasks:       store.NewTaskStore(),
		Users:       store.NewUserStore(),
		Escalations: store.NewEscalationStore(),
		gateway:     gateway,
		current:     current,
	}
}

// Reload fully refreshes every store from the gateway. Partial failures leave
// the previous snapshot in place.
func (s *Session) Reload(ctx context.Context) error {
	actor := s.current(ctx)
	if actor == nil {
		return domain.ErrUnauthenticated
	}

	tasks, err := s.gateway.ListTasks(ctx, actor)
	if err != nil {
		return fmt.Errorf("reload tasks: %w", err)
	}
	users, err := s.gateway.ListUsers(ctx, actor)
	if err != nil {
		return fmt.Errorf("reload users: %w", err)
	}
	escalations, err := s.gateway.ListEscalations(ctx, actor)
	if err != nil {
		return fmt.Errorf("reload escalations: %w", err)
	}

	s.Tasks.ReplaceAll(tasks)
	s.Users.ReplaceAll(users)
	s.Escalations.ReplaceAll(escalations)
	return nil
}

// CreateTask persists a new task and caches the authoritative result.
func (s *Session) CreateTask(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	actor := s.current(ctx)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	task, err := s.gateway.InsertTask(ctx, actor, draft)
	if err != nil {
		return nil, err
	}
	s.Tasks.Put(*task)
	return task, nil
}

// UpdateTask persists a partial update and caches the authoritative result.
func (s *Session) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	actor := s.current(ctx)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	task, err := s.gateway.PatchTask(ctx, actor, id, patch)
	if err != nil {
		return nil, err
	}
	s.Tasks.Put(*task)
	return task, nil
}

// AssignTask sets or clears the assignee of a task.
func (s *Session) AssignTask(ctx context.Context, id string, assignee *string) (*domain.Task, error) {
	return s.UpdateTask(ctx, id, domain.TaskPatch{
		AssignedTo: domain.Optional[string]{Set: true, Value: assignee},
	})
}

// SetTaskStatus changes the status of a task.
func (s *Session) SetTaskStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	return s.UpdateTask(ctx, id, domain.TaskPatch{Status: &status})
}

// DeleteTask removes a task from the gateway and the local cache.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	actor := s.current(ctx)
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if err := s.gateway.DeleteTask(ctx, actor, id); err != nil {
		return err
	}
	s.Tasks.Remove(id)
	return nil
}

// Escalate requests managerial help for a task. The gateway atomically
// creates the escalation and blocks the task; the session caches both
// authoritative results.
func (s *Session) Escalate(ctx context.Context, taskID, escalatedTo, message string) (*domain.Escalation, error) {
	actor := s.current(ctx)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	esc, err := s.gateway.InsertEscalation(ctx, actor, taskID, escalatedTo, message)
	if err != nil {
		return nil, err
	}
	s.Escalations.Put(*esc)
	if task, err := s.gateway.GetTask(ctx, actor, taskID); err == nil {
		s.Tasks.Put(*task)
	}
	return esc, nil
}

// ResolveEscalation marks an escalation resolved. The linked task keeps its
// blocked status.
func (s *Session) ResolveEscalation(ctx context.Context, id string) (*domain.Escalation, error) {
	actor := s.current(ctx)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	esc, err := s.gateway.ResolveEscalation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.Escalations.Put(*esc)
	return esc, nil
}
