// Package store holds the session-owned in-memory collections: the
// authoritative task collection for the active client session plus the user
// and escalation collections backing it. A store instance has a single
// logical owner and is not safe for concurrent use; each session constructs
// its own instance and cross-session visibility happens only via reload from
// the persistence gateway.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
)

// dateKeyLayout is the calendar-date format used by ByDate.
const dateKeyLayout = "2006-01-02"

// TaskStore is the authoritative in-memory task collection for a session.
// Order is insertion order; it does not imply time order. Mutations consult
// the permission engine before applying a change and fail loudly instead of
// silently no-opping. Derived views are pure functions of the current
// snapshot and never fail on malformed records.
type TaskStore struct {
	tasks []domain.Task
	now   func() time.Time
	newID func() string
}

// NewTaskStore creates an empty task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewTaskStoreWithClock creates a task store with an injected clock,
// used by tests that assert on timestamps.
func NewTaskStoreWithClock(now func() time.Time) *TaskStore {
	s := NewTaskStore()
	s.now = now
	return s
}

// ReplaceAll overwrites the full collection, used on initial load and on
// reload from the gateway. Callers must ensure IDs are unique; duplicates are
// undefined behavior.
func (s *TaskStore) ReplaceAll(tasks []domain.Task) {
	s.tasks = make([]domain.Task, len(tasks))
	copy(s.tasks, tasks)
}

// All returns a copy of the full collection in insertion order.
func (s *TaskStore) All() []domain.Task {
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given ID.
func (s *TaskStore) Get(id string) (*domain.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	task := s.tasks[i]
	return &task, nil
}

// Create validates the draft, stamps identity and timestamps, and appends the
// new task. Only managers may create tasks.
func (s *TaskStore) Create(draft domain.TaskDraft, actor *domain.User) (*domain.Task, error) {
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

	now := s.now()
	task := domain.Task{
		ID:          s.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      status,
		Priority:    priority,
		AssignedTo:  draft.AssignedTo,
		CreatedBy:   actor.ID,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		Notes:       draft.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks = append(s.tasks, task)
	return &task, nil
}

// Update applies a partial update to the task with the given ID. Employees
// may only edit tasks assigned to them, and their patches cannot reassign:
// the assigned_to field is stripped before the patch is applied. The merged
// result is re-validated before anything is stored, so a failed update leaves
// the task unchanged.
func (s *TaskStore) Update(id string, patch domain.TaskPatch, actor *domain.User) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if actor.Role == domain.RoleEmployee {
		patch.AssignedTo = domain.Optional[string]{}
	}
	return s.applyPatch(id, patch, actor)
}

// Assign sets or clears the assignee. Managers only; the employee strip rule
// does not apply here since the actor is already verified as a manager.
func (s *TaskStore) Assign(id string, assignee *string, actor *domain.User) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !permission.CanAssignTask(actor) {
		return nil, domain.ErrPermissionDenied
	}
	patch := domain.TaskPatch{AssignedTo: domain.Optional[string]{Set: true, Value: assignee}}
	return s.applyPatch(id, patch, actor)
}

// SetStatus changes the task status, subject to the same edit permission as
// Update.
func (s *TaskStore) SetStatus(id string, status domain.TaskStatus, actor *domain.User) (*domain.Task, error) {
	return s.Update(id, domain.TaskPatch{Status: &status}, actor)
}

// Delete removes the task with the given ID. Managers only.
func (s *TaskStore) Delete(id string, actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !permission.CanDeleteTask(actor) {
		return domain.ErrPermissionDenied
	}
	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

// Put replaces the local copy of a task with the authoritative entity
// returned by the persistence gateway, appending it when unknown. This is a
// reconciliation entry point: the gateway has already enforced permissions,
// so none are re-checked here.
func (s *TaskStore) Put(task domain.Task) {
	if i := s.indexOf(task.ID); i >= 0 {
		s.tasks[i] = task
		return
	}
	s.tasks = append(s.tasks, task)
}

// Remove drops the local copy of a task after the gateway confirmed its
// deletion. Unknown IDs are ignored.
func (s *TaskStore) Remove(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
}

// ByDate returns the tasks whose start time falls on the given local
// calendar date (format YYYY-MM-DD), in insertion order. Tasks with a missing
// start time are excluded rather than treated as an error, so a single bad
// record cannot make the whole view unusable.
func (s *TaskStore) ByDate(dateKey string) []domain.Task {
	var out []domain.Task
	for _, task := range s.tasks {
		if task.StartTime.IsZero() {
			continue
		}
		if task.StartTime.Format(dateKeyLayout) == dateKey {
			out = append(out, task)
		}
	}
	return out
}

// ByEmployee returns the tasks assigned to the given user, in insertion
// order.
func (s *TaskStore) ByEmployee(userID string) []domain.Task {
	var out []domain.Task
	for _, task := range s.tasks {
		if task.IsAssignedTo(userID) {
			out = append(out, task)
		}
	}
	return out
}

// applyPatch merges the patch into a copy of the stored task, validates the
// merged result, and only then commits it back to the collection.
func (s *TaskStore) applyPatch(id string, patch domain.TaskPatch, actor *domain.User) (*domain.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}

	task := s.tasks[i]
	if !permission.CanEditTask(actor, &task) {
		return nil, domain.ErrPermissionDenied
	}

	task.ApplyPatch(patch)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	task.UpdatedAt = s.now()
	s.tasks[i] = task
	return &task, nil
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
