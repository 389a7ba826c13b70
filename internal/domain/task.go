package domain

import (
	"strings"
	"time"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// Task represents a time-boxed unit of work assigned to at most one employee.
// EndTime must be strictly after StartTime. A task with an open escalation is
// blocked; resolving the escalation does not unblock it.
type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssignedTo  *string
	CreatedBy   string
	StartTime   time.Time
	EndTime     time.Time
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAssignedTo checks if the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TaskDraft carries the caller-supplied fields for task creation.
// Status defaults to pending and Priority to medium when unset.
type TaskDraft struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssignedTo  *string
	StartTime   time.Time
	EndTime     time.Time
	Notes       *string
}

// TaskPatch carries a partial task update. Plain pointer fields are applied
// when non-nil; Optional fields additionally distinguish "set to null" for
// nullable columns.
type TaskPatch struct {
	Title       *string
	Description Optional[string]
	Status      *TaskStatus
	Priority    *TaskPriority
	AssignedTo  Optional[string]
	StartTime   *time.Time
	EndTime     *time.Time
	Notes       Optional[string]
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && p.Status == nil &&
		p.Priority == nil && !p.AssignedTo.Set && p.StartTime == nil &&
		p.EndTime == nil && !p.Notes.Set
}

// ApplyPatch merges the set fields of the patch into the task. Timestamps
// are not touched; the mutation path stamps updated_at after validation.
func (t *Task) ApplyPatch(patch TaskPatch) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	patch.Description.Apply(&t.Description)
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	patch.AssignedTo.Apply(&t.AssignedTo)
	if patch.StartTime != nil {
		t.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		t.EndTime = *patch.EndTime
	}
	patch.Notes.Apply(&t.Notes)
}

// Validate checks the draft's structural invariants, collecting every
// violated field instead of stopping at the first.
func (d TaskDraft) Validate() error {
	var fields []string
	if strings.TrimSpace(d.Title) == "" {
		fields = append(fields, "title")
	}
	if d.Status != "" && !d.Status.IsValid() {
		fields = append(fields, "status")
	}
	if d.Priority != "" && !d.Priority.IsValid() {
		fields = append(fields, "priority")
	}
	if !d.EndTime.After(d.StartTime) {
		fields = append(fields, "end_time")
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

// Validate checks the invariants against a full task, typically the merged
// result of an update.
func (t *Task) Validate() error {
	var fields []string
	if strings.TrimSpace(t.Title) == "" {
		fields = append(fields, "title")
	}
	if !t.Status.IsValid() {
		fields = append(fields, "status")
	}
	if !t.Priority.IsValid() {
		fields = append(fields, "priority")
	}
	if !t.EndTime.After(t.StartTime) {
		fields = append(fields, "end_time")
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}
