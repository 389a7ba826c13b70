// Package workflow coordinates compound operations that span the task and
// escalation collections, keeping the coupled state machine in one place.
package workflow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
	"github.com/mtlprog/taskboard/internal/store"
)

// Workflow implements the escalation state machine over the session stores.
// Escalating a task creates an open escalation and forces the task into
// blocked status as one caller-visible atomic step. Resolving an escalation
// deliberately does NOT unblock the task; a human has to change the task
// status explicitly afterwards.
type Workflow struct {
	tasks       *store.TaskStore
	escalations *store.EscalationStore
	users       *store.UserStore
}

// New creates a Workflow over the given stores.
func New(tasks *store.TaskStore, escalations *store.EscalationStore, users *store.UserStore) *Workflow {
	return &Workflow{
		tasks:       tasks,
		escalations: escalations,
		users:       users,
	}
}

// Escalate creates an open escalation for the task and flips the task to
// blocked. The recipient must be a manager, and the status flip goes through
// the task store's regular update path, so the actor needs edit permission on
// the task. The escalation record is only appended once the flip has
// succeeded; on any failure nothing is observably applied.
func (w *Workflow) Escalate(taskID, escalatedTo, message string, actor *domain.User) (*domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	if _, err := w.tasks.Get(taskID); err != nil {
		return nil, err
	}

	var fields []string
	if strings.TrimSpace(message) == "" {
		fields = append(fields, "message")
	}
	recipient, err := w.users.Get(escalatedTo)
	if err != nil || !recipient.IsManager() {
		fields = append(fields, "escalated_to")
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}

	if _, err := w.tasks.SetStatus(taskID, domain.TaskStatusBlocked, actor); err != nil {
		return nil, fmt.Errorf("block task %s: %w", taskID, err)
	}

	esc := w.escalations.Insert(taskID, actor.ID, escalatedTo, message)

	slog.Info("task escalated",
		"task_id", taskID,
		"escalation_id", esc.ID,
		"escalated_by", actor.ID,
		"escalated_to", escalatedTo,
	)

	return esc, nil
}

// Resolve flips an open escalation to resolved, stamping resolved_by and
// resolved_at. Managers only. The linked task stays blocked until someone
// changes its status by hand.
func (w *Workflow) Resolve(escalationID string, actor *domain.User) (*domain.Escalation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !permission.CanResolveEscalation(actor) {
		return nil, domain.ErrPermissionDenied
	}

	esc, err := w.escalations.Get(escalationID)
	if err != nil {
		return nil, err
	}
	if !esc.IsOpen() {
		return nil, fmt.Errorf("%w: escalation %s is already resolved", domain.ErrInvalidState, escalationID)
	}

	resolved, err := w.escalations.MarkResolved(escalationID, actor.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("escalation resolved",
		"escalation_id", escalationID,
		"resolved_by", actor.ID,
	)

	return resolved, nil
}
