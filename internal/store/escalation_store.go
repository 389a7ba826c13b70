package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/taskboard/internal/domain"
)

// EscalationStore is the session-owned in-memory escalation collection.
// Lifecycle logic (who may escalate or resolve, and the coupled task status
// flip) lives in the workflow package; this store only holds records.
type EscalationStore struct {
	escalations []domain.Escalation
	now         func() time.Time
	newID       func() string
}

// NewEscalationStore creates an empty escalation store.
func NewEscalationStore() *EscalationStore {
	return &EscalationStore{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewEscalationStoreWithClock creates an escalation store with an injected
// clock for tests.
func NewEscalationStoreWithClock(now func() time.Time) *EscalationStore {
	s := NewEscalationStore()
	s.now = now
	return s
}

// ReplaceAll overwrites the full collection.
func (s *EscalationStore) ReplaceAll(escalations []domain.Escalation) {
	s.escalations = make([]domain.Escalation, len(escalations))
	copy(s.escalations, escalations)
}

// All returns a copy of all escalations in insertion order.
func (s *EscalationStore) All() []domain.Escalation {
	out := make([]domain.Escalation, len(s.escalations))
	copy(out, s.escalations)
	return out
}

// Open returns the escalations still awaiting resolution.
func (s *EscalationStore) Open() []domain.Escalation {
	var out []domain.Escalation
	for _, esc := range s.escalations {
		if esc.IsOpen() {
			out = append(out, esc)
		}
	}
	return out
}

// ByTask returns the escalations referencing the given task.
func (s *EscalationStore) ByTask(taskID string) []domain.Escalation {
	var out []domain.Escalation
	for _, esc := range s.escalations {
		if esc.TaskID == taskID {
			out = append(out, esc)
		}
	}
	return out
}

// Get returns the escalation with the given ID.
func (s *EscalationStore) Get(id string) (*domain.Escalation, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, domain.ErrEscalationNotFound
	}
	esc := s.escalations[i]
	return &esc, nil
}

// Insert stamps identity and timestamps on the record and appends it in
// open state.
func (s *EscalationStore) Insert(taskID, escalatedBy, escalatedTo, message string) *domain.Escalation {
	now := s.now()
	esc := domain.Escalation{
		ID:          s.newID(),
		TaskID:      taskID,
		EscalatedBy: escalatedBy,
		EscalatedTo: escalatedTo,
		Message:     message,
		Status:      domain.EscalationStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.escalations = append(s.escalations, esc)
	return &esc
}

// Put replaces the local copy of an escalation with the authoritative entity
// returned by the persistence gateway, appending it when unknown.
func (s *EscalationStore) Put(esc domain.Escalation) {
	if i := s.indexOf(esc.ID); i >= 0 {
		s.escalations[i] = esc
		return
	}
	s.escalations = append(s.escalations, esc)
}

// MarkResolved flips the escalation to resolved, setting resolved_by and
// resolved_at atomically with the status change.
func (s *EscalationStore) MarkResolved(id, resolvedBy string) (*domain.Escalation, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, domain.ErrEscalationNotFound
	}
	now := s.now()
	esc := s.escalations[i]
	esc.Status = domain.EscalationStatusResolved
	esc.ResolvedBy = &resolvedBy
	esc.ResolvedAt = &now
	esc.UpdatedAt = now
	s.escalations[i] = esc
	return &esc, nil
}

func (s *EscalationStore) indexOf(id string) int {
	for i := range s.escalations {
		if s.escalations[i].ID == id {
			return i
		}
	}
	return -1
}
