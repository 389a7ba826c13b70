package domain

import "time"

// EscalationStatus represents the lifecycle state of an escalation.
type EscalationStatus string

const (
	EscalationStatusOpen     EscalationStatus = "open"
	EscalationStatusResolved EscalationStatus = "resolved"
)

// Escalation represents a request for managerial help tied to one task.
// It is created open and transitions to resolved exactly once; resolved is
// terminal.
type Escalation struct {
	ID          string
	TaskID      string
	EscalatedBy string
	EscalatedTo string
	Message     string
	Status      EscalationStatus
	ResolvedBy  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the escalation still awaits resolution.
func (e *Escalation) IsOpen() bool {
	return e.Status == EscalationStatusOpen
}
