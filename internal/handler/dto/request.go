package dto

import (
	"encoding/json"

	"github.com/mtlprog/taskboard/internal/domain"
)

// NullableString distinguishes an absent PATCH field from an explicit null.
// UnmarshalJSON is only invoked for keys present in the body, so Set remains
// false for absent fields.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// Optional converts the field to its domain representation.
func (n NullableString) Optional() domain.Optional[string] {
	return domain.Optional[string]{Set: n.Set, Value: n.Value}
}

// CreateTaskRequest represents the request body for POST /tasks.
// Time fields accept RFC 3339 timestamps, with or without a zone offset.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateTaskRequest represents the request body for PATCH /tasks/{id}.
// Absent fields are left unchanged; nullable fields may be set to null.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description NullableString `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	AssignedTo  NullableString `json:"assigned_to"`
	StartTime   *string        `json:"start_time"`
	EndTime     *string        `json:"end_time"`
	Notes       NullableString `json:"notes"`
}

// AssignTaskRequest represents the request body for POST /tasks/{id}/assign.
// A null assigned_to unassigns the task.
type AssignTaskRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// SetStatusRequest represents the request body for PATCH /tasks/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// EscalateTaskRequest represents the request body for POST /tasks/{id}/escalate.
type EscalateTaskRequest struct {
	EscalatedTo string `json:"escalated_to"`
	Message     string `json:"message"`
}

// ChatRequest represents the request body for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}
