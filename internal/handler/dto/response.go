package dto

import (
	"time"

	"github.com/mtlprog/taskboard/internal/domain"
)

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assigned_to"`
	CreatedBy   string     `json:"created_by"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Notes       *string    `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TasksResponse represents the response for GET /tasks.
type TasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// UserResponse represents a user in API responses. The API token is never
// echoed back.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsersResponse represents the response for GET /users.
type UsersResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// EscalationResponse represents an escalation in API responses.
type EscalationResponse struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	EscalatedBy string     `json:"escalated_by"`
	EscalatedTo string     `json:"escalated_to"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ResolvedBy  *string    `json:"resolved_by"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EscalationsResponse represents the response for GET /escalations.
type EscalationsResponse struct {
	Escalations []EscalationResponse `json:"escalations"`
	Total       int                  `json:"total"`
}

// EmployeeStatsResponse represents one employee's row in the analytics
// overview.
type EmployeeStatsResponse struct {
	UserID          string  `json:"user_id"`
	FullName        string  `json:"full_name"`
	TotalTasks      int     `json:"total_tasks"`
	Pending         int     `json:"pending"`
	InProgress      int     `json:"in_progress"`
	Completed       int     `json:"completed"`
	Blocked         int     `json:"blocked"`
	OpenEscalations int     `json:"open_escalations"`
	CompletionRate  float64 `json:"completion_rate_percent"`
}

// StatsResponse represents the response for GET /stats.
type StatsResponse struct {
	Employees []EmployeeStatsResponse `json:"employees"`
}

// ChatResponse represents the response for POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ToTaskResponse converts a domain.Task to its API representation.
func ToTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		StartTime:   task.StartTime,
		EndTime:     task.EndTime,
		Notes:       task.Notes,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTasksResponse converts a task list to its API representation.
func ToTasksResponse(tasks []domain.Task) TasksResponse {
	out := TasksResponse{Tasks: make([]TaskResponse, len(tasks)), Total: len(tasks)}
	for i := range tasks {
		out.Tasks[i] = ToTaskResponse(&tasks[i])
	}
	return out
}

// ToUserResponse converts a domain.User to its API representation.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUsersResponse converts a user list to its API representation.
func ToUsersResponse(users []domain.User) UsersResponse {
	out := UsersResponse{Users: make([]UserResponse, len(users)), Total: len(users)}
	for i := range users {
		out.Users[i] = ToUserResponse(&users[i])
	}
	return out
}

// ToEscalationResponse converts a domain.Escalation to its API representation.
func ToEscalationResponse(esc *domain.Escalation) EscalationResponse {
	return EscalationResponse{
		ID:          esc.ID,
		TaskID:      esc.TaskID,
		EscalatedBy: esc.EscalatedBy,
		EscalatedTo: esc.EscalatedTo,
		Message:     esc.Message,
		Status:      string(esc.Status),
		ResolvedBy:  esc.ResolvedBy,
		ResolvedAt:  esc.ResolvedAt,
		CreatedAt:   esc.CreatedAt,
		UpdatedAt:   esc.UpdatedAt,
	}
}

// ToEscalationsResponse converts an escalation list to its API representation.
func ToEscalationsResponse(escalations []domain.Escalation) EscalationsResponse {
	out := EscalationsResponse{
		Escalations: make([]EscalationResponse, len(escalations)),
		Total:       len(escalations),
	}
	for i := range escalations {
		out.Escalations[i] = ToEscalationResponse(&escalations[i])
	}
	return out
}

// ToStatsResponse converts the analytics overview to its API representation.
func ToStatsResponse(rows []domain.EmployeeStats) StatsResponse {
	out := StatsResponse{Employees: make([]EmployeeStatsResponse, len(rows))}
	for i, row := range rows {
		out.Employees[i] = EmployeeStatsResponse{
			UserID:          row.UserID,
			FullName:        row.FullName,
			TotalTasks:      row.TotalTasks,
			Pending:         row.Pending,
			InProgress:      row.InProgress,
			Completed:       row.Completed,
			Blocked:         row.Blocked,
			OpenEscalations: row.OpenEscalations,
			CompletionRate:  row.CompletionRate,
		}
	}
	return out
}
