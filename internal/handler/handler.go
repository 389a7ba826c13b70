// Package handler wires the HTTP surface: a thin routing layer that maps
// request bodies to service calls and domain errors to status codes. The
// same handlers serve both backends, the PostgreSQL gateway and the
// in-memory demo session.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskboard/internal/assist"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/handler/dto"
	"github.com/mtlprog/taskboard/internal/middleware"
	"github.com/mtlprog/taskboard/internal/repository"
	"github.com/mtlprog/taskboard/internal/service"
	"github.com/mtlprog/taskboard/internal/session"
)

// TaskAPI is the task surface the handlers consume.
type TaskAPI interface {
	ListTasks(ctx context.Context, actor *domain.User) ([]domain.Task, error)
	TasksByDate(ctx context.Context, actor *domain.User, dateKey string) ([]domain.Task, error)
	TasksByEmployee(ctx context.Context, actor *domain.User, userID string) ([]domain.Task, error)
	GetTask(ctx context.Context, actor *domain.User, id string) (*domain.Task, error)
	InsertTask(ctx context.Context, actor *domain.User, draft domain.TaskDraft) (*domain.Task, error)
	PatchTask(ctx context.Context, actor *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error)
	AssignTask(ctx context.Context, actor *domain.User, id string, assignee *string) (*domain.Task, error)
	SetTaskStatus(ctx context.Context, actor *domain.User, id string, status domain.TaskStatus) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor *domain.User, id string) error
}

// EscalationAPI is the escalation surface the handlers consume.
type EscalationAPI interface {
	ListEscalations(ctx context.Context, actor *domain.User) ([]domain.Escalation, error)
	ListOpenEscalations(ctx context.Context, actor *domain.User) ([]domain.Escalation, error)
	InsertEscalation(ctx context.Context, actor *domain.User, taskID, escalatedTo, message string) (*domain.Escalation, error)
	ResolveEscalation(ctx context.Context, actor *domain.User, id string) (*domain.Escalation, error)
}

// UserAPI is the user-directory surface the handlers consume.
type UserAPI interface {
	ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error)
	ListUsersByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error)
}

// StatsAPI is the analytics surface the handlers consume.
type StatsAPI interface {
	Overview(ctx context.Context, actor *domain.User) ([]domain.EmployeeStats, error)
}

// pinger reports backend health; nil means always healthy (demo mode).
type pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	tasks       TaskAPI
	escalations EscalationAPI
	users       UserAPI
	stats       StatsAPI
	assistant   *assist.Assistant

	backend        pinger
	authMiddleware *middleware.AuthMiddleware
}

// NewPostgres creates a Handler backed by the PostgreSQL gateway.
func NewPostgres(pool *pgxpool.Pool, assistant *assist.Assistant) *Handler {
	taskRepo := repository.NewTaskRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	return &Handler{
		tasks:          service.NewTaskService(pool, taskRepo),
		escalations:    service.NewEscalationService(pool, escalationRepo, taskRepo, userRepo),
		users:          service.NewUserService(userRepo),
		stats:          service.NewStatsService(statsRepo),
		assistant:      assistant,
		backend:        pool,
		authMiddleware: middleware.NewAuthMiddleware(userRepo),
	}
}

// NewMemory creates a Handler backed by the in-memory demo gateway.
func NewMemory(gw *session.Memory, assistant *assist.Assistant) *Handler {
	return &Handler{
		tasks:          gw,
		escalations:    gw,
		users:          gw,
		stats:          gw,
		assistant:      assistant,
		authMiddleware: middleware.NewAuthMiddleware(gw),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	auth := h.authMiddleware.Authenticate

	mux.HandleFunc("GET /healthz", h.handleHealthz)

	mux.Handle("GET /api/v1/tasks", auth(http.HandlerFunc(h.handleListTasks)))
	mux.Handle("POST /api/v1/tasks", auth(http.HandlerFunc(h.handleCreateTask)))
	mux.Handle("GET /api/v1/tasks/{id}", auth(http.HandlerFunc(h.handleGetTask)))
	mux.Handle("PATCH /api/v1/tasks/{id}", auth(http.HandlerFunc(h.handleUpdateTask)))
	mux.Handle("DELETE /api/v1/tasks/{id}", auth(http.HandlerFunc(h.handleDeleteTask)))
	mux.Handle("POST /api/v1/tasks/{id}/assign", auth(http.HandlerFunc(h.handleAssignTask)))
	mux.Handle("PATCH /api/v1/tasks/{id}/status", auth(http.HandlerFunc(h.handleSetTaskStatus)))
	mux.Handle("POST /api/v1/tasks/{id}/escalate", auth(http.HandlerFunc(h.handleEscalateTask)))

	mux.Handle("GET /api/v1/escalations", auth(http.HandlerFunc(h.handleListEscalations)))
	mux.Handle("POST /api/v1/escalations/{id}/resolve", auth(http.HandlerFunc(h.handleResolveEscalation)))

	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(h.handleListUsers)))
	mux.Handle("GET /api/v1/stats", auth(http.HandlerFunc(h.handleStats)))
	mux.Handle("POST /api/v1/chat", auth(http.HandlerFunc(h.handleChat)))
}

// handleHealthz returns 200 OK if the backend is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.backend != nil {
		if err := h.backend.Ping(r.Context()); err != nil {
			slog.Error("database health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes the response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// actorFromRequest extracts the authenticated user, responding with 401 when
// absent. Returns (nil, false) if the error response was already written.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	actor, err := middleware.UserFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return nil, false
	}
	return actor, true
}

// extractID extracts and validates a UUID path parameter.
// Returns ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return "", false
	}
	return id, true
}

// timestampLayouts are the accepted request timestamp formats: RFC 3339 and
// the same without a zone offset, interpreted in server-local time.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// parseTimestamp parses a request timestamp.
func parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
