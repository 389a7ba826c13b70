package handler

import (
	"net/http"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/handler/dto"
)

// handleListUsers returns the user directory, optionally filtered by role
// (?role=manager|employee). API tokens are never included.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var (
		users []domain.User
		err   error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "":
		users, err = h.users.ListUsers(r.Context(), actor)
	case string(domain.RoleManager), string(domain.RoleEmployee):
		users, err = h.users.ListUsersByRole(r.Context(), actor, domain.Role(role))
	default:
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "role filter must be 'manager' or 'employee'")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToUsersResponse(users))
}

// handleStats returns the per-employee schedule overview. Managers see every
// employee; an employee sees only their own row.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	rows, err := h.stats.Overview(r.Context(), actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToStatsResponse(rows))
}
