package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/handler/dto"
)

// handleEscalateTask opens an escalation for the task and blocks it.
func (h *Handler) handleEscalateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.EscalateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if req.EscalatedTo != "" {
		if _, err := uuid.Parse(req.EscalatedTo); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "escalated_to must be a valid UUID")
			return
		}
	}

	escalation, err := h.escalations.InsertEscalation(r.Context(), actor, taskID, req.EscalatedTo, req.Message)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToEscalationResponse(escalation))
}

// handleListEscalations returns escalations, optionally only the open ones
// (?status=open).
func (h *Handler) handleListEscalations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var (
		escalations []domain.Escalation
		err         error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "":
		escalations, err = h.escalations.ListEscalations(r.Context(), actor)
	case string(domain.EscalationStatusOpen):
		escalations, err = h.escalations.ListOpenEscalations(r.Context(), actor)
	default:
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "status filter must be 'open'")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToEscalationsResponse(escalations))
}

// handleResolveEscalation resolves an open escalation, managers only. The
// task stays blocked until someone updates it explicitly.
func (h *Handler) handleResolveEscalation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	escalation, err := h.escalations.ResolveEscalation(r.Context(), actor, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToEscalationResponse(escalation))
}
