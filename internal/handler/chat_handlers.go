package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mtlprog/taskboard/internal/handler/dto"
)

// handleChat answers a natural-language question about the schedule. The
// assistant is grounded on a snapshot of tasks, users and escalations taken
// at request time.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if h.assistant == nil {
		respondError(w, http.StatusServiceUnavailable, "CHAT_UNAVAILABLE", "Chat assistant is not configured")
		return
	}

	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required")
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	users, err := h.users.ListUsers(r.Context(), actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	escalations, err := h.escalations.ListEscalations(r.Context(), actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	reply, err := h.assistant.Ask(r.Context(), actor, tasks, users, escalations, req.Message)
	if err != nil {
		slog.Error("chat completion failed", "error", err, "user_id", actor.ID)
		respondError(w, http.StatusBadGateway, "CHAT_FAILED", "Failed to generate a response")
		return
	}

	respondJSON(w, http.StatusOK, dto.ChatResponse{Response: reply})
}
