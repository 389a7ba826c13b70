package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/handler/dto"
)

// handleListTasks returns tasks, optionally filtered by calendar day
// (?date=YYYY-MM-DD) or assignee (?assignee=<user id>).
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var (
		tasks []domain.Task
		err   error
	)
	switch {
	case r.URL.Query().Get("date") != "":
		tasks, err = h.tasks.TasksByDate(r.Context(), actor, r.URL.Query().Get("date"))
	case r.URL.Query().Get("assignee") != "":
		assignee := r.URL.Query().Get("assignee")
		if _, uuidErr := uuid.Parse(assignee); uuidErr != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "assignee must be a valid UUID")
			return
		}
		tasks, err = h.tasks.TasksByEmployee(r.Context(), actor, assignee)
	default:
		tasks, err = h.tasks.ListTasks(r.Context(), actor)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksResponse(tasks))
}

// handleGetTask returns a single task by ID.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), actor, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleCreateTask creates a task from the request body, managers only.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	startTime, err := parseTimestamp(req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "start_time must be an RFC 3339 timestamp")
		return
	}
	endTime, err := parseTimestamp(req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "end_time must be an RFC 3339 timestamp")
		return
	}

	draft := domain.TaskDraft{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		StartTime:   startTime,
		EndTime:     endTime,
		Notes:       req.Notes,
	}

	task, err := h.tasks.InsertTask(r.Context(), actor, draft)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleUpdateTask applies a partial update. Absent fields are left
// unchanged; explicit nulls clear nullable fields.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description.Optional(),
		AssignedTo:  req.AssignedTo.Optional(),
		Notes:       req.Notes.Optional(),
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.StartTime != nil {
		t, err := parseTimestamp(*req.StartTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "start_time must be an RFC 3339 timestamp")
			return
		}
		patch.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := parseTimestamp(*req.EndTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "end_time must be an RFC 3339 timestamp")
			return
		}
		patch.EndTime = &t
	}

	task, err := h.tasks.PatchTask(r.Context(), actor, id, patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleAssignTask sets or clears the assignee, managers only.
func (h *Handler) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if req.AssignedTo != nil {
		if _, err := uuid.Parse(*req.AssignedTo); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "assigned_to must be a valid UUID")
			return
		}
	}

	task, err := h.tasks.AssignTask(r.Context(), actor, id, req.AssignedTo)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleSetTaskStatus changes the task status.
func (h *Handler) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	task, err := h.tasks.SetTaskStatus(r.Context(), actor, id, domain.TaskStatus(req.Status))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleDeleteTask removes a task, managers only.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), actor, id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
