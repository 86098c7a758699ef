package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/salesops-platform/api/internal/httpx"
	"github.com/salesops-platform/api/internal/views"
)

// GetDashboardStats returns the headline counters.
func (s *Server) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Views.Stats(r.Context(), time.Now())
	if err != nil {
		s.Logger.Error("dashboard stats", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load dashboard stats", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// GetDashboardExceptions lists open follow-up tasks that are breached or due
// within 24 hours.
func (s *Server) GetDashboardExceptions(w http.ResponseWriter, r *http.Request) {
	exceptions, err := s.Views.Exceptions(r.Context(), time.Now())
	if err != nil {
		s.Logger.Error("dashboard exceptions", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load exceptions", nil)
		return
	}
	if exceptions == nil {
		exceptions = []views.TaskException{}
	}
	httpx.WriteJSON(w, http.StatusOK, exceptions)
}

// PostFollowUpTaskAction marks one follow-up task as completed.
func (s *Server) PostFollowUpTaskAction(w http.ResponseWriter, r *http.Request, taskID string) {
	var body struct {
		Action   string `json:"action"`
		TaskType string `json:"task_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	if body.Action == "" || body.TaskType == "" {
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error", "action and task_type are required", nil)
		return
	}

	id, err := strconv.ParseInt(taskID, 10, 64)
	if err != nil {
		httpx.WriteError(w, r, http.StatusNotFound, "task_not_found", "Task not found", nil)
		return
	}

	updated, err := s.Views.CompleteTask(r.Context(), id, time.Now())
	if err != nil {
		s.Logger.Error("complete task", "error", err, "task_id", taskID)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to complete task", nil)
		return
	}
	if !updated {
		httpx.WriteError(w, r, http.StatusNotFound, "task_not_found", "Task not found", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Action completed successfully",
		"task_id": id,
	})
}
