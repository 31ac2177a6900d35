package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/coding-tracker/internal/models"
	"github.com/terra-clan/coding-tracker/internal/tracker"
)

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes data as the response body. Successful payloads are not
// wrapped: the list endpoint answers with a bare array.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps tracker errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, tracker.ErrChallengeNotFound):
		respondError(w, http.StatusNotFound, "challenge_not_found", "challenge not found")
	case errors.Is(err, tracker.ErrSubmissionNotFound):
		respondError(w, http.StatusNotFound, "submission_not_found", "submission not found")
	case errors.Is(err, tracker.ErrFeedbackNotFound):
		respondError(w, http.StatusNotFound, "feedback_not_found", "feedback not found")
	case errors.Is(err, tracker.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		slog.Error("request failed", "action", action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true

	for name, err := range s.health.CheckAll(r.Context()) {
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}

// Problem handlers

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.service.ListChallenges(r.Context())
	if err != nil {
		respondServiceError(w, err, "list challenges")
		return
	}
	respondJSON(w, http.StatusOK, challenges)
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	challenge, err := s.service.GetChallenge(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get challenge")
		return
	}
	respondJSON(w, http.StatusOK, challenge)
}

// Submission handlers

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	submission, err := s.service.Submit(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "submit code")
		return
	}

	respondJSON(w, http.StatusOK, models.SubmitResponse{
		Success:      true,
		SubmissionID: models.NewSubmissionID(submission.ID),
		Message:      "Code submitted successfully",
	})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = n
	}

	submissions, err := s.service.RecentSubmissions(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err, "list submissions")
		return
	}
	respondJSON(w, http.StatusOK, submissions)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	submission, err := s.service.GetSubmission(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get submission")
		return
	}
	respondJSON(w, http.StatusOK, submission)
}

// Feedback handlers

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.SubmissionID.IsZero() {
		respondError(w, http.StatusBadRequest, "validation_error", "submission_id is required")
		return
	}

	feedback, err := s.service.Feedback(r.Context(), req.SubmissionID.String())
	if err != nil {
		respondServiceError(w, err, "generate feedback")
		return
	}

	respondJSON(w, http.StatusOK, models.FeedbackResponse{
		Success:  true,
		Feedback: feedback,
	})
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "submissionID")

	entry, err := s.service.GetFeedbackEntry(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get feedback")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}
