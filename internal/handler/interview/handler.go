package interview

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	interviewModel "github.com/yuhengc/prepmate/backend/internal/model/interview"
	interviewService "github.com/yuhengc/prepmate/backend/internal/service/interview"
	"github.com/yuhengc/prepmate/backend/pkg/utils"
)

// OwnerHeader carries the caller identity injected by the upstream
// identity proxy.
const OwnerHeader = "X-Owner-ID"

// Handler exposes the interview lifecycle over HTTP.
type Handler struct {
	svc    *interviewService.Service
	logger *zap.Logger
}

// New creates the interview handler.
func New(svc *interviewService.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers the interview routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interview/session", h.handleCreateSession)
	r.Get("/interview/session/{sessionID}", h.handleGetSession)
	r.Post("/interview-turn", h.handleTurn)
	r.Post("/interview-end", h.handleEnd)
	r.Post("/interview-report", h.handleReport)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(OwnerHeader)
	if ownerID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "owner identity is required")
		return
	}

	session, err := h.svc.CreateSession(r.Context(), ownerID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(OwnerHeader)
	if ownerID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "owner identity is required")
		return
	}

	session, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "sessionID"), ownerID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionSnapshot(session))
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(OwnerHeader)
	if ownerID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "owner identity is required")
		return
	}

	var payload struct {
		SessionID       string `json:"sessionId"`
		PriorAnswerText string `json:"priorAnswerText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := h.svc.NextTurn(r.Context(), payload.SessionID, ownerID, payload.PriorAnswerText)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"nextQuestion": result.NextQuestion,
		"isFinal":      result.IsFinal,
		"aggregate":    result.Aggregate,
	})
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(OwnerHeader)
	if ownerID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "owner identity is required")
		return
	}

	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	session, err := h.svc.EndSession(r.Context(), payload.SessionID, ownerID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": session.ID,
		"status":    session.Status,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(OwnerHeader)
	if ownerID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "owner identity is required")
		return
	}

	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	report, err := h.svc.FinalizeReport(r.Context(), payload.SessionID, ownerID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interviewService.ErrUnauthorized):
		utils.RespondError(w, http.StatusUnauthorized, "session does not belong to caller")
	case errors.Is(err, interviewModel.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, interviewModel.ErrVersionConflict):
		utils.RespondError(w, http.StatusConflict, "session was modified concurrently, retry the turn")
	case errors.Is(err, interviewService.ErrSessionCompleted):
		utils.RespondError(w, http.StatusConflict, "interview already completed")
	case errors.Is(err, interviewService.ErrReportNotReady):
		utils.RespondError(w, http.StatusConflict, "interview is still in progress")
	default:
		h.logger.Error("interview request failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

// sessionSnapshot is the read-model for GET: transcript plus derived
// running means, without the raw count/sum internals.
func sessionSnapshot(session interviewModel.Session) map[string]any {
	return map[string]any{
		"id":             session.ID,
		"status":         session.Status,
		"turnsCompleted": session.TurnsCompleted,
		"transcript":     session.Transcript,
		"aggregate":      session.Aggregate.Means(),
		"createdAt":      session.CreatedAt,
		"updatedAt":      session.UpdatedAt,
	}
}
