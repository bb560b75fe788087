package live

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	interviewModel "github.com/yuhengc/prepmate/backend/internal/model/interview"
	interviewService "github.com/yuhengc/prepmate/backend/internal/service/interview"
)

// Handler runs a live interview over a websocket: the client sends
// transcribed answers, the server replies with questions and the running
// aggregate. Audio capture and speech conversion happen client-side.
type Handler struct {
	svc      *interviewService.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New creates the live interview handler.
func New(svc *interviewService.Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interview/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ConfigMessage binds the connection to its owner.
type ConfigMessage struct {
	OwnerID string `json:"ownerId"`
}

// AnswerMessage carries one transcribed candidate answer.
type AnswerMessage struct {
	Text string `json:"text"`
}

// QuestionMessage is the reply to an answer (or to the opening config).
type QuestionMessage struct {
	Question  string                    `json:"question"`
	IsFinal   bool                      `json:"isFinal"`
	Aggregate interviewModel.TurnScores `json:"aggregate"`
}

type connectionState struct {
	sessionID string
	ownerID   string
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	state := &connectionState{sessionID: sessionID}
	h.logger.Info("live interview connected", zap.String("session_id", sessionID))

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("live interview read failed", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "config":
			h.handleConfig(conn, state, msg.Data)
		case "answer":
			h.handleAnswer(r, conn, state, msg.Data)
		case "end":
			h.handleEnd(r, conn, state)
		default:
			h.sendError(conn, state.sessionID, "unknown message type")
		}
	}
}

func (h *Handler) handleConfig(conn *websocket.Conn, state *connectionState, data json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.OwnerID == "" {
		h.sendError(conn, state.sessionID, "config requires ownerId")
		return
	}

	state.ownerID = cfg.OwnerID
	h.send(conn, outgoingMessage{
		Type:      "ready",
		SessionID: state.sessionID,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Handler) handleAnswer(r *http.Request, conn *websocket.Conn, state *connectionState, data json.RawMessage) {
	if state.ownerID == "" {
		h.sendError(conn, state.sessionID, "send config before answers")
		return
	}

	var answer AnswerMessage
	if err := json.Unmarshal(data, &answer); err != nil {
		h.sendError(conn, state.sessionID, "invalid answer payload")
		return
	}

	result, err := h.svc.NextTurn(r.Context(), state.sessionID, state.ownerID, answer.Text)
	if err != nil {
		h.sendError(conn, state.sessionID, serviceErrorMessage(err))
		return
	}

	h.send(conn, outgoingMessage{
		Type:      "question",
		SessionID: state.sessionID,
		Data: QuestionMessage{
			Question:  result.NextQuestion,
			IsFinal:   result.IsFinal,
			Aggregate: result.Aggregate,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Handler) handleEnd(r *http.Request, conn *websocket.Conn, state *connectionState) {
	if state.ownerID == "" {
		h.sendError(conn, state.sessionID, "send config before ending")
		return
	}

	session, err := h.svc.EndSession(r.Context(), state.sessionID, state.ownerID)
	if err != nil {
		h.sendError(conn, state.sessionID, serviceErrorMessage(err))
		return
	}

	h.send(conn, outgoingMessage{
		Type:      "session_ended",
		SessionID: state.sessionID,
		Data:      map[string]string{"status": session.Status},
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("live interview write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.send(conn, outgoingMessage{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().UnixMilli(),
	})
}

func serviceErrorMessage(err error) string {
	switch {
	case errors.Is(err, interviewService.ErrUnauthorized):
		return "session does not belong to caller"
	case errors.Is(err, interviewModel.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, interviewModel.ErrVersionConflict):
		return "session was modified concurrently, retry the turn"
	case errors.Is(err, interviewService.ErrSessionCompleted):
		return "interview already completed"
	default:
		return "internal error"
	}
}
