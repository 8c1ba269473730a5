package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/BillyGuo1996/The-Connector/internal/app/chat"
	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// maxMessageLength mirrors the input limit enforced by the chat UI.
const maxMessageLength = 1000

type Server struct {
	svc *chat.Service
}

func NewServer(svc *chat.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	// /modes                   → GET: the closed mode set for the picker
	// /conversations           → GET: active conversation + message log
	// /conversations/messages  → POST: send a message
	// /conversations/reset     → POST: clear log, start fresh conversation
	mux.HandleFunc("/modes", s.handleModes)
	mux.HandleFunc("/conversations", s.handleConversation)
	mux.HandleFunc("/conversations/messages", s.handleSendMessage)
	mux.HandleFunc("/conversations/reset", s.handleReset)

	return chainMiddlewares(mux, withRequestID, withLogging, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

type conversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	Mode           string            `json:"mode"`
	Messages       []messageResponse `json:"messages"`
}

type sendMessageRequest struct {
	UserID string `json:"user_id"`
	Mode   string `json:"mode"`
	Text   string `json:"text"`
}

type resetRequest struct {
	UserID string `json:"user_id"`
	Mode   string `json:"mode"`
}

type resetResponse struct {
	ConversationID string `json:"conversation_id"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	modes := domain.Modes()
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		out = append(out, string(m))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"modes": out})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	userID := domain.UserID(r.URL.Query().Get("user_id"))
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}
	mode := domain.ParseMode(r.URL.Query().Get("mode"))

	convID, err := s.svc.Resolve(r.Context(), userID, mode)
	if err != nil {
		internalError(w, err)
		return
	}

	msgs, err := s.svc.LoadLog(r.Context(), userID, mode, convID)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversationResponse{
		ConversationID: string(convID),
		Mode:           string(mode),
		Messages:       toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}
	if len(req.Text) > maxMessageLength {
		badRequest(w, "text exceeds the 1000 character limit")
		return
	}

	userID := domain.UserID(req.UserID)
	mode := domain.ParseMode(req.Mode)

	convID, err := s.svc.Resolve(r.Context(), userID, mode)
	if err != nil {
		internalError(w, err)
		return
	}

	current, err := s.svc.LoadLog(r.Context(), userID, mode, convID)
	if err != nil {
		internalError(w, err)
		return
	}

	out := s.svc.SendMessage(r.Context(), chat.SendMessageInput{
		UserID:         userID,
		ConversationID: convID,
		Mode:           mode,
		Text:           req.Text,
		Log:            current,
	})

	writeJSON(w, http.StatusOK, conversationResponse{
		ConversationID: string(convID),
		Mode:           string(mode),
		Messages:       toMessagesResponse(out.Log),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	userID := domain.UserID(req.UserID)
	mode := domain.ParseMode(req.Mode)

	convID, err := s.svc.Resolve(r.Context(), userID, mode)
	if err != nil {
		internalError(w, err)
		return
	}

	newID, err := s.svc.Reset(r.Context(), userID, mode, convID)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resetResponse{ConversationID: string(newID)})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			ID:             string(m.ID),
			ConversationID: string(m.ConversationID),
			Role:           string(m.Role),
			Text:           m.Text,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
