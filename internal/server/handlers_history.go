package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nixdorfer/dialogue/internal/history"
	"github.com/nixdorfer/dialogue/pkg/types"
)

// CreateConversationRequest is the body for POST /conversation.
type CreateConversationRequest struct {
	ConversationID string `json:"conversation_id"`
	FirstMessage   string `json:"first_message"`
}

// RenameConversationRequest is the body for PATCH /conversation/{id}.
type RenameConversationRequest struct {
	Name string `json:"name"`
}

// AppendMessageRequest is the body for POST /conversation/{id}/message.
type AppendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// listConversations handles GET /conversation.
func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.store.Conversations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	if conversations == nil {
		conversations = []*types.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

// createConversation handles POST /conversation.
func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.ConversationID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "conversation_id is required")
		return
	}

	if err := s.store.Create(req.ConversationID, req.FirstMessage); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// generateConversationID handles POST /conversation/id.
func (s *Server) generateConversationID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"conversation_id": history.NewLocalID()})
}

// renameConversation handles PATCH /conversation/{conversationID}.
func (s *Server) renameConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := s.store.Rename(conversationID, req.Name); err != nil {
		if errors.Is(err, history.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "Conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// deleteConversation handles DELETE /conversation/{conversationID}.
func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	if err := s.store.Delete(conversationID); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// listMessages handles GET /conversation/{conversationID}/message.
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	messages, err := s.store.Messages(conversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// appendMessage handles POST /conversation/{conversationID}/message.
// The conversation is created on first append.
func (s *Server) appendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req AppendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Role == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "role and content are required")
		return
	}

	msg, err := s.store.Append(conversationID, req.Role, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
