package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nixdorfer/dialogue/internal/gateway"
)

// SendRequest is the body for POST /connection/send.
type SendRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ConnectionStatus is the body for GET /connection/status.
type ConnectionStatus struct {
	Connected       bool   `json:"connected"`
	State           string `json:"state"`
	MalformedFrames int64  `json:"malformed_frames"`
}

// connect handles POST /connection/connect. Connecting while a session is
// live succeeds without opening a second one.
func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Connect(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeGatewayError, err.Error())
		return
	}
	writeSuccess(w)
}

// disconnect handles POST /connection/disconnect.
func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	s.session.Disconnect()
	writeSuccess(w)
}

// connectionStatus handles GET /connection/status.
func (s *Server) connectionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConnectionStatus{
		Connected:       s.session.IsConnected(),
		State:           s.session.CurrentState().String(),
		MalformedFrames: s.session.MalformedFrames(),
	})
}

// send handles POST /connection/send.
func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "message is required")
		return
	}

	if err := s.session.Send(req.ConversationID, req.Message); err != nil {
		if errors.Is(err, gateway.ErrNotConnected) {
			writeError(w, http.StatusConflict, ErrCodeNotConnected, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	writeSuccess(w)
}
