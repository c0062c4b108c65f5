package server

import (
	"net/http"
	"os"
)

// usageStatus handles GET /usage.
func (s *Server) usageStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.usage.Fetch(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeGatewayError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// updateCheck handles GET /update.
func (s *Server) updateCheck(w http.ResponseWriter, r *http.Request) {
	check, err := s.update.Check(r.Context(), s.config.Version)
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeGatewayError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// version handles GET /version.
func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.config.Version})
}

// notice handles GET /notice. A missing notice file is an empty notice,
// not an error.
func (s *Server) notice(w http.ResponseWriter, r *http.Request) {
	content := ""
	if s.config.NoticePath != "" {
		if data, err := os.ReadFile(s.config.NoticePath); err == nil {
			content = string(data)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"notice": content})
}
