package api

import (
	"net/http"

	"github.com/pixelgenesis/credential-node/internal/buildinfo"
)

// Health - GET /health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Status(r.Context()))
}

// Status - GET /status
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "revision": buildinfo.Revision()})
}
