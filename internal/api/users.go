package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

// SaveUserRequest is the body of POST /user. Absent fields are left untouched.
type SaveUserRequest struct {
	WalletAddress string  `json:"walletAddress"`
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Organization  *string `json:"organization"`
	Role          *string `json:"role"`
}

// SaveUser - POST /user
func (s *Server) SaveUser(w http.ResponseWriter, r *http.Request) {
	var req SaveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.users.Save(r.Context(), &ports.SaveUserRequest{
		Account:      req.WalletAddress,
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
		Role:         req.Role,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(user))
}

// GetUser - GET /user/{account}
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	res, err := s.users.Get(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	user := toUser(res.User)
	user.CredentialsCount = &res.CredentialsCount
	writeJSON(w, http.StatusOK, user)
}

// GetUserStats - GET /user/{account}/stats
func (s *Server) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.users.Stats(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserStats{
		TotalDocuments:    stats.TotalDocuments,
		VerifiedDocuments: stats.VerifiedDocuments,
		RecentActivity:    toCredentials(stats.RecentActivity),
	})
}
