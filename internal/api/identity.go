package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// CreateDIDRequest is the body of POST /did/create
type CreateDIDRequest struct {
	WalletAddress string `json:"walletAddress"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Organization  string `json:"organization"`
}

// CreateDID - POST /did/create
func (s *Server) CreateDID(w http.ResponseWriter, r *http.Request) {
	var req CreateDIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.identities.CreateDID(r.Context(), req.WalletAddress, domain.Profile{
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDID(res))
}

// GetDID - GET /did/{account}
func (s *Server) GetDID(w http.ResponseWriter, r *http.Request) {
	res, err := s.identities.GetDID(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDID(res))
}
