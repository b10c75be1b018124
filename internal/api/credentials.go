package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
)

const qrCodeSize = 256

// IssueCredentialRequest is the body of POST /credential/issue
type IssueCredentialRequest struct {
	ContentID   string         `json:"contentId"`
	ContentHash string         `json:"contentHash"`
	Issuer      string         `json:"issuer"`
	Owner       string         `json:"owner"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	FileName    string         `json:"fileName"`
	FileSize    int64          `json:"fileSize"`
	FileType    string         `json:"fileType"`
	Metadata    map[string]any `json:"metadata"`
}

// VerifyCredentialRequest is the body of POST /credential/verify
type VerifyCredentialRequest struct {
	ContentID   string `json:"contentId"`
	ContentHash string `json:"contentHash"`
	TxnID       string `json:"txnId"`
}

// RevokeCredentialRequest is the body of POST /credential/revoke
type RevokeCredentialRequest struct {
	ContentHash string `json:"contentHash"`
	Issuer      string `json:"issuer"`
}

// IssueCredential - POST /credential/issue
func (s *Server) IssueCredential(w http.ResponseWriter, r *http.Request) {
	var req IssueCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	credential, err := s.credentials.Issue(r.Context(), &ports.IssueCredentialRequest{
		ContentID:   req.ContentID,
		ContentHash: req.ContentHash,
		Issuer:      req.Issuer,
		Owner:       req.Owner,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		File:        domain.FileInfo{Name: req.FileName, Size: req.FileSize, Type: req.FileType},
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCredential(credential))
}

// VerifyCredential - POST /credential/verify
func (s *Server) VerifyCredential(w http.ResponseWriter, r *http.Request) {
	var req VerifyCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.credentials.Verify(r.Context(), &ports.VerifyCredentialRequest{
		ContentID:   req.ContentID,
		ContentHash: req.ContentHash,
		TxnID:       req.TxnID,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVerificationResult(result))
}

// RevokeCredential - POST /credential/revoke
func (s *Server) RevokeCredential(w http.ResponseWriter, r *http.Request) {
	var req RevokeCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	credential, err := s.credentials.Revoke(r.Context(), &ports.RevokeCredentialRequest{
		ContentHash: req.ContentHash,
		Issuer:      req.Issuer,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCredential(credential))
}

// GetCredential - GET /credential/{id}
func (s *Server) GetCredential(w http.ResponseWriter, r *http.Request) {
	credential, err := s.credentials.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCredential(credential))
}

// GetCredentialsByOwner - GET /credential/owner/{account}
func (s *Server) GetCredentialsByOwner(w http.ResponseWriter, r *http.Request) {
	credentials, err := s.credentials.ListByOwner(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, CredentialList{Count: len(credentials), Data: toCredentials(credentials)})
}

// GetCredentialQrCode - GET /credential/{id}/qrcode
func (s *Server) GetCredentialQrCode(w http.ResponseWriter, r *http.Request) {
	credential, err := s.credentials.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	png, err := qrcode.Encode(s.credentials.ShareURL(credential), qrcode.Medium, qrCodeSize)
	if err != nil {
		log.Error(r.Context(), "cannot encode qr code", "err", err, "id", credential.ID)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GetCredentialShareLink - GET /credential/{id}/share
func (s *Server) GetCredentialShareLink(w http.ResponseWriter, r *http.Request) {
	credential, err := s.credentials.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": s.credentials.ShareURL(credential)})
}
