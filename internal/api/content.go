package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/log"
)

// uploadForm holds the text fields of the multipart upload form
type uploadForm struct {
	WalletAddress string `mapstructure:"walletAddress"`
}

// UploadContent - POST /content/upload
func (s *Server) UploadContent(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Upload.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %s", err))
		return
	}

	var form uploadForm
	if err := mapstructure.Decode(firstValues(r.MultipartForm.Value), &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Error(r.Context(), "cannot read uploaded file", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.content.Upload(r.Context(), &domain.File{
		Name:    header.Filename,
		Type:    header.Header.Get("Content-Type"),
		Content: content,
	}, form.WalletAddress)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUploadResult(res))
}

// DownloadContent - GET /content/{contentId}
func (s *Server) DownloadContent(w http.ResponseWriter, r *http.Request) {
	cid := chi.URLParam(r, "contentId")
	data, err := s.content.Download(r.Context(), cid)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cid))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func firstValues(values map[string][]string) map[string]string {
	res := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			res[k] = v[0]
		}
	}
	return res
}
