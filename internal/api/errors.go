package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/pixelgenesis/credential-node/internal/core/services"
	"github.com/pixelgenesis/credential-node/internal/log"
)

// writeServiceError maps the service errors to their http status
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case services.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCredentialNotFound),
		errors.Is(err, services.ErrIdentityNotFound),
		errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotCredentialIssuer):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrDIDAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error(ctx, "request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
