package log

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ChiMiddleware installs an http middleware that logs every request and injects
// a request scoped logger, tagged with the chi request id, into the request context.
func ChiMiddleware(ctx context.Context) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			reqCtx := With(CopyFromContext(ctx, r.Context()), "req-id", reqID)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			//nolint:contextcheck
			defer func() {
				level := Info
				if ww.Status() >= http.StatusInternalServerError {
					level = Warn
				}
				level(reqCtx,
					"http req",
					"method", r.Method,
					"uri", r.RequestURI,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"ua", r.Header.Get("User-Agent"),
					"d", time.Since(started))
			}()
			next.ServeHTTP(ww, r.WithContext(reqCtx))
		}
		return http.HandlerFunc(fn)
	}
}
