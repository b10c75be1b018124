package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/health"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
)

const multipartMemory = 32 << 20

// Server implements the http api of the credential node
type Server struct {
	cfg         *config.Configuration
	credentials ports.CredentialService
	content     ports.ContentService
	identities  ports.IdentityService
	users       ports.UserService
	audit       ports.AuditService
	health      *health.Status
}

// NewServer is a Server constructor
func NewServer(cfg *config.Configuration, credentials ports.CredentialService, content ports.ContentService, identities ports.IdentityService, users ports.UserService, audit ports.AuditService, health *health.Status) *Server {
	return &Server{
		cfg:         cfg,
		credentials: credentials,
		content:     content,
		identities:  identities,
		users:       users,
		audit:       audit,
		health:      health,
	}
}

// Handler returns the router serving every endpoint
func (s *Server) Handler(ctx context.Context) (http.Handler, error) {
	v, err := newRequestValidator(ctx)
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	mux.Use(
		middleware.RequestID,
		log.ChiMiddleware(ctx),
		middleware.Recoverer,
		metrics.Middleware,
		s.cors(),
	)

	mux.Get("/", documentation)
	mux.Get("/static/docs/api/api.yaml", swagger)
	mux.Get("/health", s.Health)
	mux.Get("/status", s.Status)
	mux.Handle("/metrics", metrics.Handler())

	mux.Route("/credential", func(r chi.Router) {
		r.With(v.operation(http.MethodPost, "/credential/issue")).Post("/issue", s.IssueCredential)
		r.With(v.operation(http.MethodPost, "/credential/verify")).Post("/verify", s.VerifyCredential)
		r.With(v.operation(http.MethodPost, "/credential/revoke")).Post("/revoke", s.RevokeCredential)
		r.With(v.operation(http.MethodGet, "/credential/owner/{account}")).Get("/owner/{account}", s.GetCredentialsByOwner)
		r.With(v.operation(http.MethodGet, "/credential/{id}")).Get("/{id}", s.GetCredential)
		r.With(v.operation(http.MethodGet, "/credential/{id}/qrcode")).Get("/{id}/qrcode", s.GetCredentialQrCode)
		r.With(v.operation(http.MethodGet, "/credential/{id}/share")).Get("/{id}/share", s.GetCredentialShareLink)
	})
	mux.Route("/content", func(r chi.Router) {
		r.Post("/upload", s.UploadContent)
		r.With(v.operation(http.MethodGet, "/content/{contentId}")).Get("/{contentId}", s.DownloadContent)
	})
	mux.Route("/did", func(r chi.Router) {
		r.With(v.operation(http.MethodPost, "/did/create")).Post("/create", s.CreateDID)
		r.With(v.operation(http.MethodGet, "/did/{account}")).Get("/{account}", s.GetDID)
	})
	mux.With(v.operation(http.MethodPost, "/user")).Post("/user", s.SaveUser)
	mux.Route("/user/{account}", func(r chi.Router) {
		r.With(v.operation(http.MethodGet, "/user/{account}")).Get("/", s.GetUser)
		r.With(v.operation(http.MethodGet, "/user/{account}/stats")).Get("/stats", s.GetUserStats)
	})
	mux.With(v.operation(http.MethodGet, "/logs")).Get("/logs", s.GetLogs)

	return mux, nil
}

func (s *Server) cors() func(http.Handler) http.Handler {
	if len(s.cfg.CORS.AllowedOrigins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func documentation(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(redocPage))
}

func swagger(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(apiSpec)
}

const redocPage = `<!DOCTYPE html>
<html>
<head>
  <title>Credential Node API</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
  <redoc spec-url="/static/docs/api/api.yaml"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`
