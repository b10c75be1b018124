package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/services"
	"github.com/pixelgenesis/credential-node/internal/gateways"
	"github.com/pixelgenesis/credential-node/internal/health"
	"github.com/pixelgenesis/credential-node/internal/repositories"
)

// testGateway serves the blobs stored in it the way a public ipfs gateway does
type testGateway struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (g *testGateway) put(data []byte) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	cid := gateways.MockCID(data)
	g.blobs[cid] = data
	return cid
}

func (g *testGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.blobs[strings.TrimPrefix(r.URL.Path, "/ipfs/")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write(data)
}

type testServer struct {
	handler http.Handler
	gateway *testGateway
	audit   *repositories.AuditLogInMemory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	gw := &testGateway{blobs: make(map[string][]byte)}
	gwServer := httptest.NewServer(gw)
	t.Cleanup(gwServer.Close)

	cfg := &config.Configuration{
		PublicURL: "https://verify.example.org",
		IPFS: config.IPFS{
			GatewayURL:      gwServer.URL + "/ipfs/",
			PublicGateways:  []string{gwServer.URL + "/ipfs/"},
			DownloadTimeout: 2 * time.Second,
		},
		Upload: config.Upload{MaxBytes: 1 << 20, AllowedTypes: []string{"text/plain", "application/pdf"}},
	}

	credentialRepo := repositories.NewCredentialInMemory()
	userRepo := repositories.NewUserInMemory()
	auditRepo := repositories.NewAuditLogInMemory()
	store := gateways.NewContentStore(cfg.IPFS)
	ledger := gateways.NewFallbackLedger()

	server := NewServer(cfg,
		services.NewCredential(credentialRepo, auditRepo, store, ledger, nil, cfg.PublicURL),
		services.NewContent(store, ledger, auditRepo, cfg.Upload),
		services.NewIdentity(userRepo, store, ledger, auditRepo),
		services.NewUser(userRepo, credentialRepo),
		services.NewAudit(auditRepo),
		health.New().Register(health.DB, health.PingFunc(func(context.Context) error { return nil })),
	)
	handler, err := server.Handler(ctx)
	require.NoError(t, err)
	return &testServer{handler: handler, gateway: gw, audit: auditRepo}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) upload(t *testing.T, fileName, fileType string, content []byte, wallet string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", fileType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if wallet != "" {
		require.NoError(t, mw.WriteField("walletAddress", wallet))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/content/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
