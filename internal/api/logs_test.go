package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/common"
)

func TestLogs(t *testing.T) {
	s := newTestServer(t)
	issuer := freshAccount()
	hash := common.ContentHash([]byte("logged"))

	rr := s.do(t, http.MethodPost, "/credential/issue", issueBody("QmLogged", hash, issuer, issuer))
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = s.do(t, http.MethodPost, "/credential/verify", map[string]any{"contentHash": hash})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/logs?account="+issuer, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	all := decode[LogList](t, rr)
	assert.Equal(t, 2, all.Count)

	rr = s.do(t, http.MethodGet, "/logs?eventType=credential_issued&limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	issued := decode[LogList](t, rr)
	require.Equal(t, 1, issued.Count)
	assert.Equal(t, "credential_issued", issued.Data[0].EventType)
	assert.True(t, issued.Data[0].Success)
	assert.Equal(t, hash, issued.Data[0].ContentHash)

	rr = s.do(t, http.MethodGet, "/logs?limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[LogList](t, rr).Count)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/logs?limit=5000", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/logs?limit=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/logs?eventType=unknown", nil).Code)
}
