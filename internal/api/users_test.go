package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/common"
)

func TestUsers(t *testing.T) {
	s := newTestServer(t)
	account := freshAccount()

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/user/"+account, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/user/"+account+"/stats", nil).Code)

	rr := s.do(t, http.MethodPost, "/user", map[string]any{"walletAddress": account, "name": "Grace", "role": "issuer"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	saved := decode[User](t, rr)
	assert.Equal(t, "issuer", saved.Role)
	assert.Equal(t, "Grace", saved.Name)

	rr = s.do(t, http.MethodPost, "/user", map[string]any{"walletAddress": account, "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, doc := range []string{"one", "two"} {
		rr = s.do(t, http.MethodPost, "/credential/issue", issueBody("Qm"+doc, common.ContentHash([]byte(doc)), account, account))
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr = s.do(t, http.MethodPost, "/credential/revoke", map[string]any{"contentHash": common.ContentHash([]byte("two")), "issuer": account})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/user/"+account, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	user := decode[User](t, rr)
	require.NotNil(t, user.CredentialsCount)
	assert.Equal(t, 1, *user.CredentialsCount)

	rr = s.do(t, http.MethodGet, "/user/"+account+"/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[UserStats](t, rr)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 1, stats.VerifiedDocuments)
	assert.Len(t, stats.RecentActivity, 2)
}
