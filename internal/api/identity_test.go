package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDID(t *testing.T) {
	s := newTestServer(t)
	account := freshAccount()

	rr := s.do(t, http.MethodGet, "/did/"+account, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	body := map[string]any{"walletAddress": account, "name": "Ada", "organization": "Engines"}
	rr = s.do(t, http.MethodPost, "/did/create", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[DID](t, rr)
	assert.Equal(t, "did:ethr:"+account, created.DID)
	assert.NotNil(t, created.DIDID)
	assert.NotEmpty(t, created.MetadataRef)
	assert.Contains(t, created.MetadataURL, created.MetadataRef)
	assert.NotEmpty(t, created.TxnID)

	rr = s.do(t, http.MethodPost, "/did/create", body)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodGet, "/did/"+account, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[DID](t, rr)
	assert.Equal(t, created.DID, got.DID)
	assert.Nil(t, got.LedgerData)

	rr = s.do(t, http.MethodGet, "/user/"+account, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	user := decode[User](t, rr)
	require.NotNil(t, user.DID)
	assert.Equal(t, "Engines", user.Organization)

	rr = s.do(t, http.MethodPost, "/did/create", map[string]any{"name": "nobody"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
