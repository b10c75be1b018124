package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

func TestIdentity_CreateDID(t *testing.T) {
	ctx := context.Background()
	profile := domain.Profile{Name: "Ada", Email: "ada@example.org", Organization: "Engines"}

	t.Run("creates the identity", func(t *testing.T) {
		f := newFixture(t)
		service := NewIdentity(f.users, f.store, f.ledger, f.audit)
		f.ledger.On("IssueIdentity", mock.Anything, mock.Anything, "Ada", common.NormalizeAccount(ownerAccount)).
			Return(anchoredReceipt(3, "0xd1d"), nil).Once()

		res, err := service.CreateDID(ctx, ownerAccount, profile)
		require.NoError(t, err)
		require.NotNil(t, res.User.DID)
		assert.Equal(t, "did:ethr:"+common.NormalizeAccount(ownerAccount), *res.User.DID)
		assert.Equal(t, int64(3), *res.User.DIDID)
		assert.Equal(t, "0xd1d", *res.User.DIDTxnID)
		assert.Equal(t, "Engines", res.User.Profile.Organization)
		require.NotNil(t, res.User.MetadataRef)
		assert.Equal(t, f.store.GatewayURL(*res.User.MetadataRef), res.MetadataURL)

		raw, err := f.store.Download(ctx, *res.User.MetadataRef)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, *res.User.DID, doc["did"])
		assert.Equal(t, "Ada", doc["name"])

		stored, err := f.users.GetByAccount(ctx, ownerAccount)
		require.NoError(t, err)
		assert.True(t, stored.HasDID())

		created := f.entries(domain.EventDIDCreated)
		require.Len(t, created, 1)
		assert.True(t, created[0].Success)
		assert.Equal(t, "0xd1d", created[0].TxnID)
	})

	t.Run("already exists", func(t *testing.T) {
		f := newFixture(t)
		service := NewIdentity(f.users, f.store, f.ledger, f.audit)
		f.ledger.On("IssueIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(anchoredReceipt(4, "0x04"), nil).Once()

		_, err := service.CreateDID(ctx, ownerAccount, profile)
		require.NoError(t, err)
		_, err = service.CreateDID(ctx, ownerAccount, profile)
		require.ErrorIs(t, err, ErrDIDAlreadyExists)
		assert.Equal(t, 1, f.store.uploadCount())
	})

	t.Run("ledger failure", func(t *testing.T) {
		f := newFixture(t)
		service := NewIdentity(f.users, f.store, f.ledger, f.audit)
		f.ledger.On("IssueIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errLedgerDown).Once()

		_, err := service.CreateDID(ctx, ownerAccount, profile)
		require.ErrorIs(t, err, errLedgerDown)

		_, err = service.GetDID(ctx, ownerAccount)
		require.ErrorIs(t, err, ErrIdentityNotFound)
		created := f.entries(domain.EventDIDCreated)
		require.Len(t, created, 1)
		assert.False(t, created[0].Success)
	})

	t.Run("no account", func(t *testing.T) {
		f := newFixture(t)
		service := NewIdentity(f.users, f.store, f.ledger, f.audit)
		_, err := service.CreateDID(ctx, "", profile)
		assert.True(t, IsValidationError(err))
		assert.Zero(t, f.store.uploadCount())
	})
}

func TestIdentity_GetDID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	service := NewIdentity(f.users, f.store, f.ledger, f.audit)

	_, err := service.GetDID(ctx, ownerAccount)
	require.ErrorIs(t, err, ErrIdentityNotFound)

	f.ledger.On("IssueIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(anchoredReceipt(5, "0x05"), nil).Once()
	f.ledger.On("ReadIdentity", mock.Anything, mock.Anything).
		Return(&domain.LedgerIdentity{IdentityID: 5, Name: "Ada"}, nil).Once()
	_, err = service.CreateDID(ctx, ownerAccount, domain.Profile{Name: "Ada"})
	require.NoError(t, err)

	res, err := service.GetDID(ctx, ownerAccount)
	require.NoError(t, err)
	require.NotNil(t, res.Ledger)
	assert.Equal(t, int64(5), res.Ledger.IdentityID)
	assert.NotEmpty(t, res.MetadataURL)
}
