package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/pkg/pubsub"
)

func TestReconciler_AnchorPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.service = NewCredential(f.credentials, f.audit, f.store, fallbackLedger{}, nil, publicURL)

	hashes := []string{common.ContentHash([]byte("p1")), common.ContentHash([]byte("p2")), common.ContentHash([]byte("p3"))}
	for i, h := range hashes {
		_, err := f.service.Issue(ctx, issueRequest("QmPending"+string(rune('a'+i)), h))
		require.NoError(t, err)
	}
	_, err := f.service.Revoke(ctx, &ports.RevokeCredentialRequest{ContentHash: hashes[2], Issuer: issuerAccount})
	require.NoError(t, err)

	f.ledger.On("IssueCredential", mock.Anything, mock.Anything, hashes[0], mock.Anything, mock.Anything).
		Return(anchoredReceipt(100, "0x100"), nil).Once()
	f.ledger.On("IssueCredential", mock.Anything, mock.Anything, hashes[1], mock.Anything, mock.Anything).
		Return(nil, errLedgerDown).Once()

	r := NewReconciler(f.credentials, f.ledger, -time.Minute, 10)
	n, err := r.AnchorPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	anchored, err := f.credentials.GetByHash(ctx, hashes[0])
	require.NoError(t, err)
	assert.True(t, anchored.LedgerAnchored)
	assert.Equal(t, int64(100), *anchored.CredentialID)
	assert.Equal(t, "0x100", *anchored.TxnID)

	pending, err := f.credentials.GetByHash(ctx, hashes[1])
	require.NoError(t, err)
	assert.False(t, pending.LedgerAnchored)
	f.ledger.AssertExpectations(t)
}

func TestReconciler_StopsOnFallbackLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.service = NewCredential(f.credentials, f.audit, f.store, fallbackLedger{}, nil, publicURL)
	hash := common.ContentHash([]byte("stays local"))
	c, err := f.service.Issue(ctx, issueRequest("QmLocal", hash))
	require.NoError(t, err)

	r := NewReconciler(f.credentials, fallbackLedger{}, -time.Minute, 10)
	n, err := r.AnchorPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := f.credentials.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, *c.TxnID, *stored.TxnID)
}

func TestReconciler_HandleCredentialIssued(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.service = NewCredential(f.credentials, f.audit, f.store, fallbackLedger{}, nil, publicURL)
	hash := common.ContentHash([]byte("event"))
	c, err := f.service.Issue(ctx, issueRequest("QmEvent", hash))
	require.NoError(t, err)

	f.ledger.On("IssueCredential", mock.Anything, "QmEvent", hash, c.Issuer, c.Owner).
		Return(anchoredReceipt(55, "0x55"), nil).Once()
	r := NewReconciler(f.credentials, f.ledger, time.Minute, 10)

	ev := &pubsub.CredentialEvent{ID: c.ID.String(), ContentHash: hash, Owner: c.Owner}
	msg, err := ev.Marshal()
	require.NoError(t, err)
	require.NoError(t, r.HandleCredentialIssued(ctx, msg))

	stored, err := f.credentials.GetByHash(ctx, hash)
	require.NoError(t, err)
	assert.True(t, stored.LedgerAnchored)

	// already anchored events are ignored
	anchored := &pubsub.CredentialEvent{ContentHash: hash, LedgerAnchored: true}
	msg, err = anchored.Marshal()
	require.NoError(t, err)
	require.NoError(t, r.HandleCredentialIssued(ctx, msg))
	f.ledger.AssertNumberOfCalls(t, "IssueCredential", 1)

	require.ErrorIs(t, r.AnchorOne(ctx, common.ContentHash([]byte("unknown"))), ErrCredentialNotFound)
}

// staleSweepRepo returns the pending list captured before the credentials were anchored
type staleSweepRepo struct {
	ports.CredentialRepository
	pending []*domain.Credential
}

func (r staleSweepRepo) ListUnanchored(context.Context, time.Time, int) ([]*domain.Credential, error) {
	return r.pending, nil
}

func TestReconciler_AnchorsOnce(t *testing.T) {
	ctx := context.Background()

	issuePending := func(t *testing.T, f *fixture, cid, hash string) *domain.Credential {
		t.Helper()
		f.service = NewCredential(f.credentials, f.audit, f.store, fallbackLedger{}, nil, publicURL)
		c, err := f.service.Issue(ctx, issueRequest(cid, hash))
		require.NoError(t, err)
		return c
	}

	t.Run("sweep skips credentials anchored after listing", func(t *testing.T) {
		f := newFixture(t)
		hash := common.ContentHash([]byte("listed"))
		issuePending(t, f, "QmListed", hash)
		pending, err := f.credentials.ListUnanchored(ctx, time.Now().UTC().Add(time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		f.ledger.On("IssueCredential", mock.Anything, "QmListed", hash, mock.Anything, mock.Anything).
			Return(anchoredReceipt(70, "0x70"), nil).Once()
		require.NoError(t, NewReconciler(f.credentials, f.ledger, time.Minute, 10).AnchorOne(ctx, hash))

		sweeper := NewReconciler(staleSweepRepo{CredentialRepository: f.credentials, pending: pending}, f.ledger, time.Minute, 10)
		n, err := sweeper.AnchorPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		f.ledger.AssertNumberOfCalls(t, "IssueCredential", 1)
	})

	t.Run("concurrent handler and sweep", func(t *testing.T) {
		f := newFixture(t)
		hash := common.ContentHash([]byte("raced"))
		c := issuePending(t, f, "QmRaced", hash)
		f.ledger.On("IssueCredential", mock.Anything, "QmRaced", hash, mock.Anything, mock.Anything).
			Return(anchoredReceipt(71, "0x71"), nil).Once()

		r := NewReconciler(f.credentials, f.ledger, -time.Minute, 10)
		ev := &pubsub.CredentialEvent{ID: c.ID.String(), ContentHash: hash, Owner: c.Owner}
		msg, err := ev.Marshal()
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				assert.NoError(t, r.HandleCredentialIssued(ctx, msg))
			}()
			go func() {
				defer wg.Done()
				_, err := r.AnchorPending(ctx)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		f.ledger.AssertNumberOfCalls(t, "IssueCredential", 1)
		stored, err := f.credentials.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, stored.LedgerAnchored)
		assert.Equal(t, "0x71", *stored.TxnID)
	})
}
