package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

func TestCredential_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	for name, repo := range credentialRepositories() {
		t.Run(name, func(t *testing.T) {
			owner := randomAccount()
			c := newTestCredential(owner)
			c.Description = "bachelor degree"
			c.Category = domain.CategoryDiploma
			c.File = domain.FileInfo{Name: "diploma.pdf", Size: 1024, Type: "application/pdf"}
			c.Verified = true
			c.Metadata = map[string]any{"university": "UPC"}
			c.AnchorOnLedger(&domain.LedgerReceipt{ID: common.ToPointer(time.Now().UnixNano() % 1_000_000_000_000), TxnID: "0x" + strings.Repeat("ab", 32)})
			require.NoError(t, repo.Save(ctx, c))

			byHash, err := repo.GetByHash(ctx, c.ContentHash)
			require.NoError(t, err)
			assert.Equal(t, c.ID, byHash.ID)
			assert.Equal(t, strings.ToLower(owner), byHash.Owner)
			assert.Equal(t, strings.ToLower(c.Issuer), byHash.Issuer)
			assert.Equal(t, domain.CategoryDiploma, byHash.Category)
			assert.Equal(t, c.File, byHash.File)
			assert.Equal(t, "UPC", byHash.Metadata["university"])
			assert.True(t, byHash.Verified)
			assert.True(t, byHash.LedgerAnchored)
			assert.Equal(t, domain.CredentialStatusActive, byHash.Status)

			byCID, err := repo.GetByContentID(ctx, c.ContentID)
			require.NoError(t, err)
			assert.Equal(t, c.ID, byCID.ID)

			byID, err := repo.GetByID(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, c.ContentHash, byID.ContentHash)

			byLedgerID, err := repo.GetByCredentialID(ctx, *c.CredentialID)
			require.NoError(t, err)
			assert.Equal(t, c.ID, byLedgerID.ID)

			byTxn, err := repo.GetByTxnID(ctx, *c.TxnID)
			require.NoError(t, err)
			assert.Equal(t, c.ID, byTxn.ID)
		})
	}
}

func TestCredential_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, repo := range credentialRepositories() {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetByHash(ctx, common.ContentHash([]byte(uuid.NewString())))
			assert.ErrorIs(t, err, ErrCredentialNotFound)
			_, err = repo.GetByContentID(ctx, "QmMissing"+uuid.NewString())
			assert.ErrorIs(t, err, ErrCredentialNotFound)
			_, err = repo.GetByTxnID(ctx, "0xmissing")
			assert.ErrorIs(t, err, ErrCredentialNotFound)
			_, err = repo.GetByID(ctx, uuid.New())
			assert.ErrorIs(t, err, ErrCredentialNotFound)
			_, err = repo.MarkRevoked(ctx, uuid.New())
			assert.ErrorIs(t, err, ErrCredentialNotFound)
			assert.ErrorIs(t, repo.UpdateLedgerAnchor(ctx, uuid.New(), nil, "0x01"), ErrCredentialNotFound)
		})
	}
}

func TestCredential_Uniqueness(t *testing.T) {
	ctx := context.Background()
	for name, repo := range credentialRepositories() {
		t.Run(name, func(t *testing.T) {
			owner := randomAccount()
			first := newTestCredential(owner)
			require.NoError(t, repo.Save(ctx, first))

			sameHash := newTestCredential(owner)
			sameHash.ContentHash = first.ContentHash
			assert.ErrorIs(t, repo.Save(ctx, sameHash), ErrCredentialDuplicated)

			sameCID := newTestCredential(owner)
			sameCID.ContentID = first.ContentID
			assert.ErrorIs(t, repo.Save(ctx, sameCID), ErrCredentialDuplicated)

			ledgerID := time.Now().UnixNano()%1_000_000_000_000 + 7
			withID := newTestCredential(owner)
			withID.CredentialID = common.ToPointer(ledgerID)
			require.NoError(t, repo.Save(ctx, withID))
			sameID := newTestCredential(owner)
			sameID.CredentialID = common.ToPointer(ledgerID)
			assert.ErrorIs(t, repo.Save(ctx, sameID), ErrCredentialDuplicated)

			// credential id is sparse: many records may lack it
			for i := 0; i < 2; i++ {
				require.NoError(t, repo.Save(ctx, newTestCredential(owner)))
			}

			count, err := repo.CountByOwner(ctx, owner, ports.CredentialFilter{})
			require.NoError(t, err)
			assert.Equal(t, 4, count)
		})
	}
}

func TestCredential_ListAndCountByOwner(t *testing.T) {
	ctx := context.Background()
	for name, repo := range credentialRepositories() {
		t.Run(name, func(t *testing.T) {
			owner := randomAccount()
			var ids []uuid.UUID
			for i := 0; i < 3; i++ {
				c := newTestCredential(owner)
				c.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
				c.Verified = i != 1
				require.NoError(t, repo.Save(ctx, c))
				ids = append(ids, c.ID)
			}
			require.NoError(t, repo.Save(ctx, newTestCredential(randomAccount())))

			list, err := repo.ListByOwner(ctx, strings.ToUpper(owner))
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, ids[2], list[0].ID)
			assert.Equal(t, ids[0], list[2].ID)

			_, err = repo.MarkRevoked(ctx, ids[0])
			require.NoError(t, err)

			total, err := repo.CountByOwner(ctx, owner, ports.CredentialFilter{})
			require.NoError(t, err)
			assert.Equal(t, 3, total)

			active, err := repo.CountByOwner(ctx, owner, ports.CredentialFilter{Status: common.ToPointer(domain.CredentialStatusActive)})
			require.NoError(t, err)
			assert.Equal(t, 2, active)

			verified, err := repo.CountByOwner(ctx, owner, ports.CredentialFilter{Verified: common.ToPointer(true)})
			require.NoError(t, err)
			assert.Equal(t, 2, verified)

			activeVerified, err := repo.CountByOwner(ctx, owner, ports.CredentialFilter{
				Status:   common.ToPointer(domain.CredentialStatusActive),
				Verified: common.ToPointer(true),
			})
			require.NoError(t, err)
			assert.Equal(t, 1, activeVerified)

			empty, err := repo.ListByOwner(ctx, randomAccount())
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestCredential_MarkRevoked(t *testing.T) {
	ctx := context.Background()
	for name, repo := range credentialRepositories() {
		t.Run(name, func(t *testing.T) {
			c := newTestCredential(randomAccount())
			require.NoError(t, repo.Save(ctx, c))

			revoked, err := repo.MarkRevoked(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.CredentialStatusRevoked, revoked.Status)
			assert.False(t, revoked.UpdatedAt.Before(c.UpdatedAt.Truncate(time.Millisecond)))

			stored, err := repo.GetByHash(ctx, c.ContentHash)
			require.NoError(t, err)
			assert.True(t, stored.IsRevoked())
		})
	}
}

func TestCredential_LedgerAnchoring(t *testing.T) {
	ctx := context.Background()
	for name, repo := range credentialRepositories() {
		t.Run(name, func(t *testing.T) {
			old := newTestCredential(randomAccount())
			old.CreatedAt = time.Now().UTC().Add(-time.Hour)
			old.AnchorOnLedger(&domain.LedgerReceipt{TxnID: "0x" + strings.Repeat("0f", 32), Fallback: true})
			require.NoError(t, repo.Save(ctx, old))

			recent := newTestCredential(randomAccount())
			require.NoError(t, repo.Save(ctx, recent))

			revoked := newTestCredential(randomAccount())
			revoked.CreatedAt = time.Now().UTC().Add(-time.Hour)
			revoked.Status = domain.CredentialStatusRevoked
			require.NoError(t, repo.Save(ctx, revoked))

			pending, err := repo.ListUnanchored(ctx, time.Now().UTC().Add(-time.Minute), 1000)
			require.NoError(t, err)
			found := map[uuid.UUID]bool{}
			for _, p := range pending {
				found[p.ID] = true
			}
			assert.True(t, found[old.ID])
			assert.False(t, found[recent.ID])
			assert.False(t, found[revoked.ID])

			ledgerID := time.Now().UnixNano()%1_000_000_000_000 + 11
			txnID := "0x" + strings.Repeat("cd", 32)
			require.NoError(t, repo.UpdateLedgerAnchor(ctx, old.ID, &ledgerID, txnID))

			again := ledgerID + 1
			require.ErrorIs(t, repo.UpdateLedgerAnchor(ctx, old.ID, &again, "0x"+strings.Repeat("ef", 32)), ErrCredentialAlreadyAnchored)

			anchored, err := repo.GetByID(ctx, old.ID)
			require.NoError(t, err)
			assert.True(t, anchored.LedgerAnchored)
			require.NotNil(t, anchored.CredentialID)
			assert.Equal(t, ledgerID, *anchored.CredentialID)
			assert.Equal(t, txnID, *anchored.TxnID)

			pending, err = repo.ListUnanchored(ctx, time.Now().UTC().Add(-time.Minute), 1000)
			require.NoError(t, err)
			for _, p := range pending {
				assert.NotEqual(t, old.ID, p.ID)
			}
		})
	}
}
