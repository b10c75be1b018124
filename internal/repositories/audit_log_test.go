package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

func TestAuditLog_SaveAndList(t *testing.T) {
	ctx := context.Background()
	for name, repo := range auditLogRepositories() {
		t.Run(name, func(t *testing.T) {
			account := randomAccount()
			c := newTestCredential(account)

			issued := domain.NewLogEntry(domain.EventCredentialIssued, account).ForCredential(c).WithDetail("title", "diploma")
			issued.CreatedAt = time.Now().UTC().Add(-time.Minute)
			require.NoError(t, repo.Save(ctx, issued))

			verified := domain.NewLogEntry(domain.EventCredentialVerified, account).ForCredential(c).Failed(errors.New("boom"))
			require.NoError(t, repo.Save(ctx, verified))

			require.NoError(t, repo.Save(ctx, domain.NewLogEntry(domain.EventCredentialIssued, randomAccount())))

			entries, err := repo.List(ctx, ports.LogFilter{Account: account})
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, verified.ID, entries[0].ID)
			assert.False(t, entries[0].Success)
			assert.Equal(t, "boom", entries[0].Error)
			assert.Equal(t, issued.ID, entries[1].ID)
			assert.True(t, entries[1].Success)
			assert.Equal(t, "diploma", entries[1].Details["title"])
			require.NotNil(t, entries[1].CredentialRef)
			assert.Equal(t, c.ID, *entries[1].CredentialRef)
			assert.Equal(t, c.ContentHash, entries[1].ContentHash)

			onlyIssued, err := repo.List(ctx, ports.LogFilter{Account: account, EventType: common.ToPointer(domain.EventCredentialIssued)})
			require.NoError(t, err)
			require.Len(t, onlyIssued, 1)
			assert.Equal(t, issued.ID, onlyIssued[0].ID)

			page, err := repo.List(ctx, ports.LogFilter{Account: account, Limit: 1, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, issued.ID, page[0].ID)
		})
	}
}

func TestAuditLog_UnknownAccount(t *testing.T) {
	entry := domain.NewLogEntry(domain.EventCredentialVerified, "")
	assert.Equal(t, domain.UnknownAccount, entry.Account)
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(ports.LogFilter{})
	assert.Equal(t, ports.DefaultLogLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageBounds(ports.LogFilter{Limit: 5000, Offset: -3})
	assert.Equal(t, ports.MaxLogLimit, limit)
	assert.Equal(t, 0, offset)
}
