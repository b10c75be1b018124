package gateways

import (
	"context"
	"fmt"
	"time"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/pkg/cache"
)

// CachedLedger keeps successful ledger reads in a cache. Writes go straight to the wrapped
// ledger and evict the entries they change.
type CachedLedger struct {
	ports.Ledger
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedLedger wraps ledger
func NewCachedLedger(ledger ports.Ledger, c cache.Cache, ttl time.Duration) *CachedLedger {
	return &CachedLedger{Ledger: ledger, cache: c, ttl: ttl}
}

// IssueIdentity evicts the cached identity of owner
func (l *CachedLedger) IssueIdentity(ctx context.Context, metadataRef, name, owner string) (*domain.LedgerReceipt, error) {
	defer l.evict(ctx, identityKey(owner))
	return l.Ledger.IssueIdentity(ctx, metadataRef, name, owner)
}

// IssueCredential evicts the cached credential
func (l *CachedLedger) IssueCredential(ctx context.Context, contentID, contentHash, issuer, owner string) (*domain.LedgerReceipt, error) {
	defer l.evict(ctx, credentialKey(contentHash))
	return l.Ledger.IssueCredential(ctx, contentID, contentHash, issuer, owner)
}

// RevokeCredential evicts the cached credential
func (l *CachedLedger) RevokeCredential(ctx context.Context, contentHash, issuer string) (*domain.LedgerReceipt, error) {
	defer l.evict(ctx, credentialKey(contentHash))
	return l.Ledger.RevokeCredential(ctx, contentHash, issuer)
}

// ReadIdentity reads through the cache
func (l *CachedLedger) ReadIdentity(ctx context.Context, owner string) (*domain.LedgerIdentity, error) {
	key := identityKey(owner)
	var cached domain.LedgerIdentity
	if l.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	identity, err := l.Ledger.ReadIdentity(ctx, owner)
	if err != nil || identity == nil {
		return identity, err
	}
	l.store(ctx, key, identity)
	return identity, nil
}

// ReadCredential reads through the cache
func (l *CachedLedger) ReadCredential(ctx context.Context, contentHash string) (*domain.LedgerCredential, error) {
	key := credentialKey(contentHash)
	var cached domain.LedgerCredential
	if l.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	credential, err := l.Ledger.ReadCredential(ctx, contentHash)
	if err != nil || credential == nil {
		return credential, err
	}
	l.store(ctx, key, credential)
	return credential, nil
}

func (l *CachedLedger) store(ctx context.Context, key string, value any) {
	if err := l.cache.Set(ctx, key, value, l.ttl); err != nil {
		log.Warn(ctx, "cannot cache ledger read", "key", key, "err", err)
	}
}

func (l *CachedLedger) evict(ctx context.Context, key string) {
	if err := l.cache.Delete(ctx, key); err != nil {
		log.Warn(ctx, "cannot evict ledger read", "key", key, "err", err)
	}
}

func credentialKey(contentHash string) string {
	return fmt.Sprintf("ledger-credential-%s", contentHash)
}

func identityKey(owner string) string {
	return fmt.Sprintf("ledger-identity-%s", common.NormalizeAccount(owner))
}
