package gateways

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/log"
)

// FallbackLedger is used when no contract is configured. Writes return locally generated
// identifiers and reads return nil.
type FallbackLedger struct{}

// NewFallbackLedger returns a FallbackLedger
func NewFallbackLedger() *FallbackLedger {
	return &FallbackLedger{}
}

// IssueIdentity returns a synthetic receipt
func (FallbackLedger) IssueIdentity(ctx context.Context, _, _, owner string) (*domain.LedgerReceipt, error) {
	log.Debug(ctx, "ledger not configured, using fallback identity receipt", "owner", owner)
	return domain.NewFallbackReceipt()
}

// IssueCredential returns a synthetic receipt
func (FallbackLedger) IssueCredential(ctx context.Context, _, contentHash, _, _ string) (*domain.LedgerReceipt, error) {
	log.Debug(ctx, "ledger not configured, using fallback credential receipt", "hash", contentHash)
	return domain.NewFallbackReceipt()
}

// RevokeCredential returns a synthetic receipt
func (FallbackLedger) RevokeCredential(ctx context.Context, contentHash, _ string) (*domain.LedgerReceipt, error) {
	log.Debug(ctx, "ledger not configured, using fallback revocation receipt", "hash", contentHash)
	return domain.NewFallbackReceipt()
}

// ReadIdentity returns nil
func (FallbackLedger) ReadIdentity(context.Context, string) (*domain.LedgerIdentity, error) {
	return nil, nil
}

// ReadCredential returns nil
func (FallbackLedger) ReadCredential(context.Context, string) (*domain.LedgerCredential, error) {
	return nil, nil
}

// ReadTransaction returns nil
func (FallbackLedger) ReadTransaction(context.Context, string) (*domain.LedgerTransaction, error) {
	return nil, nil
}
