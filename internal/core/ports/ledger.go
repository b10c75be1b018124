package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// Ledger records identities and credentials on an external contract. Write operations
// return an error when the contract call fails. Read operations never fail: unreachable or
// unconfigured contracts answer nil.
type Ledger interface {
	IssueIdentity(ctx context.Context, metadataRef, name, owner string) (*domain.LedgerReceipt, error)
	IssueCredential(ctx context.Context, contentID, contentHash, issuer, owner string) (*domain.LedgerReceipt, error)
	RevokeCredential(ctx context.Context, contentHash, issuer string) (*domain.LedgerReceipt, error)
	ReadIdentity(ctx context.Context, owner string) (*domain.LedgerIdentity, error)
	ReadCredential(ctx context.Context, contentHash string) (*domain.LedgerCredential, error)
	ReadTransaction(ctx context.Context, txnID string) (*domain.LedgerTransaction, error)
}
