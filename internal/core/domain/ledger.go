package domain

import (
	"time"

	"github.com/pixelgenesis/credential-node/internal/common"
)

// LedgerReceipt is returned by the ledger write operations. Fallback is true when the
// identifiers were synthesised locally because no contract is configured or reachable.
type LedgerReceipt struct {
	ID       *int64
	TxnID    string
	Fallback bool
}

// NewFallbackReceipt synthesises a receipt with a random credential id and transaction id
func NewFallbackReceipt() (*LedgerReceipt, error) {
	id, err := common.RandomID()
	if err != nil {
		return nil, err
	}
	txnID, err := common.RandomTxnID()
	if err != nil {
		return nil, err
	}
	return &LedgerReceipt{ID: &id, TxnID: txnID, Fallback: true}, nil
}

// LedgerCredential is the ledger view of a credential
type LedgerCredential struct {
	IsValid   bool
	Issuer    string
	Owner     string
	Timestamp time.Time
}

// LedgerIdentity is the ledger view of an identity
type LedgerIdentity struct {
	IdentityID  int64
	MetadataRef string
	Name        string
	CreatedAt   time.Time
}

// TxnStatus is the execution status of a ledger transaction
type TxnStatus string

const (
	TxnStatusPending TxnStatus = "pending" // TxnStatusPending not mined yet
	TxnStatusSuccess TxnStatus = "success" // TxnStatusSuccess mined and succeeded
	TxnStatusFailed  TxnStatus = "failed"  // TxnStatusFailed mined and reverted
)

// LedgerTransaction is the raw view of a ledger transaction
type LedgerTransaction struct {
	TxnID       string
	From        string
	To          string
	Status      TxnStatus
	BlockNumber *uint64
	GasUsed     uint64
}
