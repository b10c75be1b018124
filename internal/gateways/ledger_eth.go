package gateways

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/pkg/blockchain/eth"
)

// EthLedger stores identities and credentials in the DIDRegistry and CredentialStore contracts
type EthLedger struct {
	client      *eth.Client
	credentials *eth.CredentialStore
	identities  *eth.DIDRegistry
	signer      *ecdsa.PrivateKey
}

// NewEthLedger binds the contracts deployed at the given addresses. An empty didRegistry
// address disables the identity operations.
func NewEthLedger(client *eth.Client, signer *ecdsa.PrivateKey, credentialStore, didRegistry string) (*EthLedger, error) {
	if !ethCommon.IsHexAddress(credentialStore) {
		return nil, fmt.Errorf("invalid credential store address <%s>", credentialStore)
	}
	cs, err := eth.NewCredentialStore(ethCommon.HexToAddress(credentialStore), client.Backend())
	if err != nil {
		return nil, fmt.Errorf("cannot bind credential store contract: %w", err)
	}

	l := &EthLedger{client: client, credentials: cs, signer: signer}
	if didRegistry != "" {
		if !ethCommon.IsHexAddress(didRegistry) {
			return nil, fmt.Errorf("invalid did registry address <%s>", didRegistry)
		}
		l.identities, err = eth.NewDIDRegistry(ethCommon.HexToAddress(didRegistry), client.Backend())
		if err != nil {
			return nil, fmt.Errorf("cannot bind did registry contract: %w", err)
		}
	}
	return l, nil
}

// IssueIdentity registers an identity for the signer account
func (l *EthLedger) IssueIdentity(ctx context.Context, metadataRef, name, owner string) (*domain.LedgerReceipt, error) {
	if l.identities == nil {
		return nil, ErrLedgerUnavailable
	}
	tx, err := l.client.CallAuth(ctx, 0, l.signer, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return l.identities.CreateDID(opts, metadataRef, name)
	})
	if err != nil {
		log.Error(ctx, "createDID transaction failed", "err", err, "owner", owner)
		return nil, unavailable(err)
	}
	receipt, err := l.client.WaitMined(ctx, tx)
	if err != nil {
		log.Error(ctx, "createDID transaction not mined", "err", err, "tx", tx.Hash().Hex())
		return nil, unavailable(err)
	}

	res := &domain.LedgerReceipt{TxnID: tx.Hash().Hex()}
	ev, err := l.identities.ParseDIDCreated(receipt)
	if err != nil {
		log.Warn(ctx, "DIDCreated event not found in receipt", "err", err, "tx", res.TxnID)
		return res, nil
	}
	res.ID = bigToID(ev.DidId)
	return res, nil
}

// IssueCredential stores the credential and returns the id assigned by the contract
func (l *EthLedger) IssueCredential(ctx context.Context, contentID, contentHash, issuer, owner string) (*domain.LedgerReceipt, error) {
	issuerAddr, err := toAddress(issuer)
	if err != nil {
		return nil, unavailable(err)
	}
	ownerAddr, err := toAddress(owner)
	if err != nil {
		return nil, unavailable(err)
	}

	tx, err := l.client.CallAuth(ctx, 0, l.signer, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return l.credentials.StoreCredential(opts, contentID, contentHash, issuerAddr, ownerAddr)
	})
	if err != nil {
		log.Error(ctx, "storeCredential transaction failed", "err", err, "hash", contentHash)
		return nil, unavailable(err)
	}
	receipt, err := l.client.WaitMined(ctx, tx)
	if err != nil {
		log.Error(ctx, "storeCredential transaction not mined", "err", err, "tx", tx.Hash().Hex())
		return nil, unavailable(err)
	}

	res := &domain.LedgerReceipt{TxnID: tx.Hash().Hex()}
	ev, err := l.credentials.ParseCredentialStored(receipt)
	if err != nil {
		log.Warn(ctx, "CredentialStored event not found in receipt", "err", err, "tx", res.TxnID)
		return res, nil
	}
	res.ID = bigToID(ev.CredentialId)
	return res, nil
}

// RevokeCredential revokes the credential identified by contentHash
func (l *EthLedger) RevokeCredential(ctx context.Context, contentHash, issuer string) (*domain.LedgerReceipt, error) {
	tx, err := l.client.CallAuth(ctx, 0, l.signer, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return l.credentials.RevokeCredential(opts, contentHash)
	})
	if err != nil {
		log.Error(ctx, "revokeCredential transaction failed", "err", err, "hash", contentHash, "issuer", issuer)
		return nil, unavailable(err)
	}
	if _, err := l.client.WaitMined(ctx, tx); err != nil {
		log.Error(ctx, "revokeCredential transaction not mined", "err", err, "tx", tx.Hash().Hex())
		return nil, unavailable(err)
	}
	return &domain.LedgerReceipt{TxnID: tx.Hash().Hex()}, nil
}

// ReadIdentity returns nil when the owner has no identity or the registry can't be read
func (l *EthLedger) ReadIdentity(ctx context.Context, owner string) (*domain.LedgerIdentity, error) {
	if l.identities == nil || !ethCommon.IsHexAddress(owner) {
		return nil, nil
	}
	opts, cancel := l.client.CallOpts(ctx)
	defer cancel()
	out, err := l.identities.GetDID(opts, ethCommon.HexToAddress(owner))
	if err != nil {
		log.Warn(ctx, "cannot read identity from ledger", "err", err, "owner", owner)
		return nil, nil
	}
	id := bigToID(out.DIDID)
	if id == nil || *id == 0 {
		return nil, nil
	}
	return &domain.LedgerIdentity{
		IdentityID:  *id,
		MetadataRef: out.MetadataHash,
		Name:        out.Name,
		CreatedAt:   unixTime(out.CreatedAt),
	}, nil
}

// ReadCredential returns nil when the contract can't be read
func (l *EthLedger) ReadCredential(ctx context.Context, contentHash string) (*domain.LedgerCredential, error) {
	opts, cancel := l.client.CallOpts(ctx)
	defer cancel()
	out, err := l.credentials.VerifyCredential(opts, contentHash)
	if err != nil {
		log.Warn(ctx, "cannot read credential from ledger", "err", err, "hash", contentHash)
		return nil, nil
	}
	return &domain.LedgerCredential{
		IsValid:   out.IsValid,
		Issuer:    common.NormalizeAccount(out.Issuer.Hex()),
		Owner:     common.NormalizeAccount(out.Owner.Hex()),
		Timestamp: unixTime(out.Timestamp),
	}, nil
}

// ReadTransaction returns nil when the transaction is unknown or the node can't be reached
func (l *EthLedger) ReadTransaction(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	tx, pending, err := l.client.GetTransactionByID(ctx, txnID)
	if err != nil {
		if !errors.Is(err, eth.ErrTransactionNotFound) {
			log.Warn(ctx, "cannot read transaction from ledger", "err", err, "tx", txnID)
		}
		return nil, nil
	}

	res := &domain.LedgerTransaction{TxnID: tx.Hash().Hex(), Status: domain.TxnStatusPending}
	if from, err := eth.Sender(tx); err == nil {
		res.From = common.NormalizeAccount(from.Hex())
	}
	if tx.To() != nil {
		res.To = common.NormalizeAccount(tx.To().Hex())
	}
	if pending {
		return res, nil
	}

	receipt, err := l.client.GetTransactionReceiptByID(ctx, txnID)
	if err != nil {
		log.Debug(ctx, "transaction receipt not available", "err", err, "tx", txnID)
		return res, nil
	}
	res.Status = domain.TxnStatusFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		res.Status = domain.TxnStatusSuccess
	}
	if receipt.BlockNumber != nil {
		res.BlockNumber = common.ToPointer(receipt.BlockNumber.Uint64())
	}
	res.GasUsed = receipt.GasUsed
	return res, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
}

func toAddress(account string) (ethCommon.Address, error) {
	if !ethCommon.IsHexAddress(account) {
		return ethCommon.Address{}, fmt.Errorf("account <%s> is not a ledger address", account)
	}
	return ethCommon.HexToAddress(account), nil
}

func bigToID(n *big.Int) *int64 {
	if n == nil || !n.IsInt64() {
		return nil
	}
	return common.ToPointer(n.Int64())
}

func unixTime(n *big.Int) time.Time {
	if n == nil || !n.IsInt64() || n.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(n.Int64(), 0).UTC()
}
