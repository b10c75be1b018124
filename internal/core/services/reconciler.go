package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
	"github.com/pixelgenesis/credential-node/internal/repositories"
	"github.com/pixelgenesis/credential-node/pkg/pubsub"
)

// errNothingToAnchor is returned by anchor when the credential was anchored or revoked after
// it was picked up
var errNothingToAnchor = errors.New("credential no longer pending")

// Reconciler records on the ledger the credentials that were issued with local identifiers.
// The periodic sweep and the pubsub handler share one Reconciler and anchor one credential at
// a time.
type Reconciler struct {
	mu        sync.Mutex
	repo      ports.CredentialRepository
	ledger    ports.Ledger
	minAge    time.Duration
	batchSize int
}

// NewReconciler - constructor. Only credentials older than minAge are picked up by a sweep,
// at most batchSize per sweep.
func NewReconciler(repo ports.CredentialRepository, ledger ports.Ledger, minAge time.Duration, batchSize int) *Reconciler {
	return &Reconciler{repo: repo, ledger: ledger, minAge: minAge, batchSize: batchSize}
}

// AnchorPending submits a batch of unanchored credentials to the ledger. Credentials that
// fail stay unanchored and are retried by the next sweep.
func (r *Reconciler) AnchorPending(ctx context.Context) (int, error) {
	pending, err := r.repo.ListUnanchored(ctx, time.Now().UTC().Add(-r.minAge), r.batchSize)
	if err != nil {
		log.Error(ctx, "cannot list unanchored credentials", "err", err)
		return 0, err
	}

	anchored := 0
	for _, c := range pending {
		if ctx.Err() != nil {
			break
		}
		ok, err := r.anchor(ctx, c)
		if errors.Is(err, errNothingToAnchor) {
			continue
		}
		if err != nil {
			log.Warn(ctx, "cannot anchor credential", "err", err, "id", c.ID, "hash", c.ContentHash)
			continue
		}
		if !ok {
			log.Info(ctx, "ledger not configured, stopping sweep")
			break
		}
		anchored++
	}
	metrics.Anchored(anchored)
	if len(pending) > 0 {
		log.Info(ctx, "anchoring sweep finished", "pending", len(pending), "anchored", anchored)
	}
	return anchored, nil
}

// AnchorOne anchors the credential identified by contentHash if it is still active and unanchored
func (r *Reconciler) AnchorOne(ctx context.Context, contentHash string) error {
	c, err := r.repo.GetByHash(ctx, contentHash)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return ErrCredentialNotFound
	}
	if err != nil {
		return err
	}
	if c.LedgerAnchored || !c.IsActive() {
		return nil
	}
	ok, err := r.anchor(ctx, c)
	if errors.Is(err, errNothingToAnchor) {
		return nil
	}
	if err != nil {
		return err
	}
	if ok {
		metrics.Anchored(1)
	}
	return nil
}

// HandleCredentialIssued is the pubsub handler of pubsub.EventCredentialIssued
func (r *Reconciler) HandleCredentialIssued(ctx context.Context, msg pubsub.Message) error {
	ev := &pubsub.CredentialEvent{}
	if err := ev.Unmarshal(msg); err != nil {
		log.Error(ctx, "cannot decode credential event", "err", err)
		return err
	}
	if ev.LedgerAnchored {
		return nil
	}
	return r.AnchorOne(ctx, ev.ContentHash)
}

// anchor returns false when the ledger answered with local identifiers. The credential is
// read again under the lock so a copy picked up before another anchoring is not submitted twice.
func (r *Reconciler) anchor(ctx context.Context, c *domain.Credential) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.repo.GetByID(ctx, c.ID)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return false, errNothingToAnchor
	}
	if err != nil {
		return false, err
	}
	if c.LedgerAnchored || !c.IsActive() {
		return false, errNothingToAnchor
	}

	receipt, err := r.ledger.IssueCredential(ctx, c.ContentID, c.ContentHash, c.Issuer, c.Owner)
	if err != nil {
		return false, err
	}
	if receipt.Fallback {
		return false, nil
	}
	err = r.repo.UpdateLedgerAnchor(ctx, c.ID, receipt.ID, receipt.TxnID)
	if errors.Is(err, repositories.ErrCredentialAlreadyAnchored) {
		log.Warn(ctx, "credential was anchored by another reconciler", "id", c.ID, "txnId", receipt.TxnID)
		return false, errNothingToAnchor
	}
	if err != nil {
		return false, err
	}
	log.Info(ctx, "credential anchored", "id", c.ID, "txnId", receipt.TxnID)
	return true, nil
}
