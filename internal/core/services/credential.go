package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
	"github.com/pixelgenesis/credential-node/internal/repositories"
	"github.com/pixelgenesis/credential-node/pkg/pubsub"
)

// Credential issues, verifies and revokes credentials by coordinating the content store, the
// ledger and the record store. Ledger failures never abort an operation: writes fall back to
// locally generated identifiers and reads are treated as silent.
type Credential struct {
	repo      ports.CredentialRepository
	store     ports.ContentStore
	ledger    ports.Ledger
	audit     recorder
	publisher pubsub.Publisher
	publicURL string
}

// NewCredential - constructor. publisher may be nil.
func NewCredential(repo ports.CredentialRepository, auditRepo ports.AuditLogRepository, store ports.ContentStore, ledger ports.Ledger, publisher pubsub.Publisher, publicURL string) ports.CredentialService {
	return &Credential{
		repo:      repo,
		store:     store,
		ledger:    ledger,
		audit:     recorder{repo: auditRepo},
		publisher: publisher,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Issue stores the document when its bytes are given, records the credential on the ledger and
// persists it. The ledger outcome never fails the issuance.
func (s *Credential) Issue(ctx context.Context, req *ports.IssueCredentialRequest) (*domain.Credential, error) {
	category, err := validateIssue(req)
	if err != nil {
		return nil, err
	}

	entry := domain.NewLogEntry(domain.EventCredentialIssued, req.Issuer)
	contentID, contentHash, file := req.ContentID, common.NormalizeContentHash(req.ContentHash), req.File
	if len(req.Content) > 0 {
		contentHash = common.ContentHash(req.Content)
		if file.Size == 0 {
			file.Size = int64(len(req.Content))
		}
		upload, err := s.store.Upload(ctx, req.Content, domain.ContentMetadata{
			Name: file.Name,
			Type: file.Type,
			KeyValues: map[string]string{
				"category":   string(category),
				"uploadedBy": common.NormalizeAccount(req.Issuer),
				"timestamp":  time.Now().UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			log.Error(ctx, "cannot upload credential content", "err", err)
			s.fail(ctx, entry.WithDetail("contentHash", contentHash), "credential_issued", err)
			return nil, err
		}
		contentID = upload.CID
	}
	entry.ContentID, entry.ContentHash = contentID, contentHash

	receipt, err := s.ledger.IssueCredential(ctx, contentID, contentHash, req.Issuer, req.Owner)
	if err != nil {
		log.Warn(ctx, "ledger issuance failed, using local identifiers", "err", err, "hash", contentHash)
		receipt, err = domain.NewFallbackReceipt()
		if err != nil {
			s.fail(ctx, entry, "credential_issued", err)
			return nil, err
		}
	}
	if receipt.Fallback {
		metrics.LedgerFallback("issue_credential")
	}

	credential := domain.NewCredential(contentID, contentHash, req.Issuer, req.Owner, req.Title)
	credential.Description = req.Description
	credential.Category = category
	credential.File = file
	credential.Metadata = req.Metadata
	credential.Verified = true
	credential.AnchorOnLedger(receipt)

	if err := s.repo.Save(ctx, credential); err != nil {
		log.Error(ctx, "cannot save credential", "err", err, "hash", contentHash)
		s.fail(ctx, entry, "credential_issued", err)
		return nil, err
	}

	s.audit.record(ctx, entry.ForCredential(credential).WithDetail("ledgerAnchored", credential.LedgerAnchored))
	metrics.Operation("credential_issued", nil)
	s.publish(ctx, pubsub.EventCredentialIssued, credential)
	log.Info(ctx, "credential issued", "id", credential.ID, "hash", contentHash, "ledgerAnchored", credential.LedgerAnchored)
	return credential, nil
}

func validateIssue(req *ports.IssueCredentialRequest) (domain.CredentialCategory, error) {
	if req == nil {
		return "", newValidationError("request is required")
	}
	if req.ContentID == "" && len(req.Content) == 0 {
		return "", newValidationError("contentId or document content is required")
	}
	if req.ContentHash == "" && len(req.Content) == 0 {
		return "", newValidationError("contentHash is required")
	}
	if req.ContentHash != "" && len(req.Content) > 0 && !common.VerifyContentHash(req.Content, req.ContentHash) {
		return "", newValidationError("contentHash does not match the document content")
	}
	if strings.TrimSpace(req.Issuer) == "" {
		return "", newValidationError("issuer is required")
	}
	if strings.TrimSpace(req.Owner) == "" {
		return "", newValidationError("owner is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return "", newValidationError("title is required")
	}
	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		return "", newValidationError("unknown category <%s>", req.Category)
	}
	return category, nil
}

// Verify looks the credential up by a single identifier, preferring the content hash, then
// the content id and then the ledger transaction id, and combines it with the ledger evidence.
func (s *Credential) Verify(ctx context.Context, req *ports.VerifyCredentialRequest) (*domain.VerificationResult, error) {
	if req == nil || (req.ContentHash == "" && req.ContentID == "" && req.TxnID == "") {
		return nil, newValidationError("contentId, contentHash or txnId is required")
	}

	hash := common.NormalizeContentHash(req.ContentHash)
	entry := domain.NewLogEntry(domain.EventCredentialVerified, "")
	entry.ContentID, entry.ContentHash, entry.TxnID = req.ContentID, hash, req.TxnID

	var (
		credential *domain.Credential
		err        error
	)
	switch {
	case hash != "":
		credential, err = s.repo.GetByHash(ctx, hash)
	case req.ContentID != "":
		credential, err = s.repo.GetByContentID(ctx, req.ContentID)
	default:
		credential, err = s.repo.GetByTxnID(ctx, req.TxnID)
	}
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		credential, err = nil, nil
	}
	if err != nil {
		log.Error(ctx, "cannot look credential up", "err", err)
		s.fail(ctx, entry, "credential_verified", err)
		return nil, err
	}

	verdict := s.ledgerVerdict(ctx, hash, req)
	result := domain.NewVerificationResult(credential, verdict)

	if credential != nil {
		entry.Account = credential.Owner
		entry.ForCredential(credential)
	}
	entry.Success = result.IsValid
	s.audit.record(ctx, entry.WithDetail("ledgerVerdict", string(verdict.Kind)))
	metrics.Verification(string(verdict.Kind), result.IsValid)
	log.Debug(ctx, "credential verified", "isValid", result.IsValid, "verdict", verdict.Kind)
	return result, nil
}

// ledgerVerdict reads the credential from the ledger when a hash was given, or the raw
// transaction when the transaction id is the only identifier.
func (s *Credential) ledgerVerdict(ctx context.Context, hash string, req *ports.VerifyCredentialRequest) domain.LedgerVerdict {
	switch {
	case hash != "":
		lc, err := s.ledger.ReadCredential(ctx, hash)
		if err != nil {
			log.Warn(ctx, "ledger credential read failed", "err", err)
			lc = nil
		}
		return domain.VerdictFromCredential(lc)
	case req.ContentID == "" && req.TxnID != "":
		tx, err := s.ledger.ReadTransaction(ctx, req.TxnID)
		if err != nil {
			log.Warn(ctx, "ledger transaction read failed", "err", err)
			tx = nil
		}
		return domain.VerdictFromTransaction(tx)
	default:
		return domain.LedgerVerdict{Kind: domain.VerdictUnconfirmed}
	}
}

// Revoke moves the credential identified by req.ContentHash to the revoked status. Only its
// issuer can revoke it. Revoking an already revoked credential succeeds without side effects.
func (s *Credential) Revoke(ctx context.Context, req *ports.RevokeCredentialRequest) (*domain.Credential, error) {
	if req == nil || req.ContentHash == "" {
		return nil, newValidationError("contentHash is required")
	}
	if strings.TrimSpace(req.Issuer) == "" {
		return nil, newValidationError("issuer is required")
	}

	hash := common.NormalizeContentHash(req.ContentHash)
	entry := domain.NewLogEntry(domain.EventCredentialRevoked, req.Issuer)
	entry.ContentHash = hash

	credential, err := s.repo.GetByHash(ctx, hash)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		s.fail(ctx, entry, "credential_revoked", ErrCredentialNotFound)
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		s.fail(ctx, entry, "credential_revoked", err)
		return nil, err
	}
	entry.ForCredential(credential)

	if !credential.IssuedBy(req.Issuer) {
		log.Warn(ctx, "revocation requested by a different issuer", "hash", hash, "issuer", req.Issuer)
		s.fail(ctx, entry, "credential_revoked", ErrNotCredentialIssuer)
		return nil, ErrNotCredentialIssuer
	}

	if credential.IsRevoked() {
		s.audit.record(ctx, entry.WithDetail("alreadyRevoked", true))
		return credential, nil
	}

	receipt, err := s.ledger.RevokeCredential(ctx, credential.ContentHash, req.Issuer)
	switch {
	case err != nil:
		log.Warn(ctx, "ledger revocation failed, revoking locally", "err", err, "hash", credential.ContentHash)
		metrics.LedgerFallback("revoke_credential")
		entry.WithDetail("ledgerRevoked", false)
	case receipt.Fallback:
		metrics.LedgerFallback("revoke_credential")
		entry.WithDetail("ledgerRevoked", false)
	default:
		entry.WithDetail("ledgerRevoked", true).WithDetail("revocationTxnId", receipt.TxnID)
	}

	revoked, err := s.repo.MarkRevoked(ctx, credential.ID)
	if err != nil {
		log.Error(ctx, "cannot mark credential as revoked", "err", err, "id", credential.ID)
		s.fail(ctx, entry, "credential_revoked", err)
		return nil, err
	}

	s.audit.record(ctx, entry)
	metrics.Operation("credential_revoked", nil)
	s.publish(ctx, pubsub.EventCredentialRevoked, revoked)
	log.Info(ctx, "credential revoked", "id", revoked.ID, "hash", revoked.ContentHash)
	return revoked, nil
}

// GetByID accepts the record id (uuid) or the numeric ledger credential id
func (s *Credential) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	var (
		credential *domain.Credential
		err        error
	)
	if recordID, parseErr := uuid.Parse(id); parseErr == nil {
		credential, err = s.repo.GetByID(ctx, recordID)
	} else if ledgerID, parseErr := strconv.ParseInt(id, 10, 64); parseErr == nil && ledgerID > 0 {
		credential, err = s.repo.GetByCredentialID(ctx, ledgerID)
	} else {
		return nil, newValidationError("invalid credential id <%s>", id)
	}
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return nil, ErrCredentialNotFound
	}
	return credential, err
}

// ListByOwner returns the credentials owned by owner, newest first
func (s *Credential) ListByOwner(ctx context.Context, owner string) ([]*domain.Credential, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, newValidationError("owner is required")
	}
	return s.repo.ListByOwner(ctx, owner)
}

// ShareURL returns the public verification link of credential
func (s *Credential) ShareURL(credential *domain.Credential) string {
	q := url.Values{}
	q.Set("cid", credential.ContentID)
	if credential.TxnID != nil {
		q.Set("tx", *credential.TxnID)
	}
	return fmt.Sprintf("%s/verify?%s", s.publicURL, q.Encode())
}

func (s *Credential) fail(ctx context.Context, entry *domain.LogEntry, operation string, err error) {
	s.audit.record(ctx, entry.Failed(err))
	metrics.Operation(operation, err)
}

func (s *Credential) publish(ctx context.Context, topic string, c *domain.Credential) {
	if s.publisher == nil {
		return
	}
	ev := &pubsub.CredentialEvent{
		ID:             c.ID.String(),
		ContentHash:    c.ContentHash,
		Owner:          c.Owner,
		LedgerAnchored: c.LedgerAnchored,
	}
	if err := s.publisher.Publish(ctx, topic, ev); err != nil {
		log.Error(ctx, "cannot publish credential event", "err", err, "topic", topic, "id", c.ID)
	}
}
