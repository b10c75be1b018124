package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
	"github.com/pixelgenesis/credential-node/internal/repositories"
)

// didMetadata is the document stored in the content store for every identity
type didMetadata struct {
	DID          string    `json:"did"`
	Account      string    `json:"walletAddress"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Organization string    `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity mints decentralized identifiers
type Identity struct {
	users  ports.UserRepository
	store  ports.ContentStore
	ledger ports.Ledger
	audit  recorder
}

// NewIdentity - constructor
func NewIdentity(users ports.UserRepository, store ports.ContentStore, ledger ports.Ledger, auditRepo ports.AuditLogRepository) ports.IdentityService {
	return &Identity{
		users:  users,
		store:  store,
		ledger: ledger,
		audit:  recorder{repo: auditRepo},
	}
}

// CreateDID stores the identity metadata, registers it on the ledger and attaches the DID to
// the user, creating the user when needed. Unlike credentials, identities are not created
// when the ledger write fails.
func (s *Identity) CreateDID(ctx context.Context, account string, profile domain.Profile) (*ports.DIDResult, error) {
	if strings.TrimSpace(account) == "" {
		return nil, newValidationError("walletAddress is required")
	}

	user, err := s.users.GetByAccount(ctx, account)
	if errors.Is(err, repositories.ErrUserNotFound) {
		user, err = domain.NewUser(account), nil
	}
	if err != nil {
		return nil, err
	}
	if user.HasDID() {
		return nil, ErrDIDAlreadyExists
	}

	entry := domain.NewLogEntry(domain.EventDIDCreated, account)
	did := domain.DIDFor(account)
	metadata, err := json.Marshal(didMetadata{
		DID:          did,
		Account:      user.Account,
		Name:         profile.Name,
		Email:        profile.Email,
		Organization: profile.Organization,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode identity metadata: %w", err)
	}

	upload, err := s.store.Upload(ctx, metadata, domain.ContentMetadata{
		Name:      fmt.Sprintf("did-%s.json", user.Account),
		Type:      "application/json",
		KeyValues: map[string]string{"uploadedBy": user.Account, "category": "identity"},
	})
	if err != nil {
		log.Error(ctx, "cannot upload identity metadata", "err", err, "account", user.Account)
		s.audit.record(ctx, entry.Failed(err))
		metrics.Operation("did_created", err)
		return nil, err
	}
	entry.ContentID = upload.CID

	receipt, err := s.ledger.IssueIdentity(ctx, upload.CID, profile.Name, user.Account)
	if err != nil {
		log.Error(ctx, "cannot register identity on the ledger", "err", err, "account", user.Account)
		s.audit.record(ctx, entry.Failed(err))
		metrics.Operation("did_created", err)
		return nil, err
	}
	if receipt.Fallback {
		metrics.LedgerFallback("issue_identity")
	}

	user.DID = common.ToPointer(did)
	user.DIDID = receipt.ID
	user.MetadataRef = common.ToPointer(upload.CID)
	user.DIDTxnID = common.ToPointer(receipt.TxnID)
	mergeProfile(&user.Profile, profile)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		log.Error(ctx, "cannot save user identity", "err", err, "account", user.Account)
		s.audit.record(ctx, entry.Failed(err))
		metrics.Operation("did_created", err)
		return nil, err
	}

	entry.TxnID = receipt.TxnID
	s.audit.record(ctx, entry.WithDetail("did", did))
	metrics.Operation("did_created", nil)
	log.Info(ctx, "DID created", "did", did)
	return &ports.DIDResult{User: user, MetadataURL: s.store.GatewayURL(upload.CID)}, nil
}

// GetDID returns the identity of account together with its ledger record, when readable
func (s *Identity) GetDID(ctx context.Context, account string) (*ports.DIDResult, error) {
	user, err := s.users.GetByAccount(ctx, account)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.HasDID() {
		return nil, ErrIdentityNotFound
	}

	res := &ports.DIDResult{User: user}
	if user.MetadataRef != nil {
		res.MetadataURL = s.store.GatewayURL(*user.MetadataRef)
	}
	identity, err := s.ledger.ReadIdentity(ctx, user.Account)
	if err != nil {
		log.Warn(ctx, "ledger identity read failed", "err", err, "account", user.Account)
	}
	res.Ledger = identity
	return res, nil
}

func mergeProfile(dst *domain.Profile, src domain.Profile) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Organization != "" {
		dst.Organization = src.Organization
	}
}
