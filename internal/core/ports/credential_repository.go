package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// CredentialFilter narrows CountByOwner. Nil fields are not applied.
type CredentialFilter struct {
	Status   *domain.CredentialStatus
	Verified *bool
}

// CredentialRepository is the durable store of issued credentials. Lookups return
// repositories.ErrCredentialNotFound when nothing matches and Save returns
// repositories.ErrCredentialDuplicated on a uniqueness violation.
type CredentialRepository interface {
	Save(ctx context.Context, credential *domain.Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	GetByCredentialID(ctx context.Context, credentialID int64) (*domain.Credential, error)
	GetByHash(ctx context.Context, contentHash string) (*domain.Credential, error)
	GetByContentID(ctx context.Context, contentID string) (*domain.Credential, error)
	GetByTxnID(ctx context.Context, txnID string) (*domain.Credential, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Credential, error)
	CountByOwner(ctx context.Context, owner string, filter CredentialFilter) (int, error)
	MarkRevoked(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	UpdateLedgerAnchor(ctx context.Context, id uuid.UUID, credentialID *int64, txnID string) error
	ListUnanchored(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.Credential, error)
}
