package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

type credentialInMemory struct {
	mu          sync.RWMutex
	credentials map[uuid.UUID]domain.Credential
}

// NewCredentialInMemory returns a credential repository kept in memory. It enforces the same
// uniqueness rules as the postgres one and is used when no database is configured and in tests.
func NewCredentialInMemory() ports.CredentialRepository {
	return &credentialInMemory{credentials: make(map[uuid.UUID]domain.Credential)}
}

func (r *credentialInMemory) Save(_ context.Context, c *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, other := range r.credentials {
		if id == c.ID {
			continue
		}
		switch {
		case other.ContentHash == c.ContentHash:
			return fmt.Errorf("%w: credentials_content_hash_key", ErrCredentialDuplicated)
		case other.ContentID == c.ContentID:
			return fmt.Errorf("%w: credentials_content_id_key", ErrCredentialDuplicated)
		case c.CredentialID != nil && other.CredentialID != nil && *c.CredentialID == *other.CredentialID:
			return fmt.Errorf("%w: credentials_credential_id_key", ErrCredentialDuplicated)
		}
	}

	stored := copyCredential(c)
	stored.Issuer = common.NormalizeAccount(stored.Issuer)
	stored.Owner = common.NormalizeAccount(stored.Owner)
	if existing, found := r.credentials[c.ID]; found {
		stored.CreatedAt = existing.CreatedAt
	}
	r.credentials[c.ID] = stored
	return nil
}

func (r *credentialInMemory) GetByID(_ context.Context, id uuid.UUID) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, found := r.credentials[id]
	if !found {
		return nil, ErrCredentialNotFound
	}
	return ptr(c), nil
}

func (r *credentialInMemory) GetByCredentialID(_ context.Context, credentialID int64) (*domain.Credential, error) {
	return r.find(func(c *domain.Credential) bool {
		return c.CredentialID != nil && *c.CredentialID == credentialID
	})
}

func (r *credentialInMemory) GetByHash(_ context.Context, contentHash string) (*domain.Credential, error) {
	return r.find(func(c *domain.Credential) bool { return c.ContentHash == contentHash })
}

func (r *credentialInMemory) GetByContentID(_ context.Context, contentID string) (*domain.Credential, error) {
	return r.find(func(c *domain.Credential) bool { return c.ContentID == contentID })
}

func (r *credentialInMemory) GetByTxnID(_ context.Context, txnID string) (*domain.Credential, error) {
	return r.find(func(c *domain.Credential) bool { return c.TxnID != nil && *c.TxnID == txnID })
}

func (r *credentialInMemory) ListByOwner(_ context.Context, owner string) ([]*domain.Credential, error) {
	owner = common.NormalizeAccount(owner)
	res := r.filter(func(c *domain.Credential) bool { return c.Owner == owner })
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (r *credentialInMemory) CountByOwner(_ context.Context, owner string, filter ports.CredentialFilter) (int, error) {
	owner = common.NormalizeAccount(owner)
	res := r.filter(func(c *domain.Credential) bool {
		if c.Owner != owner {
			return false
		}
		if filter.Status != nil && c.Status != *filter.Status {
			return false
		}
		if filter.Verified != nil && c.Verified != *filter.Verified {
			return false
		}
		return true
	})
	return len(res), nil
}

func (r *credentialInMemory) MarkRevoked(_ context.Context, id uuid.UUID) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, found := r.credentials[id]
	if !found {
		return nil, ErrCredentialNotFound
	}
	c.Status = domain.CredentialStatusRevoked
	c.UpdatedAt = time.Now().UTC()
	r.credentials[id] = c
	return ptr(c), nil
}

func (r *credentialInMemory) UpdateLedgerAnchor(_ context.Context, id uuid.UUID, credentialID *int64, txnID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, found := r.credentials[id]
	if !found {
		return ErrCredentialNotFound
	}
	if c.LedgerAnchored {
		return ErrCredentialAlreadyAnchored
	}
	if credentialID != nil {
		for otherID, other := range r.credentials {
			if otherID != id && other.CredentialID != nil && *other.CredentialID == *credentialID {
				return fmt.Errorf("%w: credentials_credential_id_key", ErrCredentialDuplicated)
			}
		}
	}
	c.CredentialID = copyPtr(credentialID)
	c.TxnID = common.ToPointer(txnID)
	c.LedgerAnchored = true
	c.UpdatedAt = time.Now().UTC()
	r.credentials[id] = c
	return nil
}

func (r *credentialInMemory) ListUnanchored(_ context.Context, createdBefore time.Time, limit int) ([]*domain.Credential, error) {
	res := r.filter(func(c *domain.Credential) bool {
		return !c.LedgerAnchored && c.IsActive() && c.CreatedAt.Before(createdBefore)
	})
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *credentialInMemory) find(match func(*domain.Credential) bool) (*domain.Credential, error) {
	res := r.filter(match)
	if len(res) == 0 {
		return nil, ErrCredentialNotFound
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res[0], nil
}

func (r *credentialInMemory) filter(match func(*domain.Credential) bool) []*domain.Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*domain.Credential, 0)
	for _, c := range r.credentials {
		if match(&c) {
			res = append(res, ptr(c))
		}
	}
	return res
}

func ptr(c domain.Credential) *domain.Credential {
	cp := copyCredential(&c)
	return &cp
}

func copyCredential(c *domain.Credential) domain.Credential {
	cp := *c
	cp.CredentialID = copyPtr(c.CredentialID)
	cp.TxnID = copyPtr(c.TxnID)
	if c.Metadata != nil {
		cp.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
