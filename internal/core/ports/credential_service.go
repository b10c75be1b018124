package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// IssueCredentialRequest struct. Either ContentID or Content must be provided. When Content
// is provided it is uploaded to the content store and ContentHash defaults to its digest.
type IssueCredentialRequest struct {
	ContentID   string
	ContentHash string
	Content     []byte
	Issuer      string
	Owner       string
	Title       string
	Description string
	Category    string
	File        domain.FileInfo
	Metadata    map[string]any
}

// VerifyCredentialRequest struct. At least one field must be set.
type VerifyCredentialRequest struct {
	ContentID   string
	ContentHash string
	TxnID       string
}

// RevokeCredentialRequest struct
type RevokeCredentialRequest struct {
	ContentHash string
	Issuer      string
}

// CredentialService issues, verifies and revokes credentials
type CredentialService interface {
	Issue(ctx context.Context, req *IssueCredentialRequest) (*domain.Credential, error)
	Verify(ctx context.Context, req *VerifyCredentialRequest) (*domain.VerificationResult, error)
	Revoke(ctx context.Context, req *RevokeCredentialRequest) (*domain.Credential, error)
	GetByID(ctx context.Context, id string) (*domain.Credential, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Credential, error)
	ShareURL(credential *domain.Credential) string
}
