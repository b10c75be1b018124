package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// DIDResult is returned when an identity is created or read
type DIDResult struct {
	User        *domain.User
	MetadataURL string
	Ledger      *domain.LedgerIdentity
}

// IdentityService mints decentralized identifiers for accounts
type IdentityService interface {
	CreateDID(ctx context.Context, account string, profile domain.Profile) (*DIDResult, error)
	GetDID(ctx context.Context, account string) (*DIDResult, error)
}

// SaveUserRequest creates or partially updates a user. Nil fields are left untouched.
type SaveUserRequest struct {
	Account      string
	Name         *string
	Email        *string
	Organization *string
	Role         *string
}

// UserWithCount is a user with the number of active credentials it owns
type UserWithCount struct {
	User             *domain.User
	CredentialsCount int
}

// UserService manages account profiles
type UserService interface {
	Save(ctx context.Context, req *SaveUserRequest) (*domain.User, error)
	Get(ctx context.Context, account string) (*UserWithCount, error)
	Stats(ctx context.Context, account string) (*domain.UserStats, error)
}
