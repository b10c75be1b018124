package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// UserRepository stores account profiles. GetByAccount returns repositories.ErrUserNotFound
// when the account is unknown.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByAccount(ctx context.Context, account string) (*domain.User, error)
}
