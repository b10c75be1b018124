package repositories

import (
	"context"
	"sync"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

type userInMemory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserInMemory returns a user repository kept in memory
func NewUserInMemory() ports.UserRepository {
	return &userInMemory{users: make(map[string]domain.User)}
}

func (r *userInMemory) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *u
	stored.Account = common.NormalizeAccount(u.Account)
	if existing, found := r.users[stored.Account]; found {
		stored.CreatedAt = existing.CreatedAt
	}
	r.users[stored.Account] = stored
	return nil
}

func (r *userInMemory) GetByAccount(_ context.Context, account string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, found := r.users[common.NormalizeAccount(account)]
	if !found {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
