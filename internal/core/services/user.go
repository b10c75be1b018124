package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/repositories"
)

const recentActivitySize = 5

// User manages account profiles
type User struct {
	users       ports.UserRepository
	credentials ports.CredentialRepository
}

// NewUser - constructor
func NewUser(users ports.UserRepository, credentials ports.CredentialRepository) ports.UserService {
	return &User{users: users, credentials: credentials}
}

// Save creates the user or updates the fields present in req
func (s *User) Save(ctx context.Context, req *ports.SaveUserRequest) (*domain.User, error) {
	if req == nil || strings.TrimSpace(req.Account) == "" {
		return nil, newValidationError("walletAddress is required")
	}
	var role *domain.Role
	if req.Role != nil {
		r, ok := domain.ParseRole(*req.Role)
		if !ok {
			return nil, newValidationError("unknown role <%s>", *req.Role)
		}
		role = &r
	}

	user, err := s.users.GetByAccount(ctx, req.Account)
	if errors.Is(err, repositories.ErrUserNotFound) {
		user, err = domain.NewUser(req.Account), nil
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Profile.Name = *req.Name
	}
	if req.Email != nil {
		user.Profile.Email = *req.Email
	}
	if req.Organization != nil {
		user.Profile.Organization = *req.Organization
	}
	if role != nil {
		user.Role = *role
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the user with the number of active credentials it owns
func (s *User) Get(ctx context.Context, account string) (*ports.UserWithCount, error) {
	user, err := s.get(ctx, account)
	if err != nil {
		return nil, err
	}
	count, err := s.credentials.CountByOwner(ctx, user.Account, ports.CredentialFilter{
		Status: common.ToPointer(domain.CredentialStatusActive),
	})
	if err != nil {
		return nil, err
	}
	return &ports.UserWithCount{User: user, CredentialsCount: count}, nil
}

// Stats summarises the documents owned by account
func (s *User) Stats(ctx context.Context, account string) (*domain.UserStats, error) {
	user, err := s.get(ctx, account)
	if err != nil {
		return nil, err
	}

	total, err := s.credentials.CountByOwner(ctx, user.Account, ports.CredentialFilter{})
	if err != nil {
		return nil, err
	}
	verified, err := s.credentials.CountByOwner(ctx, user.Account, ports.CredentialFilter{
		Status:   common.ToPointer(domain.CredentialStatusActive),
		Verified: common.ToPointer(true),
	})
	if err != nil {
		return nil, err
	}
	recent, err := s.credentials.ListByOwner(ctx, user.Account)
	if err != nil {
		return nil, err
	}
	if len(recent) > recentActivitySize {
		recent = recent[:recentActivitySize]
	}
	return &domain.UserStats{TotalDocuments: total, VerifiedDocuments: verified, RecentActivity: recent}, nil
}

func (s *User) get(ctx context.Context, account string) (*domain.User, error) {
	if strings.TrimSpace(account) == "" {
		return nil, newValidationError("walletAddress is required")
	}
	user, err := s.users.GetByAccount(ctx, account)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
