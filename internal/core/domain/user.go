package domain

import (
	"fmt"
	"time"

	"github.com/pixelgenesis/credential-node/internal/common"
)

// Role of a user
type Role string

const (
	RoleUser     Role = "user"     // RoleUser default role
	RoleVerifier Role = "verifier" // RoleVerifier verifies credentials
	RoleIssuer   Role = "issuer"   // RoleIssuer issues credentials
)

// ParseRole validates a role. An empty role maps to RoleUser.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleUser, true
	}
	switch r := Role(s); r {
	case RoleUser, RoleVerifier, RoleIssuer:
		return r, true
	}
	return "", false
}

// DIDMethodPrefix is the prefix of the decentralized identifiers minted by the service
const DIDMethodPrefix = "did:ethr:"

// DIDFor returns the decentralized identifier of account
func DIDFor(account string) string {
	return fmt.Sprintf("%s%s", DIDMethodPrefix, common.NormalizeAccount(account))
}

// Profile holds the optional descriptive fields of a user
type Profile struct {
	Name         string
	Email        string
	Organization string
}

// User is an account profile optionally carrying a decentralized identifier
type User struct {
	Account     string
	DID         *string
	DIDID       *int64
	MetadataRef *string
	DIDTxnID    *string
	Profile     Profile
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser returns a user with the default role
func NewUser(account string) *User {
	now := time.Now().UTC()
	return &User{
		Account:   common.NormalizeAccount(account),
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasDID reports whether a decentralized identifier was already minted for the user
func (u *User) HasDID() bool {
	return u.DID != nil && *u.DID != ""
}

// UserStats summarises the credentials owned by a user
type UserStats struct {
	TotalDocuments    int
	VerifiedDocuments int
	RecentActivity    []*Credential
}
