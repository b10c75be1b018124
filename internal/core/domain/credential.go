package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pixelgenesis/credential-node/internal/common"
)

// CredentialStatus is the lifecycle state of a credential
type CredentialStatus string

// CredentialCategory classifies the credentialed document
type CredentialCategory string

const (
	CredentialStatusActive  CredentialStatus = "active"  // CredentialStatusActive default status
	CredentialStatusRevoked CredentialStatus = "revoked" // CredentialStatusRevoked terminal status
	CredentialStatusExpired CredentialStatus = "expired" // CredentialStatusExpired reserved, never set by the service

	CategoryCertificate CredentialCategory = "certificate" // CategoryCertificate certificate
	CategoryDiploma     CredentialCategory = "diploma"     // CategoryDiploma diploma
	CategoryLicense     CredentialCategory = "license"     // CategoryLicense license
	CategoryIdentity    CredentialCategory = "identity"    // CategoryIdentity identity document
	CategoryOther       CredentialCategory = "other"       // CategoryOther anything else
)

// ParseCredentialStatus validates a status value
func ParseCredentialStatus(s string) (CredentialStatus, bool) {
	switch st := CredentialStatus(s); st {
	case CredentialStatusActive, CredentialStatusRevoked, CredentialStatusExpired:
		return st, true
	}
	return "", false
}

// ParseCategory validates a category value. An empty value maps to CategoryOther.
func ParseCategory(s string) (CredentialCategory, bool) {
	if s == "" {
		return CategoryOther, true
	}
	switch c := CredentialCategory(s); c {
	case CategoryCertificate, CategoryDiploma, CategoryLicense, CategoryIdentity, CategoryOther:
		return c, true
	}
	return "", false
}

// FileInfo describes the credentialed file
type FileInfo struct {
	Name string
	Size int64
	Type string
}

// Credential is an issued reference to a document: its content identifier, its content hash
// and, when the ledger accepted it, the ledger credential id and transaction.
type Credential struct {
	ID             uuid.UUID
	CredentialID   *int64
	ContentID      string
	ContentHash    string
	TxnID          *string
	Issuer         string
	Owner          string
	Title          string
	Description    string
	Category       CredentialCategory
	File           FileInfo
	Status         CredentialStatus
	Verified       bool
	LedgerAnchored bool
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewCredential returns an active credential. Accounts are stored lowercase.
func NewCredential(contentID, contentHash, issuer, owner, title string) *Credential {
	now := time.Now().UTC()
	return &Credential{
		ID:          uuid.New(),
		ContentID:   contentID,
		ContentHash: contentHash,
		Issuer:      common.NormalizeAccount(issuer),
		Owner:       common.NormalizeAccount(owner),
		Title:       title,
		Category:    CategoryOther,
		Status:      CredentialStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsActive reports whether the credential can still be verified
func (c *Credential) IsActive() bool {
	return c.Status == CredentialStatusActive
}

// IsRevoked reports whether the credential was revoked
func (c *Credential) IsRevoked() bool {
	return c.Status == CredentialStatusRevoked
}

// Revoke moves the credential to the revoked status. It returns false when the credential
// was already revoked.
func (c *Credential) Revoke() bool {
	if c.IsRevoked() {
		return false
	}
	c.Status = CredentialStatusRevoked
	c.UpdatedAt = time.Now().UTC()
	return true
}

// AnchorOnLedger records the ledger identifiers of the credential
func (c *Credential) AnchorOnLedger(receipt *LedgerReceipt) {
	if receipt == nil {
		return
	}
	c.TxnID = common.ToPointer(receipt.TxnID)
	c.LedgerAnchored = !receipt.Fallback
	if receipt.ID != nil {
		c.CredentialID = common.ToPointer(*receipt.ID)
	}
}

// IssuedBy reports whether account is the issuer of the credential, ignoring case
func (c *Credential) IssuedBy(account string) bool {
	return common.SameAccount(c.Issuer, account)
}
