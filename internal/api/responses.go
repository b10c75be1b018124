package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

// GenericErrorMessage is the body of every error response
type GenericErrorMessage struct {
	Message string `json:"message"`
}

// Credential is the json representation of a credential
type Credential struct {
	ID             uuid.UUID      `json:"id"`
	CredentialID   *int64         `json:"credentialId"`
	ContentID      string         `json:"contentId"`
	ContentHash    string         `json:"contentHash"`
	TxnID          *string        `json:"txnId"`
	Issuer         string         `json:"issuer"`
	Owner          string         `json:"owner"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Category       string         `json:"category"`
	FileName       string         `json:"fileName,omitempty"`
	FileSize       int64          `json:"fileSize,omitempty"`
	FileType       string         `json:"fileType,omitempty"`
	Status         string         `json:"status"`
	Verified       bool           `json:"verified"`
	LedgerAnchored bool           `json:"ledgerAnchored"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// CredentialList is a page of credentials
type CredentialList struct {
	Count int          `json:"count"`
	Data  []Credential `json:"data"`
}

// VerificationResult is the json representation of a verification
type VerificationResult struct {
	IsValid       bool        `json:"isValid"`
	Credential    *Credential `json:"credential"`
	LedgerData    any         `json:"ledgerData"`
	LedgerVerdict string      `json:"ledgerVerdict"`
}

// LedgerCredential is the ledger view of a credential
type LedgerCredential struct {
	IsValid   bool      `json:"isValid"`
	Issuer    string    `json:"issuer"`
	Owner     string    `json:"owner"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerTransaction is the raw view of a ledger transaction
type LedgerTransaction struct {
	TxnID       string  `json:"txnId"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Status      string  `json:"status"`
	BlockNumber *uint64 `json:"blockNumber"`
	GasUsed     uint64  `json:"gasUsed"`
}

// GatewayURLs lists where a document can be downloaded from
type GatewayURLs struct {
	Primary string   `json:"primary"`
	Public  []string `json:"public"`
	IPFS    string   `json:"ipfs"`
}

// UploadResult is returned after a document upload
type UploadResult struct {
	FileName       string      `json:"filename"`
	ContentID      string      `json:"contentId"`
	ContentHash    string      `json:"contentHash"`
	TxnID          string      `json:"txnId"`
	CredentialID   *int64      `json:"credentialId"`
	Size           int64       `json:"size"`
	GatewayURL     string      `json:"gatewayUrl"`
	AllGateways    GatewayURLs `json:"allGateways"`
	LedgerAnchored bool        `json:"ledgerAnchored"`
}

// DID is the json representation of an identity
type DID struct {
	DID         string          `json:"did"`
	DIDID       *int64          `json:"didId"`
	Account     string          `json:"walletAddress"`
	MetadataRef string          `json:"metadataRef,omitempty"`
	MetadataURL string          `json:"metadataUrl,omitempty"`
	TxnID       string          `json:"txnId,omitempty"`
	LedgerData  *LedgerIdentity `json:"ledgerData"`
}

// LedgerIdentity is the ledger view of an identity
type LedgerIdentity struct {
	IdentityID  int64     `json:"identityId"`
	MetadataRef string    `json:"metadataRef"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

// User is the json representation of a user
type User struct {
	Account          string    `json:"walletAddress"`
	DID              *string   `json:"did"`
	Name             string    `json:"name,omitempty"`
	Email            string    `json:"email,omitempty"`
	Organization     string    `json:"organization,omitempty"`
	Role             string    `json:"role"`
	CredentialsCount *int      `json:"credentialsCount,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UserStats summarises the documents of a user
type UserStats struct {
	TotalDocuments    int          `json:"totalDocuments"`
	VerifiedDocuments int          `json:"verifiedDocuments"`
	RecentActivity    []Credential `json:"recentActivity"`
}

// LogEntry is the json representation of an audit record
type LogEntry struct {
	ID            uuid.UUID      `json:"id"`
	EventType     string         `json:"eventType"`
	Account       string         `json:"walletAddress"`
	CredentialRef *uuid.UUID     `json:"credentialRef"`
	ContentID     string         `json:"contentId,omitempty"`
	ContentHash   string         `json:"contentHash,omitempty"`
	TxnID         string         `json:"txnId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// LogList is a page of audit records
type LogList struct {
	Count int        `json:"count"`
	Data  []LogEntry `json:"data"`
}

func toCredential(c *domain.Credential) Credential {
	return Credential{
		ID:             c.ID,
		CredentialID:   c.CredentialID,
		ContentID:      c.ContentID,
		ContentHash:    c.ContentHash,
		TxnID:          c.TxnID,
		Issuer:         c.Issuer,
		Owner:          c.Owner,
		Title:          c.Title,
		Description:    c.Description,
		Category:       string(c.Category),
		FileName:       c.File.Name,
		FileSize:       c.File.Size,
		FileType:       c.File.Type,
		Status:         string(c.Status),
		Verified:       c.Verified,
		LedgerAnchored: c.LedgerAnchored,
		Metadata:       c.Metadata,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toCredentials(credentials []*domain.Credential) []Credential {
	res := make([]Credential, 0, len(credentials))
	for _, c := range credentials {
		res = append(res, toCredential(c))
	}
	return res
}

func toVerificationResult(r *domain.VerificationResult) VerificationResult {
	res := VerificationResult{IsValid: r.IsValid, LedgerVerdict: string(r.Ledger.Kind)}
	if r.Credential != nil {
		c := toCredential(r.Credential)
		res.Credential = &c
	}
	switch {
	case r.Ledger.Credential != nil:
		lc := r.Ledger.Credential
		res.LedgerData = LedgerCredential{IsValid: lc.IsValid, Issuer: lc.Issuer, Owner: lc.Owner, Timestamp: lc.Timestamp}
	case r.Ledger.Transaction != nil:
		tx := r.Ledger.Transaction
		res.LedgerData = LedgerTransaction{
			TxnID:       tx.TxnID,
			From:        tx.From,
			To:          tx.To,
			Status:      string(tx.Status),
			BlockNumber: tx.BlockNumber,
			GasUsed:     tx.GasUsed,
		}
	}
	return res
}

func toUploadResult(r *ports.UploadResult) UploadResult {
	return UploadResult{
		FileName:       r.FileName,
		ContentID:      r.ContentID,
		ContentHash:    r.ContentHash,
		TxnID:          r.TxnID,
		CredentialID:   r.CredentialID,
		Size:           r.Size,
		GatewayURL:     r.GatewayURL,
		AllGateways:    toGatewayURLs(r.AllGateways),
		LedgerAnchored: r.LedgerAnchored,
	}
}

func toGatewayURLs(g domain.GatewayURLs) GatewayURLs {
	public := g.Public
	if public == nil {
		public = []string{}
	}
	return GatewayURLs{Primary: g.Primary, Public: public, IPFS: g.ProtocolURI}
}

func toDID(r *ports.DIDResult) DID {
	u := r.User
	res := DID{DIDID: u.DIDID, Account: u.Account, MetadataURL: r.MetadataURL}
	if u.DID != nil {
		res.DID = *u.DID
	}
	if u.MetadataRef != nil {
		res.MetadataRef = *u.MetadataRef
	}
	if u.DIDTxnID != nil {
		res.TxnID = *u.DIDTxnID
	}
	if r.Ledger != nil {
		res.LedgerData = &LedgerIdentity{
			IdentityID:  r.Ledger.IdentityID,
			MetadataRef: r.Ledger.MetadataRef,
			Name:        r.Ledger.Name,
			CreatedAt:   r.Ledger.CreatedAt,
		}
	}
	return res
}

func toUser(u *domain.User) User {
	return User{
		Account:      u.Account,
		DID:          u.DID,
		Name:         u.Profile.Name,
		Email:        u.Profile.Email,
		Organization: u.Profile.Organization,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toLogEntries(entries []*domain.LogEntry) []LogEntry {
	res := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		res = append(res, LogEntry{
			ID:            e.ID,
			EventType:     string(e.EventType),
			Account:       e.Account,
			CredentialRef: e.CredentialRef,
			ContentID:     e.ContentID,
			ContentHash:   e.ContentHash,
			TxnID:         e.TxnID,
			Details:       e.Details,
			Success:       e.Success,
			Error:         e.Error,
			CreatedAt:     e.CreatedAt,
		})
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, GenericErrorMessage{Message: message})
}
