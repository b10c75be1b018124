package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pixelgenesis/credential-node/internal/common"
)

// EventType is the kind of operation recorded in the audit log
type EventType string

const (
	EventDIDCreated         EventType = "did_created"         // EventDIDCreated identity created
	EventCredentialIssued   EventType = "credential_issued"   // EventCredentialIssued credential issued
	EventCredentialVerified EventType = "credential_verified" // EventCredentialVerified credential verified
	EventCredentialRevoked  EventType = "credential_revoked"  // EventCredentialRevoked credential revoked
	EventContentUploaded    EventType = "ipfs_upload"         // EventContentUploaded document uploaded
	EventContentDownloaded  EventType = "ipfs_download"       // EventContentDownloaded document downloaded
)

// UnknownAccount is the actor recorded when an operation has no identifiable account
const UnknownAccount = "unknown"

// ParseEventType validates an event type value
func ParseEventType(s string) (EventType, bool) {
	switch et := EventType(s); et {
	case EventDIDCreated, EventCredentialIssued, EventCredentialVerified,
		EventCredentialRevoked, EventContentUploaded, EventContentDownloaded:
		return et, true
	}
	return "", false
}

// LogEntry is an immutable audit record of one operation
type LogEntry struct {
	ID            uuid.UUID
	EventType     EventType
	Account       string
	CredentialRef *uuid.UUID
	ContentID     string
	ContentHash   string
	TxnID         string
	Details       map[string]any
	Success       bool
	Error         string
	CreatedAt     time.Time
}

// NewLogEntry returns a successful entry for account
func NewLogEntry(eventType EventType, account string) *LogEntry {
	account = common.NormalizeAccount(account)
	if account == "" {
		account = UnknownAccount
	}
	return &LogEntry{
		ID:        uuid.New(),
		EventType: eventType,
		Account:   account,
		Success:   true,
		CreatedAt: time.Now().UTC(),
	}
}

// ForCredential copies the credential references into the entry
func (l *LogEntry) ForCredential(c *Credential) *LogEntry {
	if c == nil {
		return l
	}
	l.CredentialRef = common.ToPointer(c.ID)
	l.ContentID = c.ContentID
	l.ContentHash = c.ContentHash
	if c.TxnID != nil {
		l.TxnID = *c.TxnID
	}
	return l
}

// WithDetail adds a detail to the entry
func (l *LogEntry) WithDetail(key string, value any) *LogEntry {
	if l.Details == nil {
		l.Details = make(map[string]any)
	}
	l.Details[key] = value
	return l
}

// Failed marks the entry as failed with err
func (l *LogEntry) Failed(err error) *LogEntry {
	l.Success = false
	if err != nil {
		l.Error = err.Error()
	}
	return l
}
