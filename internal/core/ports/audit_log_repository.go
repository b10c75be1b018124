package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// Audit log pagination bounds
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 1000
)

// LogFilter selects audit entries. Empty fields are not applied.
type LogFilter struct {
	Account   string
	EventType *domain.EventType
	Limit     int
	Offset    int
}

// AuditLogRepository is the append only event log
type AuditLogRepository interface {
	Save(ctx context.Context, entry *domain.LogEntry) error
	List(ctx context.Context, filter LogFilter) ([]*domain.LogEntry, error)
}
