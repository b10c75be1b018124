package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// AuditService reads the event log
type AuditService interface {
	List(ctx context.Context, filter LogFilter) ([]*domain.LogEntry, error)
}

// ReconcilerService anchors on the ledger the credentials issued while it was unavailable
type ReconcilerService interface {
	AnchorPending(ctx context.Context) (anchored int, err error)
	AnchorOne(ctx context.Context, contentHash string) error
}
