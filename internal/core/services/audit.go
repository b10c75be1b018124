package services

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
)

// Audit reads the event log
type Audit struct {
	repo ports.AuditLogRepository
}

// NewAudit returns the audit service
func NewAudit(repo ports.AuditLogRepository) ports.AuditService {
	return &Audit{repo: repo}
}

// List returns the entries matching filter, newest first
func (a *Audit) List(ctx context.Context, filter ports.LogFilter) ([]*domain.LogEntry, error) {
	if filter.Limit < 0 || filter.Limit > ports.MaxLogLimit {
		return nil, newValidationError("limit must be between 0 and %d", ports.MaxLogLimit)
	}
	if filter.Offset < 0 {
		return nil, newValidationError("offset must be positive")
	}
	return a.repo.List(ctx, filter)
}

// recorder appends entries to the event log. A failed append is logged and never fails the
// operation being recorded.
type recorder struct {
	repo ports.AuditLogRepository
}

func (r recorder) record(ctx context.Context, entry *domain.LogEntry) {
	if err := r.repo.Save(ctx, entry); err != nil {
		log.Error(ctx, "cannot append log entry", "err", err, "event", entry.EventType, "account", entry.Account)
	}
}
