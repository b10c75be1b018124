package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

// AuditLogInMemory keeps the event log in memory. Entries exposes what was written so tests
// can assert on it.
type AuditLogInMemory struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
}

// NewAuditLogInMemory returns an empty in memory event log
func NewAuditLogInMemory() *AuditLogInMemory {
	return &AuditLogInMemory{}
}

// Save appends entry
func (r *AuditLogInMemory) Save(_ context.Context, entry *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *entry
	stored.Account = common.NormalizeAccount(entry.Account)
	r.entries = append(r.entries, stored)
	return nil
}

// List returns the entries matching filter, newest first
func (r *AuditLogInMemory) List(_ context.Context, filter ports.LogFilter) ([]*domain.LogEntry, error) {
	account := common.NormalizeAccount(filter.Account)
	matched := make([]*domain.LogEntry, 0)
	for _, e := range r.Entries() {
		if account != "" && e.Account != account {
			continue
		}
		if filter.EventType != nil && e.EventType != *filter.EventType {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	limit, offset := pageBounds(filter)
	if offset >= len(matched) {
		return []*domain.LogEntry{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Entries returns every entry in insertion order
func (r *AuditLogInMemory) Entries() []*domain.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*domain.LogEntry, 0, len(r.entries))
	for i := range r.entries {
		e := r.entries[i]
		res = append(res, &e)
	}
	return res
}
