package health

import (
	"context"
	"sync"
)

// Well known dependency names
const (
	Redis    = "redis"
	DB       = "db"
	Ethereum = "ethereum"
	IPFS     = "ipfs"
)

// Ping interface
type Ping interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to the Ping interface
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Status struct
type Status struct {
	mu      sync.RWMutex
	pingers map[string]Ping
}

// New returns a Health instance
func New() *Status {
	return &Status{pingers: make(map[string]Ping)}
}

// Register adds a dependency to be checked. A nil pinger is ignored.
func (h *Status) Register(name string, p Ping) *Status {
	if p == nil {
		return h
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pingers[name] = p
	return h
}

// Status returns whether every registered dependency is reachable or not
func (h *Status) Status(ctx context.Context) map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := make(map[string]bool, len(h.pingers))
	for key, val := range h.pingers {
		m[key] = val.Ping(ctx) == nil
	}
	return m
}
