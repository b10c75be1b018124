package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	h := New().
		Register(DB, PingFunc(func(context.Context) error { return nil })).
		Register(Redis, PingFunc(func(context.Context) error { return errors.New("down") })).
		Register(IPFS, nil)

	assert.Equal(t, map[string]bool{DB: true, Redis: false}, h.Status(context.Background()))
}
