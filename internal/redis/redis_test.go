package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)

	rdb, err := Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	assert.NoError(t, Wrapper{rdb}.Ping(ctx))

	s.Close()
	assert.Error(t, Wrapper{rdb}.Ping(ctx))
}

func TestOpenInvalidURL(t *testing.T) {
	_, err := Open(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
