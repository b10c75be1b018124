package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAddsAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := NewContext(context.Background(), LevelDebug, OutputJSON, buf)
	ctx = With(ctx, "credential", "abc")

	Info(ctx, "issued", "owner", "0xab")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "issued", line["msg"])
	assert.Equal(t, "abc", line["credential"])
	assert.Equal(t, "0xab", line["owner"])
}

func TestLevelFiltersMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := NewContext(context.Background(), LevelWarn, OutputText, buf)

	Debug(ctx, "hidden")
	Info(ctx, "hidden too")
	assert.Empty(t, buf.String())

	Warn(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestCopyFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	orig := With(NewContext(context.Background(), LevelInfo, OutputText, buf), "req", "1")
	dest := CopyFromContext(orig, context.Background())

	Error(dest, "boom")
	assert.Contains(t, buf.String(), "req=1")
	assert.Contains(t, buf.String(), "boom")
}
