package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, Options{Level: "warn"})

	ctx := l.WithContext(context.Background())
	InfoLog(ctx, "hidden")
	WarnLog(ctx, "shown %d", 1)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown 1", entry["message"])
}

func TestWithLogger_FieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, Options{Level: "bogus"})

	ctx := WithLogger(l.WithContext(context.Background()), map[string]interface{}{"request_id": "abc"})
	DebugLog(ctx, "debug is below the default level")
	ErrorErr(ctx, errors.New("boom"), "load failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "load failed", entry["message"])
}

func TestErrorLog_FormatsArguments(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, Options{})
	ctx := l.WithContext(context.Background())

	ErrorLog(ctx, "Server stopped: %v", errors.New("bind: address already in use"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "Server stopped: bind: address already in use", entry["message"])
	assert.NotContains(t, entry, "error")
}
