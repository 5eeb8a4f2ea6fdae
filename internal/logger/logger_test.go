package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFields_CarriesRequestScope(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "json")

	ctx := WithFields(context.Background(), "request_id", "abc", "tenant_id", int32(4))
	InfoContext(ctx, "payment recorded", "booking_id", 9)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "payment recorded", line["msg"])
	assert.Equal(t, "abc", line["request_id"])
	assert.Equal(t, float64(4), line["tenant_id"])
	assert.Equal(t, float64(9), line["booking_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "warn", "text")

	Info("hidden")
	EnterMethod("svc.Method")
	assert.Empty(t, buf.String())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext_DefaultsToGlobal(t *testing.T) {
	Initialize("info", "text")
	assert.Same(t, Get(), FromContext(context.Background()))
}
