package types

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", DebugLevel, true},
		{"INFO", InfoLevel, true},
		{"warning", WarnLevel, true},
		{" error ", ErrorLevel, true},
		{"fatal", FatalLevel, true},
		{"verbose", InfoLevel, false},
		{"", InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestLevelText(t *testing.T) {
	assert.Equal(t, "warn", WarnLevel.String())
	assert.Equal(t, "info", LogLevel(42).String())

	data, err := json.Marshal(map[string]LogLevel{"level": ErrorLevel})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"error"}`, string(data))

	var l LogLevel
	require.NoError(t, l.UnmarshalText([]byte("DEBUG")))
	assert.Equal(t, DebugLevel, l)
	assert.Error(t, l.UnmarshalText([]byte("loud")))
}

func TestContextFields(t *testing.T) {
	assert.Nil(t, FieldsFromContext(context.Background()))

	ctx := ContextWithFields(context.Background(), map[string]interface{}{"request_id": "r1"})
	ctx = ContextWithFields(ctx, map[string]interface{}{"session_id": "s1"})

	assert.Equal(t, map[string]interface{}{"request_id": "r1", "session_id": "s1"}, FieldsFromContext(ctx))

	ctx = ContextWithFields(ctx, map[string]interface{}{"request_id": "r2"})
	assert.Equal(t, "r2", FieldsFromContext(ctx)["request_id"])
}
