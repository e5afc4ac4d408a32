package api

import (
	"encoding/json/v2"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalEnvelope(t *testing.T, status string, v any) map[string]any {
	t.Helper()
	result, err := EnvelopeTransformer(nil, status, v)
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{name: "success response", status: "200", input: map[string]string{"key": "value"}},
		{name: "created response", status: "201", input: map[string]string{"id": "123"}},
		{name: "no content response", status: "204", input: nil},
		{name: "plain error", status: "400", input: errors.New("invalid input")},
		{
			name:   "api error with details",
			status: "409",
			input:  &APIError{Code: "USER_EXISTS", Message: "username taken", Details: map[string]string{"username": "asha"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := marshalEnvelope(t, tt.status, tt.input)
			assert.Equal(t, float64(EnvelopeVersion), out["v"])
		})
	}
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	out := marshalEnvelope(t, "200", map[string]string{"id": "1"})

	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "1"}, out["data"])
	assert.NotContains(t, out, "error")
	assert.NotContains(t, out, "code")
}

func TestEnvelopeTransformer_NullData(t *testing.T) {
	out := marshalEnvelope(t, "204", nil)

	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeTransformer_APIError(t *testing.T) {
	out := marshalEnvelope(t, "400", &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: []string{"title is required"},
	})

	assert.Equal(t, false, out["success"])
	assert.Equal(t, "VALIDATION", out["code"])
	assert.Equal(t, "validation failed", out["error"])
	assert.Equal(t, "validation failed", out["message"])
	assert.Equal(t, []any{"title is required"}, out["details"])
}

func TestEnvelopeTransformer_PlainError(t *testing.T) {
	out := marshalEnvelope(t, "500", errors.New("boom"))

	assert.Equal(t, false, out["success"])
	assert.Equal(t, "boom", out["error"])
	assert.NotContains(t, out, "code")
}

func TestStatusToCode(t *testing.T) {
	tests := map[int]string{
		400: "VALIDATION",
		401: "UNAUTHORIZED",
		404: "NOT_FOUND",
		409: "ALREADY_EXISTS",
		422: "VALIDATION",
		429: "RATE_LIMITED",
		500: "INTERNAL",
	}
	for status, want := range tests {
		assert.Equal(t, want, statusToCode(status), "status %d", status)
	}
}
