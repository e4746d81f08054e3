package push

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "standard base64 with padding",
			in:       "ab+c/d==",
			expected: "ab-c_d",
		},
		{
			name:     "already url-safe",
			in:       "ab-c_d",
			expected: "ab-c_d",
		},
		{
			name:     "surrounding whitespace",
			in:       "  AQIDBA==\n",
			expected: "AQIDBA",
		},
		{
			name:     "empty",
			in:       "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeKey(tc.in))
		})
	}
}

func TestPayloadMarshal(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("defaults timestamp to now", func(t *testing.T) {
		b, err := Payload{Title: "hello"}.Marshal(now)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, "hello", decoded["title"])
		assert.EqualValues(t, now.UnixMilli(), decoded["timestamp"])
	})

	t.Run("keeps explicit timestamp", func(t *testing.T) {
		b, err := Payload{Title: "hello", Timestamp: 42}.Marshal(now)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.EqualValues(t, 42, decoded["timestamp"])
	})

	t.Run("omits empty fields", func(t *testing.T) {
		b, err := Payload{Title: "hello"}.Marshal(now)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "icon")
		assert.NotContains(t, string(b), "vibrate")
	})

	t.Run("rejects oversized payloads", func(t *testing.T) {
		_, err := Payload{Title: "hello", Body: strings.Repeat("x", maxPayloadBytes)}.Marshal(now)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})
}
