package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tcs := []struct {
		in, want string
	}{
		{"u@example.com", "***@example.com"},
		{"buyer@example.com", "bu***@example.com"},
		{"no-at-sign", "***"},
		{"a@b@c", "***"},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, Email(tc.in))
		})
	}
}

func TestToken(t *testing.T) {
	require.Equal(t, "", Token(""))
	require.Equal(t, "[REDACTED_TOKEN]", Token("a1"))
}

func TestAuthorization(t *testing.T) {
	require.Equal(t, "", Authorization(""))
	require.Equal(t, "Bearer [REDACTED_TOKEN]", Authorization("Bearer a1"))
	require.Equal(t, "[REDACTED_TOKEN]", Authorization("opaque"))
}
