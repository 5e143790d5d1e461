package kvstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/kvstore"
)

func TestEntry_StringRoundTrip(t *testing.T) {
	t.Parallel()

	entry := kvstore.NewString("a1-access-token")
	require.Equal(t, kvstore.KindString, entry.Kind)

	s, err := entry.Text()
	require.NoError(t, err)
	assert.Equal(t, "a1-access-token", s)
}

func TestEntry_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	type profile struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}

	entry, err := kvstore.NewJSON(profile{ID: "1", Username: "nanny"})
	require.NoError(t, err)
	require.Equal(t, kvstore.KindJSON, entry.Kind)

	var got profile
	require.NoError(t, entry.Decode(&got))
	assert.Equal(t, profile{ID: "1", Username: "nanny"}, got)
}

func TestEntry_KindMismatch(t *testing.T) {
	t.Parallel()

	t.Run("text on json entry", func(t *testing.T) {
		t.Parallel()

		entry, err := kvstore.NewJSON(map[string]string{"id": "1"})
		require.NoError(t, err)

		_, err = entry.Text()
		assert.ErrorIs(t, err, kvstore.ErrKindMismatch)
	})

	t.Run("decode on string entry", func(t *testing.T) {
		t.Parallel()

		entry := kvstore.NewString("plain")
		var dst map[string]string
		assert.ErrorIs(t, entry.Decode(&dst), kvstore.ErrKindMismatch)
	})
}

func TestEncode_Decode(t *testing.T) {
	t.Parallel()

	entry, err := kvstore.NewJSON([]string{"a", "b"})
	require.NoError(t, err)

	raw, err := kvstore.Encode(entry)
	require.NoError(t, err)

	decoded, err := kvstore.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestDecode_LegacyValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		kind kvstore.Kind
	}{
		{name: "bare json object", raw: `{"id":"1","username":"nanny"}`, kind: kvstore.KindJSON},
		{name: "bare json array", raw: `["x","y"]`, kind: kvstore.KindJSON},
		{name: "plain string", raw: "some-token-value", kind: kvstore.KindString},
		{name: "brace-prefixed garbage stays a string", raw: "{not json at all", kind: kvstore.KindString},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entry, err := kvstore.Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, entry.Kind)

			if tt.kind == kvstore.KindString {
				s, err := entry.Text()
				require.NoError(t, err)
				assert.Equal(t, tt.raw, s)
			}
		})
	}
}

func TestDecode_LegacyJSONPayloadPreserved(t *testing.T) {
	t.Parallel()

	entry, err := kvstore.Decode([]byte(`{"id":"1","username":"nanny","email":"e@x.com"}`))
	require.NoError(t, err)

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, entry.Decode(&user))
	assert.Equal(t, "nanny", user.Username)
	assert.Equal(t, "e@x.com", user.Email)
}
