package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("Admin@123")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	require.NotEqual(t, "Admin@123", hashed)

	ok, err := CheckPassword(hashed, "Admin@123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckPassword_Mismatch(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("Admin@123")
	require.NoError(t, err)

	ok, err := CheckPassword(hashed, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPassword_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("Admin@123")
	require.NoError(t, err)
	h2, err := HashPassword("Admin@123")
	require.NoError(t, err)

	// Salt is embedded, so two hashes of the same password differ but both verify.
	assert.NotEqual(t, h1, h2)

	ok, err := CheckPassword(h2, "Admin@123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckPassword_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stored string
	}{
		{name: "empty", stored: ""},
		{name: "garbage", stored: "not-a-bcrypt-hash"},
		{name: "truncated", stored: "$2a$10$short"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := CheckPassword(tt.stored, "Admin@123")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidHash)
			assert.False(t, ok)
		})
	}
}
