package tutortime_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := tutortime.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

			err = tutortime.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordProducesUniqueDigests(t *testing.T) {
	first, err := tutortime.HashPassword("same password")
	require.NoError(t, err)

	second, err := tutortime.HashPassword("same password")
	require.NoError(t, err)

	// fresh salt every time
	assert.NotEqual(t, first, second)
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := tutortime.HashPassword(password)
	require.NoError(t, err)

	t.Run("correct password matches", func(t *testing.T) {
		assert.NoError(t, tutortime.ComparePasswordAndHash(password, hash))
	})

	t.Run("wrong password is a mismatch", func(t *testing.T) {
		err := tutortime.ComparePasswordAndHash("wrongPassword", hash)
		require.Error(t, err)
		assert.ErrorIs(t, err, tutortime.ErrMismatchedHashAndPassword)
	})

	t.Run("garbage digest is malformed", func(t *testing.T) {
		err := tutortime.ComparePasswordAndHash(password, "not-a-digest")
		require.Error(t, err)
		assert.ErrorIs(t, err, tutortime.ErrMalformedDigest)
	})

	t.Run("bcrypt style digest is malformed", func(t *testing.T) {
		err := tutortime.ComparePasswordAndHash(password, "$2a$10$N9qo8uLOickgx2ZMRZoMye")
		require.Error(t, err)
		assert.ErrorIs(t, err, tutortime.ErrMalformedDigest)
	})

	t.Run("degenerate parameters are malformed, not fatal", func(t *testing.T) {
		// digests that parse but would blow up key derivation
		digests := []string{
			"$argon2id$v=19$m=65536,t=0,p=4$c29tZXNhbHQ$c29tZWtleQ",
			"$argon2id$v=19$m=65536,t=1,p=0$c29tZXNhbHQ$c29tZWtleQ",
			"$argon2id$v=19$m=65536,t=1,p=4$$c29tZWtleQ",
			"$argon2id$v=19$m=65536,t=1,p=4$c29tZXNhbHQ$",
		}

		for _, digest := range digests {
			require.NotPanics(t, func() {
				err := tutortime.ComparePasswordAndHash(password, digest)
				assert.ErrorIs(t, err, tutortime.ErrMalformedDigest)
			}, digest)
		}
	})
}

func TestRandomPasswordHash(t *testing.T) {
	hash := tutortime.RandomPasswordHash()
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// nothing should ever match a random placeholder
	err := tutortime.ComparePasswordAndHash("", hash)
	assert.Error(t, err)
}
