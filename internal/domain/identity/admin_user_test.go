package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAdminUser(t *testing.T) {
	t.Run("hashes the password", func(t *testing.T) {
		u, err := newAdminUser(" admin ", "admin123", bcrypt.MinCost)
		require.NoError(t, err)

		assert.Equal(t, "admin", u.Username)
		assert.NotEqual(t, "admin123", u.PasswordHash)
		assert.True(t, u.VerifyPassword("admin123"))
		assert.False(t, u.VerifyPassword("admin124"))
	})

	tests := []struct {
		name     string
		username string
		password string
		contains string
	}{
		{"empty username", "", "admin123", "Username cannot be empty"},
		{"short username", "ab", "admin123", "at least 3"},
		{"invalid characters", "ad min", "admin123", "can only contain"},
		{"short password", "admin", "a1", "at least 8"},
		{"password without digit", "admin", "adminadmin", "one letter and one number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAdminUser(tt.username, tt.password, bcrypt.MinCost)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestAdminUser_RecordLogin(t *testing.T) {
	u, err := newAdminUser("admin", "admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)

	u.RecordLogin()
	require.NotNil(t, u.LastLoginAt)
}
