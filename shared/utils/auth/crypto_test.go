package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("SecurePassword123!")
	require.NoError(t, err)

	assert.NotEqual(t, "SecurePassword123!", hash)
	assert.True(t, CheckPasswordHash("SecurePassword123!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(16)
	require.NoError(t, err)
	b, err := GenerateRandomToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("Admin", "name", 1, 100))
	assert.EqualError(t, ValidateLength("  ", "name", 1, 100), "name must be at least 1 characters")
	assert.EqualError(t, ValidateLength("abcdef", "name", 1, 5), "name must be at most 5 characters")
	assert.NoError(t, ValidateLength("çğüşöı", "name", 1, 6), "length counts runes")
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("admin@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Admin <admin@example.com>"))
}
