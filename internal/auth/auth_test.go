package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	keys, err := NewKeys(testSecret)
	require.NoError(t, err)

	token, err := keys.GenerateToken("ada@example.com", RoleUser, 42)
	require.NoError(t, err)

	claims, err := keys.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, int64(42), claims.CustomerID)
}

func TestAdminTokenCarriesNoCustomerID(t *testing.T) {
	keys, err := NewKeys(testSecret)
	require.NoError(t, err)

	token, err := keys.GenerateToken("root@example.com", RoleAdmin, 42)
	require.NoError(t, err)

	claims, err := keys.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Zero(t, claims.CustomerID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	keys, err := NewKeys(testSecret)
	require.NoError(t, err)
	other, err := NewKeys("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	token, err := keys.GenerateToken("ada@example.com", RoleUser, 1)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewKeysRejectsShortSecret(t *testing.T) {
	_, err := NewKeys("too-short")
	assert.Error(t, err)
}

func TestCanAccess(t *testing.T) {
	admin := Claims{Role: RoleAdmin}
	owner := Claims{Role: RoleUser, CustomerID: 7}
	stranger := Claims{Role: RoleUser, CustomerID: 8}
	unlinked := Claims{Role: RoleUser}

	assert.True(t, CanAccess(admin, 7))
	assert.True(t, CanAccess(owner, 7))
	assert.False(t, CanAccess(stranger, 7))
	// an account with no linked customer owns nothing, not even id 0
	assert.False(t, CanAccess(unlinked, 0))
}
