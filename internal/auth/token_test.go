package auth

import (
	"testing"

	"dealroom_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Init("test-secret", 1)

	token, err := GenerateToken("user-1", models.RoleEscrow)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleEscrow, claims.Role)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	Init("test-secret", 1)

	_, err := ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	Init("secret-a", 1)
	token, err := GenerateToken("user-1", models.RoleClient)
	require.NoError(t, err)

	Init("secret-b", 1)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
