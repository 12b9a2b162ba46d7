package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestGenerateAndValidateToken(t *testing.T) {
	accountID := uuid.New()

	token, err := GenerateToken(testSecret, accountID, "security", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, accountID.String(), claims.AccountID)
	require.Equal(t, "security", claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "admin", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(testSecret, token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "admin", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken([]byte("other-secret"), token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken(testSecret, "not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
