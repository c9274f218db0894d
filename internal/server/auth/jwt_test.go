package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", secret, time.Minute)
	require.NoError(t, err)

	userID, err := GetUserIDFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestExpiredTokenMapsToUnauthorized(t *testing.T) {
	token, err := GenerateToken("user-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, secret)
	require.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestGarbageTokenIsInvalid(t *testing.T) {
	_, err := GetUserIDFromToken("not-a-token", secret)
	require.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestWrongKeyIsInvalid(t *testing.T) {
	token, err := GenerateToken("user-1", secret, time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("other-secret"))
	require.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "hunter2"))
	require.False(t, CheckPassword(hash, "hunter3"))
}
