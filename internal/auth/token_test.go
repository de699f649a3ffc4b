package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret")

	token, err := tm.GenerateToken("S1", "U1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "S1", claims.SessionID)
	assert.Equal(t, "U1", claims.Subject)
}

func TestTokenManager_RejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret")

	expired, err := tm.GenerateToken("S1", "U1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = tm.ParseToken(expired)
	assert.Error(t, err)

	foreign, err := NewTokenManager("other").GenerateToken("S1", "U1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.Error(t, err)

	_, err = tm.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenManager_RequiresSessionID(t *testing.T) {
	_, err := NewTokenManager("secret").GenerateToken("", "U1", time.Now().Add(time.Hour))
	assert.Error(t, err)
}
