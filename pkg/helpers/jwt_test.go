package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenManager_RoundTrip(t *testing.T) {
	m := NewSessionTokenManager("secret", time.Hour)

	tok, exp, err := m.Sign("abc")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	sid, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}

func TestSessionTokenManager_RejectsOtherSecret(t *testing.T) {
	tok, _, err := NewSessionTokenManager("secret", time.Hour).Sign("abc")
	require.NoError(t, err)

	_, err = NewSessionTokenManager("other", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestSessionTokenManager_RejectsTampered(t *testing.T) {
	m := NewSessionTokenManager("secret", time.Hour)
	tok, _, err := m.Sign("abc")
	require.NoError(t, err)

	_, err = m.Parse(tok + "x")
	assert.Error(t, err)
	_, err = m.Parse("garbage")
	assert.Error(t, err)
}

func TestSessionTokenManager_RejectsExpired(t *testing.T) {
	m := NewSessionTokenManager("secret", -time.Minute)
	tok, _, err := m.Sign("abc")
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.Error(t, err)
}

func TestSessionTokenManager_RejectsNoneAlg(t *testing.T) {
	claims := &SessionClaims{SessionID: "abc"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSessionTokenManager("secret", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestSessionTokenManager_RequiresSessionID(t *testing.T) {
	m := NewSessionTokenManager("secret", time.Hour)
	tok, _, err := m.Sign("")
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.Error(t, err)
}
