package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotmarket/plot-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.Issue("user-1", "seller@example.com", domain.RoleSeller)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "seller@example.com", claims.Email)
	assert.Equal(t, domain.RoleSeller, claims.Role)
}

func TestTokenParseRejectsTampered(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, _, err := tm.Issue("user-1", "buyer@example.com", domain.RoleBuyer)
	require.NoError(t, err)

	// flip one character in the payload segment
	raw := []byte(token)
	mid := len(raw) / 2
	if raw[mid] == 'a' {
		raw[mid] = 'b'
	} else {
		raw[mid] = 'a'
	}

	_, err = tm.Parse(string(raw))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", 60)
	verifier := NewTokenManager("secret-two", 60)

	token, _, err := issuer.Issue("user-1", "buyer@example.com", domain.RoleBuyer)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenParseRejectsExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	token, _, err := tm.Issue("user-1", "buyer@example.com", domain.RoleBuyer)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Parse(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestTokenTruncationInvalidates(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, _, err := tm.Issue("user-1", "buyer@example.com", domain.RoleBuyer)
	require.NoError(t, err)

	_, err = tm.Parse(token[:len(token)-2])
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManagerDefaultsTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	assert.Equal(t, time.Hour, tm.TTL())
}
