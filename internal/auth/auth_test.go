package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestVerifyRoundTrip(t *testing.T) {
	tok, err := Sign(secret, "authenticated", User{ID: "user-1", Email: "ada@example.com", Name: "Ada Lovelace"}, time.Hour)
	require.NoError(t, err)

	u, err := NewVerifier(secret, "authenticated").Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: "user-1", Email: "ada@example.com", Name: "Ada Lovelace"}, u)
}

func TestVerifyNameFallsBackToEmail(t *testing.T) {
	tok, err := Sign(secret, "", User{ID: "user-1", Email: "ada@example.com"}, time.Hour)
	require.NoError(t, err)

	u, err := NewVerifier(secret, "").Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Name)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(secret, "authenticated")
	user := User{ID: "user-1", Email: "ada@example.com"}

	wrongKey, err := Sign("other-secret", "authenticated", user, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongKey)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := Sign(secret, "authenticated", user, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAud, err := Sign(secret, "service_role", user, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongAud)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := Sign(secret, "authenticated", User{Email: "x@example.com"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewVerifier("", "").Verify(wrongKey)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewVerifier(secret, "").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
