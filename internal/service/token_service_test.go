package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func TestOperatorTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewOperatorTokenService(testJWTSecret, 24*time.Hour, "test-issuer")

	tokenStr, expiresAt, err := svc.Generate("operator")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.NotEmpty(t, claims.SessionID)

	// Each login is its own session.
	other, _, err := svc.Generate("operator")
	require.NoError(t, err)
	otherClaims, err := svc.Validate(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.SessionID, otherClaims.SessionID)
}

func TestOperatorTokenService_ExpiredToken(t *testing.T) {
	svc := NewOperatorTokenService(testJWTSecret, -1*time.Hour, "test-issuer")

	tokenStr, _, err := svc.Generate("operator")
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestOperatorTokenService_InvalidSignature(t *testing.T) {
	svc1 := NewOperatorTokenService("secret-1", 24*time.Hour, "issuer")
	svc2 := NewOperatorTokenService("secret-2", 24*time.Hour, "issuer")

	tokenStr, _, err := svc1.Generate("operator")
	require.NoError(t, err)

	_, err = svc2.Validate(tokenStr)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestOperatorTokenService_WrongIssuer(t *testing.T) {
	tokenStr, _, err := NewOperatorTokenService(testJWTSecret, time.Hour, "other").Generate("operator")
	require.NoError(t, err)

	_, err = NewOperatorTokenService(testJWTSecret, time.Hour, "vault-engine").Validate(tokenStr)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestOperatorTokenService_RejectsForeignTokens(t *testing.T) {
	svc := NewOperatorTokenService(testJWTSecret, time.Hour, "vault-engine")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testJWTSecret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"other hmac algorithm", sign(jwt.SigningMethodHS384, jwt.RegisteredClaims{Subject: "operator", Issuer: "vault-engine", ExpiresAt: future})},
		{"no expiry", sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "operator", Issuer: "vault-engine"})},
		{"no subject", sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "vault-engine", ExpiresAt: future})},
		{"garbage", "not.a.valid.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}
