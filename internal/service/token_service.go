package service

import (
	"errors"
	"fmt"
	"time"

	"vault-engine/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OperatorTokenService issues the HS256 bearer tokens that gate operator
// routes such as the faucet. The subject is the operator's username and the
// token id names the login session in the audit trail.
type OperatorTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewOperatorTokenService creates an OperatorTokenService.
func NewOperatorTokenService(secret string, expiry time.Duration, issuer string) *OperatorTokenService {
	return &OperatorTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// Generate signs a session token for operator.
func (s *OperatorTokenService) Generate(operator string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   operator,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing operator token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, issuer and expiry and returns the session.
func (s *OperatorTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing operator token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("operator token has no subject")
	}

	return &ports.TokenClaims{Subject: claims.Subject, SessionID: claims.ID}, nil
}
