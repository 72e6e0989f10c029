package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTAuthenticator signs and verifies HS256 tokens for a single issuer and
// audience. Each token kind uses its own secret.
type JWTAuthenticator struct {
	issuer   string
	audience string
	parser   *jwt.Parser
}

func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		issuer:   issuer,
		audience: audience,
		parser: jwt.NewParser(
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithAudience(audience),
			jwt.WithIssuer(issuer),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		),
	}
}

// Registered fills the standard claims of a token identified by id, issued to
// subject at now and valid for ttl.
func (a JWTAuthenticator) Registered(subject, id string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        id,
		Subject:   subject,
		Issuer:    a.issuer,
		Audience:  jwt.ClaimStrings{a.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (a JWTAuthenticator) Sign(claims jwt.Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify checks signature, issuer, audience and expiry, and decodes the token
// into claims. Every failure wraps ErrInvalidToken; expiry also matches
// jwt.ErrTokenExpired.
func (a JWTAuthenticator) Verify(token, secret string, claims jwt.Claims) error {
	key := []byte(secret)
	if _, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return nil
}
