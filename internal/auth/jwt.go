package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// IdentityResolver turns a bearer credential into the id of the user it was issued to.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, bearerToken string) (string, error)
}

type UserClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 access tokens issued by the hosted auth backend.
type JWTResolver struct {
	secret   []byte
	audience string
}

func NewJWTResolver(secret, audience string) *JWTResolver {
	return &JWTResolver{
		secret:   []byte(secret),
		audience: audience,
	}
}

func (r *JWTResolver) ResolveUser(ctx context.Context, bearerToken string) (string, error) {
	tok := strings.TrimSpace(bearerToken)
	if tok == "" {
		return "", ErrMissingToken
	}
	if len(r.secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if r.audience != "" {
		opts = append(opts, jwt.WithAudience(r.audience))
	}

	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
