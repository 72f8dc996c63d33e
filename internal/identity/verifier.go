// Package identity verifies bearer tokens minted by the external identity
// provider and exposes the verified principal to the rest of the service.
package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified principal behind a request token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

var ErrInvalidToken = errors.New("invalid token")

// Verifier validates an opaque bearer token with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens signed with the provider's shared secret.
type JWTVerifier struct {
	Secret string
}

var _ Verifier = (*JWTVerifier)(nil)

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: secret}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.Secret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
