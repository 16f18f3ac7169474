package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// VerifierConfig holds token verification configuration. Tokens are minted
// by the external identity service; this side only checks them.
type VerifierConfig struct {
	Secret string
	Issuer string
}

// Claims represents the identity claims this service consumes. The token
// subject is the opaque user id everything else keys off.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates identity-service tokens
type Verifier struct {
	config VerifierConfig
}

// NewVerifier creates a new token verifier
func NewVerifier(config VerifierConfig) *Verifier {
	return &Verifier{config: config}
}

// VerifyToken validates a JWT token and returns its claims
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	if v.config.Issuer != "" && claims.Issuer != v.config.Issuer {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
