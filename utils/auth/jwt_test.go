package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-for-verifier"

func mintToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func baseClaims() Claims {
	return Claims{
		Email:    "user@example.com",
		Name:     "Test User",
		Language: "hi",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "sankat-mitra-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifyTokenValid(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret, Issuer: "sankat-mitra-identity"})
	token := mintToken(t, baseClaims(), testSecret)

	claims, err := verifier.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "user@example.com" || claims.Language != "hi" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})
	token := mintToken(t, baseClaims(), "a-different-secret")

	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})
	claims := baseClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := mintToken(t, claims, testSecret)

	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyTokenMissingSubject(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})
	claims := baseClaims()
	claims.Subject = ""
	token := mintToken(t, claims, testSecret)

	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestVerifyTokenIssuerMismatch(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret, Issuer: "expected-issuer"})
	token := mintToken(t, baseClaims(), testSecret)

	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})
	if _, err := verifier.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
