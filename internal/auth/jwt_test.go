package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"persona-quiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

func TestJWTResolverRoundTrip(t *testing.T) {
	resolver := NewJWTResolver("secret")
	token, err := resolver.Issue("u1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := resolver.Resolve(context.Background(), token)
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1, got %q (%v)", userID, err)
	}
}

func TestJWTResolverRejects(t *testing.T) {
	resolver := NewJWTResolver("secret")
	expired, _ := resolver.Issue("u1", -time.Minute)
	foreign, _ := NewJWTResolver("other").Issue("u1", time.Minute)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("secret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"empty":      "",
		"garbage":    "not-a-jwt",
		"expired":    expired,
		"foreign":    foreign,
		"no subject": noSubject,
		"alg none":   none,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}
