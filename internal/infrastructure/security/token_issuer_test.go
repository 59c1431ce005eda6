package security

import (
	"errors"
	"testing"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/pkg/token"
)

func newTestIssuer(t *testing.T, secret string) *TokenIssuer {
	t.Helper()
	iss, err := token.NewIssuer(token.Config{Secret: secret})
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}
	return NewTokenIssuer(iss)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	iss := newTestIssuer(t, "secret")

	raw, err := iss.Issue("65a1b2c3d4e5f60718293a4b", "alice@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	p, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if p.UserID != "65a1b2c3d4e5f60718293a4b" || p.Email != "alice@example.com" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestTokenIssuer_VerifyFailureIsUnauthorized(t *testing.T) {
	raw, err := newTestIssuer(t, "one").Issue("65a1b2c3d4e5f60718293a4b", "a@b.co", domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = newTestIssuer(t, "two").Verify(raw)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !errors.Is(err, token.ErrSignature) {
		t.Fatalf("expected wrapped ErrSignature, got %v", err)
	}
}
