// Package security adapts the credential primitives in pkg/ to the core ports.
package security

import (
	"fmt"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/pkg/token"
)

// TokenIssuer exposes a token.Issuer as a ports.TokenIssuer.
type TokenIssuer struct {
	issuer *token.Issuer
}

func NewTokenIssuer(issuer *token.Issuer) *TokenIssuer {
	return &TokenIssuer{issuer: issuer}
}

func (t *TokenIssuer) Issue(subjectID, email, role string) (string, error) {
	return t.issuer.Issue(subjectID, email, role)
}

// Verify validates raw and returns its principal. The underlying token error
// is wrapped so callers can still inspect it.
func (t *TokenIssuer) Verify(raw string) (*domain.Principal, error) {
	claims, err := t.issuer.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return &domain.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
