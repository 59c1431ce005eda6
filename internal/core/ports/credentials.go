package ports

import "github.com/taskhub/taskmanager-api/internal/core/domain"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A malformed hash yields
	// an error, never a silent mismatch.
	Verify(password, hash string) (bool, error)
	// NeedsRehash reports whether hash was created with different parameters.
	NeedsRehash(hash string) bool
}

// TokenIssuer creates and verifies bearer tokens.
type TokenIssuer interface {
	Issue(subjectID, email, role string) (string, error)
	// Verify returns the principal encoded in raw. Any failure means the
	// caller is unauthenticated.
	Verify(raw string) (*domain.Principal, error)
}
