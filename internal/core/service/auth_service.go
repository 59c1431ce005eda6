package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
	"github.com/taskhub/taskmanager-api/internal/pkg/metrics"
	"github.com/taskhub/taskmanager-api/pkg/password"
)

var tracer = otel.Tracer("github.com/taskhub/taskmanager-api/internal/core/service")

// AuthService implements login, registration and password change.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// Login verifies credentials and issues a token. A missing account and a
// wrong password are reported with different errors.
func (s *AuthService) Login(ctx context.Context, email, pw string) (*ports.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record("login", "invalid_email")
			return nil, domain.ErrInvalidEmail
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "find user")
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(pw, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash could not be verified")
		return nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		s.record("login", "invalid_password")
		return nil, domain.ErrInvalidPassword
	}

	s.rehash(ctx, user, pw)

	result, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.record("login", "success")
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

// rehash upgrades a hash made with an outdated cost. Failures are logged and
// never fail the login.
func (s *AuthService) rehash(ctx context.Context, user *domain.User, pw string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(pw)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash not stored")
		return
	}
	user.PasswordHash = hash
	s.log.Info().Str("user_id", user.ID).Msg("password hash upgraded")
}

// Register creates an account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	user, err := s.createUser(ctx, in)
	if err != nil {
		s.record("register", outcome(err))
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.record("register", "success")
	return result, nil
}

// CreateUser creates an account without issuing a token.
func (s *AuthService) CreateUser(ctx context.Context, in ports.RegisterInput) (*domain.PublicUser, error) {
	ctx, span := tracer.Start(ctx, "AuthService.CreateUser")
	defer span.End()

	user, err := s.createUser(ctx, in)
	if err != nil {
		s.record("signup", outcome(err))
		return nil, err
	}
	s.record("signup", "success")

	pub := user.Public()
	return &pub, nil
}

func (s *AuthService) createUser(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidRegistration
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if err := password.ValidatePolicy(in.Password); err != nil {
		return nil, domain.ErrWeakPassword
	}

	// Fast path only; the unique index on email is the real guard.
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// ChangePassword replaces the principal's password. Existing tokens stay
// valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, p domain.Principal, in ports.ChangePasswordInput) error {
	ctx, span := tracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	err := s.changePassword(ctx, p, in)
	s.record("change_password", outcome(err))
	return err
}

func (s *AuthService) changePassword(ctx context.Context, p domain.Principal, in ports.ChangePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return domain.ErrMissingFields
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}

	userID, err := domain.ParseID(p.UserID)
	if err != nil {
		return err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(in.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: verify current: %w", err)
	}
	if !ok {
		return domain.ErrCurrentPasswordIncorrect
	}

	same, err := s.hasher.Verify(in.NewPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: verify new: %w", err)
	}
	if same {
		return domain.ErrPasswordUnchanged
	}

	if err := password.ValidatePolicy(in.NewPassword); err != nil {
		return domain.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// Profile returns the principal's public view.
func (s *AuthService) Profile(ctx context.Context, p domain.Principal) (*domain.PublicUser, error) {
	userID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	tkn, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{Token: tkn, User: user.Public()}, nil
}

func (s *AuthService) record(operation, result string) {
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}

// outcome turns an error into a short metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmailExists):
		return "conflict"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCurrentPasswordIncorrect):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidRegistration),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrPasswordUnchanged),
		errors.Is(err, domain.ErrInvalidID):
		return "invalid"
	default:
		return "error"
	}
}
