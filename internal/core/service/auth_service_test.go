package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
	"github.com/taskhub/taskmanager-api/pkg/password"
)

const validPassword = "Secret123"

func newTestAuthService() (*AuthService, *stubUserRepo) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, password.NewBcryptHasher(bcrypt.MinCost), stubTokens{}, zerolog.Nop())
	return svc, repo
}

func registerInput(email string) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     email,
		Password:  validPassword,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo := newTestAuthService()

	res, err := svc.Register(context.Background(), registerInput("alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", res.User.Role)
	}

	stored := repo.users[res.User.ID]
	if stored == nil {
		t.Fatalf("user was not stored")
	}
	if stored.PasswordHash == validPassword {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(validPassword)); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), registerInput("alice@example.com")); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := svc.Register(context.Background(), registerInput("alice@example.com"))
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService()

	missing := registerInput("alice@example.com")
	missing.FirstName = "  "
	badEmail := registerInput("not-an-email")
	weak := registerInput("alice@example.com")
	weak.Password = "alllowercase"

	cases := []struct {
		name string
		in   ports.RegisterInput
		want error
	}{
		{"missing field", missing, domain.ErrInvalidRegistration},
		{"bad email", badEmail, domain.ErrInvalidEmail},
		{"weak password", weak, domain.ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_CreateUser_NoToken(t *testing.T) {
	svc, repo := newTestAuthService()

	pub, err := svc.CreateUser(context.Background(), registerInput("bob@example.com"))
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if pub.Email != "bob@example.com" || pub.ID == "" {
		t.Fatalf("unexpected user: %+v", pub)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newTestAuthService()
	reg, err := svc.Register(context.Background(), registerInput("alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := svc.Login(context.Background(), "alice@example.com", validPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	p, err := stubTokens{}.Verify(res.Token)
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if p.UserID != reg.User.ID || p.Email != "alice@example.com" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if _, err := svc.Login(context.Background(), "nobody@example.com", validPassword); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice@example.com", "Wrong1234"); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuthService_Login_RehashesOutdatedCost(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, registerInput("alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	before := repo.users[reg.User.ID].PasswordHash

	stronger := NewAuthService(repo, password.NewBcryptHasher(bcrypt.MinCost+1), stubTokens{}, zerolog.Nop())
	if _, err := stronger.Login(ctx, "alice@example.com", validPassword); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	after := repo.users[reg.User.ID].PasswordHash
	if after == before {
		t.Fatalf("expected the hash to be replaced")
	}
	if cost, err := bcrypt.Cost([]byte(after)); err != nil || cost != bcrypt.MinCost+1 {
		t.Fatalf("unexpected cost %d (%v)", cost, err)
	}

	if _, err := stronger.Login(ctx, "alice@example.com", validPassword); err != nil {
		t.Fatalf("Login after rehash returned error: %v", err)
	}
	if repo.users[reg.User.ID].PasswordHash != after {
		t.Fatalf("expected no rehash at the current cost")
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, registerInput("alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	p := domain.Principal{UserID: reg.User.ID, Email: reg.User.Email, Role: reg.User.Role}

	cases := []struct {
		name string
		in   ports.ChangePasswordInput
		want error
	}{
		{"missing fields", ports.ChangePasswordInput{CurrentPassword: validPassword}, domain.ErrMissingFields},
		{"mismatch", ports.ChangePasswordInput{CurrentPassword: validPassword, NewPassword: "Another123", ConfirmPassword: "Another124"}, domain.ErrPasswordMismatch},
		{"wrong current", ports.ChangePasswordInput{CurrentPassword: "Nope12345", NewPassword: "Another123", ConfirmPassword: "Another123"}, domain.ErrCurrentPasswordIncorrect},
		{"unchanged", ports.ChangePasswordInput{CurrentPassword: validPassword, NewPassword: validPassword, ConfirmPassword: validPassword}, domain.ErrPasswordUnchanged},
		{"weak", ports.ChangePasswordInput{CurrentPassword: validPassword, NewPassword: "short", ConfirmPassword: "short"}, domain.ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.ChangePassword(ctx, p, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	err = svc.ChangePassword(ctx, p, ports.ChangePasswordInput{
		CurrentPassword: validPassword,
		NewPassword:     "Another123",
		ConfirmPassword: "Another123",
	})
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "Another123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", validPassword); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected old password to fail, got %v", err)
	}
}

func TestAuthService_ChangePassword_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()
	p := domain.Principal{UserID: "65a1b2c3d4e5f60718293a4b", Role: domain.RoleUser}

	err := svc.ChangePassword(context.Background(), p, ports.ChangePasswordInput{
		CurrentPassword: validPassword,
		NewPassword:     "Another123",
		ConfirmPassword: "Another123",
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _ := newTestAuthService()
	reg, err := svc.Register(context.Background(), registerInput("alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	pub, err := svc.Profile(context.Background(), domain.Principal{UserID: reg.User.ID})
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if pub.FirstName != "Alice" || pub.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", pub)
	}

	if _, err := svc.Profile(context.Background(), domain.Principal{UserID: "bogus"}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
