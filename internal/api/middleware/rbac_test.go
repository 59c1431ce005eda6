package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

func TestRBAC(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed bool
	}{
		{"user", domain.RoleUser, true},
		{"admin", domain.RoleAdmin, true},
		{"unknown", "guest", false},
		{"missing", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tc.role != "" {
				WithPrincipal(c, domain.Principal{UserID: testUserID, Role: tc.role})
			}

			called := false
			err := RBAC(domain.RoleUser, domain.RoleAdmin)(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			if called != tc.allowed {
				t.Fatalf("expected called=%v, got %v", tc.allowed, called)
			}
			if !tc.allowed && !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}
