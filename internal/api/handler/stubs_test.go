package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskmanager-api/internal/api/middleware"
	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

const testUserID = "65a1b2c3d4e5f60718293a4b"

var testPrincipal = domain.Principal{UserID: testUserID, Email: "alice@example.com", Role: domain.RoleUser}

type stubAuthService struct {
	loginFn          func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	createUserFn     func(ctx context.Context, in ports.RegisterInput) (*domain.PublicUser, error)
	changePasswordFn func(ctx context.Context, p domain.Principal, in ports.ChangePasswordInput) error
	profileFn        func(ctx context.Context, p domain.Principal) (*domain.PublicUser, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) CreateUser(ctx context.Context, in ports.RegisterInput) (*domain.PublicUser, error) {
	return s.createUserFn(ctx, in)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, p domain.Principal, in ports.ChangePasswordInput) error {
	return s.changePasswordFn(ctx, p, in)
}

func (s *stubAuthService) Profile(ctx context.Context, p domain.Principal) (*domain.PublicUser, error) {
	return s.profileFn(ctx, p)
}

type stubTaskService struct {
	createFn      func(ctx context.Context, p domain.Principal, in ports.CreateTaskInput) (*domain.Task, error)
	listFn        func(ctx context.Context, p domain.Principal) ([]domain.Task, error)
	getFn         func(ctx context.Context, p domain.Principal, id string) (*domain.Task, error)
	updateFn      func(ctx context.Context, p domain.Principal, id string, patch domain.TaskPatch) (*domain.Task, error)
	deleteFn      func(ctx context.Context, p domain.Principal, id string) error
	byDateRangeFn func(ctx context.Context, p domain.Principal, start, end time.Time) ([]domain.Task, error)
	byStatusFn    func(ctx context.Context, p domain.Principal, status string) ([]domain.Task, error)
	recentFn      func(ctx context.Context, p domain.Principal, limit int) ([]domain.Task, error)
	statisticsFn  func(ctx context.Context, p domain.Principal) (*domain.TaskStatistics, error)
}

func (s *stubTaskService) Create(ctx context.Context, p domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubTaskService) List(ctx context.Context, p domain.Principal) ([]domain.Task, error) {
	return s.listFn(ctx, p)
}

func (s *stubTaskService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Task, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubTaskService) Update(ctx context.Context, p domain.Principal, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return s.updateFn(ctx, p, id, patch)
}

func (s *stubTaskService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

func (s *stubTaskService) ByDateRange(ctx context.Context, p domain.Principal, start, end time.Time) ([]domain.Task, error) {
	return s.byDateRangeFn(ctx, p, start, end)
}

func (s *stubTaskService) ByStatus(ctx context.Context, p domain.Principal, status string) ([]domain.Task, error) {
	return s.byStatusFn(ctx, p, status)
}

func (s *stubTaskService) Recent(ctx context.Context, p domain.Principal, limit int) ([]domain.Task, error) {
	return s.recentFn(ctx, p, limit)
}

func (s *stubTaskService) Statistics(ctx context.Context, p domain.Principal) (*domain.TaskStatistics, error) {
	return s.statisticsFn(ctx, p)
}

// newContext builds an echo context with the validator installed and, when
// authed is true, the test principal attached.
func newContext(method, target string, body io.Reader, authed bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authed {
		middleware.WithPrincipal(c, testPrincipal)
	}
	return c, rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
