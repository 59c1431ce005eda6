package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taskhub/taskmanager-api/internal/api/handler"
	"github.com/taskhub/taskmanager-api/internal/api/middleware"
	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

// Services is the container of everything the routes call into.
type Services struct {
	Auth   ports.AuthService
	Tasks  ports.TaskService
	Tokens ports.TokenIssuer
	// Limiter guards the unauthenticated auth routes. Nil disables it.
	Limiter middleware.Limiter
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
}

// Options carries the transport settings of the router.
type Options struct {
	Prefix        string
	CORSOrigins   []string
	SecureCookies bool
	Cookie        handler.CookieOptions
	ServiceName   string
	Logger        zerolog.Logger
	// Registry receives the HTTP request metrics. Defaults to the global
	// Prometheus registry, which also holds the domain metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "taskmanager-api"
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Tracing(serviceName))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !allowsAnyOrigin(opts.CORSOrigins),
	}))

	// --- Operational endpoints (never prefixed) ---
	healthHandler := handler.NewHealthHandler(svc.Checks)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness)     // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	cookie := opts.Cookie
	cookie.Secure = opts.SecureCookies
	authHandler := handler.NewAuthHandler(svc.Auth, cookie)
	userHandler := handler.NewUserHandler(svc.Auth)
	taskHandler := handler.NewTaskHandler(svc.Tasks)

	authenticated := []echo.MiddlewareFunc{
		middleware.Authenticate(svc.Tokens),
		middleware.RBAC(domain.RoleUser, domain.RoleAdmin),
	}
	limited := middleware.RateLimit(svc.Limiter, opts.Logger)

	root := e.Group(opts.Prefix)
	root.GET("/", handler.Hello)
	root.POST("/signup", userHandler.Signup, limited)

	// --- Auth routes ---
	auth := root.Group("/auth")
	auth.POST("/login", authHandler.Login, limited)
	auth.POST("/register", authHandler.Register, limited)
	auth.POST("/change-password", authHandler.ChangePassword, authenticated...)
	auth.POST("/logout", authHandler.Logout, authenticated...)

	// --- User routes ---
	users := root.Group("/users")
	users.POST("/register", userHandler.Register, limited)
	users.PUT("/password", userHandler.ChangePassword, authenticated...)
	users.GET("/profile", userHandler.Profile, authenticated...)

	// --- Task routes (static paths before :id) ---
	tasks := root.Group("/tasks", authenticated...)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.GET("/recent", taskHandler.Recent)
	tasks.GET("/date-range", taskHandler.ByDateRange)
	tasks.GET("/status/:status", taskHandler.ByStatus)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	return e
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
