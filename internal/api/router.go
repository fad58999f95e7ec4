package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/unidet/portal/docs"
	"github.com/unidet/portal/internal/api/handler"
	"github.com/unidet/portal/internal/api/middleware"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/core/service"
)

// Options wires the router to its collaborators. Sessions must resolve the
// per-browser store from the request context, as session.Contextual does.
type Options struct {
	API        ports.Dispatcher
	Sessions   ports.SessionStore
	Namespaces ports.Namespaces
	Locks      ports.SubmitLock

	RootAdminID   int64
	AssetBase     string
	CookieSecret  string
	CookieSecure  bool
	SubmitLockTTL time.Duration

	// Checks run on /health/ready.
	Checks map[string]handler.Check

	// Nil uses the default Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	log := opts.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Dependencies ---
	guard := service.NewGuard(opts.Sessions)
	authHandler := handler.NewAuthHandler(service.NewAuthService(opts.API, opts.Sessions, log), guard)
	publicHandler := handler.NewPublicHandler(service.NewPublicService(opts.API, opts.AssetBase, log))
	regulationHandler := handler.NewRegulationHandler(service.NewRegulationService(opts.API, log))
	contactHandler := handler.NewContactHandler(service.NewContactService(opts.API, log))
	userHandler := handler.NewUserHandler(service.NewAdminUserService(opts.API, opts.RootAdminID, log))

	// --- Health probes, metrics and docs (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public views ---
	publicHandler.Register(e.Group("/api"))

	// --- Administrator panel ---
	admin := e.Group(service.LoginViewPath,
		middleware.ClientSession(middleware.ClientSessionConfig{
			Secret:     opts.CookieSecret,
			Secure:     opts.CookieSecure,
			Namespaces: opts.Namespaces,
			Logger:     log,
		}),
		middleware.SubmitLock(opts.Locks, opts.SubmitLockTTL, log),
	)
	admin.GET("", authHandler.View)
	admin.GET("/login", authHandler.Alias)
	admin.POST("/login", authHandler.Login)
	admin.POST("/logout", authHandler.Logout)

	panel := admin.Group("", middleware.RequireAdmin(guard, service.Route{}))
	panel.GET("/session", authHandler.Session)
	handler.NewResourceHandler(opts.API, service.NewsResource, log).Register(panel)
	handler.NewResourceHandler(opts.API, service.EventsResource, log).Register(panel)
	handler.NewResourceHandler(opts.API, service.CoursesResource, log).Register(panel)
	handler.NewResourceHandler(opts.API, service.ServicesResource, log).Register(panel)
	handler.NewResourceHandler(opts.API, service.FAQResource, log).Register(panel)
	handler.NewResourceHandler(opts.API, service.AdmissionsResource, log).Register(panel)
	panel.POST("/courses/upload-image", handler.CourseImage(opts.API))
	regulationHandler.Register(panel)
	contactHandler.Register(panel)

	userHandler.Register(admin.Group("/users", middleware.RequireAdmin(guard, service.Route{Elevated: true})))

	return e
}
