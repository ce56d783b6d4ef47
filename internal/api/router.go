package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/aimatch/portal/docs"
	"github.com/aimatch/portal/internal/api/handler"
	"github.com/aimatch/portal/internal/api/middleware"
	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/permission"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/infrastructure/http/handlers"
)

// SessionBackend is the session service as seen by the transport: the
// operations handlers call plus the hooks the session middleware needs.
type SessionBackend interface {
	ports.SessionService
	middleware.SessionResolver
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions    SessionBackend
	Enterprises ports.EnterpriseService
	Wizards     ports.WizardService
	Submissions ports.SubmissionService
	Readiness   *handlers.HealthDependenciesHandler
	JWTSecret   string
	Logger      zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.Readiness == nil {
		d.Readiness = handlers.NewHealthDependenciesHandler()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: d.Registerer,
		Skipper:    skipInfra,
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", d.Readiness.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Sessions)
	enterpriseHandler := handler.NewEnterpriseHandler(d.Enterprises)
	wizardHandler := handler.NewWizardHandler(d.Wizards)
	submissionHandler := handler.NewSubmissionHandler(d.Submissions)

	v1 := e.Group("/v1")
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("", middleware.Auth(d.JWTSecret), middleware.Session(d.Sessions))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/me", authHandler.Me)
	authed.GET("/routes/access", authHandler.RouteAccess)

	ent := authed.Group("/enterprises")
	ent.GET("/:id", enterpriseHandler.Get)
	ent.GET("/:id/can-create-demand", enterpriseHandler.CanCreateDemand)
	ent.POST("/:id/verify", enterpriseHandler.Verify, middleware.RBAC(func(c permission.Capabilities) bool {
		return c.CanApproveQualification
	}))

	authed.GET("/submissions", submissionHandler.List, middleware.RBAC(func(c permission.Capabilities) bool {
		return c.CanViewPlatformStats
	}))

	wz := authed.Group("/wizards", middleware.RBAC(func(c permission.Capabilities) bool {
		return c.WizardKind() != domain.WizardNone
	}))
	wz.POST("", wizardHandler.Start)
	wz.GET("/:id", wizardHandler.Get)
	wz.PATCH("/:id/values", wizardHandler.Edit)
	wz.POST("/:id/next", wizardHandler.Next)
	wz.POST("/:id/previous", wizardHandler.Previous)
	wz.POST("/:id/preview", wizardHandler.Preview)
	wz.POST("/:id/submit", wizardHandler.Submit)
	wz.POST("/:id/groups/:group", wizardHandler.AddEntry)
	wz.DELETE("/:id/groups/:group/:index", wizardHandler.RemoveEntry)
	wz.DELETE("/:id", wizardHandler.Abandon)

	return e
}

func skipInfra(c echo.Context) bool {
	p := c.Path()
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      skipInfra,
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
