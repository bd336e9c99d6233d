package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/virtualpets/pet-api/docs"
	"github.com/virtualpets/pet-api/internal/api/handler"
	"github.com/virtualpets/pet-api/internal/api/middleware"
	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs. Limiter may be
// nil, in which case /auth is not rate limited.
type Dependencies struct {
	Auth      ports.AuthService
	Pets      ports.PetService
	Admin     ports.AdminService
	Limiter   middleware.Limiter
	RateRetry time.Duration
	Readiness map[string]handler.Pinger
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.RequestMetrics())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	petHandler := handler.NewPetHandler(deps.Pets)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	authenticate := middleware.Authenticate(deps.Auth)

	// --- Public ---
	authGroup := e.Group("/auth")
	if deps.Limiter != nil {
		authGroup.Use(middleware.RateLimit(deps.Limiter, deps.RateRetry, deps.Log))
	}
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Pets (self-scoped collection, owned items) ---
	pets := e.Group("/pets", authenticate, middleware.Authorize(domain.CategorySelfScoped))
	pets.GET("", petHandler.List)
	pets.POST("", petHandler.Create)
	pets.GET("/types", petHandler.Types)
	pets.GET("/:id", petHandler.Get)
	pets.PUT("/:id", petHandler.Update)
	pets.DELETE("/:id", petHandler.Delete)
	pets.POST("/:id/:action", petHandler.Interact)

	// --- Admin ---
	admin := e.Group("/admin", authenticate, middleware.Authorize(domain.CategoryAdminOnly))
	admin.GET("/users", adminHandler.Users)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/pets", adminHandler.Pets)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Status >= 400:
				ev = log.Warn()
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
