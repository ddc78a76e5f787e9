package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/users-service/internal/api/handler"
	"github.com/99minutos/users-service/internal/api/middleware"
	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
	"github.com/99minutos/users-service/internal/core/service"
	"github.com/99minutos/users-service/internal/infrastructure/config"
	redisdb "github.com/99minutos/users-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, repo ports.UserRepository, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("users"))

	// --- Dependencies ---
	hasher := service.NewBcryptHasher()
	users := service.NewUserService(repo, hasher, log)
	tokens := service.NewTokenService(repo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry())
	cache := redisdb.NewTokenCache(rdb)

	userHandler := handler.NewUserHandler(users, tokens, cache, log)
	auth := middleware.Auth(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	// --- User routes ---
	e.POST("/users/register", userHandler.Register)
	e.POST("/users/login", userHandler.Login)
	e.PUT("/users/:id", userHandler.Update, auth, middleware.RBAC(domain.RoleAdmin, domain.RoleUser))
	e.DELETE("/users/:id", userHandler.Delete, auth, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
