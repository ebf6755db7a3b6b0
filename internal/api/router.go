package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LouieCads/proofwork/internal/api/handler"
	"github.com/LouieCads/proofwork/internal/api/middleware"
	"github.com/LouieCads/proofwork/internal/core/domain"
	"github.com/LouieCads/proofwork/internal/core/ports"
	"github.com/LouieCads/proofwork/internal/core/service"
	"github.com/LouieCads/proofwork/internal/infrastructure/config"
	mongostore "github.com/LouieCads/proofwork/internal/infrastructure/db/mongo"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink is injected so the caller owns its lifecycle (the async
// dispatcher must be started before and drained after the HTTP server).
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, audit ports.AuditLog, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("proofwork"))

	// --- Dependencies ---
	jobRepo := mongostore.NewJobRepository(db)
	roleRepo := mongostore.NewRoleRepository(db)
	authRepo := mongostore.NewAuthRepository(db)
	treasury := mongostore.NewAccountTreasury(db)

	accessService := service.NewAccessService(roleRepo, log)
	authService := service.NewAuthService(authRepo, accessService, cfg.JWTSecret, 24*time.Hour)
	jobService := service.NewJobService(jobRepo, accessService, treasury, audit, service.NewClock(), log)

	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(accessService)
	jobHandler := handler.NewJobHandler(jobService)
	accountHandler := handler.NewAccountHandler(treasury)

	authRequired := middleware.Auth(cfg.JWTSecret)
	clientOnly := middleware.RequireRole(accessService, domain.RoleClient)
	freelancerOnly := middleware.RequireRole(accessService, domain.RoleFreelancer)

	// --- Auth routes (no token required) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Ledger API ---
	v1 := e.Group("/v1", authRequired)
	v1.POST("/roles/self", roleHandler.GrantSelf)
	v1.GET("/accounts/balance", accountHandler.Balance)

	jobs := v1.Group("/jobs")
	jobs.GET("", jobHandler.List)
	jobs.GET("/:id", jobHandler.Get)
	jobs.POST("", jobHandler.Post, clientOnly)
	jobs.PATCH("/:id", jobHandler.Update, clientOnly)
	jobs.DELETE("/:id", jobHandler.Cancel, clientOnly)
	jobs.POST("/:id/submission", jobHandler.Submit, freelancerOnly)
	jobs.POST("/:id/approval", jobHandler.Approve, clientOnly)
	jobs.POST("/:id/rejection", jobHandler.Reject, clientOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
