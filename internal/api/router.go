package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/kapehub/coffee-pricing-api/docs"
	"github.com/kapehub/coffee-pricing-api/internal/api/handler"
	"github.com/kapehub/coffee-pricing-api/internal/api/middleware"
	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
	"github.com/kapehub/coffee-pricing-api/internal/core/service"
	mongodb "github.com/kapehub/coffee-pricing-api/internal/infrastructure/db/mongo"
	redisdb "github.com/kapehub/coffee-pricing-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, jwtTTL time.Duration, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("coffee_pricing"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	priceRepo := mongodb.NewPriceRepository(db)
	historyRepo := mongodb.NewPriceHistoryRepository(db)
	guard := redisdb.NewIdempotencyGuard(rdb)

	authService := service.NewAuthService(userRepo, jwtSecret, jwtTTL)
	priceService := service.NewPriceService(priceRepo, historyRepo, userRepo, guard, log)

	authHandler := handler.NewAuthHandler(authService)
	priceHandler := handler.NewPriceHandler(priceService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Pricing routes (admin only; non-admins are turned away before any
	// data is fetched) ---
	prices := e.Group("/v1/prices", middleware.Auth(jwtSecret), middleware.RBAC(domain.RoleAdmin))
	prices.GET("", priceHandler.ListActive)
	prices.POST("", priceHandler.Submit)
	prices.GET("/history", priceHandler.History)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
