package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/config"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/handler"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/repository/memory"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/repository/postgres"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/service"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/upstream"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Fortuna Dashboard API
// @version 1.0
// @description Personal finance dashboard in front of the Fortuna transactions API.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token from /auth/login, as "Bearer <token>"
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Session storage: postgres when configured, memory otherwise
	var sessionRepo domain.SessionRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Connected to database")

		pgSessions := postgres.NewSessionRepository(pool)
		if err := pgSessions.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare session table")
		}
		sessionRepo = pgSessions
	} else {
		log.Warn().Msg("DATABASE_URL not set, sessions are kept in memory")
		sessionRepo = memory.NewSessionRepository()
	}

	// Upstream finance API
	gateway := upstream.NewClient(cfg.APIBaseURL, cfg.UpstreamTimeout)
	log.Info().Str("api_base_url", cfg.APIBaseURL).Msg("Using upstream API")

	// Initialize services
	aggregationService, err := service.NewAggregationService(cfg.AggregateCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create aggregate cache")
	}
	defer aggregationService.Close()

	authService := service.NewAuthService(gateway, sessionRepo, cfg.SessionTTL)
	transactionService := service.NewTransactionService(gateway)
	chartService := service.NewChartService()
	dashboardService := service.NewDashboardService(transactionService, aggregationService, chartService)
	exportService := service.NewExportService(cfg.ExportDateLayout)

	// Optional export archive
	if cfg.S3.Enabled() {
		exportRepo, err := storage.NewS3ExportRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 export repository")
		}
		exportService.SetArchiveRepository(exportRepo, cfg.S3.URLExpiry)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Export archive enabled")
	}

	// Change feed for other open dashboards
	hub := websocket.NewHub()
	transactionService.SetEventPublisher(hub)
	authService.SetSessionCloser(hub)

	// Expired session cleanup
	purgeWorker := service.NewSessionPurgeWorker(authService, log.Logger, service.DefaultSessionPurgeInterval)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	purgeWorker.Start(workerCtx)

	// Login throttling
	loginLimiter := middleware.NewRateLimiterWithConfig(cfg.LoginRateLimit, cfg.LoginBurst)
	defer loginLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	transactionHandler := handler.NewTransactionHandler(dashboardService, exportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, chartService)
	wsHandler := handler.NewWebSocketHandler(hub, authService, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.ServeOpenAPI3Spec(handler.DefaultServers(cfg.Port, cfg.PublicURL)))

	// WebSocket change feed
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e,
		middleware.SessionAuth(authService),
		middleware.RateLimitMiddleware(loginLimiter),
		authHandler, transactionHandler, dashboardHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	purgeWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
