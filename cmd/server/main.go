package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/api/handlers"
	"github.com/dcimring/pickleball-ratings/internal/config"
	"github.com/dcimring/pickleball-ratings/internal/jobs"
	"github.com/dcimring/pickleball-ratings/internal/logging"
	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/repository"
	"github.com/dcimring/pickleball-ratings/internal/service"
	"github.com/dcimring/pickleball-ratings/internal/session"
	"github.com/dcimring/pickleball-ratings/internal/websocket"
	"github.com/dcimring/pickleball-ratings/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, using environment variables")
	}

	db, err := repository.OpenPostgres(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	redisClient, err := repository.OpenRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.GetRedisAddr()))

	postgresRepo := repository.NewPostgresRepository(db, cfg.Database.Schema)
	redisRepo := repository.NewRedisRepository(redisClient)

	if err := postgresRepo.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Feature-request inserts
	workerPool := worker.NewWorkerPool(cfg.Worker.Count, cfg.Worker.QueueSize, postgresRepo, logger)
	workerPool.Start()

	rankingService := service.NewRankingService(postgresRepo, redisRepo, logger)
	suggestionService := service.NewSuggestionService(workerPool, logger)

	// Initial fetch. A failed mode shows as empty until the next reload.
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := rankingService.Load(loadCtx); err != nil {
		logger.Warn("Initial rankings load incomplete", zap.Error(err))
	}
	loadCancel()
	snap := rankingService.Snapshot()
	logger.Info("Rankings loaded",
		zap.Int("singles", len(snap.Singles)),
		zap.Int("doubles", len(snap.Doubles)),
		zap.Int64("version", snap.Version),
	)

	hub := websocket.NewHub(rankingService, func(ctx context.Context, version int64) {
		if _, err := rankingService.Sync(ctx); err != nil {
			logger.Warn("Snapshot sync failed", zap.Int64("version", version), zap.Error(err))
		}
	}, 0, logger)
	go hub.Run(ctx)

	refresher := jobs.NewRefresher(rankingService, jobs.RefresherConfig{
		Interval: cfg.Jobs.RefreshInterval,
	}, logger)
	if err := refresher.Start(ctx); err != nil {
		logger.Warn("Failed to start refresher", zap.Error(err))
	}

	sessions := session.NewRegistry(ctx, rankingService, suggestionService, session.Options{
		AutoReturnDelay:    cfg.Session.AutoReturnDelay,
		NameBlurGrace:      cfg.Session.NameBlurGrace,
		MaxNameSuggestions: cfg.Session.MaxNameSuggestions,
	}, session.RegistryConfig{
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
	}, logger)

	rankingsHandler := handlers.NewRankingsHandler(rankingService, logger)
	suggestionsHandler := handlers.NewSuggestionsHandler(suggestionService, logger)
	sessionsHandler := handlers.NewSessionsHandler(sessions, logger)

	app := fiber.New(fiber.Config{
		AppName:      "Pickleball Ratings",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.SetupRoutes(app.Group("/api/v1"), rankingsHandler, suggestionsHandler, sessionsHandler)

	app.Get("/api/v1/metrics", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"worker_pool":       workerPool.GetMetrics(),
			"refresher":         refresher.GetMetrics(),
			"sessions":          sessions.Len(),
			"sessions_expired":  sessions.Swept(),
			"websocket_clients": hub.GetClientCount(),
		})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", fiberws.New(func(c *fiberws.Conn) {
		websocket.ServeWS(hub, c)
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Pickleball Ratings API",
			"version": "1.0.0",
			"modes":   models.Modes,
			"endpoints": []string{
				"GET /api/v1/rankings/:mode",
				"POST /api/v1/tourney-check",
				"POST /api/v1/suggestions",
				"POST /api/v1/refresh",
				"GET /api/v1/health",
				"GET /api/v1/metrics",
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"POST /api/v1/sessions/:id/events",
				"DELETE /api/v1/sessions/:id",
				"WS /ws (WebSocket)",
			},
		})
	})

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server")

		refresher.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}

		// Pending auto-returns never fire after this
		sessions.CloseAll()
		cancel()

		logger.Info("Flushing worker pool")
		if err := workerPool.Shutdown(30 * time.Second); err != nil {
			logger.Error("Worker pool shutdown error", zap.Error(err))
		}

		if err := postgresRepo.Close(); err != nil {
			logger.Error("Error closing PostgreSQL", zap.Error(err))
		}
		if err := redisRepo.Close(); err != nil {
			logger.Error("Error closing Redis", zap.Error(err))
		}

		logger.Info("Server shutdown complete")
	}()

	port := cfg.Server.Port
	logger.Info("Server starting", zap.Int("port", port))
	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
	<-stopped
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error:   "Request failed",
		Message: err.Error(),
	})
}
