package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"

	"tubebrief/artifacts"
	"tubebrief/config"
	"tubebrief/handlers"
	"tubebrief/logger"
	"tubebrief/repository/sqlite"
	"tubebrief/services/summary"
	"tubebrief/summarizer"
	"tubebrief/transcript"
	"tubebrief/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logConfig, err := logger.FiberConfig(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize request logger: %v", err)
	}

	db, err := sqlite.InitDB(cfg.Database.Path, cfg.Database.MaxConnections)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo, err := sqlite.NewRepository(db)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	transcriptClient := transcript.NewClient(cfg.Transcript, appLogger)

	// Bad credentials fail here, at startup, rather than on the first job.
	summarizerService, err := summarizer.NewService(context.Background(), summarizer.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize summarizer: %v", err)
	}

	store, err := artifacts.NewStore(cfg.TempDir, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	summaryService := summary.NewService(
		repo,
		transcriptClient,
		summarizerService,
		artifacts.NewNarrator(appLogger),
		artifacts.NewPDFExporter(),
		artifacts.NewDocxExporter(),
		store,
		validation.NewValidator(),
		summary.Config{
			ProcessTimeout: cfg.RequestTimeout,
			SoftWordLimit:  10000,
		},
		appLogger,
	)

	// Janitor for generated files that were never downloaded.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Artifacts.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				store.Sweep(cfg.Artifacts.TTL)
			case <-sweepDone:
				return
			}
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "tubebrief " + cfg.Version,
	})

	setupMiddleware(app, cfg, logConfig)

	summaryHandler := handlers.NewSummaryHandler(summaryService)

	app.Post("/api/summaries", summaryHandler.Create)
	app.Get("/api/summaries/:id", summaryHandler.Get)
	app.Get("/api/summaries/:id/audio", summaryHandler.DownloadAudio)
	app.Get("/api/summaries/:id/pdf", summaryHandler.DownloadPDF)
	app.Get("/api/summaries/:id/docx", summaryHandler.DownloadDocx)

	app.Get("/health", handlers.HealthCheck)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		appLogger.Info().Msg("Shutting down server")

		close(sweepDone)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			appLogger.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		log.Printf("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*logConfig))
	}

	if cfg.Middleware.EnableTimeout {
		app.Use(timeout.New(func(c *fiber.Ctx) error {
			return c.Next()
		}, cfg.RequestTimeout))
	}

	if cfg.Middleware.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}
}
