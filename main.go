package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/Ananth-NQI/shopbot-backend/database"
	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/handlers"
	"github.com/Ananth-NQI/shopbot-backend/internal/jobs"
	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/routes"
	"github.com/Ananth-NQI/shopbot-backend/internal/services"
	"github.com/Ananth-NQI/shopbot-backend/internal/storage"
)

const version = "1.0.0"

func main() {
	envLoaded := config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !envLoaded && cfg.IsDevelopment() {
		log.Warn("⚠️ No .env file found - using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("💥 Shop bot stopped", "error", err)
	}
}

// stores are the session and analytics backends chosen by SESSION_STORE
type stores struct {
	sessions  storage.SessionStore
	analytics storage.AnalyticsStore
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.SessionStore {
	case config.StorePostgres, config.StoreSQLite:
		db, err := database.Connect(cfg.SessionStore, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		store := storage.NewDatabaseStore(db)
		log.Info("🔄 Running database migrations...")
		if err := store.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &stores{
			sessions:  store,
			analytics: store,
			close:     func() { _ = database.Close(db) },
		}, nil

	case config.StoreRedis:
		rdb, err := storage.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		log.Info("✅ Connected to Redis", "addr", cfg.RedisAddr)
		redisStore := storage.NewRedisSessionStore(rdb, cfg.RedisPrefix)
		// analytics have no Redis backend and stay in memory
		return &stores{
			sessions:  redisStore,
			analytics: storage.NewMemoryStore(),
			close:     func() { _ = redisStore.Close() },
		}, nil

	default:
		log.Warn("⚠️ Using in-memory storage (not for production!)")
		mem := storage.NewMemoryStore()
		return &stores{sessions: mem, analytics: mem, close: func() {}}, nil
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := storage.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}
	log.Info("📚 Catalog loaded", "file", cfg.CatalogFile,
		"categories", len(catalog.ListCategories()))

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var sender services.Sender
	if cfg.Twilio.Configured() {
		twilioService, err := services.NewTwilioService(cfg.Twilio, log)
		if err != nil {
			return err
		}
		sender = twilioService
		log.Info("✅ Twilio service initialized", "from", cfg.Twilio.WhatsAppFrom)
	} else {
		log.Warn("⚠️ Twilio credentials not found - replies will only be logged")
		sender = services.NewLogSender(log)
	}

	renderer := services.NewRenderer(catalog, cfg.Settings)
	engine := services.NewConversationEngine(catalog, renderer, cfg.IdleTimeout)
	sessions := services.NewSessionManager(st.sessions, log, cfg.IdleTimeout)
	analytics := services.NewAnalyticsService(st.analytics, log, 1024)
	deferred := jobs.NewDeferredTasks(log)
	retention := jobs.NewRetentionJob(analytics, cfg.AnalyticsRetention, cfg.AnalyticsPruneInterval, log)

	whatsapp := services.NewWhatsAppService(
		engine,
		sessions,
		sender,
		services.NewHTTPImageFetcher(10*time.Second, log),
		analytics,
		deferred,
		services.WhatsAppOptions{
			TypingDelay:     cfg.TypingDelay,
			MenuReturnDelay: cfg.MenuReturnDelay,
			Messages:        cfg.Settings.Messages,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:               cfg.Settings.BotName + " v" + version,
		DisableStartupMessage: !cfg.IsDevelopment(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Admin-Key",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		WhatsApp:  handlers.NewWhatsAppHandler(whatsapp, log),
		Health:    handlers.NewHealthHandler(cfg.Settings.BotName, version, sessions),
		Analytics: handlers.NewAnalyticsHandler(analytics),
	}, routes.Options{
		ValidateWebhook: !cfg.IsDevelopment() && !cfg.DisableWebhookValidation,
		TwilioAuthToken: cfg.Twilio.AuthToken,
		AdminAPIKey:     cfg.AdminAPIKey,
		EnableTestRoute: cfg.IsDevelopment(),
		Log:             log,
	})

	log.Info("🚀 Shop bot starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_store", cfg.SessionStore,
		"whatsapp_configured", cfg.Twilio.Configured())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return analytics.Run(gctx) })
	g.Go(func() error { return retention.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info("🛑 Gracefully shutting down...")
		deferred.Stop()
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	return g.Wait()
}
