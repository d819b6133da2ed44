package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"cloudvault/docs"
	"cloudvault/internal/config"
	"cloudvault/internal/database"
	"cloudvault/internal/database/migration"
	"cloudvault/internal/events"
	handlers "cloudvault/internal/http/handler"
	"cloudvault/internal/http/middleware"
	"cloudvault/internal/logging"
	"cloudvault/internal/metrics"
	"cloudvault/internal/oauth"
	"cloudvault/internal/otel"
	"cloudvault/internal/preview"
	"cloudvault/internal/repository/postgres"
	"cloudvault/internal/service"
	"cloudvault/internal/storage"
	"cloudvault/internal/token"
)

const shutdownTimeout = 10 * time.Second

// @title Cloud Vault API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	flush, err := logging.Setup(logging.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Observability.LogLevel,
		SentryDSN:   cfg.Observability.SentryDSN,
		Environment: cfg.Env,
	})
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		flush()
		os.Exit(1)
	}
	flush()
}

func run(cfg *config.AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db.DB, cfg.Database.Host); err != nil {
			return err
		}
	}

	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	google, err := oauth.NewGoogle(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var publisher events.Publisher = events.Nop{}
	if cfg.Observability.AMQPURL != "" {
		mq, err := events.DialAMQP(ctx, cfg.Observability.AMQPURL, cfg.Observability.AMQPExchange)
		if err != nil {
			return err
		}
		g.Go(func() error {
			mq.Run(gctx)
			return mq.Close()
		})
		publisher = mq
	}

	// Initialize repositories and services
	fileRepo := postgres.NewFilePostgres(db)
	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	authSvc := service.NewAuthService(postgres.NewUserPostgres(db), issuer, google)
	fileSvc := service.NewFileService(objStore, fileRepo, preview.New(preview.Options{
		MaxWidth:  cfg.Preview.MaxWidth,
		MaxHeight: cfg.Preview.MaxHeight,
		Quality:   cfg.Preview.JPEGQuality,
	}), service.FileOptions{
		SignedURLTTL: cfg.Storage.SignedURLTTL,
		Events:       publisher,
		Metrics:      m,
	})
	shareSvc := service.NewShareService(postgres.NewSharePostgres(db), fileRepo, objStore, service.ShareOptions{
		DefaultExpiryDays: cfg.Share.DefaultExpiryDays,
		SignedURLTTL:      cfg.Storage.SignedURLTTL,
		Events:            publisher,
		Metrics:           m,
	})
	tagSvc := service.NewTagService(postgres.NewTagPostgres(db))

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(cfg.IsDevelopment()),
	})

	if cfg.Observability.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMw.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	mountSwagger(app, cfg.AppHost)

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:     db,
		Auth:   authSvc,
		Files:  fileSvc,
		Shares: shareSvc,
		Tags:   tagSvc,
		Secret: issuer.Secret(),
	})

	addr := ":" + cfg.Port
	g.Go(func() error {
		slog.Info("server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// mountSwagger serves the API docs. The host is fixed before the server starts;
// left empty, the UI targets whichever host served the page.
func mountSwagger(app *fiber.App, host string) {
	docs.SwaggerInfo.Host = host
	app.Get("/swagger/*", swagger.HandlerDefault)
}
