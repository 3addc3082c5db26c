package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docshare/internal/auth"
	"docshare/internal/config"
	"docshare/internal/database"
	"docshare/internal/database/migration"
	handlers "docshare/internal/http/handler"
	"docshare/internal/http/middleware"
	"docshare/internal/mailer"
	"docshare/internal/otel"
	"docshare/internal/ratelimit"
	"docshare/internal/repository/postgres"
	"docshare/internal/service"
	"docshare/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	// Tracing is optional; a failed exporter setup must not block startup.
	shutdownTracing, err := otel.Init(context.Background(), loc)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdownTracing(context.Background())
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Outbound mail is optional; without SMTP config shares and resets still
	// work, the notifications are just dropped.
	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail, err = mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			log.Fatalf("failed to initialize mailer: %v", err)
		}
	} else {
		log.Println("smtp not configured, outbound mail disabled")
		mail = mailer.NewNoop()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.CapabilityTTL)

	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	defer limiter.Close()

	// Repositories
	userRepo := postgres.NewUserPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	linkRepo := postgres.NewShareLinkPostgres(db)
	shareRepo := postgres.NewDocumentSharePostgres(db)
	tokenRepo := postgres.NewTokenPostgres(db)
	analyticsRepo := postgres.NewAnalyticsPostgres(db)
	studyRoomRepo := postgres.NewStudyRoomPostgres(db)

	// Services
	accessSvc := service.NewAccessService(userRepo, docRepo, studyRoomRepo)
	docSvc := service.NewDocumentService(objStore, docRepo)
	linkSvc := service.NewShareLinkService(linkRepo, docRepo, analyticsRepo, accessSvc, objStore, tokens)
	emailShareSvc := service.NewEmailShareService(shareRepo, userRepo, docRepo, accessSvc, mail)
	accountSvc := service.NewAccountService(userRepo, tokenRepo, mail, tokens, cfg.Auth.ResetTokenTTL, cfg.Auth.AppBaseURL)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMw, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:            db,
		Accounts:      accountSvc,
		Documents:     docSvc,
		Access:        accessSvc,
		ShareLinks:    linkSvc,
		EmailShares:   emailShareSvc,
		Tokens:        tokens,
		Limiter:       limiter,
		SecureCookies: cfg.Auth.SecureCookies,
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
