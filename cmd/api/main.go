package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventplatform/config"
	authadapter "eventplatform/internal/adapters/auth"
	"eventplatform/internal/adapters/email"
	"eventplatform/internal/adapters/storage"
	"eventplatform/internal/cache"
	httpdelivery "eventplatform/internal/delivery/http"
	"eventplatform/internal/delivery/http/controllers"
	"eventplatform/internal/delivery/http/middleware"
	"eventplatform/internal/domain"
	"eventplatform/internal/repository/postgres"
	"eventplatform/internal/services"
)

// @title Event Platform API
// @version 1.0
// @description Event hosting and RSVP service.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("migrate database", "error", err)
		os.Exit(1)
	}

	// Redis is optional. Without it event details are read straight from
	// Postgres on every request.
	var eventCache domain.EventCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		eventCache = cache.NewEventCache(redisClient)
	}

	imageStore, err := storage.NewImageStore(storage.StoreConfig{
		Provider: cfg.StorageProvider,
		S3: storage.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		},
	})
	if err != nil {
		logger.Error("create image store", "error", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "error", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)

	hasher := authadapter.NewBcryptHasher(authadapter.DefaultBcryptCost)
	tokenIssuer, tokenVerifier := authadapter.NewJWTTokens(cfg.JWTSecret)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	authService := services.NewAuthService(userRepo, hasher, tokenIssuer, cfg.JWTExpiry)
	eventService := services.NewEventService(eventRepo, userRepo, attendeeRepo, imageStore, eventCache, cfg.CreatorAutoJoin)
	rsvpService := services.NewRSVPService(eventRepo, userRepo, attendeeRepo, emailService, eventCache, logger)

	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	rsvpController := controllers.NewRSVPController(logger, rsvpService)

	mux := httpdelivery.NewRouter(authController, eventController, rsvpController, tokenVerifier)

	handler := middleware.CORS(cfg.CORSAllowedOrigins,
		middleware.Logging(logger,
			middleware.Recovery(logger, mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
