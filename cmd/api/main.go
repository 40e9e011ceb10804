package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"danaku/internal/config"
	"danaku/internal/database"
	"danaku/internal/digest"
	"danaku/internal/ledger"
	"danaku/internal/logger"
	"danaku/internal/mailer"
	"danaku/internal/server"
	"danaku/internal/validator"
)

// @title           Danaku API
// @version         1.0
// @description     Danaku keeps personal wallets, transactions and savings pockets consistent and sends a daily summary email.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := dbManager.DB()
	hub := ledger.NewHub()
	store := ledger.NewGormStore(db, hub, ledger.Options{
		MaxAttempts: appConfig.LedgerMaxAttempts,
		Backoff:     appConfig.LedgerRetryBackoff,
	})

	sender := mailer.NewEmailJSSender(mailer.EmailJSConfig{
		Endpoint:   appConfig.EmailJSEndpoint,
		ServiceID:  appConfig.EmailJSServiceID,
		TemplateID: appConfig.EmailJSTemplateID,
		UserID:     appConfig.EmailJSUserID,
		PrivateKey: appConfig.EmailJSPrivateKey,
	}, &http.Client{Timeout: 15 * time.Second})
	runner := digest.NewRunner(db, sender, digest.Schedule{
		Location: appConfig.DigestLocation(),
		Hour:     appConfig.DigestHour,
		Minute:   appConfig.DigestMinute,
	})
	if appConfig.EmailJSServiceID != "" && appConfig.EmailJSTemplateID != "" {
		go runner.Start(ctx)
	} else {
		log.Warn("EmailJS is not configured, daily digest scheduler disabled")
	}

	router, err := server.NewRouter(server.Deps{
		Config: appConfig,
		DB:     db,
		Store:  store,
		Digest: runner,
		Health: dbManager,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Streams never finish on their own; end them so Shutdown can drain.
	srv.RegisterOnShutdown(hub.Close)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Danaku backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
