package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"danaku/internal/config"
	"danaku/internal/database"
	"danaku/internal/digest"
	"danaku/internal/logger"
	"danaku/internal/mailer"
)

func main() {
	schedule := flag.Bool("schedule", false, "keep running and send the digest every day at DIGEST_HOUR:DIGEST_MINUTE")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.Named("digest")

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbManager.Close()

	sender := mailer.NewEmailJSSender(mailer.EmailJSConfig{
		Endpoint:   cfg.EmailJSEndpoint,
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		UserID:     cfg.EmailJSUserID,
		PrivateKey: cfg.EmailJSPrivateKey,
	}, &http.Client{Timeout: 15 * time.Second})

	runner := digest.NewRunner(dbManager.DB(), sender, digest.Schedule{
		Location: cfg.DigestLocation(),
		Hour:     cfg.DigestHour,
		Minute:   cfg.DigestMinute,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *schedule {
		runner.Start(ctx)
		return
	}

	result, err := runner.RunOnce(ctx)
	if err != nil {
		log.Errorw("digest run failed", "error", err)
		os.Exit(1)
	}

	log.Infow("digest run completed",
		"users", result.Users,
		"sent", result.Sent,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)

	for _, userErr := range result.Errors {
		log.Warnw("digest delivery failed", "user_id", userErr.UserID, "error", userErr.Err.Error())
	}

	if len(result.Errors) > 0 {
		os.Exit(2)
	}
}
