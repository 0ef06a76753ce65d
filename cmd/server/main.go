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

	"github.com/halalcheck/client/config"
	httpDelivery "github.com/halalcheck/client/internal/delivery/http"
	"github.com/halalcheck/client/internal/domain"
	"github.com/halalcheck/client/internal/infrastructure/cache"
	"github.com/halalcheck/client/internal/infrastructure/events"
	"github.com/halalcheck/client/internal/infrastructure/logger"
	"github.com/halalcheck/client/internal/infrastructure/metrics"
	"github.com/halalcheck/client/internal/infrastructure/verdictapi"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	log.Info("starting HalalCheck web",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.Duration("api_timeout", cfg.API.Timeout),
		zap.Float64("confidence_threshold", cfg.Client.ConfidenceThreshold),
	)

	// Lifecycle events fan out to logs and metrics
	bus := events.New()
	if err := bus.Subscribe(events.LogHandler(log)); err != nil {
		log.Fatal("failed to subscribe log handler", zap.Error(err))
	}
	if err := bus.Subscribe(metrics.Record); err != nil {
		log.Fatal("failed to subscribe metrics", zap.Error(err))
	}

	visits := cache.NewMemoryCache(cfg.Shell.CleanupInterval, cache.WithEvictionHandler(httpDelivery.CloseOnEvict))

	client := verdictapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	handler := httpDelivery.NewHandler(client, visits, httpDelivery.HandlerConfig{
		ConfidenceThreshold: cfg.Client.ConfidenceThreshold,
		VisitTTL:            cfg.Shell.VisitTTL,
		PollInterval:        cfg.Shell.PollInterval,
		Observer:            domain.Observer(bus),
	}, log)

	router := httpDelivery.SetupRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		log.Info("shutting down")
	case err := <-serverErr:
		log.Error("server failed", zap.Error(err))
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := handler.Drain(ctx); err != nil {
		log.Warn("submissions still in flight at exit", zap.Error(err))
	}

	visits.Close()
	log.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
