package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/api/rest"
	"github.com/fortuna/faceoff/internal/api/websocket"
	"github.com/fortuna/faceoff/internal/app"
	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/scheduler"
	"github.com/fortuna/faceoff/pkg/logger"
	"github.com/fortuna/faceoff/pkg/metrics"
)

const (
	serviceName    = "faceoff"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().WithError(err).Fatal("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.WithComponent("main")
	log.WithField("version", serviceVersion).Infof("Starting %s - NHL season ingestion service", serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewManager()

	// Progress feed; the orchestrator reports into its hub.
	wsServer := websocket.NewServer(logger.Get().WithField("service", serviceName))

	pipeline, err := app.Build(ctx, cfg, app.Options{
		Reporter: wsServer.Reporter(),
		Log:      logger.WithComponent("pipeline"),
		Metrics:  m,
		Sinks:    true,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build ingestion pipeline")
	}
	defer pipeline.Close()

	log.WithFields(logrus.Fields{
		"driver": cfg.LedgerDriver,
		"mode":   pipeline.Ledger.Mode(),
	}).Info("✓ Ledger opened")

	// The service only refreshes the in-progress season; past seasons are
	// loaded with the backfill command.
	sched, err := scheduler.New(pipeline.Orchestrator, scheduler.Config{
		Spec:    cfg.RefreshCron,
		Seasons: []int{cfg.CurrentSeason},
	}, logger.WithComponent("scheduler"))
	if err != nil {
		log.WithError(err).Fatal("Failed to create scheduler")
	}
	if pipeline.Ledger.Mode().Writable() {
		if err := sched.Start(ctx); err != nil {
			log.WithError(err).Fatal("Failed to start scheduler")
		}
		log.WithField("schedule", cfg.RefreshCron).Info("✓ Scheduler started")
	} else {
		log.Warn("Ledger is read-only, scheduled refresh disabled")
	}

	restServer := rest.NewServer(cfg.RESTAddr, rest.Dependencies{
		Ledger:     pipeline.Ledger,
		Predictor:  pipeline.Orchestrator,
		Runs:       sched,
		Metrics:    m.Handler(),
		Checks:     pipeline.HealthChecks(),
		Log:        logger.Get().WithField("service", serviceName),
		RunContext: ctx,
	})
	go func() {
		log.WithField("addr", cfg.RESTAddr).Info("Starting REST API server")
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("REST server error")
		}
	}()

	go func() {
		if err := wsServer.Start(cfg.WSAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("WebSocket server error")
		}
	}()

	log.Infof("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Infof("  REST API: http://%s", cfg.RESTAddr)
	log.Infof("  WebSocket: ws://%s/ws/progress", cfg.WSAddr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down gracefully...")

	// Cancel in-flight runs first so Stop does not wait out a full season.
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("REST API server shutdown error")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("WebSocket server shutdown error")
	}

	log.Infof("%s stopped", serviceName)
}
