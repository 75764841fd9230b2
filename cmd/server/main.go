package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pchreport/internal/api"
	"github.com/dgallion1/pchreport/internal/config"
	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/dgallion1/pchreport/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	names, err := labels.LoadFile(cfg.LabelsFile)
	if err != nil {
		log.Error("failed to load labels", "path", cfg.LabelsFile, "error", err)
		os.Exit(1)
	}

	var template []byte
	if cfg.TemplatePath != "" {
		template, err = os.ReadFile(cfg.TemplatePath)
		if err != nil {
			log.Warn("template unreadable, reports start from a blank document", "path", cfg.TemplatePath, "error", err)
			template = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	opts := pipeline.OptionsFromConfig(cfg, names)
	orch := pipeline.NewOrchestrator(cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, opts, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, names, template, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting pchreport", "port", cfg.Port, "workers", cfg.WorkerCount, "labels", names.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
