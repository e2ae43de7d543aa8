package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/reportgen/internal/api"
	"github.com/dgallion1/reportgen/internal/config"
	"github.com/dgallion1/reportgen/internal/metrics"
	"github.com/dgallion1/reportgen/internal/pipeline"
	"github.com/dgallion1/reportgen/internal/store"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug("maxprocs", "msg", format, "args", args)
	}))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	opts, err := config.LoadOptions(cfg.BrandProfile)
	if err != nil {
		log.Error("invalid brand profile", "path", cfg.BrandProfile, "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.OutputDir, log)
	if err != nil {
		log.Error("output directory unavailable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	asm := pipeline.NewAssembler(opts, cfg.FilenamePrefix, log)
	svc := pipeline.NewService(asm, st, pipeline.NewRecordStore(cfg.RecordTTL), metrics.New(5*time.Minute), log,
		pipeline.ServiceConfig{ArtifactTTL: cfg.ArtifactTTL, CleanupInterval: cfg.CleanupInterval})
	svc.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(svc, log, cfg, Version)

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

		svc.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting reportgen",
		"port", cfg.Port,
		"output_dir", st.Dir(),
		"brand", opts.Brand.Name,
		"auth", cfg.APIKey != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
