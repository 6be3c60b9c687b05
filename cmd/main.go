package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	v1 "github.com/vgetd/vgetd/api/v1"
	"github.com/vgetd/vgetd/internal/config"
	"github.com/vgetd/vgetd/internal/engine/ytdlp"
	"github.com/vgetd/vgetd/internal/metrics"
	"github.com/vgetd/vgetd/internal/outpath"
	"github.com/vgetd/vgetd/internal/progress"
	"github.com/vgetd/vgetd/internal/router"
	"github.com/vgetd/vgetd/internal/service"
	"github.com/vgetd/vgetd/internal/store"
)

func main() {
	// .env is optional; env vars may be set directly.
	_ = godotenv.Load()

	cfg := config.FromEnv(outpath.DefaultDir())
	logger := newLogger(cfg)
	metrics.Register()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		logger.Error("create download dir", "dir", cfg.DownloadDir, "err", err)
		os.Exit(1)
	}

	var (
		snaps store.SnapshotStore
		ready func(context.Context) error
	)
	switch cfg.Store {
	case "postgres":
		pg, err := store.NewPostgresFromEnv()
		if err != nil {
			logger.Error("connect postgres", "err", err)
			os.Exit(1)
		}
		defer func() { _ = pg.Close() }()
		snaps = pg
		ready = func(ctx context.Context) error {
			_, _, err := pg.Get(ctx, "readyz-probe")
			return err
		}
	default:
		mem := store.NewMemoryWithTTL(cfg.SnapshotTTL)
		defer mem.Close()
		snaps = mem
	}

	installCtx, cancelInstall := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := ytdlp.Install(installCtx); err != nil {
		logger.Warn("yt-dlp install", "err", err)
	}
	cancelInstall()

	eng := ytdlp.New(logger)
	orch := service.NewOrchestrator(logger, snaps, store.NewRegistry(), progress.NewHub(), eng, cfg.DownloadDir, cfg.MaxActive)
	handler := v1.NewDownloadHandler(logger, orch)

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     router.New(logger, handler, ready),
		IdleTimeout: 120 * time.Second,
		ReadTimeout: 10 * time.Second,
		// No write timeout: progress streams are long-lived by design and
		// pace themselves with heartbeats.
	}

	go func() {
		logger.Info("starting vgetd", "addr", server.Addr, "downloads", cfg.DownloadDir, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("received terminate, graceful shutdown", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, nil))
	}
	return slog.New(slog.NewTextHandler(out, nil))
}
