package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/prefsd/internal/api"
	"github.com/MikeSquared-Agency/prefsd/internal/config"
	"github.com/MikeSquared-Agency/prefsd/internal/console"
	"github.com/MikeSquared-Agency/prefsd/internal/extractor"
	"github.com/MikeSquared-Agency/prefsd/internal/hermes"
	"github.com/MikeSquared-Agency/prefsd/internal/processor"
	"github.com/MikeSquared-Agency/prefsd/internal/provider"
	"github.com/MikeSquared-Agency/prefsd/internal/version"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("prefsd starting", "port", cfg.Port, "version", version.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Model provider
	factory := provider.NewFactory(cfg)
	if _, err := factory(cfg.Model); err != nil {
		slog.Error("model provider not usable", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}
	slog.Info("model provider ready", "provider", cfg.Provider, "model", cfg.Model)

	// Extractor
	var opts []extractor.Option
	if cfg.Verbose {
		// Panels go to stderr so stdout stays pure JSON logs.
		opts = append(opts, extractor.WithConsole(console.NewPrinter(os.Stderr, console.NewColorRotator(), cfg.ConsoleWidth)))
	}
	ext := extractor.New(factory, cfg.Model, slog.Default(), opts...)

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	proc := processor.New(ext, hermesClient, slog.Default())

	if err := hermesClient.SubscribeTranscripts(proc.HandleTranscriptSubmitted); err != nil {
		slog.Error("failed to subscribe to transcript events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	if cfg.APIToken == "" {
		slog.Warn("PREFSD_API_TOKEN not set, analyze endpoint is unauthenticated")
	}
	srv := api.NewServer(cfg.Port, cfg.APIToken, ext, slog.Default())
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Announce(hermes.Registration{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Port:      cfg.Port,
		Version:   version.Version,
		Model:     cfg.Model,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("prefsd ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("prefsd stopped")
}

func setupLogging(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
