package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/menta2k/focuspoint/internal/config"
	"github.com/menta2k/focuspoint/internal/server"
	"github.com/menta2k/focuspoint/internal/utils"
)

const shutdownGrace = 10 * time.Second

func main() {
	var configPath, addr, logLevel string

	flag.StringVar(&configPath, "config", "", "path to JSON config file (default: "+config.GetConfigPath()+" if present)")
	flag.StringVar(&addr, "addr", "", "listen address override (host:port)")
	flag.StringVar(&logLevel, "log-level", "", "log level override: debug|info|warn|error")
	flag.Parse()

	if err := run(configPath, addr, logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "focus-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr, logLevel string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "algorithm", cfg.Saliency.Algorithm)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		defaultPath := config.GetConfigPath()
		if !utils.FileExists(defaultPath) {
			return config.Default(), nil
		}
		path = defaultPath
	}
	return config.LoadFromFile(path)
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
