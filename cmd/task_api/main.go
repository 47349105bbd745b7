package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_api/config"
	"task_api/db"
	"task_api/server"

	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	httpAddr := flag.String("http.addr", "", "HTTP server address (overrides config)")
	httpPort := flag.Int("http.port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			slog.Info("No .env file found, continuing")
		}
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *httpPort != 0 {
		cfg.HTTPPort = *httpPort
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// The connection descriptor is read once here and handed to the store.
	cfg.ResolveConnectionString()
	if cfg.ConnectionString == "" && os.Getenv("DB_TYPE") != "" {
		dsn, err := db.BuildDSN(os.Getenv("DB_TYPE"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
		if err != nil {
			slog.Error("Failed to build connection string from DB_* variables", "error", err)
			os.Exit(1)
		}
		cfg.ConnectionString = dsn
	}
	if cfg.ConnectionString == "" {
		slog.Warn("Connection string is not set; task requests will fail", "env", cfg.ConnectionStringEnv)
	}

	srv := server.New(cfg)

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start or stopped unexpectedly", "error", err)
			errChan <- err
		} else if err == http.ErrServerClosed {
			slog.Info("Server stopped gracefully (http.ErrServerClosed)")
		}
	}()

	select {
	case sig := <-stopChan:
		slog.Info("Received signal, initiating shutdown...", "signal", sig.String())
	case err := <-errChan:
		slog.Error("Server error, initiating shutdown...", "error", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server gracefully stopped")
}
