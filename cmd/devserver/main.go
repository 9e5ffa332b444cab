package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/tiffino/tiffino-go/internal/devserver"
	"github.com/tiffino/tiffino-go/pkg/config"
	"github.com/tiffino/tiffino-go/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := devserver.OpenStore(cfg.DevServer.DBPath)
	if err != nil {
		logg.Error(context.Background(), "failed to open devserver database", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing devserver database", err)
		}
	}()

	user, err := store.SeedDefaults(cfg.DevServer.SeedEmail, cfg.DevServer.SeedPassword)
	if err != nil {
		logg.Error(context.Background(), "failed to seed dev account", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       cfg.DevServer.Addr(),
		"seed_email": user.Email,
	})
	logg.Info(ctx, "starting devserver")

	server := &http.Server{
		Addr:    cfg.DevServer.Addr(),
		Handler: devserver.NewRouter(cfg.DevServer, store, logg),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "devserver shutdown error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "devserver stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "devserver shut down gracefully")
}
