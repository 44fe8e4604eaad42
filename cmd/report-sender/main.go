package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/finance-tracker/internal/app/reportsender"
	"github.com/magabrotheeeer/finance-tracker/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting report sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := reportsender.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize report sender", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("report sender stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("report sender stopped gracefully")
}
