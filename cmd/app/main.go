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

	"grid_go/internal/app"
	"grid_go/internal/engine"
	"grid_go/internal/infra/ftx"
	"grid_go/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background trade-history archiver
	go bootstrap.ArchiveTrades(ctx)

	// 5. Websocket quote feed (supplemental; the engine polls REST regardless)
	tickers := service.NewTickerService()
	tickers.StartProcessor(ctx)

	wsWorker := ftx.NewTickerWorker(cfg.API.FTX.WSURL, []string{cfg.Trading.Market}, tickers.Chan())
	if err := wsWorker.Connect(ctx); err != nil {
		slog.Error("failed to start ticker feed", slog.Any("error", err))
	}
	defer wsWorker.Disconnect()

	// 6. Grid engine
	grid := engine.New(
		engine.Mode(cfg.Trading.Mode),
		engine.Config{
			Market:             cfg.Trading.Market,
			OrderSize:          cfg.Trading.OrderSize,
			StepRate:           cfg.Trading.StepRate,
			TriggerRate:        cfg.Trading.TriggerRate,
			MaxOpenRungs:       cfg.Trading.MaxOpenRungs,
			PollInterval:       time.Duration(cfg.Trading.PollIntervalSec) * time.Second,
			HedgeRetryInterval: time.Duration(cfg.Trading.HedgeRetrySec) * time.Second,
			HedgeMaxAttempts:   cfg.Trading.HedgeMaxAttempts,
		},
		bootstrap.Client,
		bootstrap.Storage,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- grid.Run(ctx)
	}()

	slog.InfoContext(ctx, "grid agent operational",
		slog.String("market", cfg.Trading.Market),
		slog.String("mode", cfg.Trading.Mode))

	// Wait for shutdown signal or a fatal engine error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down gracefully")
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("engine exited", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
	}
}
