package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"grid_go/internal/infra"
	"grid_go/internal/infra/ftx"
	"grid_go/internal/infra/storage"
)

const defaultConfigPath = "configs/config.yaml"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Client  *ftx.Client
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, client)
func (b *Bootstrap) Initialize() error {
	slog.Info("bootstrapping grid agent")

	// 1. Load Config
	path := os.Getenv("GRID_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized", "path", cfg.Storage.Path)

	// 4. Signed REST client
	restURL := cfg.API.FTX.RestURL
	if restURL == "" {
		restURL = ftx.DefaultRestURL
	}
	b.Client = ftx.NewClientWithURL(restURL, cfg.API.FTX.Key, cfg.API.FTX.Secret, cfg.API.FTX.Subaccount)
	slog.Info("exchange client ready", "subaccount", cfg.API.FTX.Subaccount != "")

	return nil
}

// ArchiveTrades synchronizes recent public trade history into local storage
// in the background. Failures are logged and left for the next pass; an
// incomplete archive never affects trading.
func (b *Bootstrap) ArchiveTrades(ctx context.Context) {
	market := b.Config.Trading.Market
	window := time.Duration(b.Config.Trading.TradeArchiveMinutes) * time.Minute

	interval := window / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		b.archiveOnce(ctx, market, window)

		select {
		case <-ctx.Done():
			slog.Info("trade archiver stopped")
			return
		case <-ticker.C:
		}
	}
}

func (b *Bootstrap) archiveOnce(ctx context.Context, market string, window time.Duration) {
	start := time.Now().Add(-window)
	if latest, err := b.Storage.LatestTradeTime(market); err == nil && latest.After(start) {
		// Resume from the archive head; the id primary key absorbs the overlap.
		start = latest
	}

	trades, err := b.Client.GetAllTrades(ctx, market, &start, nil)
	if err != nil {
		slog.Warn("trade archive fetch failed", slog.Any("error", err))
		return
	}
	infra.GlobalMetrics.RecordTradesFetched(len(trades))

	written, err := b.Storage.SaveTrades(market, trades)
	if err != nil {
		slog.Warn("trade archive write failed", slog.Any("error", err))
		return
	}
	if written > 0 {
		slog.Info("trade history archived", slog.Int("fetched", len(trades)), slog.Int("new", written))
	}
}
