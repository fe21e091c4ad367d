package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grid_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Storage persists the trade-history archive and the order placement journal.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at the given path.
func NewStorage(path string) (*Storage, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.TradeRecord{}, &domain.OrderJournal{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Trade archive
// ======================================================================================

// SaveTrades inserts fetched trades, skipping ids already archived, and
// returns how many rows were actually written.
func (s *Storage) SaveTrades(market string, trades []domain.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	records := make([]domain.TradeRecord, 0, len(trades))
	now := time.Now()
	for _, t := range trades {
		records = append(records, domain.TradeRecord{
			ID:          t.ID,
			Market:      market,
			Side:        t.Side,
			Price:       t.Price.String(),
			Size:        t.Size.String(),
			Liquidation: t.Liquidation,
			Time:        t.Time,
			CreatedAt:   now,
		})
	}

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records)
	return int(res.RowsAffected), res.Error
}

// CountTrades returns how many trades are archived for a market.
func (s *Storage) CountTrades(market string) (int64, error) {
	var count int64
	err := s.db.Model(&domain.TradeRecord{}).Where("market = ?", market).Count(&count).Error
	return count, err
}

// LatestTradeTime returns the newest archived trade time for a market, or
// zero time when nothing is archived yet.
func (s *Storage) LatestTradeTime(market string) (time.Time, error) {
	var record domain.TradeRecord
	err := s.db.Where("market = ?", market).Order("time DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	return record.Time, err
}

// ======================================================================================
// Order journal
// ======================================================================================

// AppendOrder records one placed order (rung or hedge).
func (s *Storage) AppendOrder(entry *domain.OrderJournal) error {
	return s.db.Create(entry).Error
}

// RecentOrders returns the most recently journaled placements for a market.
func (s *Storage) RecentOrders(market string, limit int) ([]domain.OrderJournal, error) {
	var entries []domain.OrderJournal
	err := s.db.Where("market = ?", market).Order("placed_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
