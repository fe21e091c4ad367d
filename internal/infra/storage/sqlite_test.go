package storage

import (
	"os"
	"testing"
	"time"

	"grid_go/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Storage {
	dbName := "test.db"
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(&domain.TradeRecord{}, &domain.OrderJournal{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(dbName)
	})

	return &Storage{db: db}
}

func makeTrade(id int64, ts time.Time) domain.Trade {
	return domain.Trade{
		ID:    id,
		Side:  domain.SideBuy,
		Price: decimal.NewFromFloat(100.5),
		Size:  decimal.NewFromFloat(0.25),
		Time:  ts,
	}
}

func TestSaveTrades_DedupByID(t *testing.T) {
	s := setupTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	first := []domain.Trade{makeTrade(1, now), makeTrade(2, now.Add(-time.Minute))}
	written, err := s.SaveTrades("BTC-PERP", first)
	if err != nil {
		t.Fatalf("SaveTrades failed: %v", err)
	}
	if written != 2 {
		t.Errorf("expected 2 rows written, got %d", written)
	}

	// Overlapping batch: id 2 again plus a new id 3.
	second := []domain.Trade{makeTrade(2, now.Add(-time.Minute)), makeTrade(3, now.Add(-2*time.Minute))}
	written, err = s.SaveTrades("BTC-PERP", second)
	if err != nil {
		t.Fatalf("SaveTrades failed: %v", err)
	}
	if written != 1 {
		t.Errorf("expected 1 row written on overlap, got %d", written)
	}

	count, err := s.CountTrades("BTC-PERP")
	if err != nil {
		t.Fatalf("CountTrades failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 archived trades, got %d", count)
	}
}

func TestLatestTradeTime(t *testing.T) {
	s := setupTestDB(t)

	latest, err := s.LatestTradeTime("BTC-PERP")
	if err != nil {
		t.Fatalf("LatestTradeTime on empty archive failed: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("expected zero time on empty archive, got %v", latest)
	}

	newest := time.Date(2022, 3, 21, 5, 21, 0, 0, time.UTC)
	trades := []domain.Trade{
		makeTrade(1, newest.Add(-time.Hour)),
		makeTrade(2, newest),
		makeTrade(3, newest.Add(-30*time.Minute)),
	}
	if _, err := s.SaveTrades("BTC-PERP", trades); err != nil {
		t.Fatalf("SaveTrades failed: %v", err)
	}

	latest, err = s.LatestTradeTime("BTC-PERP")
	if err != nil {
		t.Fatalf("LatestTradeTime failed: %v", err)
	}
	if !latest.Equal(newest) {
		t.Errorf("expected latest %v, got %v", newest, latest)
	}
}

func TestOrderJournal(t *testing.T) {
	s := setupTestDB(t)

	entries := []*domain.OrderJournal{
		{ClientID: "a", Market: "BTC-PERP", Side: domain.SideSell, Kind: domain.OrderKindRung, Price: "101.5", Size: "0.1", PlacedAt: time.Now().Add(-time.Minute)},
		{ClientID: "b", Market: "BTC-PERP", Side: domain.SideBuy, Kind: domain.OrderKindHedge, Price: "100.48", Size: "0.1", PlacedAt: time.Now()},
	}
	for _, e := range entries {
		if err := s.AppendOrder(e); err != nil {
			t.Fatalf("AppendOrder failed: %v", err)
		}
	}

	recent, err := s.RecentOrders("BTC-PERP", 10)
	if err != nil {
		t.Fatalf("RecentOrders failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 journal rows, got %d", len(recent))
	}
	if recent[0].Kind != domain.OrderKindHedge {
		t.Errorf("expected newest entry first, got kind %s", recent[0].Kind)
	}
}
