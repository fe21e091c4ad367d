package domain

import (
	"time"
)

// TradeRecord is the persisted form of a fetched public trade.
// The exchange-assigned id is the primary key, so re-archiving an
// overlapping time window is a no-op for already-seen trades.
type TradeRecord struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Market      string    `gorm:"index" json:"market"`
	Side        string    `json:"side"`
	Price       string    `json:"price"`
	Size        string    `json:"size"`
	Liquidation bool      `json:"liquidation"`
	Time        time.Time `gorm:"index" json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderJournal is one row of the local placement log (rung or hedge).
// It is a record of what was sent, not authoritative order state.
type OrderJournal struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID string    `gorm:"index" json:"client_id"`
	Market   string    `gorm:"index" json:"market"`
	Side     string    `json:"side"`
	Kind     string    `json:"kind"` // "rung", "hedge"
	Price    string    `json:"price"`
	Size     string    `json:"size"`
	PlacedAt time.Time `json:"placed_at"`
}

const (
	OrderKindRung  = "rung"
	OrderKindHedge = "hedge"
)
