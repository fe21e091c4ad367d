package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is one [price, size] pair from the order book.
type PriceLevel [2]decimal.Decimal

// Price returns the level's price.
func (l PriceLevel) Price() decimal.Decimal { return l[0] }

// Size returns the resting size at the level.
func (l PriceLevel) Size() decimal.Decimal { return l[1] }

// Orderbook is a depth snapshot, best levels first.
type Orderbook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// BestBid returns the top bid price, if any.
func (b *Orderbook) BestBid() (decimal.Decimal, bool) {
	if len(b.Bids) == 0 {
		return decimal.Zero, false
	}
	return b.Bids[0].Price(), true
}

// BestAsk returns the top ask price, if any.
func (b *Orderbook) BestAsk() (decimal.Decimal, bool) {
	if len(b.Asks) == 0 {
		return decimal.Zero, false
	}
	return b.Asks[0].Price(), true
}

// Trade is a single public fill from a market's trade history.
// ID is the deduplication key across overlapping pages; Time drives
// backward pagination.
type Trade struct {
	ID          int64           `json:"id"`
	Price       decimal.Decimal `json:"price"`
	Size        decimal.Decimal `json:"size"`
	Side        string          `json:"side"`
	Liquidation bool            `json:"liquidation"`
	Time        time.Time       `json:"time"`
}

// Ticker is a live quote pushed over the websocket feed.
type Ticker struct {
	Market string          `json:"market"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
	Last   decimal.Decimal `json:"last"`
	Time   time.Time       `json:"time"`
}

// Mid returns the bid/ask midpoint, or zero when either side is empty.
func (t *Ticker) Mid() decimal.Decimal {
	if t.Bid.IsZero() || t.Ask.IsZero() {
		return decimal.Zero
	}
	return t.Bid.Add(t.Ask).Div(decimal.NewFromInt(2))
}
