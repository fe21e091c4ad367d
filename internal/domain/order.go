package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeLimit  = "limit"
	OrderTypeMarket = "market"

	OrderStatusNew    = "new"
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
)

// Order is a snapshot of an order as reported by the exchange.
// The exchange owns order state; nothing here is cached across poll ticks.
type Order struct {
	ID            int64           `json:"id"`
	ClientID      string          `json:"clientId"`
	Market        string          `json:"market"`
	Side          string          `json:"side"` // "buy", "sell"
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	FilledSize    decimal.Decimal `json:"filledSize"`
	RemainingSize decimal.Decimal `json:"remainingSize"`
	Type          string          `json:"type"` // "limit", "market"
	Status        string          `json:"status"`
	ReduceOnly    bool            `json:"reduceOnly"`
	IOC           bool            `json:"ioc"`
	PostOnly      bool            `json:"postOnly"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// IsOpen checks if the order is still resting on the book.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusNew || o.Status == OrderStatusOpen
}

// PlaceOrderRequest carries the parameters for a new order.
type PlaceOrderRequest struct {
	Market     string
	Side       string
	Price      decimal.Decimal
	Size       decimal.Decimal
	Type       string
	ReduceOnly bool
	IOC        bool
	PostOnly   bool
	ClientID   string // optional correlation id; reused on retries so the exchange can dedupe
}

// OrderRefKind discriminates how an existing order is addressed.
type OrderRefKind int

const (
	RefByExchangeID OrderRefKind = iota + 1
	RefByClientID
)

// OrderRef identifies an existing order either by the exchange-assigned id or
// by the client-assigned correlation id. Exactly one applies; the constructors
// make supplying both unrepresentable.
type OrderRef struct {
	kind       OrderRefKind
	exchangeID int64
	clientID   string
}

// NewOrderRef addresses an order by its exchange-assigned id.
func NewOrderRef(id int64) OrderRef {
	return OrderRef{kind: RefByExchangeID, exchangeID: id}
}

// NewClientOrderRef addresses an order by its client-assigned id.
func NewClientOrderRef(clientID string) OrderRef {
	return OrderRef{kind: RefByClientID, clientID: clientID}
}

// Kind returns how the order is addressed.
func (r OrderRef) Kind() OrderRefKind { return r.kind }

// ExchangeID returns the exchange-assigned id. Valid only for RefByExchangeID.
func (r OrderRef) ExchangeID() int64 { return r.exchangeID }

// ClientID returns the client-assigned id. Valid only for RefByClientID.
func (r OrderRef) ClientID() string { return r.clientID }

// IsZero reports whether the ref was never initialized via a constructor.
func (r OrderRef) IsZero() bool { return r.kind == 0 }

// OrdersOfSide filters orders down to one side of the book.
func OrdersOfSide(orders []Order, side string) []Order {
	var out []Order
	for _, o := range orders {
		if o.Side == side {
			out = append(out, o)
		}
	}
	return out
}
