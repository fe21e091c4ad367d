package domain

import "context"

// Exchange is the slice of the exchange API the grid engine depends on.
// Implemented by the REST client; tests inject a fake.
type Exchange interface {
	GetOrderbook(ctx context.Context, market string, depth int) (*Orderbook, error)
	GetOpenOrders(ctx context.Context, market string) ([]Order, error)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)
}

// TickerWorker defines the interface for the websocket quote feed
type TickerWorker interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

// OrderJournalist records placed orders for offline inspection.
// Journaling is best-effort; a write failure never blocks trading.
type OrderJournalist interface {
	AppendOrder(entry *OrderJournal) error
}
