package ftx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"grid_go/internal/domain"
)

// =====================================================
// Market data (public, still signed like every call)
// =====================================================

// ListMarkets returns all tradable instruments.
func (c *Client) ListMarkets(ctx context.Context) ([]Market, error) {
	var out []Market
	err := c.get(ctx, "/markets", nil, &out)
	return out, err
}

// ListFutures returns all futures contracts.
func (c *Client) ListFutures(ctx context.Context) ([]Future, error) {
	var out []Future
	err := c.get(ctx, "/futures", nil, &out)
	return out, err
}

// GetOrderbook returns a depth snapshot for a market. depth <= 0 uses the
// exchange default.
func (c *Client) GetOrderbook(ctx context.Context, market string, depth int) (*domain.Orderbook, error) {
	params := url.Values{}
	if depth > 0 {
		params.Set("depth", strconv.Itoa(depth))
	}
	var out domain.Orderbook
	if err := c.get(ctx, "/markets/"+market+"/orderbook", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =====================================================
// Account (pass-through reads)
// =====================================================

// GetAccount returns account info.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var out Account
	if err := c.get(ctx, "/account", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBalances returns wallet balances.
func (c *Client) GetBalances(ctx context.Context) ([]Balance, error) {
	var out []Balance
	err := c.get(ctx, "/wallet/balances", nil, &out)
	return out, err
}

// GetDepositAddress returns the deposit address for a coin.
func (c *Client) GetDepositAddress(ctx context.Context, coin string) (*DepositAddress, error) {
	var out DepositAddress
	if err := c.get(ctx, "/wallet/deposit_address/"+coin, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPositions returns all futures positions.
func (c *Client) GetPositions(ctx context.Context, showAvgPrice bool) ([]Position, error) {
	params := url.Values{}
	if showAvgPrice {
		params.Set("showAvgPrice", "true")
	}
	var out []Position
	err := c.get(ctx, "/positions", params, &out)
	return out, err
}

// GetPosition returns the position for one future, or nil when flat.
func (c *Client) GetPosition(ctx context.Context, future string, showAvgPrice bool) (*Position, error) {
	positions, err := c.GetPositions(ctx, showAvgPrice)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		if positions[i].Future == future {
			return &positions[i], nil
		}
	}
	return nil, nil
}

// GetFills returns the account's private fills.
func (c *Client) GetFills(ctx context.Context) ([]Fill, error) {
	var out []Fill
	err := c.get(ctx, "/fills", nil, &out)
	return out, err
}

// =====================================================
// Orders
// =====================================================

// GetOpenOrders returns resting orders, optionally filtered by market.
func (c *Client) GetOpenOrders(ctx context.Context, market string) ([]domain.Order, error) {
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	var out []domain.Order
	err := c.get(ctx, "/orders", params, &out)
	return out, err
}

// OrderHistoryFilter narrows GetOrderHistory. Zero-valued fields are omitted.
type OrderHistoryFilter struct {
	Market    string
	Side      string
	OrderType string
	StartTime *time.Time
	EndTime   *time.Time
}

// GetOrderHistory returns past orders matching the filter.
func (c *Client) GetOrderHistory(ctx context.Context, filter OrderHistoryFilter) ([]domain.Order, error) {
	params := url.Values{}
	setIfNotEmpty(params, "market", filter.Market)
	setIfNotEmpty(params, "side", filter.Side)
	setIfNotEmpty(params, "orderType", filter.OrderType)
	setTimeParam(params, "start_time", filter.StartTime)
	setTimeParam(params, "end_time", filter.EndTime)
	var out []domain.Order
	err := c.get(ctx, "/orders/history", params, &out)
	return out, err
}

// placeOrderBody is the wire form of an order placement. Prices and sizes go
// out as bare JSON numbers, which is what the exchange expects.
type placeOrderBody struct {
	Market     string      `json:"market"`
	Side       string      `json:"side"`
	Price      json.Number `json:"price"`
	Size       json.Number `json:"size"`
	Type       string      `json:"type"`
	ReduceOnly bool        `json:"reduceOnly"`
	IOC        bool        `json:"ioc"`
	PostOnly   bool        `json:"postOnly"`
	ClientID   string      `json:"clientId,omitempty"`
}

// PlaceOrder submits a new order and returns the exchange's view of it.
func (c *Client) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error) {
	if req.Market == "" {
		return nil, &domain.ValidationError{Field: "market", Reason: "required"}
	}
	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		return nil, &domain.ValidationError{Field: "side", Reason: "must be buy or sell"}
	}
	orderType := req.Type
	if orderType == "" {
		orderType = domain.OrderTypeLimit
	}

	body := placeOrderBody{
		Market:     req.Market,
		Side:       req.Side,
		Price:      decNum(req.Price),
		Size:       decNum(req.Size),
		Type:       orderType,
		ReduceOnly: req.ReduceOnly,
		IOC:        req.IOC,
		PostOnly:   req.PostOnly,
		ClientID:   req.ClientID,
	}

	var out domain.Order
	if err := c.post(ctx, "/orders", body, &out); err != nil {
		return nil, err
	}
	c.logger.Info("order placed",
		"market", out.Market, "side", out.Side,
		"price", out.Price.String(), "size", out.Size.String(), "id", out.ID)
	return &out, nil
}

// ModifyOrderRequest changes exactly one of price or size on an existing order.
type ModifyOrderRequest struct {
	Ref      domain.OrderRef
	Price    *decimal.Decimal
	Size     *decimal.Decimal
	ClientID string // optional new correlation id for the replacement order
}

// ModifyOrder replaces an order's price or size. The exchange cancels the old
// order and issues a new id.
func (c *Client) ModifyOrder(ctx context.Context, req ModifyOrderRequest) (*domain.Order, error) {
	if req.Ref.IsZero() {
		return nil, &domain.ValidationError{Field: "ref", Reason: "order reference required"}
	}
	if (req.Price == nil) == (req.Size == nil) {
		return nil, &domain.ValidationError{Field: "price/size", Reason: "must modify exactly one of price or size"}
	}

	var path string
	switch req.Ref.Kind() {
	case domain.RefByExchangeID:
		path = fmt.Sprintf("/orders/%d/modify", req.Ref.ExchangeID())
	case domain.RefByClientID:
		path = "/orders/by_client_id/" + req.Ref.ClientID() + "/modify"
	}

	body := map[string]any{}
	if req.Price != nil {
		body["price"] = decNum(*req.Price)
	}
	if req.Size != nil {
		body["size"] = decNum(*req.Size)
	}
	if req.ClientID != "" {
		body["clientId"] = req.ClientID
	}

	var out domain.Order
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder cancels one order by reference.
func (c *Client) CancelOrder(ctx context.Context, ref domain.OrderRef) error {
	if ref.IsZero() {
		return &domain.ValidationError{Field: "ref", Reason: "order reference required"}
	}
	switch ref.Kind() {
	case domain.RefByClientID:
		return c.delete(ctx, "/orders/by_client_id/"+ref.ClientID(), nil, nil)
	default:
		return c.delete(ctx, fmt.Sprintf("/orders/%d", ref.ExchangeID()), nil, nil)
	}
}

// CancelAllOrders cancels orders in bulk, optionally scoped to a market and to
// conditional-only or limit-only orders.
func (c *Client) CancelAllOrders(ctx context.Context, market string, conditionalOnly, limitOnly bool) error {
	body := map[string]any{
		"conditionalOrdersOnly": conditionalOnly,
		"limitOrdersOnly":       limitOnly,
	}
	if market != "" {
		body["market"] = market
	}
	return c.delete(ctx, "/orders", body, nil)
}

// =====================================================
// Conditional orders
// =====================================================

const (
	ConditionalStop         = "stop"
	ConditionalTakeProfit   = "take_profit"
	ConditionalTrailingStop = "trailing_stop"
)

// PlaceConditionalOrderRequest carries the parameters for a trigger order.
// Stop and take-profit orders need TriggerPrice (plus optional LimitPrice for
// the limit variant); trailing stops need TrailValue and no TriggerPrice.
type PlaceConditionalOrderRequest struct {
	Market          string
	Side            string
	Size            decimal.Decimal
	Type            string
	TriggerPrice    *decimal.Decimal
	LimitPrice      *decimal.Decimal
	TrailValue      *decimal.Decimal
	ReduceOnly      bool
	CancelOnTrigger bool
}

// PlaceConditionalOrder submits a trigger order. The validated type is sent to
// the exchange as-is.
func (c *Client) PlaceConditionalOrder(ctx context.Context, req PlaceConditionalOrderRequest) (*ConditionalOrder, error) {
	switch req.Type {
	case ConditionalStop, ConditionalTakeProfit:
		if req.TriggerPrice == nil {
			return nil, &domain.ValidationError{Field: "triggerPrice", Reason: "required for stop and take_profit orders"}
		}
	case ConditionalTrailingStop:
		if req.TrailValue == nil || req.TriggerPrice != nil {
			return nil, &domain.ValidationError{Field: "trailValue", Reason: "trailing stops need a trail value and cannot take a trigger price"}
		}
	default:
		return nil, &domain.ValidationError{Field: "type", Reason: "must be stop, take_profit or trailing_stop"}
	}

	body := map[string]any{
		"market":               req.Market,
		"side":                 req.Side,
		"size":                 decNum(req.Size),
		"type":                 req.Type,
		"reduceOnly":           req.ReduceOnly,
		"cancelLimitOnTrigger": req.CancelOnTrigger,
	}
	if req.TriggerPrice != nil {
		body["triggerPrice"] = decNum(*req.TriggerPrice)
	}
	if req.LimitPrice != nil {
		body["orderPrice"] = decNum(*req.LimitPrice)
	}
	if req.TrailValue != nil {
		body["trailValue"] = decNum(*req.TrailValue)
	}

	var out ConditionalOrder
	if err := c.post(ctx, "/conditional_orders", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConditionalOrders returns open trigger orders, optionally by market.
func (c *Client) GetConditionalOrders(ctx context.Context, market string) ([]ConditionalOrder, error) {
	params := url.Values{}
	setIfNotEmpty(params, "market", market)
	var out []ConditionalOrder
	err := c.get(ctx, "/conditional_orders", params, &out)
	return out, err
}

// ConditionalOrderHistoryFilter narrows GetConditionalOrderHistory.
type ConditionalOrderHistoryFilter struct {
	Market    string
	Side      string
	Type      string
	OrderType string
	StartTime *time.Time
	EndTime   *time.Time
}

// GetConditionalOrderHistory returns past trigger orders matching the filter.
func (c *Client) GetConditionalOrderHistory(ctx context.Context, filter ConditionalOrderHistoryFilter) ([]ConditionalOrder, error) {
	params := url.Values{}
	setIfNotEmpty(params, "market", filter.Market)
	setIfNotEmpty(params, "side", filter.Side)
	setIfNotEmpty(params, "type", filter.Type)
	setIfNotEmpty(params, "orderType", filter.OrderType)
	setTimeParam(params, "start_time", filter.StartTime)
	setTimeParam(params, "end_time", filter.EndTime)
	var out []ConditionalOrder
	err := c.get(ctx, "/conditional_orders/history", params, &out)
	return out, err
}

// =====================================================
// Helpers
// =====================================================

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// setTimeParam encodes a timestamp as fractional unix seconds, which is the
// exchange's time-window format.
func setTimeParam(params url.Values, key string, t *time.Time) {
	if t == nil {
		return
	}
	params.Set(key, strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64))
}

func decNum(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
