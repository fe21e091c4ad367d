package ftx

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =====================================================
// REST wire types
// =====================================================

// envelope is the uniform wrapper around every REST response.
// Exactly one of Result/Error is meaningful, gated by Success.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

// Market describes one tradable instrument from GET /markets.
type Market struct {
	Name           string          `json:"name"`
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	Type           string          `json:"type"` // "spot", "future"
	Underlying     string          `json:"underlying"`
	Enabled        bool            `json:"enabled"`
	Ask            decimal.Decimal `json:"ask"`
	Bid            decimal.Decimal `json:"bid"`
	Last           decimal.Decimal `json:"last"`
	PriceIncrement decimal.Decimal `json:"priceIncrement"`
	SizeIncrement  decimal.Decimal `json:"sizeIncrement"`
}

// Future describes one futures contract from GET /futures.
type Future struct {
	Name           string          `json:"name"`
	Underlying     string          `json:"underlying"`
	Type           string          `json:"type"` // "future", "perpetual", "move"
	Perpetual      bool            `json:"perpetual"`
	Expired        bool            `json:"expired"`
	Ask            decimal.Decimal `json:"ask"`
	Bid            decimal.Decimal `json:"bid"`
	Last           decimal.Decimal `json:"last"`
	Mark           decimal.Decimal `json:"mark"`
	Index          decimal.Decimal `json:"index"`
	OpenInterest   decimal.Decimal `json:"openInterest"`
	ExpiryDatetime *time.Time      `json:"expiry"`
}

// Account is the response of GET /account.
type Account struct {
	Username          string          `json:"username"`
	Collateral        decimal.Decimal `json:"collateral"`
	FreeCollateral    decimal.Decimal `json:"freeCollateral"`
	TotalAccountValue decimal.Decimal `json:"totalAccountValue"`
	Leverage          decimal.Decimal `json:"leverage"`
	MarginFraction    decimal.Decimal `json:"marginFraction"`
	TakerFee          decimal.Decimal `json:"takerFee"`
	MakerFee          decimal.Decimal `json:"makerFee"`
	Liquidating       bool            `json:"liquidating"`
}

// Balance is one wallet entry from GET /wallet/balances.
type Balance struct {
	Coin     string          `json:"coin"`
	Free     decimal.Decimal `json:"free"`
	Total    decimal.Decimal `json:"total"`
	USDValue decimal.Decimal `json:"usdValue"`
}

// Position is one futures position from GET /positions.
type Position struct {
	Future                    string           `json:"future"`
	Side                      string           `json:"side"`
	Size                      decimal.Decimal  `json:"size"`
	NetSize                   decimal.Decimal  `json:"netSize"`
	EntryPrice                decimal.Decimal  `json:"entryPrice"`
	EstimatedLiquidationPrice decimal.Decimal  `json:"estimatedLiquidationPrice"`
	RecentAverageOpenPrice    *decimal.Decimal `json:"recentAverageOpenPrice"`
	RealizedPnl               decimal.Decimal  `json:"realizedPnl"`
	UnrealizedPnl             decimal.Decimal  `json:"unrealizedPnl"`
}

// Fill is one private fill from GET /fills.
type Fill struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	TradeID     int64           `json:"tradeId"`
	Market      string          `json:"market"`
	Side        string          `json:"side"`
	Liquidity   string          `json:"liquidity"` // "maker", "taker"
	Price       decimal.Decimal `json:"price"`
	Size        decimal.Decimal `json:"size"`
	Fee         decimal.Decimal `json:"fee"`
	FeeCurrency string          `json:"feeCurrency"`
	Time        time.Time       `json:"time"`
}

// DepositAddress is the response of GET /wallet/deposit_address/{coin}.
type DepositAddress struct {
	Address string `json:"address"`
	Tag     string `json:"tag"`
}

// ConditionalOrder is one trigger order from GET /conditional_orders.
type ConditionalOrder struct {
	ID           int64            `json:"id"`
	Market       string           `json:"market"`
	Side         string           `json:"side"`
	Type         string           `json:"type"` // "stop", "take_profit", "trailing_stop"
	OrderType    string           `json:"orderType"`
	Size         decimal.Decimal  `json:"size"`
	Status       string           `json:"status"`
	TriggerPrice *decimal.Decimal `json:"triggerPrice"`
	OrderPrice   *decimal.Decimal `json:"orderPrice"`
	TrailValue   *decimal.Decimal `json:"trailValue"`
	ReduceOnly   bool             `json:"reduceOnly"`
	TriggeredAt  *time.Time       `json:"triggeredAt"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// =====================================================
// Websocket wire types
// =====================================================

const (
	wsMaxRetries   = 10
	wsBaseDelay    = 1 * time.Second
	wsMaxDelay     = 60 * time.Second
	wsPingInterval = 15 * time.Second
	wsReadTimeout  = 30 * time.Second
)

// wsRequest represents an FTX websocket op (subscribe, ping).
type wsRequest struct {
	Op      string `json:"op"`
	Channel string `json:"channel,omitempty"`
	Market  string `json:"market,omitempty"`
}

// wsMessage represents a websocket frame from the server.
type wsMessage struct {
	Type    string          `json:"type"` // "update", "partial", "pong", "error", "subscribed"
	Channel string          `json:"channel"`
	Market  string          `json:"market"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// wsTickerData is the payload of the "ticker" channel.
type wsTickerData struct {
	Bid     decimal.Decimal `json:"bid"`
	Ask     decimal.Decimal `json:"ask"`
	BidSize decimal.Decimal `json:"bidSize"`
	AskSize decimal.Decimal `json:"askSize"`
	Last    decimal.Decimal `json:"last"`
	Time    float64         `json:"time"` // unix seconds, fractional
}

// =====================================================
// Helper functions
// =====================================================

func calculateWSBackoff(retryCount int) time.Duration {
	// Cap retry count to prevent overflow (2^6 = 64 seconds > max 60s)
	if retryCount > 6 {
		return wsMaxDelay
	}
	delay := wsBaseDelay * time.Duration(math.Pow(2, float64(retryCount)))
	if delay > wsMaxDelay {
		delay = wsMaxDelay
	}
	return delay
}

// unixSecondsToTime converts fractional unix seconds to time.Time.
func unixSecondsToTime(s float64) time.Time {
	sec := int64(s)
	nsec := int64((s - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
