package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grid_go/internal/domain"
	"grid_go/internal/infra"
)

// Mode selects which side of the book the grid rests its rungs on.
// The two modes are mirror images differing only in comparison direction.
type Mode string

const (
	ModeSell Mode = "sell"
	ModeBuy  Mode = "buy"
)

// ErrHedgeExhausted is returned when a hedge could not be placed within the
// configured attempt budget. A rung is resting without its exit at that point,
// so the engine stops rather than keep laddering on a broken invariant.
var ErrHedgeExhausted = errors.New("hedge placement attempts exhausted")

// Config holds the static parameters of one grid instance.
type Config struct {
	Market             string
	OrderSize          decimal.Decimal
	StepRate           decimal.Decimal // fractional distance between a rung and its hedge
	TriggerRate        decimal.Decimal // fractional move past the anchor before a new rung
	MaxOpenRungs       int
	PollInterval       time.Duration
	HedgeRetryInterval time.Duration
	HedgeMaxAttempts   int
}

func (c *Config) applyDefaults() {
	if c.MaxOpenRungs <= 0 {
		c.MaxOpenRungs = infra.DefaultMaxOpenRungs
	}
	if c.PollInterval <= 0 {
		c.PollInterval = infra.DefaultPollIntervalSec * time.Second
	}
	if c.HedgeRetryInterval <= 0 {
		c.HedgeRetryInterval = infra.DefaultHedgeRetrySec * time.Second
	}
	if c.HedgeMaxAttempts <= 0 {
		c.HedgeMaxAttempts = infra.DefaultHedgeMaxAttempts
	}
}

// Grid keeps a bounded ladder of resting orders on one side of a market and
// places a counter-order for every rung. It holds no order state of its own:
// each tick re-derives the ladder from the exchange's open-order snapshot, so
// a failed tick leaves nothing behind to corrupt the next one.
type Grid struct {
	cfg      Config
	mode     Mode
	exchange domain.Exchange
	journal  domain.OrderJournalist // may be nil
	logger   *slog.Logger
}

// New creates a grid instance. journal may be nil to disable the placement log.
func New(mode Mode, cfg Config, exchange domain.Exchange, journal domain.OrderJournalist) *Grid {
	cfg.applyDefaults()
	return &Grid{
		cfg:      cfg,
		mode:     mode,
		exchange: exchange,
		journal:  journal,
		logger: slog.Default().With(
			"module", "grid",
			"market", cfg.Market,
			"mode", string(mode),
		),
	}
}

// Run polls until ctx is cancelled or a hedge cannot be established.
// Transient read and seed failures are swallowed; the next tick starts fresh.
func (g *Grid) Run(ctx context.Context) error {
	g.logger.Info("grid started",
		"size", g.cfg.OrderSize.String(),
		"step_rate", g.cfg.StepRate.String(),
		"trigger_rate", g.cfg.TriggerRate.String(),
		"max_open_rungs", g.cfg.MaxOpenRungs,
	)

	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("grid stopped")
			return ctx.Err()
		case <-ticker.C:
		}

		if err := g.Tick(ctx); err != nil {
			g.logger.Error("grid halted", "error", err)
			return err
		}
		infra.GlobalMetrics.RecordTick()
	}
}

// Tick executes one poll cycle. It returns an error only for conditions the
// loop cannot recover from (cancellation, exhausted hedge); everything else is
// logged and deferred to the next tick.
func (g *Grid) Tick(ctx context.Context) error {
	book, err := g.exchange.GetOrderbook(ctx, g.cfg.Market, 1)
	if err != nil {
		g.swallowReadFailure("orderbook", err)
		return ignoreTransient(ctx, err)
	}
	open, err := g.exchange.GetOpenOrders(ctx, g.cfg.Market)
	if err != nil {
		g.swallowReadFailure("open orders", err)
		return ignoreTransient(ctx, err)
	}

	price, ok := g.topOfBook(book)
	if !ok {
		g.logger.Warn("empty book, skipping tick")
		return nil
	}

	rungs := domain.OrdersOfSide(open, g.rungSide())

	// No rungs at all: seed the ladder at the current top of book.
	if len(rungs) == 0 {
		return g.placeRungWithHedge(ctx, price)
	}

	// Ladder full: wait for fills to free capacity.
	if len(rungs) >= g.cfg.MaxOpenRungs {
		return nil
	}

	anchor, ok := g.anchorPrice(open)
	if !ok {
		// A rung is resting but no counter-side order is visible yet.
		// Without an anchor there is no safe reference point, so no new rung.
		g.logger.Debug("no counter-side orders, skipping rung evaluation")
		return nil
	}

	if g.triggered(price, anchor) {
		return g.placeRungWithHedge(ctx, price)
	}

	return nil
}

// placeRungWithHedge places one monitored-side order at price and then its
// counter-order at the step offset. The rung is best-effort once per tick; the
// hedge is retried until it lands or the attempt budget runs out, because a
// rung without an exit breaks the ladder's balance.
func (g *Grid) placeRungWithHedge(ctx context.Context, price decimal.Decimal) error {
	rung := domain.PlaceOrderRequest{
		Market:   g.cfg.Market,
		Side:     g.rungSide(),
		Price:    price,
		Size:     g.cfg.OrderSize,
		Type:     domain.OrderTypeLimit,
		ClientID: uuid.New().String(),
	}
	if _, err := g.exchange.PlaceOrder(ctx, rung); err != nil {
		infra.GlobalMetrics.RecordError()
		g.logger.Warn("rung placement failed, deferring to next tick", "error", err)
		return ignoreTransient(ctx, err)
	}
	infra.GlobalMetrics.RecordRungPlaced()
	g.record(rung, domain.OrderKindRung)

	hedge := domain.PlaceOrderRequest{
		Market:   g.cfg.Market,
		Side:     g.counterSide(),
		Price:    g.hedgePrice(price),
		Size:     g.cfg.OrderSize,
		Type:     domain.OrderTypeLimit,
		ClientID: uuid.New().String(), // one id across retries; the exchange dedupes replays
	}

	for attempt := 1; ; attempt++ {
		_, err := g.exchange.PlaceOrder(ctx, hedge)
		if err == nil {
			infra.GlobalMetrics.RecordHedgePlaced()
			g.record(hedge, domain.OrderKindHedge)
			return nil
		}

		infra.GlobalMetrics.RecordHedgeRetry()
		g.logger.Warn("hedge placement failed",
			"attempt", attempt, "price", hedge.Price.String(), "error", err)

		if attempt >= g.cfg.HedgeMaxAttempts {
			return fmt.Errorf("hedge at %s after %d attempts: %w (last error: %v)",
				hedge.Price.String(), attempt, ErrHedgeExhausted, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.HedgeRetryInterval):
		}
	}
}

// rungSide is the monitored side of the book.
func (g *Grid) rungSide() string {
	if g.mode == ModeBuy {
		return domain.SideBuy
	}
	return domain.SideSell
}

// counterSide is where hedges rest.
func (g *Grid) counterSide() string {
	if g.mode == ModeBuy {
		return domain.SideSell
	}
	return domain.SideBuy
}

// topOfBook returns the best opposing price: best bid when selling rungs,
// best ask when buying them.
func (g *Grid) topOfBook(book *domain.Orderbook) (decimal.Decimal, bool) {
	if g.mode == ModeBuy {
		return book.BestAsk()
	}
	return book.BestBid()
}

// anchorPrice computes the extremum price among open counter-side orders:
// max for sell mode, min for buy mode. Returns false when no counter-side
// order exists; no sentinel value stands in for a missing anchor.
func (g *Grid) anchorPrice(open []domain.Order) (decimal.Decimal, bool) {
	var anchor decimal.Decimal
	found := false
	for _, o := range open {
		if o.Side != g.counterSide() {
			continue
		}
		if !found {
			anchor = o.Price
			found = true
			continue
		}
		if g.mode == ModeSell && o.Price.GreaterThan(anchor) {
			anchor = o.Price
		}
		if g.mode == ModeBuy && o.Price.LessThan(anchor) {
			anchor = o.Price
		}
	}
	return anchor, found
}

// triggered reports whether price has moved past the anchor by the trigger
// rate in the favorable direction.
func (g *Grid) triggered(price, anchor decimal.Decimal) bool {
	one := decimal.NewFromInt(1)
	if g.mode == ModeBuy {
		threshold := anchor.Mul(one.Sub(g.cfg.TriggerRate))
		return price.LessThan(threshold)
	}
	threshold := anchor.Mul(one.Add(g.cfg.TriggerRate))
	return price.GreaterThan(threshold)
}

// hedgePrice offsets the rung price by the step rate toward profit.
func (g *Grid) hedgePrice(price decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if g.mode == ModeBuy {
		return price.Mul(one.Add(g.cfg.StepRate))
	}
	return price.Mul(one.Sub(g.cfg.StepRate))
}

func (g *Grid) record(req domain.PlaceOrderRequest, kind string) {
	if g.journal == nil {
		return
	}
	entry := &domain.OrderJournal{
		ClientID: req.ClientID,
		Market:   req.Market,
		Side:     req.Side,
		Kind:     kind,
		Price:    req.Price.String(),
		Size:     req.Size.String(),
		PlacedAt: time.Now(),
	}
	if err := g.journal.AppendOrder(entry); err != nil {
		g.logger.Warn("order journal write failed", "error", err)
	}
}

func (g *Grid) swallowReadFailure(what string, err error) {
	infra.GlobalMetrics.RecordPollFailure()
	g.logger.Warn("poll read failed, retrying next tick", "what", what, "error", err)
}

// ignoreTransient swallows everything except cancellation, which must stop
// the loop even when it surfaces through a wrapped request error.
func ignoreTransient(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}
