package ftx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"grid_go/internal/domain"
	"grid_go/internal/infra"
)

// TickerWorker streams live quotes from the FTX websocket ticker channel.
// It is a supplemental feed: the grid engine still re-queries REST state every
// tick, so a dropped connection never stalls trading.
type TickerWorker struct {
	wsURL      string
	markets    []string
	tickerChan chan<- *domain.Ticker
	conn       *websocket.Conn
	mu         sync.RWMutex
	writeMu    sync.Mutex
	connected  bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewTickerWorker creates a worker subscribed to the given markets.
func NewTickerWorker(wsURL string, markets []string, tickerChan chan<- *domain.Ticker) *TickerWorker {
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	return &TickerWorker{
		wsURL:      wsURL,
		markets:    markets,
		tickerChan: tickerChan,
	}
}

// Connect starts the websocket connection with automatic reconnection
func (w *TickerWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

func (w *TickerWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ticker worker panic recovered", slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("ticker worker connection loop stopped")
			return
		default:
		}

		err := w.connect(ctx)
		if err != nil {
			slog.Warn("ticker worker connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := calculateWSBackoff(retryCount)
			retryCount++
			if retryCount > wsMaxRetries {
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.readLoop(ctx)
	}
}

func (w *TickerWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	infra.GlobalMetrics.IncrementConnections()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return fmt.Errorf("subscribe failed: %w", err)
	}

	// Start ping goroutine
	go w.pingLoop(ctx)

	slog.Info("ticker websocket connected", slog.Int("markets", len(w.markets)))
	return nil
}

func (w *TickerWorker) subscribe() error {
	for _, market := range w.markets {
		req := wsRequest{Op: "subscribe", Channel: "ticker", Market: market}
		msgBytes, err := json.Marshal(req)
		if err != nil {
			return err
		}
		if err := w.threadSafeWrite(websocket.TextMessage, msgBytes); err != nil {
			return err
		}
	}
	return nil
}

func (w *TickerWorker) threadSafeWrite(messageType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	conn := w.conn
	w.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("connection is nil")
	}

	return conn.WriteMessage(messageType, data)
}

func (w *TickerWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ticker worker pingLoop panic recovered", slog.Any("panic", r))
		}
	}()

	ping, _ := json.Marshal(wsRequest{Op: "ping"})
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.threadSafeWrite(websocket.TextMessage, ping); err != nil {
				slog.Warn("ticker worker ping failed", slog.Any("error", err))
			}
		}
	}
}

func (w *TickerWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("ticker worker read error", slog.Any("error", err))
			}
			w.closeConnection()
			return
		}

		w.handleMessage(message)
	}
}

func (w *TickerWorker) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "pong", "subscribed":
		return
	case "error":
		slog.Warn("ticker channel error", slog.Int("code", msg.Code), slog.String("msg", msg.Msg))
		return
	}

	if msg.Channel != "ticker" || len(msg.Data) == 0 {
		return
	}

	var data wsTickerData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return
	}

	ticker := &domain.Ticker{
		Market: msg.Market,
		Bid:    data.Bid,
		Ask:    data.Ask,
		Last:   data.Last,
		Time:   unixSecondsToTime(data.Time),
	}

	if w.tickerChan != nil {
		select {
		case w.tickerChan <- ticker:
		default:
			slog.Warn("ticker channel full, dropping quote", slog.String("market", msg.Market))
		}
	}
}

func (w *TickerWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	if w.connected {
		infra.GlobalMetrics.DecrementConnections()
	}
	w.connected = false
}

// Disconnect closes the connection
func (w *TickerWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
	slog.Info("ticker websocket disconnected")
}

// IsConnected returns connection status
func (w *TickerWorker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}
