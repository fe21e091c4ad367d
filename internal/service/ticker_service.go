package service

import (
	"context"
	"sync"

	"grid_go/internal/domain"
)

// TickerService holds the latest quote per market from the websocket feed.
// It is an observability cache; trading decisions always re-read REST state.
type TickerService struct {
	mu         sync.RWMutex
	quotes     map[string]*domain.Ticker
	tickerChan chan *domain.Ticker
}

// NewTickerService creates a new TickerService instance
func NewTickerService() *TickerService {
	return &TickerService{
		quotes:     make(map[string]*domain.Ticker),
		tickerChan: make(chan *domain.Ticker, 1000), // buffered for quote bursts
	}
}

// Chan returns the channel for incoming ticker updates
func (s *TickerService) Chan() chan *domain.Ticker {
	return s.tickerChan
}

// StartProcessor starts a background goroutine to consume quotes from the channel
func (s *TickerService) StartProcessor(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ticker := <-s.tickerChan:
				s.Process(ticker)
			}
		}
	}()
}

// Process stores one quote. Thread-safe.
func (s *TickerService) Process(ticker *domain.Ticker) {
	if ticker == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[ticker.Market] = ticker
}

// Last returns the most recent quote for a market.
func (s *TickerService) Last(market string) (*domain.Ticker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.quotes[market]
	return t, ok
}

// Markets returns the markets a quote has been seen for.
func (s *TickerService) Markets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.quotes))
	for m := range s.quotes {
		out = append(out, m)
	}
	return out
}
