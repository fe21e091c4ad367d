package ftx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"grid_go/internal/domain"
)

func tradeAt(id int64, ts time.Time) domain.Trade {
	return domain.Trade{
		ID:    id,
		Price: decimal.NewFromInt(100),
		Size:  decimal.NewFromInt(1),
		Side:  domain.SideBuy,
		Time:  ts,
	}
}

func writeTradePage(w http.ResponseWriter, trades []domain.Trade) {
	result, _ := json.Marshal(trades)
	fmt.Fprintf(w, `{"success":true,"result":%s}`, result)
}

func TestGetAllTrades_DedupAcrossOverlappingPages(t *testing.T) {
	base := time.Date(2022, 3, 21, 12, 0, 0, 0, time.UTC)

	// Page 1: ids 500..401, one second apart, newest first.
	// Page 2: repeats the three oldest ids of page 1, then 30 older trades.
	// The short second page terminates the walk.
	page1 := make([]domain.Trade, 0, DefaultTradePageSize)
	for i := 0; i < DefaultTradePageSize; i++ {
		page1 = append(page1, tradeAt(int64(500-i), base.Add(-time.Duration(i)*time.Second)))
	}
	page2 := []domain.Trade{page1[97], page1[98], page1[99]}
	for i := 0; i < 30; i++ {
		page2 = append(page2, tradeAt(int64(400-i), base.Add(-time.Duration(100+i)*time.Second)))
	}

	calls := 0
	var secondEndTime string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			writeTradePage(w, page1)
		default:
			secondEndTime = r.URL.Query().Get("end_time")
			writeTradePage(w, page2)
		}
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, "key", "secret", "")
	trades, err := client.GetAllTrades(context.Background(), "BTC-PERP", nil, nil)
	if err != nil {
		t.Fatalf("GetAllTrades failed: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected 2 pages fetched, got %d", calls)
	}
	if len(trades) != 130 {
		t.Errorf("expected 130 distinct trades, got %d", len(trades))
	}

	seen := make(map[int64]int)
	for _, tr := range trades {
		seen[tr.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("trade id %d appears %d times, want exactly once", id, n)
		}
	}

	// The second request's end bound is the minimum timestamp of page 1.
	wantEnd := float64(base.Add(-99 * time.Second).UnixMicro()) / 1e6
	gotEnd, err := strconv.ParseFloat(secondEndTime, 64)
	if err != nil {
		t.Fatalf("end_time %q not a float: %v", secondEndTime, err)
	}
	if math.Abs(gotEnd-wantEnd) > 1e-3 {
		t.Errorf("expected end_time %f, got %f", wantEnd, gotEnd)
	}
}

func TestGetAllTrades_EmptyPageTerminates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeTradePage(w, nil)
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, "key", "secret", "")
	trades, err := client.GetAllTrades(context.Background(), "BTC-PERP", nil, nil)
	if err != nil {
		t.Fatalf("GetAllTrades failed: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
	if calls != 1 {
		t.Errorf("empty page must terminate after one call, got %d", calls)
	}
}

func TestGetAllTrades_ShortPageTerminates(t *testing.T) {
	base := time.Date(2022, 3, 21, 12, 0, 0, 0, time.UTC)
	page := []domain.Trade{tradeAt(3, base), tradeAt(2, base.Add(-time.Second)), tradeAt(1, base.Add(-2*time.Second))}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeTradePage(w, page)
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, "key", "secret", "")
	trades, err := client.GetAllTrades(context.Background(), "BTC-PERP", nil, nil)
	if err != nil {
		t.Fatalf("GetAllTrades failed: %v", err)
	}
	if len(trades) != 3 {
		t.Errorf("expected 3 trades from the single short page, got %d", len(trades))
	}
	if calls != 1 {
		t.Errorf("short page must terminate after one call, got %d", calls)
	}
}

func TestGetAllTrades_ErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, "key", "secret", "")
	_, err := client.GetAllTrades(context.Background(), "BTC-PERP", nil, nil)
	if err == nil {
		t.Fatal("expected the client failure to propagate uninterrupted")
	}
}
