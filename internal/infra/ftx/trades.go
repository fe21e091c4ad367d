package ftx

import (
	"context"
	"net/url"
	"time"

	"grid_go/internal/domain"
)

// DefaultTradePageSize is the most trades the exchange returns per page.
const DefaultTradePageSize = 100

// GetTrades returns one page of public trades for a market, most recent at or
// before endTime first. Either bound may be nil.
func (c *Client) GetTrades(ctx context.Context, market string, startTime, endTime *time.Time) ([]domain.Trade, error) {
	params := url.Values{}
	setTimeParam(params, "start_time", startTime)
	setTimeParam(params, "end_time", endTime)
	var out []domain.Trade
	err := c.get(ctx, "/markets/"+market+"/trades", params, &out)
	return out, err
}

// GetAllTrades walks a market's trade history backward from endTime (or now)
// to startTime, coalescing the paginated results into a deduplicated list.
//
// Each page shares the same startTime while endTime shrinks to the minimum
// trade timestamp seen in the current page. That boundary is inclusive, so a
// trade sitting exactly on it can arrive again in the next page; dedup by
// trade id is what makes the walk correct, not an optimization.
//
// The result holds each trade id at most once. Ordering is fetch order, not
// chronological. Any client failure propagates unchanged: an incomplete
// history is for the caller to handle, not to silently retry.
func (c *Client) GetAllTrades(ctx context.Context, market string, startTime, endTime *time.Time) ([]domain.Trade, error) {
	seen := make(map[int64]struct{})
	var results []domain.Trade

	end := endTime
	for {
		page, err := c.GetTrades(ctx, market, startTime, end)
		if err != nil {
			return nil, err
		}
		// Empty page: nothing older before the current bound.
		if len(page) == 0 {
			break
		}

		minTime := page[0].Time
		added := 0
		for _, trade := range page {
			if trade.Time.Before(minTime) {
				minTime = trade.Time
			}
			if _, dup := seen[trade.ID]; dup {
				continue
			}
			seen[trade.ID] = struct{}{}
			results = append(results, trade)
			added++
		}
		c.logger.Debug("trade page fetched",
			"market", market, "page", len(page), "added", added,
			"end_time", minTime)

		// A short page means the history is exhausted on the old end.
		if len(page) < DefaultTradePageSize {
			break
		}

		next := minTime
		end = &next
	}

	return results, nil
}
