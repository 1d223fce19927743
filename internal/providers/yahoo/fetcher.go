package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/macropulse/internal/infra"
	"github.com/seenimoa/macropulse/internal/provider"
	"github.com/seenimoa/macropulse/pkg/utils"
)

// FetchLatest returns the most recent closing price for a symbol. It reads
// the daily chart first so that weekend and holiday runs still see the last
// session's close, and falls back to the realtime quote endpoint when the
// chart is unusable.
func (a *Adapter) FetchLatest(ctx context.Context, symbol string) (float64, error) {
	cacheKey := infra.Key(providerName, symbol, "latest")
	if cached, ok := a.CacheGet(cacheKey); ok {
		return cached.(float64), nil
	}

	if err := a.RateLimit(ctx); err != nil {
		return 0, provider.Unavailable(providerName, symbol, "rate limit wait", err)
	}

	value, chartErr := a.latestFromChart(ctx, symbol)
	if chartErr == nil {
		a.CacheSet(cacheKey, value)
		return value, nil
	}

	value, quoteErr := a.latestFromQuote(ctx, symbol)
	if quoteErr == nil {
		a.CacheSet(cacheKey, value)
		return value, nil
	}

	return 0, provider.Unavailable(providerName, symbol, "chart and quote endpoints failed", errors.Join(chartErr, quoteErr))
}

// latestFromChart reads the last non-null daily close from the chart API.
func (a *Adapter) latestFromChart(ctx context.Context, symbol string) (float64, error) {
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", a.baseURL, url.PathEscape(symbol))

	var resp chartResponse
	if err := fetchJSON(ctx, chartURL, &resp); err != nil {
		return 0, err
	}
	if resp.Chart.Error != nil {
		return 0, fmt.Errorf("chart API error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return 0, fmt.Errorf("no chart data for %s", symbol)
	}

	closes := closeSeries(resp.Chart.Result[0])
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return *closes[i], nil
		}
	}
	return 0, fmt.Errorf("no usable close for %s", symbol)
}

// latestFromQuote reads the regular market price from the quote API.
func (a *Adapter) latestFromQuote(ctx context.Context, symbol string) (float64, error) {
	quoteURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", a.baseURL, url.QueryEscape(symbol))

	var resp quoteResponse
	if err := fetchJSON(ctx, quoteURL, &resp); err != nil {
		return 0, err
	}
	if resp.QuoteResponse.Error != nil {
		return 0, fmt.Errorf("quote API error: %s", resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}

	price := resp.QuoteResponse.Result[0].RegularMarketPrice
	if price == nil {
		return 0, fmt.Errorf("quote for %s has no market price", symbol)
	}
	return *price, nil
}

// FetchRange returns daily closing prices between start and end inclusive.
// Sessions with no published close are skipped, never zero-filled.
func (a *Adapter) FetchRange(ctx context.Context, symbol string, start, end time.Time) ([]provider.Point, error) {
	startStr := start.UTC().Format("2006-01-02")
	endStr := end.UTC().Format("2006-01-02")

	cacheKey := infra.Key(providerName, symbol, startStr, endStr)
	if cached, ok := a.CacheGet(cacheKey); ok {
		return cached.([]provider.Point), nil
	}

	if err := a.RateLimit(ctx); err != nil {
		return nil, provider.Unavailable(providerName, symbol, "rate limit wait", err)
	}

	// period2 is exclusive, so push it past the end day to include it.
	period1 := utils.DayUTC(start).Unix()
	period2 := utils.DayUTC(end).Add(24 * time.Hour).Unix()

	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		a.baseURL, url.PathEscape(symbol), period1, period2)

	var resp chartResponse
	if err := fetchJSON(ctx, chartURL, &resp); err != nil {
		return nil, provider.Unavailable(providerName, symbol, "chart request failed", err)
	}
	if resp.Chart.Error != nil {
		return nil, provider.Unavailable(providerName, symbol, fmt.Sprintf("chart API error: %s", resp.Chart.Error.Description), nil)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, provider.Unavailable(providerName, symbol, "no chart data in range", nil)
	}

	result := resp.Chart.Result[0]
	closes := closeSeries(result)

	points := make([]provider.Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, provider.Point{
			Date:  utils.DayUTC(time.Unix(ts, 0)),
			Value: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, provider.Unavailable(providerName, symbol, "no usable closes in range", nil)
	}

	a.CacheSet(cacheKey, points)
	return points, nil
}

// closeSeries pulls the daily close column out of a chart result.
func closeSeries(r chartResult) []*float64 {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	return r.Indicators.Quote[0].Close
}
