package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/macropulse/internal/infra"
	"github.com/seenimoa/macropulse/internal/provider"
)

// FetchLatest returns the most recent published observation for a series.
// Observations are requested newest-first; FRED pads unpublished dates with
// a "." placeholder, so the first parseable value wins.
func (a *Adapter) FetchLatest(ctx context.Context, symbol string) (float64, error) {
	if a.apiKey == "" {
		return 0, provider.Unavailable(providerName, symbol, "missing api key (set FRED_API_KEY)", nil)
	}

	cacheKey := infra.Key(providerName, symbol, "latest")
	if cached, ok := a.CacheGet(cacheKey); ok {
		return cached.(float64), nil
	}
	if err := a.RateLimit(ctx); err != nil {
		return 0, provider.Unavailable(providerName, symbol, "rate limit wait", err)
	}

	endpoint := fmt.Sprintf("series/observations?series_id=%s&sort_order=desc&limit=10",
		url.QueryEscape(symbol))

	var resp observationsResponse
	if err := a.fetchJSON(ctx, endpoint, &resp); err != nil {
		return 0, provider.Unavailable(providerName, symbol, "request failed", err)
	}

	for _, obs := range resp.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return 0, provider.Unavailable(providerName, symbol, "malformed observation value", err)
		}
		a.CacheSet(cacheKey, v)
		return v, nil
	}

	return 0, provider.Unavailable(providerName, symbol, "no published observations", nil)
}

// FetchRange returns the published observations between start and end
// inclusive, oldest first. Placeholder observations are skipped; a range
// with nothing published is reported as unavailable so callers move on to
// their next symbol.
func (a *Adapter) FetchRange(ctx context.Context, symbol string, start, end time.Time) ([]provider.Point, error) {
	if a.apiKey == "" {
		return nil, provider.Unavailable(providerName, symbol, "missing api key (set FRED_API_KEY)", nil)
	}

	startStr := start.UTC().Format("2006-01-02")
	endStr := end.UTC().Format("2006-01-02")

	cacheKey := infra.Key(providerName, symbol, startStr, endStr)
	if cached, ok := a.CacheGet(cacheKey); ok {
		return cached.([]provider.Point), nil
	}
	if err := a.RateLimit(ctx); err != nil {
		return nil, provider.Unavailable(providerName, symbol, "rate limit wait", err)
	}

	endpoint := fmt.Sprintf("series/observations?series_id=%s&observation_start=%s&observation_end=%s",
		url.QueryEscape(symbol), startStr, endStr)

	var resp observationsResponse
	if err := a.fetchJSON(ctx, endpoint, &resp); err != nil {
		return nil, provider.Unavailable(providerName, symbol, "request failed", err)
	}

	points := make([]provider.Point, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			return nil, provider.Unavailable(providerName, symbol, "malformed observation date", err)
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return nil, provider.Unavailable(providerName, symbol, "malformed observation value", err)
		}
		points = append(points, provider.Point{Date: date, Value: v})
	}

	if len(points) == 0 {
		return nil, provider.Unavailable(providerName, symbol, "no published observations in range", nil)
	}

	a.CacheSet(cacheKey, points)
	return points, nil
}
