// Package yahoo implements the market-quote adapter backed by Yahoo
// Finance's public chart (v8) and quote (v7) APIs. It needs no API key and
// covers indices, futures, crypto, and ETFs worldwide.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/macropulse/internal/infra"
	"github.com/seenimoa/macropulse/internal/provider"
)

const (
	providerName   = "yahoo"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// Adapter implements provider.Adapter for Yahoo Finance.
type Adapter struct {
	provider.BaseAdapter
	baseURL string

	cacheTTL   time.Duration
	rateLimit  int
	rateWindow time.Duration
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API endpoint. Tests point this at a local server.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimSuffix(u, "/") }
}

// WithLimits overrides the response cache TTL and the request rate limit.
func WithLimits(cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) Option {
	return func(a *Adapter) {
		a.cacheTTL = cacheTTL
		a.rateLimit = rateLimit
		a.rateWindow = rateWindow
	}
}

// New creates a Yahoo Finance adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		baseURL:    defaultBaseURL,
		cacheTTL:   15 * time.Minute,
		rateLimit:  5,
		rateWindow: time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.BaseAdapter = provider.NewBaseAdapter(provider.Info{
		Name:        providerName,
		Description: "Yahoo Finance - market quotes and price history",
		Website:     "https://finance.yahoo.com",
		BaseURL:     a.baseURL,
	}, a.cacheTTL, a.rateLimit, a.rateWindow)

	return a
}

// Ping checks connectivity to the quote endpoint.
func (a *Adapter) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, a.baseURL+"/v7/finance/quote?symbols=AAPL", jsonHeaders())
	if err != nil {
		return fmt.Errorf("yahoo ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fetchJSON performs a GET request and decodes the response into dest.
func fetchJSON(ctx context.Context, url string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}
