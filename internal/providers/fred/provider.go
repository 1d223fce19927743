// Package fred implements the macro-series adapter backed by FRED
// (Federal Reserve Economic Data), the St. Louis Fed's time series API.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

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
	providerName   = "fred"
	defaultBaseURL = "https://api.stlouisfed.org/fred"
)

// Adapter implements provider.Adapter for FRED.
type Adapter struct {
	provider.BaseAdapter
	baseURL string
	apiKey  string

	cacheTTL   time.Duration
	rateLimit  int
	rateWindow time.Duration
}

// Option configures the adapter.
type Option func(*Adapter)

// WithAPIKey sets the FRED API key. Without one the adapter is degraded:
// every fetch returns *provider.ErrUnavailable, so macro indicators resolve
// from cache or go absent instead of failing the run.
func WithAPIKey(key string) Option {
	return func(a *Adapter) { a.apiKey = key }
}

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

// New creates a FRED adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		baseURL:    defaultBaseURL,
		cacheTTL:   10 * time.Minute,
		rateLimit:  10,
		rateWindow: time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.BaseAdapter = provider.NewBaseAdapter(provider.Info{
		Name:        providerName,
		Description: "Federal Reserve Economic Data - macro time series",
		Website:     "https://fred.stlouisfed.org",
		BaseURL:     a.baseURL,
		Credentials: []provider.Credential{
			{
				Name:        "api_key",
				Description: "FRED API key from fred.stlouisfed.org",
				Required:    true,
				EnvVar:      "FRED_API_KEY",
			},
		},
	}, a.cacheTTL, a.rateLimit, a.rateWindow)

	if a.apiKey == "" {
		a.MarkDegraded()
	}
	return a
}

// Ping checks connectivity and the API key.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.apiKey == "" {
		return provider.Unavailable(providerName, "GDP", "missing api key (set FRED_API_KEY)", nil)
	}
	body, _, err := infra.DoGet(ctx, a.fredURL("series?series_id=GDP"), jsonHeaders())
	if err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fredURL builds a full API URL with api_key and file_type=json appended.
func (a *Adapter) fredURL(endpoint string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return a.baseURL + "/" + endpoint + sep + "api_key=" + a.apiKey + "&file_type=json"
}

// fetchJSON performs a GET request against the API and decodes the JSON body.
func (a *Adapter) fetchJSON(ctx context.Context, endpoint string, dest any) error {
	body, _, err := infra.DoGet(ctx, a.fredURL(endpoint), jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read FRED response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FRED JSON: %w", err)
	}
	return nil
}
