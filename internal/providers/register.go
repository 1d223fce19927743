// Package providers constructs the concrete source adapters from
// configuration and registers them with an adapter registry.
package providers

import (
	"time"

	"github.com/seenimoa/macropulse/internal/config"
	"github.com/seenimoa/macropulse/internal/provider"
	"github.com/seenimoa/macropulse/internal/providers/fred"
	"github.com/seenimoa/macropulse/internal/providers/yahoo"
)

// RegisterAll creates and registers all available adapters. FRED is
// registered even without an API key: the adapter runs degraded and every
// fetch reports unavailable, so macro indicators resolve from cached
// history instead of the run failing at startup.
func RegisterAll(reg *provider.Registry, cfg *config.Config) error {
	// --- FRED (macro series, keyed) ---
	f := fred.New(fredOptions(cfg.Providers.FRED)...)
	if err := reg.Register(f); err != nil {
		return err
	}

	// --- Yahoo Finance (market tape, no key) ---
	y := yahoo.New(yahooOptions(cfg.Providers.Yahoo)...)
	return reg.Register(y)
}

// fredOptions translates config values into adapter options. Zero values
// are skipped so the adapter's own defaults survive a partial config.
func fredOptions(cfg config.FREDConfig) []fred.Option {
	opts := []fred.Option{fred.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, fred.WithBaseURL(cfg.BaseURL))
	}
	if cfg.CacheTTL > 0 && cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		opts = append(opts, fred.WithLimits(
			time.Duration(cfg.CacheTTL)*time.Second,
			cfg.RateLimit,
			time.Duration(cfg.RateWindow)*time.Second,
		))
	}
	return opts
}

func yahooOptions(cfg config.YahooConfig) []yahoo.Option {
	var opts []yahoo.Option
	if cfg.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
	}
	if cfg.CacheTTL > 0 && cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		opts = append(opts, yahoo.WithLimits(
			time.Duration(cfg.CacheTTL)*time.Second,
			cfg.RateLimit,
			time.Duration(cfg.RateWindow)*time.Second,
		))
	}
	return opts
}
