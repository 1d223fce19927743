// Package provider defines the adapter abstraction the acquisition engine
// sits on. Each external data source implements Adapter; a central registry
// routes indicator specs to the adapter named by their provider field.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Credential describes a credential an adapter wants at construction.
type Credential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FRED API key from fred.stlouisfed.org"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "FRED_API_KEY"
}

// Info holds metadata about a registered adapter.
type Info struct {
	Name        string       `json:"name"`        // e.g., "fred", "yahoo"
	Description string       `json:"description"` // human-readable description
	Website     string       `json:"website"`
	BaseURL     string       `json:"base_url"`
	Credentials []Credential `json:"credentials,omitempty"`
	Degraded    bool         `json:"degraded,omitempty"` // missing credential; every fetch fails
}

// Point is one dated observation returned by a range fetch.
type Point struct {
	Date  time.Time `json:"date"` // midnight UTC
	Value float64   `json:"value"`
}

// Adapter is the interface every data source implements. Both fetch
// operations honor context cancellation and return *ErrUnavailable for any
// failure: network trouble, error payloads, empty results, or a missing
// credential. Callers treat those as recoverable and move down their
// fallback chain.
type Adapter interface {
	// Info returns metadata about this adapter.
	Info() Info

	// FetchLatest returns one observation for the most recent date the
	// source has a value for.
	FetchLatest(ctx context.Context, symbol string) (float64, error)

	// FetchRange returns dated observations covering the inclusive date
	// range, ascending. Days the source has no value for are simply absent.
	FetchRange(ctx context.Context, symbol string, start, end time.Time) ([]Point, error)
}

// ErrProviderNotFound is returned when a requested adapter is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrUnavailable is returned by adapters for any failed fetch. The
// resolver treats it as recoverable and falls through to the next symbol
// or to cache, so a run never aborts because of one.
type ErrUnavailable struct {
	Provider string
	Symbol   string
	Reason   string
	Err      error
}

func (e *ErrUnavailable) Error() string {
	msg := fmt.Sprintf("%s: %s unavailable: %s", e.Provider, e.Symbol, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// Unavailable builds the error adapters return for a failed fetch.
func Unavailable(provider, symbol, reason string, err error) *ErrUnavailable {
	return &ErrUnavailable{Provider: provider, Symbol: symbol, Reason: reason, Err: err}
}
