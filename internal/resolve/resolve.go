// Package resolve turns an indicator spec plus a date into a value: it
// walks an ordered chain of resolution steps (primary symbol, fallback
// symbols, cached history) and short-circuits on the first success.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/macropulse/internal/provider"
	"github.com/seenimoa/macropulse/internal/registry"
	"github.com/seenimoa/macropulse/pkg/models"
	"github.com/seenimoa/macropulse/pkg/utils"
)

const cacheSource = "cache"

// Resolution is the outcome of resolving one indicator for one date.
type Resolution struct {
	Value  float64
	Status models.Status
	Source string    // adapter:symbol that served the value, or "cache"
	AsOf   time.Time // date the value is actually from
}

// Resolver orchestrates per-indicator value resolution against the
// registered source adapters.
type Resolver struct {
	adapters *provider.Registry
	log      zerolog.Logger
}

// New creates a resolver using the given adapter registry.
func New(adapters *provider.Registry, log zerolog.Logger) *Resolver {
	return &Resolver{adapters: adapters, log: log}
}

// step is one strategy in an indicator's resolution chain.
type step struct {
	source string
	run    func(ctx context.Context) (value float64, asOf time.Time, err error)
}

// chain builds the ordered strategies for spec on date: each symbol in
// declared order, then the cached series.
func (r *Resolver) chain(spec registry.Spec, date time.Time, series models.Series) []step {
	steps := make([]step, 0, len(spec.Fallbacks)+2)

	for _, symbol := range spec.Symbols() {
		symbol := symbol // per-iteration copy; required for correctness before Go 1.22 loop semantics
		steps = append(steps, step{
			source: fmt.Sprintf("%s:%s", spec.Provider, symbol),
			run: func(ctx context.Context) (float64, time.Time, error) {
				return r.fetchLatest(ctx, spec, symbol, date)
			},
		})
	}

	steps = append(steps, step{
		source: cacheSource,
		run: func(context.Context) (float64, time.Time, error) {
			obs, asOf, ok := series.LastValueBefore(spec.ID, date)
			if !ok {
				return 0, time.Time{}, errors.New("no cached value")
			}
			return obs.Value, asOf, nil
		},
	})

	return steps
}

// Resolve returns the value for one indicator on one date. Every failure
// along the chain is swallowed and logged; an exhausted chain yields a
// missing resolution, never an error.
func (r *Resolver) Resolve(ctx context.Context, spec registry.Spec, date time.Time, series models.Series) Resolution {
	day := utils.DayUTC(date)

	for _, st := range r.chain(spec, day, series) {
		value, asOf, err := st.run(ctx)
		if err != nil {
			r.log.Debug().
				Str("indicator", spec.ID).
				Str("source", st.source).
				Err(err).
				Msg("resolution step failed, trying next")
			continue
		}

		status := models.StatusLive
		if st.source == cacheSource {
			status = models.StatusStale
		}
		return Resolution{Value: value, Status: status, Source: st.source, AsOf: asOf}
	}

	return Resolution{Status: models.StatusMissing}
}

// fetchLatest pulls the newest raw observation for symbol and applies the
// indicator's transform.
func (r *Resolver) fetchLatest(ctx context.Context, spec registry.Spec, symbol string, date time.Time) (float64, time.Time, error) {
	adapter, err := r.adapters.Get(string(spec.Provider))
	if err != nil {
		return 0, time.Time{}, err
	}

	raw, err := adapter.FetchLatest(ctx, symbol)
	if err != nil {
		return 0, time.Time{}, err
	}

	value, err := r.transformLatest(ctx, adapter, spec, symbol, date, raw)
	if err != nil {
		return 0, time.Time{}, err
	}
	return value, date, nil
}

// ResolveRange fetches the transformed history for spec between start and
// end. The first symbol that returns data serves the whole window. Keys of
// the returned map are midnight-UTC days; days a provider never published
// are simply absent.
func (r *Resolver) ResolveRange(ctx context.Context, spec registry.Spec, start, end time.Time) (map[time.Time]float64, string, error) {
	adapter, err := r.adapters.Get(string(spec.Provider))
	if err != nil {
		return nil, "", err
	}

	first := utils.DayUTC(start)
	last := utils.DayUTC(end)

	// Year-over-year needs the prior year's points in the same response.
	fetchStart := first
	if spec.Transform == registry.TransformYoY {
		fetchStart = fetchStart.AddDate(0, 0, -(365 + priorLookbackDays))
	}

	var errs []error
	for _, symbol := range spec.Symbols() {
		points, err := adapter.FetchRange(ctx, symbol, fetchStart, last)
		if err != nil {
			r.log.Debug().
				Str("indicator", spec.ID).
				Str("symbol", symbol).
				Err(err).
				Msg("range fetch failed, trying next symbol")
			errs = append(errs, err)
			continue
		}
		return transformRange(spec, points, first, last), fmt.Sprintf("%s:%s", spec.Provider, symbol), nil
	}

	return nil, "", fmt.Errorf("%s: every symbol failed: %w", spec.ID, errors.Join(errs...))
}
