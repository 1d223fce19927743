// Package engine drives full acquisition runs: a snapshot resolves every
// indicator for one date, a backfill replays resolution across a window.
// The engine owns the load, resolve, merge, truncate, save sequence; the
// merge itself stays single-threaded while fetches run concurrently.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/macropulse/internal/registry"
	"github.com/seenimoa/macropulse/internal/resolve"
	"github.com/seenimoa/macropulse/internal/store"
	"github.com/seenimoa/macropulse/pkg/models"
	"github.com/seenimoa/macropulse/pkg/utils"
)

const (
	defaultConcurrency = 4
	defaultRetention   = 5 // years
)

// Options tune a run.
type Options struct {
	Concurrency    int
	RetentionYears int
}

// Engine wires the registry, resolver, and store into runnable updates.
type Engine struct {
	registry  *registry.Registry
	resolver  *resolve.Resolver
	store     *store.Store
	log       zerolog.Logger
	workers   int
	retention int
}

// New creates an engine. Zero option fields fall back to defaults.
func New(reg *registry.Registry, resolver *resolve.Resolver, st *store.Store, opts Options, log zerolog.Logger) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.RetentionYears <= 0 {
		opts.RetentionYears = defaultRetention
	}
	return &Engine{
		registry:  reg,
		resolver:  resolver,
		store:     st,
		log:       log,
		workers:   opts.Concurrency,
		retention: opts.RetentionYears,
	}
}

// Snapshot resolves every indicator for one date and merges a single record
// into the persisted series. Indicator failures never abort the run; only a
// cancelled context or a failed save does.
func (e *Engine) Snapshot(ctx context.Context, date time.Time) (models.RunSummary, error) {
	day := utils.DayUTC(date)
	summary := models.RunSummary{Date: day}

	series := e.store.Load()
	rec := models.NewRecord(day)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, spec := range e.registry.List() {
		spec := spec // per-iteration copy; required for correctness before Go 1.22 loop semantics
		g.Go(func() error {
			res := e.resolver.Resolve(gctx, spec, day, series)
			e.logResolution(spec.ID, res)

			mu.Lock()
			defer mu.Unlock()
			switch res.Status {
			case models.StatusLive:
				rec.Values[spec.ID] = models.Observation{Value: res.Value}
			case models.StatusStale:
				rec.Values[spec.ID] = models.Observation{Value: res.Value, Stale: true}
			}
			summary.Results = append(summary.Results, models.IndicatorResult{
				ID:     spec.ID,
				Status: res.Status,
				Value:  res.Value,
				Source: res.Source,
				AsOf:   res.AsOf,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err // do not persist a half-cancelled run
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].ID < summary.Results[j].ID
	})

	merged, changed := store.Merge(series, rec)
	merged, dropped := store.Truncate(merged, e.retention)
	if dropped > 0 {
		e.log.Info().Int("dropped", dropped).Int("years", e.retention).Msg("trimmed records beyond retention window")
	}
	if changed || dropped > 0 {
		merged.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	}

	if err := e.store.Save(merged); err != nil {
		return summary, fmt.Errorf("persist series: %w", err)
	}

	summary.Days = 1
	if changed {
		summary.Merged = 1
	}

	e.log.Info().
		Str("date", utils.FormatDate(day)).
		Int("live", len(summary.Live())).
		Int("stale", len(summary.Stale())).
		Int("missing", len(summary.Missing())).
		Int("records", merged.Len()).
		Msg("snapshot complete")
	return summary, nil
}

func (e *Engine) logResolution(id string, res resolve.Resolution) {
	switch res.Status {
	case models.StatusLive:
		e.log.Info().
			Str("indicator", id).
			Float64("value", res.Value).
			Str("source", res.Source).
			Msg("resolved live")
	case models.StatusStale:
		e.log.Info().
			Str("indicator", id).
			Float64("value", res.Value).
			Str("as_of", utils.FormatDate(res.AsOf)).
			Msg("resolved from cache")
	default:
		e.log.Warn().
			Str("indicator", id).
			Msg("no value obtainable")
	}
}
