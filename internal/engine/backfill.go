package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/macropulse/internal/registry"
	"github.com/seenimoa/macropulse/internal/store"
	"github.com/seenimoa/macropulse/pkg/models"
	"github.com/seenimoa/macropulse/pkg/utils"
)

// Backfill reconstructs history between start and end inclusive. Each
// indicator's full range is fetched once up front; the day walk then merges
// records oldest-first, so cache fallback carries values forward across
// provider gaps exactly as consecutive daily runs would have. The series is
// saved once at the end to bound I/O.
func (e *Engine) Backfill(ctx context.Context, start, end time.Time) (models.RunSummary, error) {
	first := utils.DayUTC(start)
	last := utils.DayUTC(end)
	summary := models.RunSummary{Date: last}

	if last.Before(first) {
		e.log.Warn().
			Str("start", utils.FormatDate(first)).
			Str("end", utils.FormatDate(last)).
			Msg("empty backfill window, nothing to do")
		return summary, nil
	}

	series := e.store.Load()
	specs := e.registry.List()

	tables := make(map[string]map[time.Time]float64, len(specs))
	sources := make(map[string]string, len(specs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, spec := range specs {
		spec := spec // per-iteration copy; required for correctness before Go 1.22 loop semantics
		g.Go(func() error {
			values, source, err := e.resolver.ResolveRange(gctx, spec, first, last)
			if err != nil {
				e.log.Warn().
					Str("indicator", spec.ID).
					Err(err).
					Msg("history fetch failed, relying on cache fallback")
				return nil // non-fatal
			}
			e.log.Info().
				Str("indicator", spec.ID).
				Str("source", source).
				Int("points", len(values)).
				Msg("history fetched")

			mu.Lock()
			tables[spec.ID] = values
			sources[spec.ID] = source
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	mergedDays := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		rec := models.NewRecord(day)
		for _, spec := range specs {
			if spec.Cadence == registry.CadenceBusinessDay && !utils.IsBusinessDay(day) {
				continue
			}
			if value, ok := tables[spec.ID][day]; ok {
				rec.Values[spec.ID] = models.Observation{Value: value}
				continue
			}
			if obs, _, ok := series.LastValueBefore(spec.ID, day); ok {
				rec.Values[spec.ID] = models.Observation{Value: obs.Value, Stale: true}
			}
		}

		var changed bool
		series, changed = store.Merge(series, rec)
		if changed {
			mergedDays++
		}
		summary.Days++
	}

	var dropped int
	series, dropped = store.Truncate(series, e.retention)
	if dropped > 0 {
		e.log.Info().Int("dropped", dropped).Int("years", e.retention).Msg("trimmed records beyond retention window")
	}
	if mergedDays > 0 || dropped > 0 {
		series.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	}

	if err := e.store.Save(series); err != nil {
		return summary, fmt.Errorf("persist series: %w", err)
	}

	summary.Merged = mergedDays
	summary.Results = e.windowResults(series, tables, sources, last)

	e.log.Info().
		Str("start", utils.FormatDate(first)).
		Str("end", utils.FormatDate(last)).
		Int("days", summary.Days).
		Int("merged", mergedDays).
		Int("records", series.Len()).
		Msg("backfill complete")
	return summary, nil
}

// windowResults summarizes each indicator's outcome across the window:
// live when any point was fetched, stale when only carried values exist,
// missing otherwise.
func (e *Engine) windowResults(series models.Series, tables map[string]map[time.Time]float64, sources map[string]string, last time.Time) []models.IndicatorResult {
	results := make([]models.IndicatorResult, 0, e.registry.Len())
	for _, spec := range e.registry.List() {
		result := models.IndicatorResult{ID: spec.ID, Status: models.StatusMissing}
		if obs, asOf, ok := series.LastValueBefore(spec.ID, last.AddDate(0, 0, 1)); ok {
			result.Value = obs.Value
			result.AsOf = asOf
			if len(tables[spec.ID]) > 0 {
				result.Status = models.StatusLive
				result.Source = sources[spec.ID]
			} else {
				result.Status = models.StatusStale
				result.Source = "cache"
			}
		}
		results = append(results, result)
	}
	return results
}
