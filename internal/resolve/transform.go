package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/macropulse/internal/provider"
	"github.com/seenimoa/macropulse/internal/registry"
	"github.com/seenimoa/macropulse/pkg/utils"
)

// priorLookbackDays widens the prior-year lookup so monthly series with
// publication lag still yield a comparison point.
const priorLookbackDays = 45

// transformLatest normalizes a raw provider value per the indicator's
// transform rule. Year-over-year needs a second observation from one year
// earlier; when that point does not exist the step fails and the chain
// moves on.
func (r *Resolver) transformLatest(ctx context.Context, adapter provider.Adapter, spec registry.Spec, symbol string, date time.Time, raw float64) (float64, error) {
	switch spec.Transform {
	case registry.TransformRaw:
		return raw * spec.Scale, nil

	case registry.TransformDivide:
		return raw / spec.Constant * spec.Scale, nil

	case registry.TransformYoY:
		prior, err := r.priorYearValue(ctx, adapter, symbol, date)
		if err != nil {
			return 0, err
		}
		if prior == 0 {
			return 0, fmt.Errorf("prior-year value for %s is zero", symbol)
		}
		return (raw/prior - 1) * 100, nil

	default:
		return 0, fmt.Errorf("unknown transform %q", spec.Transform)
	}
}

// priorYearValue returns the newest raw observation at or before one year
// prior to date, from the same symbol that served the current value.
func (r *Resolver) priorYearValue(ctx context.Context, adapter provider.Adapter, symbol string, date time.Time) (float64, error) {
	prior := utils.DayUTC(date).AddDate(0, 0, -365)

	points, err := adapter.FetchRange(ctx, symbol, prior.AddDate(0, 0, -priorLookbackDays), prior)
	if err != nil {
		return 0, err
	}
	if value, ok := latestAtOrBefore(points, prior); ok {
		return value, nil
	}
	return 0, fmt.Errorf("no observation at or before %s for %s", utils.FormatDate(prior), symbol)
}

// transformRange applies the indicator's transform to every fetched point
// inside [first, last]. For year-over-year, priors come from the same point
// set, which the caller fetched with an extended window.
func transformRange(spec registry.Spec, points []provider.Point, first, last time.Time) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(points))

	for _, p := range points {
		day := utils.DayUTC(p.Date)
		if day.Before(first) || day.After(last) {
			continue
		}

		switch spec.Transform {
		case registry.TransformRaw:
			out[day] = p.Value * spec.Scale

		case registry.TransformDivide:
			out[day] = p.Value / spec.Constant * spec.Scale

		case registry.TransformYoY:
			prior, ok := latestAtOrBefore(points, day.AddDate(0, 0, -365))
			if !ok || prior == 0 {
				continue
			}
			out[day] = (p.Value/prior - 1) * 100
		}
	}

	return out
}

// latestAtOrBefore returns the value of the newest point dated at or before
// cutoff. Points are ordered ascending by date.
func latestAtOrBefore(points []provider.Point, cutoff time.Time) (float64, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Date.After(cutoff) {
			return points[i].Value, true
		}
	}
	return 0, false
}
