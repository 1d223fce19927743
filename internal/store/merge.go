package store

import (
	"github.com/seenimoa/macropulse/pkg/models"
	"github.com/seenimoa/macropulse/pkg/utils"
)

// Merge inserts rec into series at its sorted position, or unions it
// field-wise with the existing record for that date. It reports whether the
// result differs from the input so callers can stamp UpdatedAt only on real
// changes.
//
// Precedence within a date: a live value overwrites anything, a stale value
// fills gaps and replaces older stale values, and a stale value never
// displaces a stored live one. Indicators absent from rec keep their stored
// values. Merging the same record twice changes nothing.
func Merge(series models.Series, rec models.Record) (models.Series, bool) {
	incoming := rec.Clone()
	incoming.Date = utils.DayUTC(incoming.Date)

	out := models.Series{
		UpdatedAt: series.UpdatedAt,
		Records:   make([]models.Record, 0, len(series.Records)+1),
	}

	changed := false
	placed := false
	for _, existing := range series.Records {
		switch {
		case existing.Date.Before(incoming.Date):
			out.Records = append(out.Records, existing)
		case existing.Date.Equal(incoming.Date):
			merged, didChange := mergeValues(existing, incoming)
			out.Records = append(out.Records, merged)
			changed = changed || didChange
			placed = true
		default:
			if !placed {
				out.Records = append(out.Records, incoming)
				placed = true
				changed = true
			}
			out.Records = append(out.Records, existing)
		}
	}
	if !placed {
		out.Records = append(out.Records, incoming)
		changed = true
	}

	return out, changed
}

func mergeValues(existing, incoming models.Record) (models.Record, bool) {
	merged := existing.Clone()
	changed := false
	for id, obs := range incoming.Values {
		cur, ok := merged.Values[id]
		if ok && cur == obs {
			continue
		}
		if ok && obs.Stale && !cur.Stale {
			continue
		}
		merged.Values[id] = obs
		changed = true
	}
	return merged, changed
}

// Truncate drops records older than years before the newest record's date
// and reports how many were dropped. The window is anchored to the data,
// not the wall clock, so replaying old history never erases it.
func Truncate(series models.Series, years int) (models.Series, int) {
	if years <= 0 || len(series.Records) == 0 {
		return series, 0
	}

	newest := series.Records[len(series.Records)-1].Date
	cutoff := newest.AddDate(-years, 0, 0)

	i := 0
	for i < len(series.Records) && series.Records[i].Date.Before(cutoff) {
		i++
	}
	if i == 0 {
		return series, 0
	}

	return models.Series{
		UpdatedAt: series.UpdatedAt,
		Records:   series.Records[i:],
	}, i
}
