package models

import "time"

// IndicatorResult is the outcome of resolving one indicator for one date.
type IndicatorResult struct {
	ID     string    `json:"id"`
	Status Status    `json:"status"`
	Value  float64   `json:"value,omitempty"`
	Source string    `json:"source,omitempty"` // symbol that served the value, or "cache"
	AsOf   time.Time `json:"as_of,omitempty"`  // date the value was last live
}

// RunSummary reports the outcome of one acquisition run. For a snapshot the
// results describe the single target date; for a backfill they describe the
// final day of the window.
type RunSummary struct {
	Date    time.Time         `json:"date"`
	Results []IndicatorResult `json:"results"` // sorted by ID
	Days    int               `json:"days"`    // days processed
	Merged  int               `json:"merged"`  // records whose merge changed the series
}

// Live returns the identifiers resolved from a provider, sorted.
func (s RunSummary) Live() []string { return s.byStatus(StatusLive) }

// Stale returns the identifiers that fell back to cache, sorted.
func (s RunSummary) Stale() []string { return s.byStatus(StatusStale) }

// Missing returns the identifiers with no value for the date, sorted.
func (s RunSummary) Missing() []string { return s.byStatus(StatusMissing) }

func (s RunSummary) byStatus(st Status) []string {
	var ids []string
	for _, r := range s.Results {
		if r.Status == st {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
