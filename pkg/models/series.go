package models

import (
	"sort"
	"time"
)

// Status classifies how an indicator value was obtained for a date.
type Status string

const (
	StatusLive    Status = "live"    // fetched from a provider during the run
	StatusStale   Status = "stale"   // carried forward from a previous date
	StatusMissing Status = "missing" // no value obtainable for the date
)

// Observation is a single resolved indicator value for one date.
// Stale marks values that came from cache fallback rather than a live fetch.
type Observation struct {
	Value float64 `json:"value"`
	Stale bool    `json:"stale,omitempty"`
}

// Record holds the values of every indicator for one calendar day.
// Date is always midnight UTC. An indicator absent from Values has no value
// for the day; absence is never encoded as zero.
type Record struct {
	Date   time.Time              `json:"date"`
	Values map[string]Observation `json:"values"`
}

// NewRecord returns an empty record for the UTC day containing t.
func NewRecord(t time.Time) Record {
	y, m, d := t.UTC().Date()
	return Record{
		Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Values: make(map[string]Observation),
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{Date: r.Date, Values: make(map[string]Observation, len(r.Values))}
	for id, obs := range r.Values {
		out.Values[id] = obs
	}
	return out
}

// IDs returns the indicator identifiers present in the record, sorted.
func (r Record) IDs() []string {
	ids := make([]string, 0, len(r.Values))
	for id := range r.Values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Series is the full indicator history: records ordered by date ascending,
// at most one record per day. A Series is passed and returned by value;
// functions that change it return a new one.
type Series struct {
	UpdatedAt time.Time `json:"updated_at"`
	Records   []Record  `json:"records"`
}

// Len returns the number of records.
func (s Series) Len() int { return len(s.Records) }

// At returns the record for the UTC day containing t, if present.
func (s Series) At(t time.Time) (Record, bool) {
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	i := sort.Search(len(s.Records), func(i int) bool {
		return !s.Records[i].Date.Before(day)
	})
	if i < len(s.Records) && s.Records[i].Date.Equal(day) {
		return s.Records[i], true
	}
	return Record{}, false
}

// Latest returns the most recent record.
func (s Series) Latest() (Record, bool) {
	if len(s.Records) == 0 {
		return Record{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// LastValueBefore returns the most recent observation for the indicator on a
// date strictly before day. Live observations are preferred over stale
// copies: a stale entry only wins when no live value survives in the series,
// so the returned date is the date the value was last fetched live.
func (s Series) LastValueBefore(id string, day time.Time) (Observation, time.Time, bool) {
	var (
		staleObs  Observation
		staleDate time.Time
		haveStale bool
	)
	for i := len(s.Records) - 1; i >= 0; i-- {
		rec := s.Records[i]
		if !rec.Date.Before(day) {
			continue
		}
		obs, ok := rec.Values[id]
		if !ok {
			continue
		}
		if !obs.Stale {
			return obs, rec.Date, true
		}
		if !haveStale {
			staleObs, staleDate, haveStale = obs, rec.Date, true
		}
	}
	return staleObs, staleDate, haveStale
}
