// Package store persists the indicator series as a single YAML file and
// owns the merge, ordering, and retention rules applied before each save.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/macropulse/pkg/models"
)

const dateLayout = "2006-01-02"

// seriesFile is the on-disk shape.
type seriesFile struct {
	UpdatedAt string       `yaml:"updated_at"`
	Records   []recordFile `yaml:"records"`
}

// recordFile serializes one day. Every configured indicator appears under
// values; null marks a day the indicator could not be resolved at all.
type recordFile struct {
	Date   string              `yaml:"date"`
	Values map[string]*float64 `yaml:"values"`
	Stale  []string            `yaml:"stale,omitempty"`
}

// Store reads and writes the persisted series.
type Store struct {
	path string
	ids  []string
	log  zerolog.Logger
}

// New creates a store writing to path. ids lists every configured indicator
// so saves can serialize explicit missing markers for unresolved days.
func New(path string, ids []string, log zerolog.Logger) *Store {
	return &Store{path: path, ids: ids, log: log}
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted series. A missing or unparsable file yields an
// empty series so the run can proceed and history can be rebuilt by
// backfill.
func (s *Store) Load() models.Series {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("path", s.path).Msg("no existing state file")
		} else {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cannot read state file, starting empty")
		}
		return models.Series{}
	}

	var file seriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("state file corrupt, starting empty")
		return models.Series{}
	}

	return s.fromFile(file)
}

// Save writes the series atomically: a temp file in the same directory is
// synced and renamed into place, so a crash never leaves a partial file.
func (s *Store) Save(series models.Series) error {
	data, err := yaml.Marshal(s.toFile(series))
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	s.log.Debug().Str("path", s.path).Int("bytes", len(data)).Msg("series saved")
	return nil
}

func (s *Store) fromFile(file seriesFile) models.Series {
	series := models.Series{}
	if file.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, file.UpdatedAt); err == nil {
			series.UpdatedAt = ts.UTC()
		}
	}

	for _, rf := range file.Records {
		day, err := time.Parse(dateLayout, rf.Date)
		if err != nil {
			s.log.Warn().Str("date", rf.Date).Msg("skipping record with unparsable date")
			continue
		}

		stale := make(map[string]bool, len(rf.Stale))
		for _, id := range rf.Stale {
			stale[id] = true
		}

		rec := models.NewRecord(day.UTC())
		for id, value := range rf.Values {
			if value == nil {
				continue
			}
			rec.Values[id] = models.Observation{Value: *value, Stale: stale[id]}
		}
		series.Records = append(series.Records, rec)
	}

	sort.SliceStable(series.Records, func(i, j int) bool {
		return series.Records[i].Date.Before(series.Records[j].Date)
	})
	series.Records = dedupeByDate(series.Records)
	return series
}

// dedupeByDate keeps the last record for a date, matching merge's
// last-write-wins rule.
func dedupeByDate(records []models.Record) []models.Record {
	if len(records) < 2 {
		return records
	}
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if n := len(out); n > 0 && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) toFile(series models.Series) seriesFile {
	file := seriesFile{
		UpdatedAt: series.UpdatedAt.UTC().Format(time.RFC3339),
		Records:   make([]recordFile, 0, len(series.Records)),
	}

	for _, rec := range series.Records {
		rf := recordFile{
			Date:   rec.Date.UTC().Format(dateLayout),
			Values: make(map[string]*float64, len(s.ids)),
		}

		for _, id := range s.ids {
			rf.Values[id] = nil
		}
		for id, obs := range rec.Values {
			v := obs.Value
			rf.Values[id] = &v
			if obs.Stale {
				rf.Stale = append(rf.Stale, id)
			}
		}
		sort.Strings(rf.Stale)

		file.Records = append(file.Records, rf)
	}
	return file
}
