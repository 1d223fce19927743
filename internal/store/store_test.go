package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/macropulse/pkg/models"
)

func newTestStore(t *testing.T, ids []string) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data", "economic_data.yaml"), ids, zerolog.Nop())
}

func sampleSeries() models.Series {
	return models.Series{
		UpdatedAt: time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC),
		Records: []models.Record{
			rec(day(2024, 1, 1), map[string]models.Observation{
				"M2SL": live(21.2005),
				"VIX":  stale(13.45),
			}),
			rec(day(2024, 1, 2), map[string]models.Observation{
				"M2SL": live(21.21),
			}),
		},
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	st := newTestStore(t, []string{"M2SL"})

	series := st.Load()
	if len(series.Records) != 0 {
		t.Errorf("got %d records, want 0", len(series.Records))
	}
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "economic_data.yaml")
	if err := os.WriteFile(path, []byte("{unclosed: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	st := New(path, []string{"M2SL"}, zerolog.Nop())
	series := st.Load()
	if len(series.Records) != 0 {
		t.Errorf("got %d records from corrupt file, want 0", len(series.Records))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := newTestStore(t, []string{"M2SL", "VIX"})
	in := sampleSeries()

	if err := st.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := st.Load()
	if !out.UpdatedAt.Equal(in.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", out.UpdatedAt, in.UpdatedAt)
	}
	if len(out.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(out.Records))
	}

	first := out.Records[0]
	if got := first.Values["M2SL"]; got != live(21.2005) {
		t.Errorf("M2SL = %+v, want %+v", got, live(21.2005))
	}
	if got := first.Values["VIX"]; got != stale(13.45) {
		t.Errorf("VIX = %+v, want %+v (stale flag must survive)", got, stale(13.45))
	}

	second := out.Records[1]
	if _, ok := second.Values["VIX"]; ok {
		t.Error("VIX present on 2024-01-02, want absent (null marker)")
	}
}

func TestSaveThenLoadThenSaveIsByteIdentical(t *testing.T) {
	st := newTestStore(t, []string{"M2SL", "VIX"})

	if err := st.Save(sampleSeries()); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	firstBytes, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Save(st.Load()); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	secondBytes, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(firstBytes, secondBytes) {
		t.Errorf("round trip not byte identical:\n--- first ---\n%s\n--- second ---\n%s", firstBytes, secondBytes)
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "economic_data.yaml")
	st := New(path, []string{"M2SL"}, zerolog.Nop())

	if err := st.Save(sampleSeries()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file not written: %v", err)
	}
}

func TestSaveWritesExplicitMissingMarkers(t *testing.T) {
	st := newTestStore(t, []string{"M2SL", "GOLD"})

	series := seriesOf(rec(day(2024, 1, 1), map[string]models.Observation{"M2SL": live(21.2)}))
	if err := st.Save(series); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "GOLD: null") {
		t.Errorf("state file missing explicit null marker for GOLD:\n%s", data)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	st := newTestStore(t, []string{"M2SL"})
	if err := st.Save(sampleSeries()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(st.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("data dir has %v, want only the state file", names)
	}
}

func TestLoadSortsAndDeduplicatesRecords(t *testing.T) {
	raw := strings.Join([]string{
		"updated_at: 2024-01-05T00:00:00Z",
		"records:",
		"    - date: \"2024-01-03\"",
		"      values:",
		"          A: 3",
		"    - date: \"2024-01-01\"",
		"      values:",
		"          A: 1",
		"    - date: \"2024-01-01\"",
		"      values:",
		"          A: 9",
		"",
	}, "\n")

	path := filepath.Join(t.TempDir(), "economic_data.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	series := New(path, []string{"A"}, zerolog.Nop()).Load()
	if len(series.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(series.Records))
	}
	if !series.Records[0].Date.Equal(day(2024, 1, 1)) || !series.Records[1].Date.Equal(day(2024, 1, 3)) {
		t.Errorf("record order = %v, %v; want 2024-01-01 then 2024-01-03",
			series.Records[0].Date, series.Records[1].Date)
	}
	if got := series.Records[0].Values["A"]; got != live(9) {
		t.Errorf("duplicate date resolved to %+v, want the later record's %+v", got, live(9))
	}
}
