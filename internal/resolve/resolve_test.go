package resolve

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/macropulse/internal/provider"
	"github.com/seenimoa/macropulse/internal/registry"
	"github.com/seenimoa/macropulse/pkg/models"
)

// fakeAdapter serves canned values without network I/O.
type fakeAdapter struct {
	name   string
	latest map[string]float64
	ranges map[string][]provider.Point
	calls  []string
}

func (f *fakeAdapter) Info() provider.Info { return provider.Info{Name: f.name} }

func (f *fakeAdapter) FetchLatest(_ context.Context, symbol string) (float64, error) {
	f.calls = append(f.calls, "latest:"+symbol)
	v, ok := f.latest[symbol]
	if !ok {
		return 0, provider.Unavailable(f.name, symbol, "no data", nil)
	}
	return v, nil
}

func (f *fakeAdapter) FetchRange(_ context.Context, symbol string, start, end time.Time) ([]provider.Point, error) {
	f.calls = append(f.calls, "range:"+symbol)
	var points []provider.Point
	for _, p := range f.ranges[symbol] {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, provider.Unavailable(f.name, symbol, "no data in range", nil)
	}
	return points, nil
}

func newTestResolver(adapters ...provider.Adapter) *Resolver {
	reg := provider.NewRegistry()
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			panic(err)
		}
	}
	return New(reg, zerolog.Nop())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fredSpec(id, symbol string) registry.Spec {
	return registry.Spec{
		ID:        id,
		Provider:  registry.ProviderFRED,
		Symbol:    symbol,
		Scale:     1,
		Transform: registry.TransformRaw,
		Category:  registry.CategoryStock,
		Cadence:   registry.CadenceDaily,
	}
}

func TestResolveLiveFromPrimarySymbol(t *testing.T) {
	fake := &fakeAdapter{name: "fred", latest: map[string]float64{"M2SL": 21200.5}}
	r := newTestResolver(fake)

	spec := fredSpec("M2SL", "M2SL")
	spec.Scale = 0.001

	res := r.Resolve(context.Background(), spec, day(2024, 1, 5), models.Series{})
	if res.Status != models.StatusLive {
		t.Fatalf("Status = %q, want live", res.Status)
	}
	if math.Abs(res.Value-21.2005) > 1e-9 {
		t.Errorf("Value = %v, want 21.2005", res.Value)
	}
	if res.Source != "fred:M2SL" {
		t.Errorf("Source = %q, want fred:M2SL", res.Source)
	}
	if !res.AsOf.Equal(day(2024, 1, 5)) {
		t.Errorf("AsOf = %v, want resolution date", res.AsOf)
	}
}

func TestResolveFallbackSymbolWithDivideTransform(t *testing.T) {
	fake := &fakeAdapter{name: "yahoo", latest: map[string]float64{"^IXIC": 42}}
	r := newTestResolver(fake)

	spec := registry.Spec{
		ID:        "US10Y",
		Provider:  registry.ProviderYahoo,
		Symbol:    "^NDX",
		Fallbacks: []string{"^IXIC"},
		Scale:     1,
		Transform: registry.TransformDivide,
		Constant:  10,
		Category:  registry.CategoryFlow,
		Cadence:   registry.CadenceBusinessDay,
	}

	res := r.Resolve(context.Background(), spec, day(2024, 1, 5), models.Series{})
	if res.Status != models.StatusLive {
		t.Fatalf("Status = %q, want live", res.Status)
	}
	if math.Abs(res.Value-4.2) > 1e-9 {
		t.Errorf("Value = %v, want 4.2", res.Value)
	}
	if res.Source != "yahoo:^IXIC" {
		t.Errorf("Source = %q, want the fallback symbol", res.Source)
	}

	wantCalls := []string{"latest:^NDX", "latest:^IXIC"}
	if len(fake.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", fake.calls, wantCalls)
	}
	for i := range wantCalls {
		if fake.calls[i] != wantCalls[i] {
			t.Errorf("calls[%d] = %q, want %q", i, fake.calls[i], wantCalls[i])
		}
	}
}

func TestResolveFallsBackToCache(t *testing.T) {
	fake := &fakeAdapter{name: "fred"}
	r := newTestResolver(fake)

	cached := models.NewRecord(day(2024, 1, 3))
	cached.Values["M2SL"] = models.Observation{Value: 21200.5}
	series := models.Series{Records: []models.Record{cached}}

	res := r.Resolve(context.Background(), fredSpec("M2SL", "M2SL"), day(2024, 1, 5), series)
	if res.Status != models.StatusStale {
		t.Fatalf("Status = %q, want stale", res.Status)
	}
	if res.Value != 21200.5 {
		t.Errorf("Value = %v, want 21200.5", res.Value)
	}
	if res.Source != "cache" {
		t.Errorf("Source = %q, want cache", res.Source)
	}
	if !res.AsOf.Equal(day(2024, 1, 3)) {
		t.Errorf("AsOf = %v, want the cached value's date", res.AsOf)
	}
}

func TestResolveMissingWhenChainExhausted(t *testing.T) {
	r := newTestResolver(&fakeAdapter{name: "fred"})

	res := r.Resolve(context.Background(), fredSpec("M2SL", "M2SL"), day(2024, 1, 5), models.Series{})
	if res.Status != models.StatusMissing {
		t.Fatalf("Status = %q, want missing", res.Status)
	}
	if res.Value != 0 || res.Source != "" {
		t.Errorf("missing resolution carries Value=%v Source=%q, want zero values", res.Value, res.Source)
	}
}

func TestResolveTriesEachSymbolExactlyOnce(t *testing.T) {
	fake := &fakeAdapter{name: "yahoo"}
	r := newTestResolver(fake)

	spec := fredSpec("GOLD", "GC=F")
	spec.Provider = registry.ProviderYahoo
	spec.Fallbacks = []string{"GLD", "IAU"}

	r.Resolve(context.Background(), spec, day(2024, 1, 5), models.Series{})

	want := []string{"latest:GC=F", "latest:GLD", "latest:IAU"}
	if len(fake.calls) != len(want) {
		t.Fatalf("calls = %v, want %v (no per-symbol retries)", fake.calls, want)
	}
	for i := range want {
		if fake.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, fake.calls[i], want[i])
		}
	}
}

func TestResolveYearOverYear(t *testing.T) {
	fake := &fakeAdapter{
		name:   "fred",
		latest: map[string]float64{"CPIAUCSL": 320.1},
		ranges: map[string][]provider.Point{
			"CPIAUCSL": {
				{Date: day(2022, 12, 1), Value: 303.2},
				{Date: day(2023, 1, 1), Value: 305.0},
			},
		},
	}
	r := newTestResolver(fake)

	spec := fredSpec("CPI_YOY", "CPIAUCSL")
	spec.Transform = registry.TransformYoY
	spec.Category = registry.CategoryFlow

	res := r.Resolve(context.Background(), spec, day(2024, 1, 5), models.Series{})
	if res.Status != models.StatusLive {
		t.Fatalf("Status = %q, want live", res.Status)
	}

	// (320.1 / 305.0 - 1) * 100
	if math.Abs(res.Value-4.95) > 0.01 {
		t.Errorf("Value = %v, want 4.95 +/- 0.01", res.Value)
	}
}

func TestResolveYearOverYearWithoutPriorIsMissing(t *testing.T) {
	fake := &fakeAdapter{name: "fred", latest: map[string]float64{"CPIAUCSL": 320.1}}
	r := newTestResolver(fake)

	spec := fredSpec("CPI_YOY", "CPIAUCSL")
	spec.Transform = registry.TransformYoY

	res := r.Resolve(context.Background(), spec, day(2024, 1, 5), models.Series{})
	if res.Status != models.StatusMissing {
		t.Errorf("Status = %q, want missing when the prior-year point is unavailable", res.Status)
	}
}

func TestResolveRangeAppliesTransform(t *testing.T) {
	fake := &fakeAdapter{
		name: "fred",
		ranges: map[string][]provider.Point{
			"M2SL": {
				{Date: day(2024, 1, 1), Value: 1},
				{Date: day(2024, 1, 2), Value: 2},
				{Date: day(2024, 1, 3), Value: 3},
			},
		},
	}
	r := newTestResolver(fake)

	spec := fredSpec("M2SL", "M2SL")
	spec.Scale = 2

	values, source, err := r.ResolveRange(context.Background(), spec, day(2024, 1, 1), day(2024, 1, 3))
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if source != "fred:M2SL" {
		t.Errorf("source = %q, want fred:M2SL", source)
	}
	if len(values) != 3 {
		t.Fatalf("got %d values, want 3", len(values))
	}
	for i, want := range []float64{2, 4, 6} {
		d := day(2024, 1, 1+i)
		if got := values[d]; got != want {
			t.Errorf("values[%s] = %v, want %v", d.Format("2006-01-02"), got, want)
		}
	}
}

func TestResolveRangeUsesFallbackSymbol(t *testing.T) {
	fake := &fakeAdapter{
		name: "yahoo",
		ranges: map[string][]provider.Point{
			"GLD": {{Date: day(2024, 1, 1), Value: 190.0}},
		},
	}
	r := newTestResolver(fake)

	spec := fredSpec("GOLD", "GC=F")
	spec.Provider = registry.ProviderYahoo
	spec.Fallbacks = []string{"GLD"}

	values, source, err := r.ResolveRange(context.Background(), spec, day(2024, 1, 1), day(2024, 1, 5))
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if source != "yahoo:GLD" {
		t.Errorf("source = %q, want yahoo:GLD", source)
	}
	if values[day(2024, 1, 1)] != 190.0 {
		t.Errorf("values = %v, want GLD's point", values)
	}
}

func TestResolveRangeErrorWhenAllSymbolsFail(t *testing.T) {
	r := newTestResolver(&fakeAdapter{name: "fred"})

	_, _, err := r.ResolveRange(context.Background(), fredSpec("M2SL", "M2SL"), day(2024, 1, 1), day(2024, 1, 3))
	if err == nil {
		t.Fatal("expected error when every symbol fails")
	}
}

func TestResolveRangeYearOverYear(t *testing.T) {
	fake := &fakeAdapter{
		name: "fred",
		ranges: map[string][]provider.Point{
			"CPIAUCSL": {
				{Date: day(2023, 1, 1), Value: 305.0},
				{Date: day(2024, 1, 1), Value: 320.1},
			},
		},
	}
	r := newTestResolver(fake)

	spec := fredSpec("CPI_YOY", "CPIAUCSL")
	spec.Transform = registry.TransformYoY

	values, _, err := r.ResolveRange(context.Background(), spec, day(2024, 1, 1), day(2024, 1, 31))
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	// Only 2024-01-01 falls inside the window; its prior is 2023-01-01.
	if len(values) != 1 {
		t.Fatalf("got %d values, want 1: %v", len(values), values)
	}
	got := values[day(2024, 1, 1)]
	if math.Abs(got-4.95) > 0.01 {
		t.Errorf("yoy = %v, want 4.95 +/- 0.01", got)
	}
}
