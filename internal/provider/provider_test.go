package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockAdapter implements the Adapter interface for testing.
type mockAdapter struct {
	BaseAdapter
	latestFn func(ctx context.Context, symbol string) (float64, error)
	rangeFn  func(ctx context.Context, symbol string, start, end time.Time) ([]Point, error)
}

func newMockAdapter(name string) *mockAdapter {
	return &mockAdapter{
		BaseAdapter: NewBaseAdapter(Info{
			Name:        name,
			Description: "Mock " + name,
			Website:     "https://example.com",
		}, time.Minute, 10, time.Second),
	}
}

func (m *mockAdapter) FetchLatest(ctx context.Context, symbol string) (float64, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, symbol)
	}
	return 42.0, nil
}

func (m *mockAdapter) FetchRange(ctx context.Context, symbol string, start, end time.Time) ([]Point, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, symbol, start, end)
	}
	return []Point{{Date: start, Value: 42.0}}, nil
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockAdapter("test-adapter")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-adapter")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-adapter" {
		t.Errorf("expected name test-adapter, got %s", got.Info().Name)
	}
}

func TestRegistryRegisterEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockAdapter("")); err == nil {
		t.Fatal("expected error for empty adapter name")
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent adapter")
	}
	var notFound *ErrProviderNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrProviderNotFound, got %T", err)
	}
	if notFound.Name != "nonexistent" {
		t.Errorf("error name = %q, want %q", notFound.Name, "nonexistent")
	}
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockAdapter("yahoo"))
	_ = reg.Register(newMockAdapter("fred"))

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(list))
	}
	if list[0].Name != "fred" || list[1].Name != "yahoo" {
		t.Errorf("List order = [%s %s], want [fred yahoo]", list[0].Name, list[1].Name)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "fred" || names[1] != "yahoo" {
		t.Errorf("Names = %v, want [fred yahoo]", names)
	}
}

// --- Error Tests ---

func TestErrUnavailable(t *testing.T) {
	inner := errors.New("connection refused")
	err := Unavailable("fred", "M2SL", "request failed", inner)

	want := "fred: M2SL unavailable: request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to expose the inner error")
	}

	bare := Unavailable("yahoo", "^VIX", "empty result", nil)
	if bare.Error() != "yahoo: ^VIX unavailable: empty result" {
		t.Errorf("Error() without inner = %q", bare.Error())
	}
}

// --- BaseAdapter Tests ---

func TestBaseAdapterCache(t *testing.T) {
	a := newMockAdapter("cached")
	a.CacheSet("key", 3.14)

	v, ok := a.CacheGet("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(float64) != 3.14 {
		t.Errorf("cached value = %v, want 3.14", v)
	}
}

func TestBaseAdapterDegraded(t *testing.T) {
	a := newMockAdapter("keyless")
	if a.Info().Degraded {
		t.Fatal("adapter should not start degraded")
	}
	a.MarkDegraded()
	if !a.Info().Degraded {
		t.Error("expected adapter to report degraded after MarkDegraded")
	}
}

func TestBaseAdapterRateLimit(t *testing.T) {
	a := newMockAdapter("limited")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := a.RateLimit(ctx); err != nil {
			t.Fatalf("RateLimit #%d failed: %v", i, err)
		}
	}
}
