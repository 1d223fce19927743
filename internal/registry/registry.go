// Package registry holds the indicator catalog: the validated, read-only
// mapping from indicator identifiers to their provider, symbols, and
// transform rules. It is built once at startup and never mutated.
package registry

import (
	"fmt"
	"sort"
)

// Provider identifies which source adapter serves an indicator.
type Provider string

const (
	ProviderFRED  Provider = "fred"
	ProviderYahoo Provider = "yahoo"
)

// Transform is the normalization rule applied to raw provider values.
type Transform string

const (
	TransformRaw    Transform = "raw"
	TransformYoY    Transform = "year-over-year-percent"
	TransformDivide Transform = "divide-by-constant"
)

// Category is the display grouping: levels (stock) versus rates and
// percentages (flow).
type Category string

const (
	CategoryStock Category = "stock"
	CategoryFlow  Category = "flow"
)

// Cadence controls which calendar days a backfill attempts live values for.
type Cadence string

const (
	CadenceDaily       Cadence = "daily"
	CadenceBusinessDay Cadence = "business-day"
)

// Spec describes one indicator.
type Spec struct {
	ID        string    `yaml:"id" mapstructure:"id"`
	Provider  Provider  `yaml:"provider" mapstructure:"provider"`
	Symbol    string    `yaml:"symbol" mapstructure:"symbol"`
	Fallbacks []string  `yaml:"fallbacks" mapstructure:"fallbacks"`
	Scale     float64   `yaml:"scale" mapstructure:"scale"`
	Transform Transform `yaml:"transform" mapstructure:"transform"`
	Constant  float64   `yaml:"constant" mapstructure:"constant"`
	Category  Category  `yaml:"category" mapstructure:"category"`
	Cadence   Cadence   `yaml:"cadence" mapstructure:"cadence"`
}

// Symbols returns the primary symbol followed by the fallbacks, in the
// order they are tried.
func (s Spec) Symbols() []string {
	out := make([]string, 0, 1+len(s.Fallbacks))
	out = append(out, s.Symbol)
	out = append(out, s.Fallbacks...)
	return out
}

// ValidationError reports a rejected indicator spec. Any validation failure
// aborts startup before network calls are made.
type ValidationError struct {
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid indicator config: %s", e.Reason)
	}
	return fmt.Sprintf("indicator %q: %s", e.ID, e.Reason)
}

func invalid(id, reason string) error {
	return &ValidationError{ID: id, Reason: reason}
}

// Registry is the immutable indicator catalog.
type Registry struct {
	specs []Spec
	byID  map[string]Spec
}

// New validates the given specs and builds a registry. IDs must be unique,
// every enum field must hold a known value, and divide-by-constant
// transforms need a positive constant.
func New(specs []Spec) (*Registry, error) {
	r := &Registry{
		specs: make([]Spec, 0, len(specs)),
		byID:  make(map[string]Spec, len(specs)),
	}

	for _, s := range specs {
		if err := validate(s); err != nil {
			return nil, err
		}
		if _, exists := r.byID[s.ID]; exists {
			return nil, invalid(s.ID, "duplicate identifier")
		}
		r.byID[s.ID] = s
		r.specs = append(r.specs, s)
	}

	sort.Slice(r.specs, func(i, j int) bool { return r.specs[i].ID < r.specs[j].ID })
	return r, nil
}

func validate(s Spec) error {
	if s.ID == "" {
		return invalid("", "identifier must not be empty")
	}
	switch s.Provider {
	case ProviderFRED, ProviderYahoo:
	default:
		return invalid(s.ID, fmt.Sprintf("unknown provider %q", s.Provider))
	}
	if s.Symbol == "" {
		return invalid(s.ID, "primary symbol must not be empty")
	}
	for _, fb := range s.Fallbacks {
		if fb == "" {
			return invalid(s.ID, "fallback symbols must not be empty")
		}
	}
	if s.Scale == 0 {
		return invalid(s.ID, "unit scale must be non-zero")
	}
	switch s.Transform {
	case TransformRaw, TransformYoY:
	case TransformDivide:
		if s.Constant <= 0 {
			return invalid(s.ID, "divide-by-constant needs a positive constant")
		}
	default:
		return invalid(s.ID, fmt.Sprintf("unknown transform %q", s.Transform))
	}
	switch s.Category {
	case CategoryStock, CategoryFlow:
	default:
		return invalid(s.ID, fmt.Sprintf("unknown category %q", s.Category))
	}
	switch s.Cadence {
	case CadenceDaily, CadenceBusinessDay:
	default:
		return invalid(s.ID, fmt.Sprintf("unknown cadence %q", s.Cadence))
	}
	return nil
}

// List returns all specs ordered by identifier.
func (r *Registry) List() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Get looks up a spec by identifier.
func (r *Registry) Get(id string) (Spec, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// IDs returns all identifiers ordered alphabetically.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s.ID)
	}
	return out
}

// Len reports the number of registered indicators.
func (r *Registry) Len() int {
	return len(r.specs)
}
