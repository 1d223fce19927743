package config

import (
	"github.com/seenimoa/macropulse/internal/registry"
)

// IndicatorSpecs merges the built-in catalog with the config's indicator
// entries. An entry whose id matches a catalog indicator overrides its
// fields, an unknown id appends a new indicator, and enabled: false removes
// one. The result still goes through registry.New, which validates it.
func (c *Config) IndicatorSpecs() []registry.Spec {
	specs := registry.Default()
	index := make(map[string]int, len(specs))
	for i, s := range specs {
		index[s.ID] = i
	}

	disabled := make(map[string]bool)
	for _, ic := range c.Indicators {
		if ic.Enabled != nil && !*ic.Enabled {
			disabled[ic.ID] = true
			continue
		}

		if i, ok := index[ic.ID]; ok {
			specs[i] = applyOverrides(specs[i], ic)
			continue
		}

		spec := applyOverrides(registry.Spec{
			ID:        ic.ID,
			Scale:     1,
			Transform: registry.TransformRaw,
			Category:  registry.CategoryStock,
			Cadence:   registry.CadenceDaily,
		}, ic)
		index[spec.ID] = len(specs)
		specs = append(specs, spec)
	}

	if len(disabled) == 0 {
		return specs
	}
	out := make([]registry.Spec, 0, len(specs))
	for _, s := range specs {
		if !disabled[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

func applyOverrides(spec registry.Spec, ic IndicatorConfig) registry.Spec {
	if ic.Provider != "" {
		spec.Provider = registry.Provider(ic.Provider)
	}
	if ic.Symbol != "" {
		spec.Symbol = ic.Symbol
	}
	if len(ic.Fallbacks) > 0 {
		spec.Fallbacks = ic.Fallbacks
	}
	if ic.Scale != 0 {
		spec.Scale = ic.Scale
	}
	if ic.Transform != "" {
		spec.Transform = registry.Transform(ic.Transform)
	}
	if ic.Constant != 0 {
		spec.Constant = ic.Constant
	}
	if ic.Category != "" {
		spec.Category = registry.Category(ic.Category)
	}
	if ic.Cadence != "" {
		spec.Cadence = registry.Cadence(ic.Cadence)
	}
	return spec
}
