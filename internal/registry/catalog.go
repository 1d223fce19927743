package registry

// Default returns the built-in indicator catalog. Config files may override
// or extend it; the result still goes through New for validation.
func Default() []Spec {
	return []Spec{
		// --- Monetary and liquidity series (FRED) ---
		{
			ID:        "M2SL",
			Provider:  ProviderFRED,
			Symbol:    "M2SL",
			Scale:     0.001, // billions -> trillions USD
			Transform: TransformRaw,
			Category:  CategoryStock,
			Cadence:   CadenceDaily,
		},
		{
			ID:        "WALCL",
			Provider:  ProviderFRED,
			Symbol:    "WALCL",
			Scale:     0.001, // millions -> billions USD
			Transform: TransformRaw,
			Category:  CategoryStock,
			Cadence:   CadenceDaily,
		},
		{
			ID:        "RRPONTSYD",
			Provider:  ProviderFRED,
			Symbol:    "RRPONTSYD",
			Scale:     1,
			Transform: TransformRaw,
			Category:  CategoryStock,
			Cadence:   CadenceDaily,
		},
		{
			ID:        "HY_OAS",
			Provider:  ProviderFRED,
			Symbol:    "BAMLH0A0HYM2",
			Scale:     1,
			Transform: TransformRaw,
			Category:  CategoryFlow,
			Cadence:   CadenceDaily,
		},
		{
			ID:        "CPI_YOY",
			Provider:  ProviderFRED,
			Symbol:    "CPIAUCSL",
			Scale:     1,
			Transform: TransformYoY,
			Category:  CategoryFlow,
			Cadence:   CadenceDaily,
		},

		// --- Market tape (Yahoo Finance) ---
		{
			ID:        "US10Y",
			Provider:  ProviderYahoo,
			Symbol:    "^TNX",
			Scale:     1,
			Transform: TransformDivide,
			Constant:  10, // ^TNX quotes the yield multiplied by 10
			Category:  CategoryFlow,
			Cadence:   CadenceBusinessDay,
		},
		{
			ID:        "VIX",
			Provider:  ProviderYahoo,
			Symbol:    "^VIX",
			Scale:     1,
			Transform: TransformRaw,
			Category:  CategoryFlow,
			Cadence:   CadenceBusinessDay,
		},
		{
			ID:        "NASDAQ100",
			Provider:  ProviderYahoo,
			Symbol:    "^NDX",
			Fallbacks: []string{"^IXIC"},
			Scale:     1,
			Transform: TransformRaw,
			Category:  CategoryStock,
			Cadence:   CadenceBusinessDay,
		},
		{
			ID:        "BTCUSD",
			Provider:  ProviderYahoo,
			Symbol:    "BTC-USD",
			Scale:     1,
			Transform: TransformRaw,
			Category:  CategoryStock,
			Cadence:   CadenceDaily,
		},
		{
			ID:        "GOLD",
			Provider:  ProviderYahoo,
			Symbol:    "GC=F",
			Fallbacks: []string{"GLD"},
			Scale:     1,
			Transform: TransformRaw,
			Category:  CategoryStock,
			Cadence:   CadenceBusinessDay,
		},
	}
}
