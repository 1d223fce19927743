package yahoo

// chartResponse is the envelope returned by /v8/finance/chart.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	InstrumentType     string  `json:"instrumentType"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	Timezone           string  `json:"timezone"`
}

type indicators struct {
	Quote []quoteColumns `json:"quote"`
}

// quoteColumns carries the OHLCV columns. Values are pointers because the
// API publishes null for sessions without data.
type quoteColumns struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// quoteResponse is the envelope returned by /v7/finance/quote.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	Currency                   string   `json:"currency"`
	MarketState                string   `json:"marketState"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketTime          int64    `json:"regularMarketTime"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
