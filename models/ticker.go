package models

/////////////////////////////////////////////////////////////////////////////
///////////////////////////// EXCHANGE PAYLOADS /////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// TickerQuotes mirrors the nested best-quote object of a ticker payload.
type TickerQuotes struct {
	BestBid OptFloat `json:"best_bid"`
	BestAsk OptFloat `json:"best_ask"`
	BidIV   OptFloat `json:"bid_iv"`
	AskIV   OptFloat `json:"ask_iv"`
	BidSize OptFloat `json:"bid_size"`
	AskSize OptFloat `json:"ask_size"`
}

// TickerGreeks mirrors the nested greeks object of a ticker payload.
type TickerGreeks struct {
	Delta OptFloat `json:"delta"`
	Gamma OptFloat `json:"gamma"`
	Rho   OptFloat `json:"rho"`
	Theta OptFloat `json:"theta"`
	Vega  OptFloat `json:"vega"`
}

// Ticker mirrors one raw option ticker as returned by the exchange's
// public tickers endpoint. Quotes and Greeks are value types so an
// absent sub-object decodes to all-missing fields.
type Ticker struct {
	Symbol       string       `json:"symbol"`
	ProductID    int64        `json:"product_id"`
	ContractType string       `json:"contract_type"`
	MarkPrice    OptFloat     `json:"mark_price"`
	SpotPrice    OptFloat     `json:"spot_price"`
	OpenInterest OptFloat     `json:"oi"`
	Volume       OptFloat     `json:"volume"`
	Turnover     OptFloat     `json:"turnover_usd"`
	Quotes       TickerQuotes `json:"quotes"`
	Greeks       TickerGreeks `json:"greeks"`
}

// OHLCV mirrors the exchange's candle history payload: parallel arrays,
// one element per interval, timestamps in seconds ascending. A missing or
// empty T array means "no data", not an error.
type OHLCV struct {
	T []int64   `json:"t"`
	O []float64 `json:"o"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	C []float64 `json:"c"`
	V []float64 `json:"v"`
}
