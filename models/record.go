package models

// OptionType is one of exactly two contract sides.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionSymbol is the decoded form of the exchange's option symbol
// encoding {C|P}-{ASSET}-{STRIKE}-{DDMMYY}. Computed once per raw
// symbol string and immutable afterwards.
type OptionSymbol struct {
	OptionType OptionType
	Asset      string
	Strike     float64
	ExpiryDate string // ISO date, YYYY-MM-DD
	ExpiryMs   int64  // epoch ms at the exchange's 08:00 UTC settlement hour
	ExpiryRaw  string // six digits, DDMMYY
}

// OptionRecord is the flat, fully typed record one raw ticker normalizes
// into. Field order in the csv tags is the exported column order:
// identity, pricing, market, greeks. Numeric fields absent from the
// source stay missing instead of collapsing to zero.
type OptionRecord struct {
	Symbol     string     `json:"symbol" csv:"symbol"`
	ProductID  int64      `json:"product_id" csv:"product_id"`
	Asset      string     `json:"asset" csv:"asset"`
	OptionType OptionType `json:"option_type" csv:"option_type"`
	Strike     float64    `json:"strike" csv:"strike"`
	ExpiryDate string     `json:"expiry_date" csv:"expiry_date"`
	ExpiryMs   int64      `json:"expiry_ms" csv:"-"`
	ExpiryRaw  string     `json:"expiry_raw" csv:"-"`

	MarkPrice OptFloat `json:"mark_price" csv:"mark_price"`
	SpotPrice OptFloat `json:"spot_price" csv:"spot_price"`
	BidPrice  OptFloat `json:"bid_price" csv:"bid_price"`
	AskPrice  OptFloat `json:"ask_price" csv:"ask_price"`
	BidSize   OptFloat `json:"bid_size" csv:"bid_size"`
	AskSize   OptFloat `json:"ask_size" csv:"ask_size"`
	BidIV     OptFloat `json:"bid_iv" csv:"bid_iv"`
	AskIV     OptFloat `json:"ask_iv" csv:"ask_iv"`

	OpenInterest OptFloat `json:"oi" csv:"oi"`
	Volume       OptFloat `json:"volume" csv:"volume"`
	Turnover     OptFloat `json:"turnover_usd" csv:"turnover_usd"`

	Delta OptFloat `json:"delta" csv:"delta"`
	Gamma OptFloat `json:"gamma" csv:"gamma"`
	Rho   OptFloat `json:"rho" csv:"rho"`
	Theta OptFloat `json:"theta" csv:"theta"`
	Vega  OptFloat `json:"vega" csv:"vega"`
}
