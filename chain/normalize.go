package chain

import (
	"optionflow/models"
	"optionflow/symbols"
)

// Normalize maps one raw ticker into a flat option record. It reports
// false when the symbol does not decode; a malformed symbol must never
// abort a batch, so callers skip such tickers and continue.
func Normalize(t models.Ticker) (models.OptionRecord, bool) {
	sym, ok := symbols.Parse(t.Symbol)
	if !ok {
		return models.OptionRecord{}, false
	}

	return models.OptionRecord{
		Symbol:     t.Symbol,
		ProductID:  t.ProductID,
		Asset:      sym.Asset,
		OptionType: sym.OptionType,
		Strike:     sym.Strike,
		ExpiryDate: sym.ExpiryDate,
		ExpiryMs:   sym.ExpiryMs,
		ExpiryRaw:  sym.ExpiryRaw,

		MarkPrice: t.MarkPrice,
		SpotPrice: t.SpotPrice,
		BidPrice:  t.Quotes.BestBid,
		AskPrice:  t.Quotes.BestAsk,
		BidSize:   t.Quotes.BidSize,
		AskSize:   t.Quotes.AskSize,
		BidIV:     t.Quotes.BidIV,
		AskIV:     t.Quotes.AskIV,

		OpenInterest: t.OpenInterest,
		Volume:       t.Volume,
		Turnover:     t.Turnover,

		Delta: t.Greeks.Delta,
		Gamma: t.Greeks.Gamma,
		Rho:   t.Greeks.Rho,
		Theta: t.Greeks.Theta,
		Vega:  t.Greeks.Vega,
	}, true
}

// NormalizeAll normalizes every ticker in input order, dropping tickers
// whose symbol does not decode and records whose open interest (missing
// treated as zero) falls below minOpenInterest.
func NormalizeAll(tickers []models.Ticker, minOpenInterest float64) []models.OptionRecord {
	records := make([]models.OptionRecord, 0, len(tickers))
	for _, t := range tickers {
		rec, ok := Normalize(t)
		if !ok {
			continue
		}
		if rec.OpenInterest.Or(0) < minOpenInterest {
			continue
		}
		records = append(records, rec)
	}
	return records
}
