package chain

import (
	"context"
	"sync"
	"time"

	"optionflow/logger"
	"optionflow/models"
	"optionflow/reader/delta"
)

// FetchOptions controls how each asset's chain is fetched and filtered.
type FetchOptions struct {
	ContractTypes   []string
	MinOpenInterest float64
}

// AssetResult is one asset's fetch outcome. A failed asset carries its
// error; sibling assets are unaffected.
type AssetResult struct {
	Asset   string
	Records []models.OptionRecord
	Err     error
}

// FetchAssets fetches and normalizes the option chain for every asset,
// one goroutine per asset. Each asset's own pagination stays strictly
// sequential inside the client; across assets there is no shared mutable
// state, so no locks are needed beyond the WaitGroup. Results are
// returned in asset order.
func FetchAssets(ctx context.Context, client *delta.Client, assets []string, opts FetchOptions) []AssetResult {
	log := logger.GetLogger().WithComponent("chain_fetcher")

	results := make([]AssetResult, len(assets))
	wg := &sync.WaitGroup{}

	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset string) {
			defer wg.Done()

			start := time.Now()
			tickers, err := client.Tickers(ctx, asset, opts.ContractTypes)
			if err != nil {
				log.WithError(err).WithFields(logger.Fields{"asset": asset}).Error("failed to fetch option chain")
				results[i] = AssetResult{Asset: asset, Err: err}
				return
			}

			records := NormalizeAll(tickers, opts.MinOpenInterest)
			results[i] = AssetResult{Asset: asset, Records: records}

			logger.LogPerformanceEntry(log, "chain_fetcher", "fetch_asset", time.Since(start), logger.Fields{
				"asset":    asset,
				"tickers":  len(tickers),
				"records":  len(records),
				"filtered": len(tickers) - len(records),
			})
		}(i, asset)
	}

	wg.Wait()
	return results
}

// InstrumentCandles couples one instrument's identity with its fetched
// OHLCV history.
type InstrumentCandles struct {
	Symbol     string
	OptionType models.OptionType
	Candles    models.OHLCV
}

// FetchCandles retrieves candle history for each record sequentially. The
// first failed request aborts the loop; the caller decides whether the
// chain export proceeds without candles. Instruments with no candle data
// are kept with an empty payload so the caller can tell "no data" from
// "not fetched".
func FetchCandles(ctx context.Context, client *delta.Client, records []models.OptionRecord, resolutionMinutes int, lookback time.Duration) ([]InstrumentCandles, error) {
	log := logger.GetLogger().WithComponent("candle_fetcher")

	end := time.Now().UTC()
	start := end.Add(-lookback)
	resolution := delta.Resolution(resolutionMinutes)

	out := make([]InstrumentCandles, 0, len(records))
	for _, rec := range records {
		candles, err := client.Candles(ctx, rec.Symbol, resolution, start, end)
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"symbol": rec.Symbol}).Error("failed to fetch candles")
			return nil, err
		}
		if len(candles.T) == 0 {
			log.WithFields(logger.Fields{"symbol": rec.Symbol}).Debug("no candle data for instrument")
		}
		out = append(out, InstrumentCandles{
			Symbol:     rec.Symbol,
			OptionType: rec.OptionType,
			Candles:    candles,
		})
	}

	logger.LogDataFlowEntry(log, "delta_api", "exporter", len(out), "candle_series")
	return out, nil
}

// SelectCandleInstruments picks the topN most liquid strikes per option
// type, calls first. This bounds candle retrieval to the instruments a
// chart actually shows.
func SelectCandleInstruments(records []models.OptionRecord, topN int) []models.OptionRecord {
	selected := TopByOpenInterest(records, models.Call, topN)
	return append(selected, TopByOpenInterest(records, models.Put, topN)...)
}
