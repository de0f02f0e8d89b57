package chain

import (
	"sort"

	"optionflow/models"
)

// Metric names a per-record value plotted against strike.
type Metric string

const (
	MetricOpenInterest Metric = "oi"
	MetricVolume       Metric = "volume"
	MetricTurnover     Metric = "turnover_usd"
	MetricMarkPrice    Metric = "mark_price"
	MetricBidIV        Metric = "bid_iv"
	MetricAskIV        Metric = "ask_iv"
	MetricDelta        Metric = "delta"
	MetricGamma        Metric = "gamma"
	MetricTheta        Metric = "theta"
	MetricVega         Metric = "vega"
	MetricRho          Metric = "rho"
)

// Value extracts the metric from a record. Unknown metrics read as
// missing, which keeps them out of any series.
func (m Metric) Value(rec models.OptionRecord) models.OptFloat {
	switch m {
	case MetricOpenInterest:
		return rec.OpenInterest
	case MetricVolume:
		return rec.Volume
	case MetricTurnover:
		return rec.Turnover
	case MetricMarkPrice:
		return rec.MarkPrice
	case MetricBidIV:
		return rec.BidIV
	case MetricAskIV:
		return rec.AskIV
	case MetricDelta:
		return rec.Delta
	case MetricGamma:
		return rec.Gamma
	case MetricTheta:
		return rec.Theta
	case MetricVega:
		return rec.Vega
	case MetricRho:
		return rec.Rho
	default:
		return models.OptFloat{}
	}
}

// StrikePoint is one (strike, metric value) coordinate.
type StrikePoint struct {
	Strike float64
	Value  float64
}

// StrikeSeries carries one series per option type so each side can be
// styled and toggled independently by the consumer.
type StrikeSeries struct {
	Call []StrikePoint
	Put  []StrikePoint
}

// BuildStrikeSeries converts records into strike-vs-metric coordinate
// pairs. Records without a value for the metric are skipped; each side is
// sorted ascending by strike for a monotonic x axis.
func BuildStrikeSeries(records []models.OptionRecord, metric Metric) StrikeSeries {
	var series StrikeSeries
	for _, rec := range records {
		v := metric.Value(rec)
		if !v.Valid {
			continue
		}
		point := StrikePoint{Strike: rec.Strike, Value: v.Float64}
		switch rec.OptionType {
		case models.Call:
			series.Call = append(series.Call, point)
		case models.Put:
			series.Put = append(series.Put, point)
		}
	}
	sort.Slice(series.Call, func(i, j int) bool { return series.Call[i].Strike < series.Call[j].Strike })
	sort.Slice(series.Put, func(i, j int) bool { return series.Put[i].Strike < series.Put[j].Strike })
	return series
}

// OHLCPoint is one candle with a millisecond timestamp.
type OHLCPoint struct {
	TimeMs int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
}

// VolumePoint is one interval's traded volume with a millisecond timestamp.
type VolumePoint struct {
	TimeMs int64
	Volume float64
}

// CandleSeries is the chart-ready form of one instrument's OHLCV history.
type CandleSeries struct {
	OHLC   []OHLCPoint
	Volume []VolumePoint
}

// BuildCandlestickSeries converts a parallel-array candle payload into
// chart-ready point slices. Timestamps are converted from seconds to
// milliseconds for the consumer's time axis. Returns nil when there is
// nothing to chart. Missing volume values default to zero; volume, unlike
// price, has a natural zero.
func BuildCandlestickSeries(c models.OHLCV) *CandleSeries {
	if len(c.T) == 0 {
		return nil
	}

	series := &CandleSeries{
		OHLC:   make([]OHLCPoint, 0, len(c.T)),
		Volume: make([]VolumePoint, 0, len(c.T)),
	}
	for i, ts := range c.T {
		timeMs := ts * 1000
		series.OHLC = append(series.OHLC, OHLCPoint{
			TimeMs: timeMs,
			Open:   valueAt(c.O, i),
			High:   valueAt(c.H, i),
			Low:    valueAt(c.L, i),
			Close:  valueAt(c.C, i),
		})
		series.Volume = append(series.Volume, VolumePoint{TimeMs: timeMs, Volume: valueAt(c.V, i)})
	}
	return series
}

func valueAt(vs []float64, i int) float64 {
	if i >= len(vs) {
		return 0
	}
	return vs[i]
}
