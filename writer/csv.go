package writer

import (
	"fmt"
	"time"

	"github.com/gocarina/gocsv"

	"optionflow/chain"
	"optionflow/models"
)

// CandleRow is one exported candle. Rows are emitted in series order,
// then chronologically within a series.
type CandleRow struct {
	Symbol     string            `csv:"symbol"`
	OptionType models.OptionType `csv:"option_type"`
	Timestamp  int64             `csv:"timestamp"`
	Datetime   string            `csv:"datetime"`
	Open       float64           `csv:"open"`
	High       float64           `csv:"high"`
	Low        float64           `csv:"low"`
	Close      float64           `csv:"close"`
	Volume     float64           `csv:"volume"`
}

// RecordsCSV serializes normalized option records to CSV text. The column
// order is the csv tag order on models.OptionRecord; the header row is
// present even for an empty record set. Missing numeric values serialize
// as empty cells, and quoting follows encoding/csv's RFC 4180 rules.
func RecordsCSV(records []models.OptionRecord) (string, error) {
	out, err := gocsv.MarshalString(&records)
	if err != nil {
		return "", fmt.Errorf("marshal option chain csv: %w", err)
	}
	return out, nil
}

// CandlesCSV serializes candle history for several instruments into one
// CSV document, one row per (symbol, option type, timestamp).
func CandlesCSV(series []chain.InstrumentCandles) (string, error) {
	rows := make([]CandleRow, 0)
	for _, s := range series {
		for i, ts := range s.Candles.T {
			rows = append(rows, CandleRow{
				Symbol:     s.Symbol,
				OptionType: s.OptionType,
				Timestamp:  ts,
				Datetime:   time.Unix(ts, 0).UTC().Format(time.RFC3339),
				Open:       floatAt(s.Candles.O, i),
				High:       floatAt(s.Candles.H, i),
				Low:        floatAt(s.Candles.L, i),
				Close:      floatAt(s.Candles.C, i),
				Volume:     floatAt(s.Candles.V, i),
			})
		}
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("marshal candles csv: %w", err)
	}
	return out, nil
}

func floatAt(vs []float64, i int) float64 {
	if i >= len(vs) {
		return 0
	}
	return vs[i]
}
