package writer

import (
	"bytes"
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"optionflow/models"
)

// chainParquetRecord is the parquet schema for one normalized option
// record. Numeric fields that can legitimately be missing are optional
// doubles so "no value" survives the format instead of collapsing to zero.
type chainParquetRecord struct {
	Symbol     string   `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	ProductID  int64    `parquet:"name=product_id, type=INT64"`
	Asset      string   `parquet:"name=asset, type=BYTE_ARRAY, convertedtype=UTF8"`
	OptionType string   `parquet:"name=option_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Strike     float64  `parquet:"name=strike, type=DOUBLE"`
	ExpiryDate string   `parquet:"name=expiry_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	ExpiryMs   int64    `parquet:"name=expiry_ms, type=INT64"`
	MarkPrice  *float64 `parquet:"name=mark_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	SpotPrice  *float64 `parquet:"name=spot_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	BidPrice   *float64 `parquet:"name=bid_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	AskPrice   *float64 `parquet:"name=ask_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	BidSize    *float64 `parquet:"name=bid_size, type=DOUBLE, repetitiontype=OPTIONAL"`
	AskSize    *float64 `parquet:"name=ask_size, type=DOUBLE, repetitiontype=OPTIONAL"`
	BidIV      *float64 `parquet:"name=bid_iv, type=DOUBLE, repetitiontype=OPTIONAL"`
	AskIV      *float64 `parquet:"name=ask_iv, type=DOUBLE, repetitiontype=OPTIONAL"`
	OI         *float64 `parquet:"name=oi, type=DOUBLE, repetitiontype=OPTIONAL"`
	Volume     *float64 `parquet:"name=volume, type=DOUBLE, repetitiontype=OPTIONAL"`
	Turnover   *float64 `parquet:"name=turnover_usd, type=DOUBLE, repetitiontype=OPTIONAL"`
	Delta      *float64 `parquet:"name=delta, type=DOUBLE, repetitiontype=OPTIONAL"`
	Gamma      *float64 `parquet:"name=gamma, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rho        *float64 `parquet:"name=rho, type=DOUBLE, repetitiontype=OPTIONAL"`
	Theta      *float64 `parquet:"name=theta, type=DOUBLE, repetitiontype=OPTIONAL"`
	Vega       *float64 `parquet:"name=vega, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// memoryFileWriter implements ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{
		buffer: &bytes.Buffer{},
	}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// For writing, we typically don't need seek functionality
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

// ChainParquet renders the normalized chain as an in-memory parquet file.
func ChainParquet(records []models.OptionRecord, compression string) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := writer.NewParquetWriter(fw, new(chainParquetRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, rec := range records {
		row := chainParquetRecord{
			Symbol:     rec.Symbol,
			ProductID:  rec.ProductID,
			Asset:      rec.Asset,
			OptionType: string(rec.OptionType),
			Strike:     rec.Strike,
			ExpiryDate: rec.ExpiryDate,
			ExpiryMs:   rec.ExpiryMs,
			MarkPrice:  optPtr(rec.MarkPrice),
			SpotPrice:  optPtr(rec.SpotPrice),
			BidPrice:   optPtr(rec.BidPrice),
			AskPrice:   optPtr(rec.AskPrice),
			BidSize:    optPtr(rec.BidSize),
			AskSize:    optPtr(rec.AskSize),
			BidIV:      optPtr(rec.BidIV),
			AskIV:      optPtr(rec.AskIV),
			OI:         optPtr(rec.OpenInterest),
			Volume:     optPtr(rec.Volume),
			Turnover:   optPtr(rec.Turnover),
			Delta:      optPtr(rec.Delta),
			Gamma:      optPtr(rec.Gamma),
			Rho:        optPtr(rec.Rho),
			Theta:      optPtr(rec.Theta),
			Vega:       optPtr(rec.Vega),
		}

		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}

	return fw.Bytes(), nil
}

func optPtr(f models.OptFloat) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
