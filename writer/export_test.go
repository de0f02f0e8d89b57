package writer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"optionflow/chain"
	appconfig "optionflow/config"
	"optionflow/models"
)

func testExporter(t *testing.T, parquet bool) *Exporter {
	t.Helper()
	cfg := &appconfig.Config{}
	cfg.Export.Directory = t.TempDir()
	cfg.Export.Parquet.Enabled = parquet
	cfg.Export.Parquet.Compression = "snappy"

	exp, err := NewExporter(cfg)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	return exp
}

func TestExportWritesChainCSV(t *testing.T) {
	exp := testExporter(t, false)

	result, err := exp.Export(context.Background(), []models.OptionRecord{sampleRecord()}, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file, got %v", result.Files)
	}

	data, err := os.ReadFile(result.Files[0])
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "C-BTC-95200-200225") {
		t.Errorf("exported csv missing record: %s", data)
	}
	name := filepath.Base(result.Files[0])
	if !strings.HasPrefix(name, "option_chain_") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("unexpected file name %s", name)
	}
}

func TestExportWritesCandlesAndParquet(t *testing.T) {
	exp := testExporter(t, true)

	candles := []chain.InstrumentCandles{{
		Symbol:     "C-BTC-95200-200225",
		OptionType: models.Call,
		Candles: models.OHLCV{
			T: []int64{1700000000},
			O: []float64{10}, H: []float64{12}, L: []float64{9}, C: []float64{11}, V: []float64{100},
		},
	}}

	result, err := exp.Export(context.Background(), []models.OptionRecord{sampleRecord()}, candles)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("expected chain csv, candle csv and parquet, got %v", result.Files)
	}
	for _, f := range result.Files {
		info, err := os.Stat(f)
		if err != nil {
			t.Fatalf("stat %s: %v", f, err)
		}
		if info.Size() == 0 {
			t.Errorf("empty artifact %s", f)
		}
	}
}

func TestExportEmptyRecordSet(t *testing.T) {
	exp := testExporter(t, false)

	result, err := exp.Export(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(result.Files[0])
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header-only csv, got %d lines", len(lines))
	}
}

func TestS3KeyLayout(t *testing.T) {
	exp := testExporter(t, false)
	exp.config.Storage.S3.KeyPrefix = "optionflow"

	now := time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC)
	key := exp.s3Key("option_chain_20250220080000_ab12cd34.csv", now)
	want := "optionflow/date=2025-02-20/option_chain_20250220080000_ab12cd34.csv"
	if key != want {
		t.Errorf("got %s want %s", key, want)
	}

	exp.config.Storage.S3.KeyPrefix = ""
	key = exp.s3Key("a.csv", now)
	if key != "date=2025-02-20/a.csv" {
		t.Errorf("got %s", key)
	}
}
