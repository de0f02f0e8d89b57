package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"optionflow/chain"
	appconfig "optionflow/config"
	"optionflow/logger"
	"optionflow/models"
)

// Exporter writes one fetch's artifacts: the option-chain CSV, the
// candle CSV when candle data was fetched, an optional parquet sibling,
// and an optional S3 upload of everything written.
type Exporter struct {
	config   *appconfig.Config
	uploader *Uploader
	log      *logger.Log
}

// ExportResult lists what one export run produced.
type ExportResult struct {
	RunID string
	Files []string
}

func NewExporter(cfg *appconfig.Config) (*Exporter, error) {
	var uploader *Uploader
	if cfg.Storage.S3.Enabled {
		var err error
		uploader, err = NewUploader(cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
	}
	return &Exporter{config: cfg, uploader: uploader, log: logger.GetLogger()}, nil
}

// Export writes the artifacts for one completed fetch. An empty record
// set still produces a header-only chain CSV; a nil candle slice skips
// the candle CSV entirely.
func (e *Exporter) Export(ctx context.Context, records []models.OptionRecord, candles []chain.InstrumentCandles) (*ExportResult, error) {
	runID := uuid.New().String()[:8]
	now := time.Now().UTC()

	log := e.log.WithComponent("exporter").WithFields(logger.Fields{
		"run_id":  runID,
		"records": len(records),
	})

	if err := os.MkdirAll(e.config.Export.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	result := &ExportResult{RunID: runID}
	stamp := now.Format("20060102150405")

	chainCSV, err := RecordsCSV(records)
	if err != nil {
		return nil, err
	}
	chainPath, err := e.writeArtifact(ctx, fmt.Sprintf("option_chain_%s_%s.csv", stamp, runID), []byte(chainCSV), "text/csv", now)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, chainPath)

	if candles != nil {
		candleCSV, err := CandlesCSV(candles)
		if err != nil {
			return nil, err
		}
		candlePath, err := e.writeArtifact(ctx, fmt.Sprintf("candles_%s_%s.csv", stamp, runID), []byte(candleCSV), "text/csv", now)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, candlePath)
	}

	if e.config.Export.Parquet.Enabled {
		data, err := ChainParquet(records, e.config.Export.Parquet.Compression)
		if err != nil {
			return nil, err
		}
		parquetPath, err := e.writeArtifact(ctx, fmt.Sprintf("option_chain_%s_%s.parquet", stamp, runID), data, "application/octet-stream", now)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, parquetPath)
	}

	log.WithFields(logger.Fields{"files": result.Files}).Info("export complete")
	return result, nil
}

// writeArtifact writes one file locally and mirrors it to S3 when an
// uploader is configured.
func (e *Exporter) writeArtifact(ctx context.Context, filename string, data []byte, contentType string, now time.Time) (string, error) {
	path := filepath.Join(e.config.Export.Directory, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}

	logger.LogDataFlowEntry(e.log.WithComponent("exporter"), "exporter", "filesystem", len(data), filename)

	if e.uploader != nil {
		key := e.s3Key(filename, now)
		if err := e.uploader.Upload(ctx, key, data, contentType); err != nil {
			return "", err
		}
	}

	return path, nil
}

// s3Key builds a date-partitioned object key for an exported artifact.
func (e *Exporter) s3Key(filename string, now time.Time) string {
	parts := make([]string, 0, 3)
	if prefix := e.config.Storage.S3.KeyPrefix; prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, fmt.Sprintf("date=%s", now.Format("2006-01-02")), filename)

	// Convert to forward slashes for S3
	return filepath.ToSlash(filepath.Join(parts...))
}
