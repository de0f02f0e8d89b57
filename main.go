package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"optionflow/chain"
	"optionflow/config"
	"optionflow/logger"
	"optionflow/models"
	"optionflow/reader/delta"
	"optionflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file")
	assetsFlag := flag.String("assets", "", "Comma separated underlying assets, overrides the configured list")
	outFlag := flag.String("out", "", "Export directory, overrides the configured one")

	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if *assetsFlag != "" {
		cfg.Chain.Assets = splitAssets(*assetsFlag)
	}
	if *outFlag != "" {
		cfg.Export.Directory = *outFlag
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.Optionflow.Name,
		"version":     cfg.Optionflow.Version,
		"environment": config.AppEnvironment(),
		"assets":      cfg.Chain.Assets,
	}).Info("starting optionflow")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("run failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Log) error {
	client, err := delta.NewClient(cfg.Source.Delta, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	results := chain.FetchAssets(ctx, client, cfg.Chain.Assets, chain.FetchOptions{
		ContractTypes:   cfg.Chain.ContractTypes,
		MinOpenInterest: cfg.Chain.MinOpenInterest,
	})

	merged := mergeRecords(results)
	failed := failedAssets(results)

	if len(failed) == len(results) {
		log.WithFields(logger.Fields{"assets": failed}).Error("all asset fetches failed")
		return fmt.Errorf("all %d asset fetches failed", len(failed))
	}
	if len(failed) > 0 {
		log.WithFields(logger.Fields{"assets": failed}).Warn("some asset fetches failed, exporting partial chain")
	}

	expiries := chain.DistinctExpiries(merged)
	series := chain.BuildStrikeSeries(merged, chain.Metric(cfg.Chain.Metric))
	log.WithComponent("main").WithFields(logger.Fields{
		"records":     len(merged),
		"expiries":    len(expiries),
		"metric":      cfg.Chain.Metric,
		"call_points": len(series.Call),
		"put_points":  len(series.Put),
	}).Info("chain snapshot assembled")

	var candles []chain.InstrumentCandles
	if cfg.Candles.Enabled {
		instruments := chain.SelectCandleInstruments(merged, cfg.Chain.TopPerType)
		lookback := time.Duration(cfg.Candles.LookbackHours) * time.Hour
		candles, err = chain.FetchCandles(ctx, client, instruments, cfg.Candles.ResolutionMinutes, lookback)
		if err != nil {
			log.WithError(err).Warn("candle fetch failed, exporting chain without candles")
			candles = nil
		}
	}

	exporter, err := writer.NewExporter(cfg)
	if err != nil {
		return err
	}
	result, err := exporter.Export(ctx, merged, candles)
	if err != nil {
		return err
	}

	logger.LogPerformanceEntry(log.WithComponent("main"), "main", "run", time.Since(start), logger.Fields{
		"run_id":        result.RunID,
		"records":       len(merged),
		"failed_assets": len(failed),
		"files":         len(result.Files),
	})
	return nil
}

func splitAssets(s string) []string {
	parts := strings.Split(s, ",")
	assets := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			assets = append(assets, strings.ToUpper(p))
		}
	}
	return assets
}

func mergeRecords(results []chain.AssetResult) []models.OptionRecord {
	var merged []models.OptionRecord
	for _, r := range results {
		merged = append(merged, r.Records...)
	}
	return merged
}

func failedAssets(results []chain.AssetResult) []string {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Asset)
		}
	}
	return failed
}
