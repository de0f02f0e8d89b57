package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Optionflow OptionflowConfig `yaml:"optionflow"`
	Source     SourceConfig     `yaml:"source"`
	Chain      ChainConfig      `yaml:"chain"`
	Candles    CandlesConfig    `yaml:"candles"`
	Export     ExportConfig     `yaml:"export"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type OptionflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type SourceConfig struct {
	Delta DeltaSourceConfig `yaml:"delta"`
}

// DeltaSourceConfig describes the REST endpoint the option chain is
// fetched from. PageSize bounds every paginated list request.
type DeltaSourceConfig struct {
	BaseURL   string          `yaml:"base_url"`
	PageSize  int             `yaml:"page_size"`
	Timeout   time.Duration   `yaml:"timeout"`
	UserAgent string          `yaml:"user_agent"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

// ChainConfig selects which contracts are fetched and how the
// normalized chain is filtered and ranked.
type ChainConfig struct {
	Assets          []string `yaml:"assets"`
	ContractTypes   []string `yaml:"contract_types"`
	MinOpenInterest float64  `yaml:"min_open_interest"`
	Metric          string   `yaml:"metric"`
	TopPerType      int      `yaml:"top_per_type"`
}

type CandlesConfig struct {
	Enabled           bool `yaml:"enabled"`
	ResolutionMinutes int  `yaml:"resolution_minutes"`
	LookbackHours     int  `yaml:"lookback_hours"`
}

type ExportConfig struct {
	Directory string        `yaml:"directory"`
	Parquet   ParquetConfig `yaml:"parquet"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	KeyPrefix       string `yaml:"key_prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	// Override endpoint settings from environment variables if available
	if v := os.Getenv("DELTA_BASE_URL"); v != "" {
		config.Source.Delta.BaseURL = strings.TrimSpace(v)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Source.Delta.BaseURL == "" {
		config.Source.Delta.BaseURL = "https://api.india.delta.exchange"
	}
	if config.Source.Delta.PageSize <= 0 {
		config.Source.Delta.PageSize = 1000
	}
	if config.Source.Delta.Timeout <= 0 {
		config.Source.Delta.Timeout = 15 * time.Second
	}
	if len(config.Chain.ContractTypes) == 0 {
		config.Chain.ContractTypes = []string{"call_options", "put_options"}
	}
	if config.Chain.Metric == "" {
		config.Chain.Metric = "oi"
	}
	if config.Chain.TopPerType <= 0 {
		config.Chain.TopPerType = 5
	}
	if config.Candles.ResolutionMinutes <= 0 {
		config.Candles.ResolutionMinutes = 5
	}
	if config.Candles.LookbackHours <= 0 {
		config.Candles.LookbackHours = 24
	}
	if config.Export.Directory == "" {
		config.Export.Directory = "exports"
	}
	if config.Export.Parquet.Compression == "" {
		config.Export.Parquet.Compression = "snappy"
	}
}

func validate(config *Config) error {
	if len(config.Chain.Assets) == 0 {
		return fmt.Errorf("no underlying assets configured")
	}
	if config.Storage.S3.Enabled && config.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3 storage enabled but no bucket configured")
	}
	return nil
}
