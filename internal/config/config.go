package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Default returns a config with every optional field filled in.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: slog.LevelInfo, Format: "text"},
		DB: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "runner_market",
			PoolSize: 10,
		},
		Web: WebConfig{Host: "0.0.0.0", Port: 8080, RateLimit: DefaultRateLimit},
		NATS: NATSConfig{
			URL:    "nats://localhost:4222",
			Stream: DefaultEventStream,
		},
		Chain: ChainConfig{
			SubjectPrefix:  DefaultChainSubjectPrefix,
			RequestTimeout: Duration(DefaultChainTimeout),
		},
		Catalog: CatalogConfig{Root: "runners", Season: "s1"},
		Market: MarketConfig{
			SweepInterval: Duration(DefaultSweepInterval),
			SweepBatch:    DefaultSweepBatchSize,
		},
	}
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("NATS_TOKEN"); v != "" {
		c.NATS.Token = v
	}
	if v := os.Getenv("CATALOG_KEY"); v != "" {
		c.Catalog.Key = v
	}
	if v := os.Getenv("CATALOG_SECRET"); v != "" {
		c.Catalog.Secret = v
	}
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	DB      DBConfig      `toml:"db"`
	Web     WebConfig     `toml:"web"`
	NATS    NATSConfig    `toml:"nats"`
	Chain   ChainConfig   `toml:"chain"`
	Catalog CatalogConfig `toml:"catalog"`
	Market  MarketConfig  `toml:"market"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type WebConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
	// RateLimit is requests per minute per user, zero disables it.
	RateLimit int `toml:"rate_limit"`
}

type NATSConfig struct {
	URL    string `toml:"url"`
	Token  string `toml:"token"`
	Stream string `toml:"stream"`
}

type ChainConfig struct {
	SubjectPrefix  string   `toml:"subject_prefix"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// CatalogConfig points at the S3 compatible bucket holding season runner lists.
type CatalogConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Endpoint string `toml:"endpoint"`
	Root     string `toml:"root"`
	Season   string `toml:"season"`
}

type MarketConfig struct {
	StrictPackTypes bool     `toml:"strict_pack_types"`
	SweepInterval   Duration `toml:"sweep_interval"`
	SweepBatch      int      `toml:"sweep_batch"`
}

// Duration decodes TOML strings such as "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
