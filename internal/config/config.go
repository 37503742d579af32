// Package config defines process configuration and its layered loader.
package config

import (
	"fmt"
	"time"
)

// Seasons are eight-digit identifiers, e.g. 20232024.
var (
	PastSeasons   = []int{20222023, 20232024, 20242025}
	CurrentSeason = 20252026
)

// Teams is the default franchise iteration order.
var Teams = []string{
	"ANA", "BOS", "BUF", "CGY", "CAR", "CHI", "COL", "CBJ",
	"DAL", "DET", "EDM", "FLA", "LAK", "MIN", "MTL", "NSH",
	"NJD", "NYI", "NYR", "OTT", "PHI", "PIT", "SJS", "SEA",
	"STL", "TBL", "TOR", "UTA", "VAN", "VGK", "WSH", "WPG",
}

// Config contains process configuration. It is built once in main and
// handed to constructors; nothing reads it globally.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is json or text.
	LogFormat string `koanf:"log_format"`

	// APIBaseURL is the upstream stats API root.
	APIBaseURL string `koanf:"api_base_url"`
	// HTTPTimeout bounds a single upstream request.
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	// RateLimitPerSec caps upstream requests per second. Zero disables pacing.
	RateLimitPerSec float64 `koanf:"rate_limit_per_sec"`
	// BreakerEnabled wraps upstream calls in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
	// BreakerFailureRatio trips the breaker once this share of requests fail.
	BreakerFailureRatio float64 `koanf:"breaker_failure_ratio"`
	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// LedgerDriver is sqlite or postgres.
	LedgerDriver string `koanf:"ledger_driver"`
	// LedgerDSN is a file path for sqlite or a connection URL for postgres.
	LedgerDSN string `koanf:"ledger_dsn"`
	// Mode is rebuild, incremental or read-only.
	Mode string `koanf:"mode"`

	// Seasons to ingest, outermost loop.
	Seasons []int `koanf:"seasons"`
	// CurrentSeason names the in-progress season for the scheduled refresh.
	CurrentSeason int `koanf:"current_season"`
	// Teams to ingest, inner loop, in order.
	Teams []string `koanf:"teams"`
	// Workers bounds the number of teams processed concurrently.
	Workers int `koanf:"workers"`

	// Summarizer is pooled or positional.
	Summarizer string `koanf:"summarizer"`
	// Label is home_away or franchise.
	Label string `koanf:"label"`
	// OutputDir receives one CSV per season. Empty disables the CSV sink.
	OutputDir string `koanf:"output_dir"`

	// RedisURL enables the player cache and the stream sink when set.
	RedisURL string `koanf:"redis_url"`
	// PlayerCacheTTL is how long a player lookup stays cached.
	PlayerCacheTTL time.Duration `koanf:"player_cache_ttl"`
	// StreamName is the Redis stream feature rows are appended to.
	StreamName string `koanf:"stream_name"`
	// StreamMaxLen caps the stream at roughly this many entries; 0 is unbounded.
	StreamMaxLen int64 `koanf:"stream_max_len"`

	// RESTAddr is the REST listen address.
	RESTAddr string `koanf:"rest_addr"`
	// WSAddr is the websocket progress feed listen address.
	WSAddr string `koanf:"ws_addr"`
	// RefreshCron schedules the current-season refresh. Empty disables it.
	RefreshCron string `koanf:"refresh_cron"`
}

// New returns a Config populated with defaults.
func New() *Config {
	seasons := append(append([]int{}, PastSeasons...), CurrentSeason)
	return &Config{
		LogLevel:            "info",
		LogFormat:           "json",
		APIBaseURL:          "https://api-web.nhle.com",
		HTTPTimeout:         15 * time.Second,
		RateLimitPerSec:     5,
		BreakerEnabled:      true,
		BreakerFailureRatio: 0.6,
		BreakerTimeout:      30 * time.Second,
		LedgerDriver:        "sqlite",
		LedgerDSN:           "faceoff.sqlite",
		Mode:                "incremental",
		Seasons:             seasons,
		CurrentSeason:       CurrentSeason,
		Teams:               append([]string{}, Teams...),
		Workers:             1,
		Summarizer:          "pooled",
		Label:               "home_away",
		OutputDir:           "data",
		PlayerCacheTTL:      12 * time.Hour,
		StreamName:          "faceoff.feature_rows",
		StreamMaxLen:        100000,
		RESTAddr:            ":8080",
		WSAddr:              ":8081",
		RefreshCron:         "0 6 * * *",
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.Mode {
	case "rebuild", "incremental", "read-only":
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidConfig, c.Mode)
	}
	switch c.LedgerDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: ledger_driver %q", ErrInvalidConfig, c.LedgerDriver)
	}
	switch c.Summarizer {
	case "pooled", "positional":
	default:
		return fmt.Errorf("%w: summarizer %q", ErrInvalidConfig, c.Summarizer)
	}
	switch c.Label {
	case "home_away", "franchise":
	default:
		return fmt.Errorf("%w: label %q", ErrInvalidConfig, c.Label)
	}
	if c.LedgerDSN == "" {
		return fmt.Errorf("%w: ledger_dsn must not be empty", ErrInvalidConfig)
	}
	if len(c.Seasons) == 0 {
		return fmt.Errorf("%w: at least one season is required", ErrInvalidConfig)
	}
	if len(c.Teams) == 0 {
		return fmt.Errorf("%w: at least one team is required", ErrInvalidConfig)
	}
	if c.StreamMaxLen < 0 {
		return fmt.Errorf("%w: stream_max_len must be >= 0", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1", ErrInvalidConfig)
	}
	return nil
}
