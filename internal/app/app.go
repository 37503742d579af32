// Package app wires configuration into a ready-to-run orchestrator. It is
// shared by the service and the backfill command.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/cache"
	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/export"
	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/ingest"
	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/pkg/logger"
	"github.com/fortuna/faceoff/pkg/metrics"
)

// Options adjust what Build wires beyond the config.
type Options struct {
	// Mode overrides cfg.Mode when set.
	Mode ledger.Mode
	// Ledger replaces the configured SQL ledger, e.g. for predict-only use.
	Ledger   ledger.Ledger
	Reporter ingest.Reporter
	Log      *logrus.Entry
	Metrics  *metrics.Manager
	// Sinks enables the configured CSV and stream sinks.
	Sinks bool
}

// App holds everything a run needs and owns its resources.
type App struct {
	Config       *config.Config
	Ledger       ledger.Ledger
	Orchestrator *ingest.Orchestrator
	Metrics      *metrics.Manager

	closers []func() error
	checks  map[string]func(context.Context) error
}

// pinger is implemented by ledgers backed by a live connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// Build opens the ledger, the upstream client, the optional Redis cache and
// the sinks, and returns an orchestrator over them.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewManager()
	}

	mode := opts.Mode
	if mode == "" {
		parsed, err := ledger.ParseMode(cfg.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	summarizer, err := stats.NewSummarizer(cfg.Summarizer)
	if err != nil {
		return nil, err
	}
	label, err := features.ParseLabelMode(cfg.Label)
	if err != nil {
		return nil, err
	}
	builder := features.NewBuilder(summarizer, label)

	a := &App{Config: cfg, Metrics: m, checks: map[string]func(context.Context) error{}}

	l := opts.Ledger
	if l == nil {
		l, err = ledger.Open(ctx, cfg.LedgerDriver, cfg.LedgerDSN, mode)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, l.Close)
	}
	a.Ledger = l
	if p, ok := l.(pinger); ok {
		a.checks["ledger"] = p.Ping
	}

	client := nhl.NewClient(nhl.ClientConfig{
		BaseURL:         cfg.APIBaseURL,
		Timeout:         cfg.HTTPTimeout,
		RateLimitPerSec: cfg.RateLimitPerSec,
		Breaker:         cfg.BreakerEnabled,
		FailureRatio:    cfg.BreakerFailureRatio,
		BreakerTimeout:  cfg.BreakerTimeout,
	}, log, m)

	var src ingest.Source = client
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			// The cache only saves upstream calls; run without it.
			log.WithError(err).Warn("Redis unavailable, player lookups are uncached")
		} else {
			a.closers = append(a.closers, rc.Close)
			a.checks["redis"] = rc.HealthCheck
			src = ingest.RoutePlayers(client, nhl.NewCachedPlayers(client, rc, cfg.PlayerCacheTTL, log))
		}
	}

	var sinks []ingest.Sink
	if opts.Sinks && mode.Writable() {
		sinks, err = a.openSinks(cfg, builder.Headers(), mode)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	ingestOpts := []ingest.Option{
		ingest.WithBuilder(builder),
		ingest.WithSinks(sinks...),
		ingest.WithLogger(log),
		ingest.WithMetrics(m),
		ingest.WithTeams(cfg.Teams),
		ingest.WithWorkers(cfg.Workers),
		// Maintenance reads upstream directly; the cache serves prediction only.
		ingest.WithMaintainer(ingest.NewMaintainer(client, l, log, m)),
	}
	if opts.Reporter != nil {
		ingestOpts = append(ingestOpts, ingest.WithReporter(opts.Reporter))
	}
	a.Orchestrator = ingest.New(src, l, ingestOpts...)

	log.WithFields(logrus.Fields{
		"mode":       mode,
		"driver":     cfg.LedgerDriver,
		"summarizer": summarizer.Name(),
		"label":      label,
		"sinks":      len(sinks),
	}).Info("Pipeline ready")
	return a, nil
}

func (a *App) openSinks(cfg *config.Config, headers []string, mode ledger.Mode) ([]ingest.Sink, error) {
	var sinks []ingest.Sink
	if cfg.OutputDir != "" {
		csvSink, err := export.NewCSVSink(cfg.OutputDir, headers, cfg.CurrentSeason, mode == ledger.ModeRebuild)
		if err != nil {
			return nil, fmt.Errorf("opening csv sink: %w", err)
		}
		a.closers = append(a.closers, csvSink.Close)
		if mode == ledger.ModeRebuild {
			if err := csvSink.Reset(cfg.Seasons); err != nil {
				return nil, fmt.Errorf("resetting csv output: %w", err)
			}
		}
		sinks = append(sinks, csvSink)
	}
	if cfg.RedisURL != "" && cfg.StreamName != "" {
		streamSink, err := publisher.NewStreamSink(cfg.RedisURL, cfg.StreamName, headers)
		if err != nil {
			return nil, fmt.Errorf("opening stream sink: %w", err)
		}
		streamSink.WithMaxLen(cfg.StreamMaxLen)
		a.closers = append(a.closers, streamSink.Close)
		sinks = append(sinks, streamSink)
	}
	return sinks, nil
}

// HealthChecks returns a check for each live connection the app holds.
func (a *App) HealthChecks() map[string]func(context.Context) error {
	out := make(map[string]func(context.Context) error, len(a.checks))
	for name, check := range a.checks {
		out[name] = check
	}
	return out
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
