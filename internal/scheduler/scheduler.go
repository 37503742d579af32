// Package scheduler refreshes the current season on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/ingest"
	"github.com/fortuna/faceoff/pkg/logger"
)

// ErrBusy is returned when a run is requested while another is active.
var ErrBusy = errors.New("an ingestion run is already in progress")

// Runner performs one ingestion pass.
type Runner interface {
	Run(ctx context.Context, seasons []int) (ingest.Summary, error)
}

// Config holds scheduler configuration
type Config struct {
	// Spec is a standard five-field cron expression. Empty disables
	// scheduled runs; Trigger still works.
	Spec string
	// Seasons are ingested on every tick, normally just the current one.
	Seasons []int
	// RunOnStart triggers one run as soon as the scheduler starts.
	RunOnStart bool
}

// Status is a point-in-time view for the API.
type Status struct {
	Running   bool            `json:"running"`
	Schedule  string          `json:"schedule"`
	Next      *time.Time      `json:"next_run,omitempty"`
	Last      *ingest.Summary `json:"last_run,omitempty"`
	LastError string          `json:"last_error,omitempty"`
}

// Scheduler serialises scheduled and on-demand runs; at most one runs at
// a time.
type Scheduler struct {
	runner Runner
	cfg    Config
	log    *logrus.Entry
	cron   *cron.Cron
	entry  cron.EntryID

	mu      sync.Mutex
	running bool
	last    *ingest.Summary
	lastErr error
	wg      sync.WaitGroup
}

// New validates the cron spec and builds a stopped scheduler.
func New(runner Runner, cfg Config, log *logrus.Entry) (*Scheduler, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithField("component", "scheduler")

	if cfg.Spec != "" {
		if _, err := cron.ParseStandard(cfg.Spec); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Spec, err)
		}
	}

	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		log:    log,
		cron:   cron.New(cron.WithLogger(cron.PrintfLogger(log))),
	}, nil
}

// Start registers the refresh job and starts the cron loop. Scheduled runs
// use ctx; they stop being scheduled once Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Spec == "" {
		s.log.Info("No refresh schedule configured")
		if s.cfg.RunOnStart {
			_ = s.TriggerAsync(ctx)
		}
		return nil
	}

	id, err := s.cron.AddFunc(s.cfg.Spec, func() {
		if _, err := s.Trigger(ctx); err != nil && !errors.Is(err, ErrBusy) {
			s.log.WithError(err).Error("Scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}
	s.entry = id
	s.cron.Start()

	s.log.WithFields(logrus.Fields{
		"schedule": s.cfg.Spec,
		"seasons":  s.cfg.Seasons,
	}).Info("Scheduler started")

	if s.cfg.RunOnStart {
		_ = s.TriggerAsync(ctx)
	}
	return nil
}

// Stop halts scheduling and waits for any active run to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

// Trigger runs one pass now and blocks until it finishes.
func (s *Scheduler) Trigger(ctx context.Context) (ingest.Summary, error) {
	if !s.acquire() {
		return ingest.Summary{}, ErrBusy
	}
	s.wg.Add(1)
	defer s.wg.Done()
	return s.run(ctx)
}

// TriggerAsync starts one pass in the background.
func (s *Scheduler) TriggerAsync(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.run(ctx)
	}()
	return nil
}

func (s *Scheduler) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) run(ctx context.Context) (ingest.Summary, error) {
	s.log.WithField("seasons", s.cfg.Seasons).Info("Starting refresh")
	sum, err := s.runner.Run(ctx, s.cfg.Seasons)

	s.mu.Lock()
	s.running = false
	s.last = &sum
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Error("Refresh failed")
		return sum, err
	}
	s.log.WithField("games_ledgered", sum.GamesLedgered).Info("Refresh complete")
	return sum, nil
}

// Status reports whether a run is active and how the last one went.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.running, Schedule: s.cfg.Spec, Last: s.last}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.entry != 0 {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			st.Next = &next
		}
	}
	return st
}
