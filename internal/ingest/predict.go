package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/pkg/metrics"
)

// Predict builds feature rows for every game scheduled between from and
// to, inclusive, without touching the ledger. Games need not be finished;
// a game whose roster is not published yet is skipped. Skaters are
// represented by their per-game averages over scope; ScopeGame uses the
// game's own lines.
func (o *Orchestrator) Predict(ctx context.Context, from, to time.Time, scope stats.Scope) ([]features.Row, error) {
	log := o.log.WithFields(logrus.Fields{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"scope": scope,
	})
	totals := newTotalsMemo(o.source, scope, log)

	var rows []features.Row
	seen := make(map[int]struct{})
	for _, date := range enumerateDates(from, to) {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		stubs, err := o.source.DailySchedule(ctx, date)
		if err != nil {
			log.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Failed to fetch daily schedule")
			o.metrics.UnitFailed(metrics.UnitTeam)
			continue
		}

		for _, stub := range stubs {
			if _, ok := seen[stub.ID]; ok {
				continue
			}
			seen[stub.ID] = struct{}{}

			glog := log.WithField("game_id", stub.ID)
			row, ok, err := o.predictGame(ctx, glog, stub, totals, scope)
			if err != nil {
				glog.WithError(err).Error("Failed to build prediction row")
				o.metrics.UnitFailed(metrics.UnitGame)
				continue
			}
			if !ok {
				continue
			}
			rows = append(rows, row)
		}
	}

	log.WithField("rows", len(rows)).Info("Prediction rows built")
	return rows, nil
}

func (o *Orchestrator) predictGame(ctx context.Context, log *logrus.Entry, stub nhl.GameStub, totals *totalsMemo, scope stats.Scope) (row features.Row, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	if reason := features.ScreenStub(stub, false); reason != features.Accept {
		o.skip(log, reason)
		return row, false, nil
	}

	box, err := o.source.BoxScore(ctx, stub.ID)
	if err != nil {
		return row, false, fmt.Errorf("fetching box score: %w", err)
	}
	outcome, reason := features.Classify(box, false)
	if reason != features.Accept {
		o.skip(log, reason)
		return row, false, nil
	}

	home, err := stats.NormalizeRoster(box.Rosters.Home, box.Home.ID)
	if err != nil {
		return row, false, fmt.Errorf("normalizing home roster: %w", err)
	}
	away, err := stats.NormalizeRoster(box.Rosters.Away, box.Away.ID)
	if err != nil {
		return row, false, fmt.Errorf("normalizing away roster: %w", err)
	}

	if scope == stats.ScopeGame {
		return o.builder.Build(outcome, home.PerGame(), away.PerGame()), true, nil
	}
	lookup := totals.lookup(ctx)
	return o.builder.Build(outcome, home.Historical(lookup), away.Historical(lookup)), true, nil
}

// totalsMemo caches player totals for one prediction request.
type totalsMemo struct {
	source PlayerLookup
	scope  stats.Scope
	log    *logrus.Entry

	mu   sync.Mutex
	seen map[int]*stats.Totals
}

func newTotalsMemo(src PlayerLookup, scope stats.Scope, log *logrus.Entry) *totalsMemo {
	return &totalsMemo{source: src, scope: scope, log: log, seen: make(map[int]*stats.Totals)}
}

func (m *totalsMemo) lookup(ctx context.Context) stats.TotalsLookup {
	return func(playerID int) (stats.Totals, bool) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if t, ok := m.seen[playerID]; ok {
			if t == nil {
				return stats.Totals{}, false
			}
			return *t, true
		}

		p, err := m.source.Player(ctx, playerID)
		if err != nil {
			m.log.WithError(err).WithField("player_id", playerID).Warn("Player lookup failed, using zero averages")
			m.seen[playerID] = nil
			return stats.Totals{}, false
		}
		t, ok := p.Totals(m.scope)
		if !ok {
			m.seen[playerID] = nil
			return stats.Totals{}, false
		}
		m.seen[playerID] = &t
		return t, true
	}
}

// enumerateDates lists every UTC calendar day from start to end inclusive.
func enumerateDates(start, end time.Time) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}

	var dates []time.Time
	current := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	final := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for !current.After(final) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}
