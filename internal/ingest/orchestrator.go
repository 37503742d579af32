package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/pkg/logger"
	"github.com/fortuna/faceoff/pkg/metrics"
)

// Orchestrator drives the season x team x game traversal.
type Orchestrator struct {
	source     Source
	ledger     ledger.Ledger
	builder    *features.Builder
	sinks      []Sink
	reporter   Reporter
	log        *logrus.Entry
	metrics    *metrics.Manager
	maintainer *Maintainer
	teams      []string
	workers    int
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBuilder sets the feature row layout. The default is the pooled
// summarizer with home/away labels.
func WithBuilder(b *features.Builder) Option {
	return func(o *Orchestrator) { o.builder = b }
}

// WithSinks adds row sinks.
func WithSinks(sinks ...Sink) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, sinks...) }
}

// WithReporter sets the progress callback target.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTeams overrides the team iteration order.
func WithTeams(teams []string) Option {
	return func(o *Orchestrator) { o.teams = teams }
}

// WithWorkers bounds how many teams of one season are processed at once.
// One worker keeps the traversal strictly sequential.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMaintainer replaces the default player maintainer.
func WithMaintainer(m *Maintainer) Option {
	return func(o *Orchestrator) { o.maintainer = m }
}

// WithClock overrides the watermark clock.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an orchestrator over src and l.
func New(src Source, l ledger.Ledger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   src,
		ledger:   l,
		builder:  features.NewBuilder(stats.Pooled{}, features.LabelHomeAway),
		reporter: NopReporter{},
		teams:    config.Teams,
		workers:  1,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	o.log = o.log.WithField("component", "orchestrator")
	if o.metrics == nil {
		o.metrics = metrics.NewManager()
	}
	if o.maintainer == nil {
		o.maintainer = NewMaintainer(Upstream(src), l, o.log, o.metrics)
	}
	return o
}

// Headers returns the column names of the rows this orchestrator emits.
func (o *Orchestrator) Headers() []string {
	return o.builder.Headers()
}

// Run ingests every season in order. Unit failures are logged and counted,
// never returned; the error is non-nil only for a read-only ledger or a
// cancelled context.
func (o *Orchestrator) Run(ctx context.Context, seasons []int) (Summary, error) {
	sum := Summary{
		RunID:     uuid.NewString(),
		Seasons:   seasons,
		StartedAt: o.now(),
	}
	log := o.log.WithField("run_id", sum.RunID)

	if !o.ledger.Mode().Writable() {
		err := fmt.Errorf("ingestion run: %w", ledger.ErrReadOnly)
		o.reporter.OnRunError(err)
		return sum, err
	}

	o.reporter.OnRunStart(sum.RunID, seasons)
	log.WithFields(logrus.Fields{
		"seasons": seasons,
		"teams":   len(o.teams),
		"workers": o.workers,
		"mode":    o.ledger.Mode(),
	}).Info("Starting ingestion run")

	for i, season := range seasons {
		if err := ctx.Err(); err != nil {
			sum.Duration = time.Since(sum.StartedAt)
			o.reporter.OnRunError(err)
			return sum, err
		}

		o.reporter.OnSeasonStart(season, i, len(seasons))
		c, players := o.runSeason(ctx, log, season)
		sum.add(c)

		res := o.maintainer.Reconcile(ctx, players)
		sum.PlayersUpserted += res.Upserted
		sum.PlayersPruned += res.Pruned
		sum.PlayersFailed += res.Failed
		if res.Upserted+res.Pruned > 0 {
			o.touch(ctx, log, store.TablePlayers)
		}

		log.WithFields(logrus.Fields{
			"season":         season,
			"games_ledgered": c.ledgered,
			"players":        len(players),
		}).Info("Season complete")
		o.reporter.OnProgress(fmt.Sprintf("Season %d complete", season), i+1, len(seasons))
	}

	sum.Duration = time.Since(sum.StartedAt)
	log.WithFields(logrus.Fields{
		"games_ledgered": sum.GamesLedgered,
		"duration":       sum.Duration.String(),
	}).Info("Ingestion run complete")
	o.reporter.OnRunComplete(sum)

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

// seasonState is shared by the workers of one season.
type seasonState struct {
	mu      sync.Mutex
	claimed map[int]struct{}
	players map[int]struct{}
	counts  counts
	done    int
}

// claim marks a game id as taken for this run. It reports false if some
// team already claimed it.
func (s *seasonState) claim(gameID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimed[gameID]; ok {
		return false
	}
	s.claimed[gameID] = struct{}{}
	return true
}

func (s *seasonState) addPlayers(ids ...[]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, group := range ids {
		for _, id := range group {
			s.players[id] = struct{}{}
		}
	}
}

func (s *seasonState) playerIDs() []int {
	out := make([]int, 0, len(s.players))
	for id := range s.players {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (o *Orchestrator) runSeason(ctx context.Context, log *logrus.Entry, season int) (counts, []int) {
	st := &seasonState{
		claimed: make(map[int]struct{}),
		players: make(map[int]struct{}),
	}
	log = log.WithField("season", season)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				c := o.runTeam(ctx, log, st, season, idx)

				st.mu.Lock()
				st.counts.add(c)
				st.done++
				done := st.done
				st.mu.Unlock()

				o.reporter.OnProgress(fmt.Sprintf("Processed %s %d", o.teams[idx], season), done, len(o.teams))
			}
		}()
	}

	for idx := range o.teams {
		if ctx.Err() != nil {
			break
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return st.counts, st.playerIDs()
}

// runTeam processes one team's schedule. A schedule failure fails only
// this team.
func (o *Orchestrator) runTeam(ctx context.Context, log *logrus.Entry, st *seasonState, season, idx int) (c counts) {
	team := o.teams[idx]
	log = log.WithField("team", team)
	o.reporter.OnTeamStart(season, team, idx, len(o.teams))

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Team processing panicked")
			o.metrics.UnitFailed(metrics.UnitTeam)
			c.teamsFailed++
		}
	}()

	stubs, err := o.source.Schedule(ctx, team, season)
	if err != nil {
		log.WithError(err).Error("Failed to fetch team schedule")
		o.metrics.UnitFailed(metrics.UnitTeam)
		c.teamsFailed++
		return c
	}

	for _, stub := range stubs {
		if ctx.Err() != nil {
			break
		}
		glog := log.WithField("game_id", stub.ID)

		res, err := o.runGame(ctx, glog, st, stub)
		switch {
		case err != nil:
			glog.WithError(err).Error("Failed to process game")
			o.metrics.UnitFailed(metrics.UnitGame)
			c.failed++
		case res == resultLedgered:
			c.ledgered++
			o.reporter.OnGameProcessed(season, stub.ID)
		case res == resultDuplicate:
			c.duplicate++
		default:
			c.skipped++
		}
	}

	if c.ledgered > 0 {
		for _, table := range []string{store.TableGames, store.TableSkaters, store.TableGoalies} {
			o.touch(ctx, log, table)
		}
	}
	return c
}

type gameResult int

const (
	resultSkipped gameResult = iota
	resultDuplicate
	resultLedgered
)

var errPanic = errors.New("panic while processing game")

// runGame carries one game from schedule entry to ledger row. Panics are
// converted to errors so the team loop continues.
func (o *Orchestrator) runGame(ctx context.Context, log *logrus.Entry, st *seasonState, stub nhl.GameStub) (res gameResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = resultSkipped, fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	if !st.claim(stub.ID) {
		log.Debug("Game already handled in this run")
		return resultDuplicate, nil
	}

	known, err := o.ledger.HasGame(ctx, stub.ID)
	if err != nil {
		return resultSkipped, fmt.Errorf("checking ledger: %w", err)
	}
	if known {
		log.Debug("Game already processed")
		o.metrics.GameAlreadyProcessed()
		return resultDuplicate, nil
	}

	if reason := features.ScreenStub(stub, true); reason != features.Accept {
		o.skip(log, reason)
		return resultSkipped, nil
	}

	start := time.Now()
	box, err := o.source.BoxScore(ctx, stub.ID)
	if err != nil {
		return resultSkipped, fmt.Errorf("fetching box score: %w", err)
	}

	outcome, reason := features.Classify(box, true)
	if reason != features.Accept {
		o.skip(log, reason)
		return resultSkipped, nil
	}

	home, err := stats.NormalizeRoster(box.Rosters.Home, box.Home.ID)
	if err != nil {
		return resultSkipped, fmt.Errorf("normalizing home roster: %w", err)
	}
	away, err := stats.NormalizeRoster(box.Rosters.Away, box.Away.ID)
	if err != nil {
		return resultSkipped, fmt.Errorf("normalizing away roster: %w", err)
	}

	row := o.builder.Build(outcome, home.PerGame(), away.PerGame())

	game := store.Game{
		GameID:     box.ID,
		Season:     box.Season,
		GameType:   int(box.Type),
		GameState:  box.State.String(),
		GameDate:   box.GameDate,
		Periods:    box.Periods,
		HomeTeamID: box.Home.ID,
		AwayTeamID: box.Away.ID,
		HomeAbbrev: box.Home.Abbrev,
		AwayAbbrev: box.Away.Abbrev,
		HomeScore:  box.Home.Score,
		HomeSOG:    box.Home.SOG,
		AwayScore:  box.Away.Score,
		AwaySOG:    box.Away.SOG,
		Winner:     outcome.Winner.String(),
		CreatedAt:  o.now(),
	}
	skaters := append(home.Skaters(), away.Skaters()...)
	goalies := append(append([]stats.GoalieLine(nil), home.Goalies...), away.Goalies...)

	inserted, err := o.ledger.RecordGame(ctx, game, skaters, goalies)
	if err != nil {
		return resultSkipped, fmt.Errorf("recording game: %w", err)
	}
	if !inserted {
		log.Debug("Game already processed")
		o.metrics.GameAlreadyProcessed()
		return resultDuplicate, nil
	}

	st.addPlayers(home.PlayerIDs(), away.PlayerIDs())
	o.metrics.GameLedgered()
	o.metrics.ObserveGame(time.Since(start))

	for _, sink := range o.sinks {
		if err := sink.Emit(ctx, row); err != nil {
			log.WithError(err).WithField("sink", sink.Name()).Error("Failed to emit feature row")
			o.metrics.UnitFailed(metrics.UnitSink)
			continue
		}
		o.metrics.RowEmitted(sink.Name())
	}

	log.WithFields(logrus.Fields{
		"winner": outcome.Winner.String(),
		"score":  fmt.Sprintf("%d-%d", box.Home.Score, box.Away.Score),
	}).Debug("Game ledgered")
	return resultLedgered, nil
}

func (o *Orchestrator) skip(log *logrus.Entry, reason features.SkipReason) {
	log.WithField("reason", string(reason)).Info("Skipping game")
	o.metrics.GameSkipped(string(reason))
}

func (o *Orchestrator) touch(ctx context.Context, log *logrus.Entry, table string) {
	if err := o.ledger.Touch(ctx, table, o.now()); err != nil {
		log.WithError(err).WithField("table", table).Warn("Failed to update watermark")
	}
}
