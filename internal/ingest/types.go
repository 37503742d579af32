// Package ingest walks seasons and teams, ledgers finished games and
// emits their feature rows.
package ingest

import (
	"context"
	"time"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/nhl"
)

// Source is the upstream data provider.
type Source interface {
	Schedule(ctx context.Context, team string, season int) ([]nhl.GameStub, error)
	DailySchedule(ctx context.Context, date time.Time) ([]nhl.GameStub, error)
	BoxScore(ctx context.Context, gameID int) (*nhl.BoxScore, error)
	Player(ctx context.Context, playerID int) (*nhl.PlayerCareerStats, error)
}

// Sink receives every feature row a run produces.
type Sink interface {
	Name() string
	Emit(ctx context.Context, row features.Row) error
}

// Reporter receives lifecycle callbacks from the orchestrator. Calls may
// arrive from several workers at once.
type Reporter interface {
	OnRunStart(runID string, seasons []int)
	OnSeasonStart(season int, index int, total int)
	OnTeamStart(season int, team string, index int, total int)
	OnGameProcessed(season int, gameID int)
	OnProgress(message string, current int, total int)
	OnRunComplete(summary Summary)
	OnRunError(err error)
}

// NopReporter ignores every callback.
type NopReporter struct{}

func (NopReporter) OnRunStart(string, []int) {}
func (NopReporter) OnSeasonStart(int, int, int) {}
func (NopReporter) OnTeamStart(int, string, int, int) {}
func (NopReporter) OnGameProcessed(int, int) {}
func (NopReporter) OnProgress(string, int, int) {}
func (NopReporter) OnRunComplete(Summary) {}
func (NopReporter) OnRunError(error) {}

// Summary is the result of one run. GamesLedgered is the headline figure;
// the other counters are informational.
type Summary struct {
	RunID           string        `json:"run_id"`
	Seasons         []int         `json:"seasons"`
	GamesLedgered   int           `json:"games_ledgered"`
	GamesDuplicate  int           `json:"games_duplicate"`
	GamesSkipped    int           `json:"games_skipped"`
	GamesFailed     int           `json:"games_failed"`
	TeamsFailed     int           `json:"teams_failed"`
	PlayersUpserted int           `json:"players_upserted"`
	PlayersPruned   int           `json:"players_pruned"`
	PlayersFailed   int           `json:"players_failed"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
}

func (s *Summary) add(o counts) {
	s.GamesLedgered += o.ledgered
	s.GamesDuplicate += o.duplicate
	s.GamesSkipped += o.skipped
	s.GamesFailed += o.failed
	s.TeamsFailed += o.teamsFailed
}

type counts struct {
	ledgered    int
	duplicate   int
	skipped     int
	failed      int
	teamsFailed int
}

func (c *counts) add(o counts) {
	c.ledgered += o.ledgered
	c.duplicate += o.duplicate
	c.skipped += o.skipped
	c.failed += o.failed
	c.teamsFailed += o.teamsFailed
}

// RoutePlayers returns src with player lookups sent to players instead,
// usually a cache in front of the same upstream. Only prediction reads
// through the route; see Upstream.
func RoutePlayers(src Source, players PlayerLookup) Source {
	return routedSource{Source: src, players: players}
}

type routedSource struct {
	Source
	players PlayerLookup
}

func (r routedSource) Player(ctx context.Context, playerID int) (*nhl.PlayerCareerStats, error) {
	return r.players.Player(ctx, playerID)
}

// Upstream strips any player routing from src. Roster maintenance needs
// each player's current status, not a cached page.
func Upstream(src Source) Source {
	if r, ok := src.(routedSource); ok {
		return r.Source
	}
	return src
}
