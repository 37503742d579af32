package nhl

import (
	"github.com/fortuna/faceoff/internal/stats"
)

// GameType is the upstream game type, decoded once at the boundary.
type GameType int

const (
	GameTypeUnknown   GameType = 0
	GameTypePreseason GameType = 1
	GameTypeRegular   GameType = 2
	GameTypePlayoff   GameType = 3
	GameTypeAllStar   GameType = 4
)

// ParseGameType maps an upstream code. Unmapped codes are GameTypeUnknown.
func ParseGameType(code int) GameType {
	switch GameType(code) {
	case GameTypePreseason, GameTypeRegular, GameTypePlayoff, GameTypeAllStar:
		return GameType(code)
	default:
		return GameTypeUnknown
	}
}

func (t GameType) String() string {
	switch t {
	case GameTypePreseason:
		return "preseason"
	case GameTypeRegular:
		return "regular"
	case GameTypePlayoff:
		return "playoff"
	case GameTypeAllStar:
		return "all_star"
	default:
		return "unknown"
	}
}

// Supported reports whether games of this type feed the data set.
func (t GameType) Supported() bool {
	return t == GameTypeRegular || t == GameTypePlayoff
}

// GameState is the upstream game lifecycle state.
type GameState int

const (
	GameStateUnknown GameState = iota
	GameStateFuture
	GameStatePregame
	GameStateLive
	GameStateCritical
	GameStateFinal
	GameStateOfficial
)

// ParseGameState maps an upstream state code such as "FUT" or "OFF".
func ParseGameState(code string) GameState {
	switch code {
	case "FUT":
		return GameStateFuture
	case "PRE":
		return GameStatePregame
	case "LIVE":
		return GameStateLive
	case "CRIT":
		return GameStateCritical
	case "FINAL":
		return GameStateFinal
	case "OFF":
		return GameStateOfficial
	default:
		return GameStateUnknown
	}
}

func (s GameState) String() string {
	switch s {
	case GameStateFuture:
		return "FUT"
	case GameStatePregame:
		return "PRE"
	case GameStateLive:
		return "LIVE"
	case GameStateCritical:
		return "CRIT"
	case GameStateFinal:
		return "FINAL"
	case GameStateOfficial:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the final score is settled.
func (s GameState) Terminal() bool {
	return s == GameStateFinal || s == GameStateOfficial
}

// GameStub is one entry of a schedule.
type GameStub struct {
	ID         int
	Season     int
	Type       GameType
	State      GameState
	GameDate   string
	HomeAbbrev string
	AwayAbbrev string
}

// TeamLine is one side's header in a box score.
type TeamLine struct {
	ID     int
	Abbrev string
	Score  int
	SOG    int
}

// Rosters holds both sides' roster sections.
type Rosters struct {
	Home stats.RawRoster
	Away stats.RawRoster
}

// BoxScore is the per-game detail payload. Rosters is nil until the
// upstream publishes player stats for the game.
type BoxScore struct {
	ID       int
	Season   int
	Type     GameType
	State    GameState
	GameDate string
	Periods  int
	Home     TeamLine
	Away     TeamLine
	Rosters  *Rosters
}

// PlayerCareerStats is the per-player lookup result.
type PlayerCareerStats struct {
	PlayerID     int           `json:"player_id"`
	Active       bool          `json:"active"`
	TeamID       int           `json:"team_id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Position     string        `json:"position"`
	HeightInches int           `json:"height_inches"`
	WeightPounds int           `json:"weight_pounds"`
	Season       *stats.Totals `json:"season,omitempty"`
	Career       *stats.Totals `json:"career,omitempty"`
}

// Totals returns the totals for scope, if the player has them.
func (p *PlayerCareerStats) Totals(scope stats.Scope) (stats.Totals, bool) {
	if p == nil {
		return stats.Totals{}, false
	}
	switch scope {
	case stats.ScopeSeason:
		if p.Season != nil {
			return *p.Season, true
		}
	case stats.ScopeCareer:
		if p.Career != nil {
			return *p.Career, true
		}
	}
	return stats.Totals{}, false
}
