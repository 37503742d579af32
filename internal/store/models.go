package store

import (
	"time"

	"github.com/fortuna/faceoff/internal/stats"
)

// Game is one ledgered game. Written once, never updated.
type Game struct {
	GameID     int       `json:"game_id"`
	Season     int       `json:"season"`
	GameType   int       `json:"game_type"`
	GameState  string    `json:"game_state"`
	GameDate   string    `json:"game_date"`
	Periods    int       `json:"periods"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	HomeAbbrev string    `json:"home_abbrev"`
	AwayAbbrev string    `json:"away_abbrev"`
	HomeScore  int       `json:"home_score"`
	HomeSOG    int       `json:"home_sog"`
	AwayScore  int       `json:"away_score"`
	AwaySOG    int       `json:"away_sog"`
	Winner     string    `json:"winner"`
	CreatedAt  time.Time `json:"created_at"`
}

// SkaterStatLine is a stored skater line. ID is the surrogate sequence.
type SkaterStatLine struct {
	ID     int64 `json:"id"`
	GameID int   `json:"game_id"`
	stats.SkaterLine
}

// GoalieStatLine is a stored goalie line. ID is the surrogate sequence.
type GoalieStatLine struct {
	ID     int64 `json:"id"`
	GameID int   `json:"game_id"`
	stats.GoalieLine
}

// Player is a player's current bio.
type Player struct {
	PlayerID     int       `json:"player_id"`
	TeamID       int       `json:"team_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Position     string    `json:"position"`
	HeightInches int       `json:"height_inches"`
	WeightPounds int       `json:"weight_pounds"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Meta is one table's last-update watermark.
type Meta struct {
	TableName string    `json:"table_name"`
	UpdatedAt time.Time `json:"updated_at"`
}
