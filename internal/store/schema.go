package store

// Ledger table names. The meta table is keyed by these.
const (
	TableGames   = "games"
	TableSkaters = "skaters"
	TableGoalies = "goalies"
	TablePlayers = "players"
	TableMeta    = "meta"
)

// AllTables lists every ledger table.
var AllTables = []string{TableGames, TableSkaters, TableGoalies, TablePlayers, TableMeta}

// Stat line tables reference game_id and player_id without foreign keys;
// the orchestrator writes a game's row before its lines.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		game_id      BIGINT PRIMARY KEY,
		season       INTEGER NOT NULL,
		game_type    INTEGER NOT NULL,
		game_state   TEXT NOT NULL,
		game_date    TEXT NOT NULL DEFAULT '',
		periods      INTEGER NOT NULL DEFAULT 0,
		home_team_id INTEGER NOT NULL DEFAULT 0,
		away_team_id INTEGER NOT NULL DEFAULT 0,
		home_abbrev  TEXT NOT NULL DEFAULT '',
		away_abbrev  TEXT NOT NULL DEFAULT '',
		home_score   INTEGER NOT NULL DEFAULT 0,
		home_sog     INTEGER NOT NULL DEFAULT 0,
		away_score   INTEGER NOT NULL DEFAULT 0,
		away_sog     INTEGER NOT NULL DEFAULT 0,
		winner       TEXT NOT NULL DEFAULT '',
		created_at   {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS skaters (
		id               {{serial}},
		game_id          BIGINT NOT NULL,
		player_id        BIGINT NOT NULL,
		team_id          INTEGER NOT NULL DEFAULT 0,
		position         TEXT NOT NULL DEFAULT '',
		goals            INTEGER NOT NULL DEFAULT 0,
		assists          INTEGER NOT NULL DEFAULT 0,
		points           INTEGER NOT NULL DEFAULT 0,
		plus_minus       INTEGER NOT NULL DEFAULT 0,
		pim              INTEGER NOT NULL DEFAULT 0,
		hits             INTEGER NOT NULL DEFAULT 0,
		power_play_goals INTEGER NOT NULL DEFAULT 0,
		shots            INTEGER NOT NULL DEFAULT 0,
		faceoff_pct      DOUBLE PRECISION NOT NULL DEFAULT 0,
		toi              INTEGER NOT NULL DEFAULT 0,
		blocked_shots    INTEGER NOT NULL DEFAULT 0,
		shifts           INTEGER NOT NULL DEFAULT 0,
		giveaways        INTEGER NOT NULL DEFAULT 0,
		takeaways        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_skaters_game ON skaters (game_id)`,
	`CREATE TABLE IF NOT EXISTS goalies (
		id                          {{serial}},
		game_id                     BIGINT NOT NULL,
		player_id                   BIGINT NOT NULL,
		team_id                     INTEGER NOT NULL DEFAULT 0,
		even_strength_saves         INTEGER NOT NULL DEFAULT 0,
		even_strength_shots_against INTEGER NOT NULL DEFAULT 0,
		power_play_saves            INTEGER NOT NULL DEFAULT 0,
		power_play_shots_against    INTEGER NOT NULL DEFAULT 0,
		shorthanded_saves           INTEGER NOT NULL DEFAULT 0,
		shorthanded_shots_against   INTEGER NOT NULL DEFAULT 0,
		save_shots_against          INTEGER NOT NULL DEFAULT 0,
		save_pct                    DOUBLE PRECISION NOT NULL DEFAULT 0,
		even_strength_goals_against INTEGER NOT NULL DEFAULT 0,
		power_play_goals_against    INTEGER NOT NULL DEFAULT 0,
		shorthanded_goals_against   INTEGER NOT NULL DEFAULT 0,
		pim                         INTEGER NOT NULL DEFAULT 0,
		goals_against               INTEGER NOT NULL DEFAULT 0,
		toi                         INTEGER NOT NULL DEFAULT 0,
		starter                     BOOLEAN NOT NULL DEFAULT FALSE,
		decision                    TEXT NOT NULL DEFAULT '',
		shots_against               INTEGER NOT NULL DEFAULT 0,
		saves                       INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goalies_game ON goalies (game_id)`,
	`CREATE TABLE IF NOT EXISTS players (
		player_id     BIGINT PRIMARY KEY,
		team_id       INTEGER NOT NULL DEFAULT 0,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		position      TEXT NOT NULL DEFAULT '',
		height_inches INTEGER NOT NULL DEFAULT 0,
		weight_pounds INTEGER NOT NULL DEFAULT 0,
		updated_at    {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meta (
		table_name TEXT PRIMARY KEY,
		updated_at {{ts}} NOT NULL
	)`,
}
