package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/faceoff/internal/store"
)

// ErrNotFound is returned when a keyed lookup matches no row.
var ErrNotFound = errors.New("not found")

// GameRepository handles game data access
type GameRepository struct {
	db store.Queryer
}

// NewGameRepository creates a new game repository
func NewGameRepository(db store.Queryer) *GameRepository {
	return &GameRepository{db: db}
}

// Insert writes a game row. It returns false, with no error, when the game
// id is already present; the stored row is left untouched.
func (r *GameRepository) Insert(ctx context.Context, g *store.Game) (bool, error) {
	query := `
		INSERT INTO games (
			game_id, season, game_type, game_state, game_date, periods,
			home_team_id, away_team_id, home_abbrev, away_abbrev,
			home_score, home_sog, away_score, away_sog, winner, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (game_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		g.GameID, g.Season, g.GameType, g.GameState, g.GameDate, g.Periods,
		g.HomeTeamID, g.AwayTeamID, g.HomeAbbrev, g.AwayAbbrev,
		g.HomeScore, g.HomeSOG, g.AwayScore, g.AwaySOG, g.Winner, g.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("inserting game %d: %w", g.GameID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting game %d: %w", g.GameID, err)
	}
	return n == 1, nil
}

// Exists reports whether a game id is ledgered.
func (r *GameRepository) Exists(ctx context.Context, gameID int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE game_id = $1`, gameID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking game %d: %w", gameID, err)
	}
	return true, nil
}

// GetByID finds a game by its id
func (r *GameRepository) GetByID(ctx context.Context, gameID int) (*store.Game, error) {
	query := `
		SELECT game_id, season, game_type, game_state, game_date, periods,
			home_team_id, away_team_id, home_abbrev, away_abbrev,
			home_score, home_sog, away_score, away_sog, winner, created_at
		FROM games
		WHERE game_id = $1
	`

	g := &store.Game{}
	err := r.db.QueryRowContext(ctx, query, gameID).Scan(
		&g.GameID, &g.Season, &g.GameType, &g.GameState, &g.GameDate, &g.Periods,
		&g.HomeTeamID, &g.AwayTeamID, &g.HomeAbbrev, &g.AwayAbbrev,
		&g.HomeScore, &g.HomeSOG, &g.AwayScore, &g.AwaySOG, &g.Winner, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return g, nil
}

// Count returns the number of ledgered games.
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, store.TableGames)
}

func countRows(ctx context.Context, db store.Queryer, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
