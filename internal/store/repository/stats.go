package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
)

// StatsRepository handles the append-only skater and goalie line tables.
type StatsRepository struct {
	db store.Queryer
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db store.Queryer) *StatsRepository {
	return &StatsRepository{db: db}
}

// InsertSkaterLines appends one game's skater lines.
func (r *StatsRepository) InsertSkaterLines(ctx context.Context, gameID int, lines []stats.SkaterLine) error {
	query := `
		INSERT INTO skaters (
			game_id, player_id, team_id, position, goals, assists, points,
			plus_minus, pim, hits, power_play_goals, shots, faceoff_pct, toi,
			blocked_shots, shifts, giveaways, takeaways
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	for _, l := range lines {
		_, err := r.db.ExecContext(ctx, query,
			gameID, l.PlayerID, l.TeamID, l.Position, l.Goals, l.Assists, l.Points,
			l.PlusMinus, l.PIM, l.Hits, l.PowerPlayGoals, l.Shots, l.FaceoffPct, l.TOI,
			l.BlockedShots, l.Shifts, l.Giveaways, l.Takeaways,
		)
		if err != nil {
			return fmt.Errorf("inserting skater %d for game %d: %w", l.PlayerID, gameID, err)
		}
	}
	return nil
}

// InsertGoalieLines appends one game's goalie lines.
func (r *StatsRepository) InsertGoalieLines(ctx context.Context, gameID int, lines []stats.GoalieLine) error {
	query := `
		INSERT INTO goalies (
			game_id, player_id, team_id,
			even_strength_saves, even_strength_shots_against,
			power_play_saves, power_play_shots_against,
			shorthanded_saves, shorthanded_shots_against,
			save_shots_against, save_pct,
			even_strength_goals_against, power_play_goals_against, shorthanded_goals_against,
			pim, goals_against, toi, starter, decision, shots_against, saves
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	for _, l := range lines {
		_, err := r.db.ExecContext(ctx, query,
			gameID, l.PlayerID, l.TeamID,
			l.EvenStrengthSaves, l.EvenStrengthShotsAgainst,
			l.PowerPlaySaves, l.PowerPlayShotsAgainst,
			l.ShorthandedSaves, l.ShorthandedShotsAgainst,
			l.SaveShotsAgainst, l.SavePct,
			l.EvenStrengthGoalsAgainst, l.PowerPlayGoalsAgainst, l.ShorthandedGoalsAgainst,
			l.PIM, l.GoalsAgainst, l.TOI, l.Starter, l.Decision, l.ShotsAgainst, l.Saves,
		)
		if err != nil {
			return fmt.Errorf("inserting goalie %d for game %d: %w", l.PlayerID, gameID, err)
		}
	}
	return nil
}

// SkaterLinesByGame returns a game's skater lines in insertion order.
func (r *StatsRepository) SkaterLinesByGame(ctx context.Context, gameID int) ([]*store.SkaterStatLine, error) {
	query := `
		SELECT id, game_id, player_id, team_id, position, goals, assists, points,
			plus_minus, pim, hits, power_play_goals, shots, faceoff_pct, toi,
			blocked_shots, shifts, giveaways, takeaways
		FROM skaters
		WHERE game_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying skater lines: %w", err)
	}
	defer rows.Close()

	return scanSkaterLines(rows)
}

// GoalieLinesByGame returns a game's goalie lines in insertion order.
func (r *StatsRepository) GoalieLinesByGame(ctx context.Context, gameID int) ([]*store.GoalieStatLine, error) {
	query := `
		SELECT id, game_id, player_id, team_id,
			even_strength_saves, even_strength_shots_against,
			power_play_saves, power_play_shots_against,
			shorthanded_saves, shorthanded_shots_against,
			save_shots_against, save_pct,
			even_strength_goals_against, power_play_goals_against, shorthanded_goals_against,
			pim, goals_against, toi, starter, decision, shots_against, saves
		FROM goalies
		WHERE game_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying goalie lines: %w", err)
	}
	defer rows.Close()

	return scanGoalieLines(rows)
}

// CountSkaterLines returns the number of stored skater lines.
func (r *StatsRepository) CountSkaterLines(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, store.TableSkaters)
}

// CountGoalieLines returns the number of stored goalie lines.
func (r *StatsRepository) CountGoalieLines(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, store.TableGoalies)
}

func scanSkaterLines(rows *sql.Rows) ([]*store.SkaterStatLine, error) {
	var out []*store.SkaterStatLine
	for rows.Next() {
		l := &store.SkaterStatLine{}
		err := rows.Scan(
			&l.ID, &l.GameID, &l.PlayerID, &l.TeamID, &l.Position, &l.Goals, &l.Assists, &l.Points,
			&l.PlusMinus, &l.PIM, &l.Hits, &l.PowerPlayGoals, &l.Shots, &l.FaceoffPct, &l.TOI,
			&l.BlockedShots, &l.Shifts, &l.Giveaways, &l.Takeaways,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning skater line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanGoalieLines(rows *sql.Rows) ([]*store.GoalieStatLine, error) {
	var out []*store.GoalieStatLine
	for rows.Next() {
		l := &store.GoalieStatLine{}
		err := rows.Scan(
			&l.ID, &l.GameID, &l.PlayerID, &l.TeamID,
			&l.EvenStrengthSaves, &l.EvenStrengthShotsAgainst,
			&l.PowerPlaySaves, &l.PowerPlayShotsAgainst,
			&l.ShorthandedSaves, &l.ShorthandedShotsAgainst,
			&l.SaveShotsAgainst, &l.SavePct,
			&l.EvenStrengthGoalsAgainst, &l.PowerPlayGoalsAgainst, &l.ShorthandedGoalsAgainst,
			&l.PIM, &l.GoalsAgainst, &l.TOI, &l.Starter, &l.Decision, &l.ShotsAgainst, &l.Saves,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning goalie line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
