package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/faceoff/internal/store"
)

// PlayerRepository handles player bio data access
type PlayerRepository struct {
	db store.Queryer
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db store.Queryer) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Upsert inserts a player or overwrites their bio fields.
func (r *PlayerRepository) Upsert(ctx context.Context, p *store.Player) error {
	query := `
		INSERT INTO players (
			player_id, team_id, first_name, last_name, position,
			height_inches, weight_pounds, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			position = EXCLUDED.position,
			height_inches = EXCLUDED.height_inches,
			weight_pounds = EXCLUDED.weight_pounds,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		p.PlayerID, p.TeamID, p.FirstName, p.LastName, p.Position,
		p.HeightInches, p.WeightPounds, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting player %d: %w", p.PlayerID, err)
	}
	return nil
}

// Delete removes a player. It reports whether a row was removed.
func (r *PlayerRepository) Delete(ctx context.Context, playerID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE player_id = $1`, playerID)
	if err != nil {
		return false, fmt.Errorf("deleting player %d: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting player %d: %w", playerID, err)
	}
	return n > 0, nil
}

// GetByID finds a player by id
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (*store.Player, error) {
	query := `
		SELECT player_id, team_id, first_name, last_name, position,
			height_inches, weight_pounds, updated_at
		FROM players
		WHERE player_id = $1
	`

	p := &store.Player{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&p.PlayerID, &p.TeamID, &p.FirstName, &p.LastName, &p.Position,
		&p.HeightInches, &p.WeightPounds, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

// Count returns the number of stored players.
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, store.TablePlayers)
}
