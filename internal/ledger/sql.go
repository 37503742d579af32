package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
)

// SQL is a Ledger over a store.Database.
type SQL struct {
	db      *store.Database
	mode    Mode
	games   *repository.GameRepository
	stats   *repository.StatsRepository
	players *repository.PlayerRepository
	meta    *repository.MetaRepository
}

// NewSQL prepares the schema and applies the mode. Read-only ledgers do
// not touch the schema.
func NewSQL(ctx context.Context, db *store.Database, mode Mode) (*SQL, error) {
	if mode.Writable() {
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensuring ledger schema: %w", err)
		}
	}
	if mode == ModeRebuild {
		if err := db.Truncate(ctx); err != nil {
			return nil, fmt.Errorf("clearing ledger for rebuild: %w", err)
		}
	}

	conn := db.DB()
	return &SQL{
		db:      db,
		mode:    mode,
		games:   repository.NewGameRepository(conn),
		stats:   repository.NewStatsRepository(conn),
		players: repository.NewPlayerRepository(conn),
		meta:    repository.NewMetaRepository(conn),
	}, nil
}

func (l *SQL) Mode() Mode { return l.mode }

func (l *SQL) HasGame(ctx context.Context, gameID int) (bool, error) {
	return l.games.Exists(ctx, gameID)
}

func (l *SQL) RecordGame(ctx context.Context, g store.Game, skaters []stats.SkaterLine, goalies []stats.GoalieLine) (bool, error) {
	if !l.mode.Writable() {
		return false, ErrReadOnly
	}

	tx, err := l.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning game %d: %w", g.GameID, err)
	}
	defer tx.Rollback()

	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	inserted, err := repository.NewGameRepository(tx).Insert(ctx, &g)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	lines := repository.NewStatsRepository(tx)
	if err := lines.InsertSkaterLines(ctx, g.GameID, skaters); err != nil {
		return false, err
	}
	if err := lines.InsertGoalieLines(ctx, g.GameID, goalies); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing game %d: %w", g.GameID, err)
	}
	return true, nil
}

func (l *SQL) HasPlayer(ctx context.Context, playerID int) (bool, error) {
	_, err := l.players.GetByID(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *SQL) UpsertPlayer(ctx context.Context, p store.Player) error {
	if !l.mode.Writable() {
		return ErrReadOnly
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	return l.players.Upsert(ctx, &p)
}

func (l *SQL) DeletePlayer(ctx context.Context, playerID int) (bool, error) {
	if !l.mode.Writable() {
		return false, ErrReadOnly
	}
	return l.players.Delete(ctx, playerID)
}

func (l *SQL) Touch(ctx context.Context, table string, at time.Time) error {
	if !l.mode.Writable() {
		return ErrReadOnly
	}
	return l.meta.Touch(ctx, table, at)
}

func (l *SQL) Watermark(ctx context.Context, table string) (time.Time, bool, error) {
	at, err := l.meta.Get(ctx, table)
	if errors.Is(err, repository.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (l *SQL) Report(ctx context.Context) (Report, error) {
	rep := Report{Mode: l.mode}

	marks, err := l.meta.List(ctx)
	if err != nil {
		return rep, err
	}
	byTable := make(map[string]time.Time, len(marks))
	for _, m := range marks {
		byTable[m.TableName] = m.UpdatedAt
	}

	counters := []struct {
		table string
		count func(context.Context) (int, error)
	}{
		{store.TableGames, l.games.Count},
		{store.TableSkaters, l.stats.CountSkaterLines},
		{store.TableGoalies, l.stats.CountGoalieLines},
		{store.TablePlayers, l.players.Count},
	}
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return rep, err
		}
		tr := TableReport{Table: c.table, Rows: n}
		if at, ok := byTable[c.table]; ok {
			tr.UpdatedAt = &at
		}
		rep.Tables = append(rep.Tables, tr)
	}
	return rep, nil
}

// Ping checks the underlying database connection.
func (l *SQL) Ping(ctx context.Context) error {
	return l.db.HealthCheck(ctx)
}

func (l *SQL) Close() error {
	return l.db.Close()
}
