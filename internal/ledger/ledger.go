package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
)

var (
	// ErrReadOnly is returned by every mutation on a read-only ledger.
	ErrReadOnly = errors.New("ledger is read-only")
	// ErrUnknownMode is returned by ParseMode for an unrecognised mode.
	ErrUnknownMode = errors.New("unknown ledger mode")
)

// Mode selects how a ledger treats existing contents when opened.
type Mode string

const (
	// ModeRebuild clears every table before the run.
	ModeRebuild Mode = "rebuild"
	// ModeIncremental keeps existing contents and skips known game ids.
	ModeIncremental Mode = "incremental"
	// ModeReadOnly permits reads only.
	ModeReadOnly Mode = "read-only"
)

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeRebuild, ModeIncremental, ModeReadOnly:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Writable reports whether the mode permits mutation.
func (m Mode) Writable() bool {
	return m != ModeReadOnly
}

// Ledger is the persistent record of processed games and known players.
//
// RecordGame writes the game row and its stat lines atomically. It
// returns false, with no error, when the game id is already present, in
// which case nothing is written.
type Ledger interface {
	Mode() Mode
	HasGame(ctx context.Context, gameID int) (bool, error)
	RecordGame(ctx context.Context, g store.Game, skaters []stats.SkaterLine, goalies []stats.GoalieLine) (bool, error)
	HasPlayer(ctx context.Context, playerID int) (bool, error)
	UpsertPlayer(ctx context.Context, p store.Player) error
	DeletePlayer(ctx context.Context, playerID int) (bool, error)
	Touch(ctx context.Context, table string, at time.Time) error
	Watermark(ctx context.Context, table string) (time.Time, bool, error)
	Report(ctx context.Context) (Report, error)
	Close() error
}

// TableReport is one table's row count and watermark.
type TableReport struct {
	Table     string     `json:"table"`
	Rows      int        `json:"rows"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Report summarises ledger contents.
type Report struct {
	Mode   Mode          `json:"mode"`
	Tables []TableReport `json:"tables"`
}

// Rows returns the row count for a table, or 0 if it is not in the report.
func (r Report) Rows(table string) int {
	for _, t := range r.Tables {
		if t.Table == table {
			return t.Rows
		}
	}
	return 0
}

// Open returns a SQL-backed ledger for the given driver and dsn.
func Open(ctx context.Context, driver, dsn string, mode Mode) (Ledger, error) {
	db, err := store.Open(store.Dialect(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening ledger store: %w", err)
	}
	l, err := NewSQL(ctx, db, mode)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}
