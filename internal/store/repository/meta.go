package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/faceoff/internal/store"
)

// MetaRepository stores one watermark per table name.
type MetaRepository struct {
	db store.Queryer
}

// NewMetaRepository creates a new meta repository
func NewMetaRepository(db store.Queryer) *MetaRepository {
	return &MetaRepository{db: db}
}

// Touch overwrites a table's watermark.
func (r *MetaRepository) Touch(ctx context.Context, table string, at time.Time) error {
	query := `
		INSERT INTO meta (table_name, updated_at) VALUES ($1, $2)
		ON CONFLICT (table_name) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, table, at.UTC()); err != nil {
		return fmt.Errorf("touching %s watermark: %w", table, err)
	}
	return nil
}

// Get returns a table's watermark.
func (r *MetaRepository) Get(ctx context.Context, table string) (time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM meta WHERE table_name = $1`, table).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("watermark %s: %w", table, ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying watermark: %w", err)
	}
	return at.UTC(), nil
}

// List returns every watermark.
func (r *MetaRepository) List(ctx context.Context) ([]store.Meta, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT table_name, updated_at FROM meta ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("querying watermarks: %w", err)
	}
	defer rows.Close()

	var out []store.Meta
	for rows.Next() {
		var m store.Meta
		if err := rows.Scan(&m.TableName, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning watermark: %w", err)
		}
		m.UpdatedAt = m.UpdatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
