// Package journal keeps a local SQLite record of accepted solutions, one row
// per distinct (normalized) solution of each shape.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/piwi3910/SomaCube/internal/yass"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal is an open solution store.
type Journal struct {
	db *sql.DB
}

// Entry is one recorded solution.
type Entry struct {
	ID         string
	ShapeID    string
	Normalized string
	GridState  string
	Message    string
	CreatedAt  time.Time
}

// Open opens or creates the journal at path and brings its schema up to date.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring journal: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a solution for shapeID unless an equivalent one, up to
// rotation of the whole grid, is already present. It reports whether the
// solution was new.
func (j *Journal) Record(ctx context.Context, shapeID, gridState, message string) (bool, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO solutions (solution_id, shape_id, normalized, grid_state, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), shapeID, yass.Normalize(gridState), gridState, message,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("recording solution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recording solution: %w", err)
	}
	return n == 1, nil
}

// Count returns the number of distinct solutions recorded for shapeID.
func (j *Journal) Count(ctx context.Context, shapeID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solutions WHERE shape_id = ?`, shapeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting solutions: %w", err)
	}
	return n, nil
}

// List returns the solutions for shapeID, oldest first.
func (j *Journal) List(ctx context.Context, shapeID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT solution_id, shape_id, normalized, grid_state, message, created_at
		FROM solutions WHERE shape_id = ? ORDER BY rowid`, shapeID)
	if err != nil {
		return nil, fmt.Errorf("listing solutions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.ShapeID, &e.Normalized, &e.GridState, &e.Message, &created); err != nil {
			return nil, fmt.Errorf("listing solutions: %w", err)
		}
		e.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("solution %s: bad timestamp %q", e.ID, created)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
