package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/pocketlifts/internal/models"
)

// StateKey names the single persisted record. The suffix versions the
// record layout.
const StateKey = "pocket_lifts_v1"

var (
	// ErrNoState is returned by LoadState before anything has been saved.
	ErrNoState = errors.New("no saved state")
	// ErrCorruptState is returned when the saved record cannot be decoded.
	ErrCorruptState = errors.New("saved state is unreadable")
)

// LoadState reads and decodes the persisted state.
func (d *DB) LoadState(ctx context.Context) (*models.State, error) {
	var raw string
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE key = ?`, StateKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var st models.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return &st, nil
}

// SaveState replaces the persisted state in a single transaction, so a
// failed write leaves the previous record in place.
func (d *DB) SaveState(ctx context.Context, st *models.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (key, value, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`,
		StateKey, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

// SavedAt reports when the state was last written.
func (d *DB) SavedAt(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := d.db.QueryRowContext(ctx,
		`SELECT saved_at FROM records WHERE key = ?`, StateKey,
	).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoState
	}
	return t, err
}

// putRaw stores an arbitrary value under the state key. Tests use it to
// simulate a damaged record.
func (d *DB) putRaw(ctx context.Context, value string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (key, value) VALUES (?, ?)`, StateKey, value)
	return err
}
