package storage

import (
	"context"
	"fmt"
	"time"
)

// ImportLog records the outcome of one chat-log import.
type ImportLog struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Source          string    `json:"source"`
	Status          string    `json:"status"`
	LinesRead       int       `json:"lines_read"`
	CandidatesFound int       `json:"candidates_found"`
	MovementsAdded  int       `json:"movements_added"`
	DurationMs      *int64    `json:"duration_ms"`
	ErrorMessage    *string   `json:"error_message"`
}

// Import log statuses.
const (
	ImportProposed = "proposed"
	ImportApplied  = "applied"
	ImportFailed   = "failed"
)

// InsertImportLog creates a new import log entry and returns its ID.
func (d *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO import_logs (created_at, source, status, lines_read, candidates_found,
		 movements_added, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), log.Source, log.Status, log.LinesRead, log.CandidatesFound,
		log.MovementsAdded, log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return res.LastInsertId()
}

// ListImportLogs returns the most recent import logs, newest first.
func (d *DB) ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, created_at, source, status, lines_read, candidates_found,
		 movements_added, duration_ms, error_message
		 FROM import_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var logs []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status, &l.LinesRead,
			&l.CandidatesFound, &l.MovementsAdded, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
