package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SentLog remembers exports that were applied on a server, keyed by content
// hash so a renamed copy of the same file is still recognised.
type SentLog struct {
	db *sql.DB
}

// Sent describes one applied export.
type Sent struct {
	Hash           string
	Path           string
	Server         string
	MovementsAdded int
	SentAt         time.Time
}

// OpenSentLog opens (or creates) the log at dir/sent.db.
func OpenSentLog(dir string) (*SentLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "sent.db"))
	if err != nil {
		return nil, fmt.Errorf("opening sent log: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sent_exports (
		hash            TEXT NOT NULL,
		server          TEXT NOT NULL,
		path            TEXT NOT NULL,
		movements_added INTEGER NOT NULL DEFAULT 0,
		sent_at         TIMESTAMP NOT NULL,
		PRIMARY KEY (hash, server)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sent_exports table: %w", err)
	}

	return &SentLog{db: db}, nil
}

// Lookup returns the record for hash on server, or false if it was never
// applied there.
func (l *SentLog) Lookup(hash, server string) (Sent, bool, error) {
	s := Sent{Hash: hash, Server: server}
	err := l.db.QueryRow(
		`SELECT path, movements_added, sent_at FROM sent_exports WHERE hash = ? AND server = ?`,
		hash, server,
	).Scan(&s.Path, &s.MovementsAdded, &s.SentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Sent{}, false, nil
	}
	if err != nil {
		return Sent{}, false, err
	}
	return s, true, nil
}

// MarkSent records that the export was applied on server.
func (l *SentLog) MarkSent(hash, server, path string, added int) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO sent_exports (hash, server, path, movements_added, sent_at) VALUES (?, ?, ?, ?, ?)`,
		hash, server, path, added, time.Now().UTC(),
	)
	return err
}

// Close closes the log.
func (l *SentLog) Close() error {
	return l.db.Close()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
