package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leofalp/aibridge/providers/ai"
)

// Entry is the metadata record for one cached artifact.
type Entry struct {
	Key        Key           `json:"key"`
	Capability ai.Capability `json:"capability"`
	Path       string        `json:"path"`
	Format     string        `json:"format"`
	Size       int64         `json:"size"`
	CreatedAt  time.Time     `json:"created_at"`
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	capability TEXT NOT NULL,
	path       TEXT NOT NULL,
	format     TEXT NOT NULL,
	size       INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_capability ON entries(capability);
`

// index is the SQLite-backed metadata store for the persistent tier.
type index struct {
	db *sql.DB
}

func openIndex(path string) (*index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache index: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing cache index schema: %w", err)
	}
	return &index{db: db}, nil
}

func (ix *index) put(entry Entry) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO entries (key, capability, path, format, size, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(entry.Key), string(entry.Capability), entry.Path, entry.Format, entry.Size, entry.CreatedAt.Unix(),
	)
	return err
}

func (ix *index) get(key Key) (Entry, bool, error) {
	row := ix.db.QueryRow(`SELECT key, capability, path, format, size, created_at FROM entries WHERE key = ?`, string(key))
	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (ix *index) list(cap ai.Capability) ([]Entry, error) {
	rows, err := ix.db.Query(
		`SELECT key, capability, path, format, size, created_at FROM entries WHERE capability = ? ORDER BY created_at`,
		string(cap),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (ix *index) deleteCapability(cap ai.Capability) error {
	_, err := ix.db.Exec(`DELETE FROM entries WHERE capability = ?`, string(cap))
	return err
}

func (ix *index) close() error {
	return ix.db.Close()
}

func scanEntry(scan func(dest ...any) error) (Entry, error) {
	var (
		entry     Entry
		key       string
		capName   string
		createdAt int64
	)
	if err := scan(&key, &capName, &entry.Path, &entry.Format, &entry.Size, &createdAt); err != nil {
		return Entry{}, err
	}
	entry.Key = Key(key)
	entry.Capability = ai.Capability(capName)
	entry.CreatedAt = time.Unix(createdAt, 0)
	return entry, nil
}
