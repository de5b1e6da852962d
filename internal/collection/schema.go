// Package collection is the SQLite-backed card collection: notes imported
// from the vault, their cards and suspend states, undo history and saved
// settings.
package collection

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL UNIQUE,
	deck       TEXT NOT NULL,
	fields     TEXT NOT NULL DEFAULT '[]',
	reviews    INTEGER NOT NULL DEFAULT 0,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_deck ON notes(deck);

CREATE TABLE IF NOT EXISTS cards (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	ord     INTEGER NOT NULL,
	state   TEXT NOT NULL DEFAULT 'active',
	UNIQUE(note_id, ord)
);

CREATE INDEX IF NOT EXISTS idx_cards_note ON cards(note_id);

CREATE TABLE IF NOT EXISTS undo_entries (
	token      TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	undone     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS undo_items (
	token      TEXT NOT NULL REFERENCES undo_entries(token) ON DELETE CASCADE,
	card_id    INTEGER NOT NULL,
	prev_state TEXT NOT NULL,
	PRIMARY KEY(token, card_id)
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// DB wraps a sql.DB with collection operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("collection: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("collection: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("collection: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
