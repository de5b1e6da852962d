package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
)

// NoteRow is what sync writes for one note file.
type NoteRow struct {
	Path      string
	Deck      string
	Fields    []models.Field
	Reviews   int
	Checksum  string
	UpdatedAt time.Time
}

// UpsertNote inserts or replaces a note and makes sure it has exactly cards
// cards. Existing cards keep their state; surplus cards are removed.
func (db *DB) UpsertNote(n NoteRow, cards int) (models.NoteID, error) {
	if cards < 1 {
		cards = 1
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now()
	}
	fields := n.Fields
	if fields == nil {
		fields = []models.Field{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("collection: encode fields: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("collection: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (path, deck, fields, reviews, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			deck       = excluded.deck,
			fields     = excluded.fields,
			reviews    = excluded.reviews,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, n.Path, n.Deck, string(fieldsJSON), n.Reviews, n.Checksum, n.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("collection: upsert note: %w", err)
	}

	var id models.NoteID
	if err := tx.QueryRow(`SELECT id FROM notes WHERE path = ?`, n.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("collection: note id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO cards (note_id, ord) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("collection: prepare card insert: %w", err)
	}
	defer stmt.Close()
	for ord := 0; ord < cards; ord++ {
		if _, err := stmt.Exec(id, ord); err != nil {
			return 0, fmt.Errorf("collection: insert card: %w", err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM cards WHERE note_id = ? AND ord >= ?`, id, cards); err != nil {
		return 0, fmt.Errorf("collection: trim cards: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("collection: commit: %w", err)
	}
	return id, nil
}

// DeleteNote removes a note and its cards.
func (db *DB) DeleteNote(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("collection: delete note: %w", err)
	}
	return nil
}

// AllChecksums returns path → checksum for every note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("collection: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// FindNoteIDs returns the ids of the notes in deck and its sub-decks,
// ascending. reviewedOnly keeps notes with at least one review.
func (db *DB) FindNoteIDs(ctx context.Context, deck string, reviewedOnly bool) ([]models.NoteID, error) {
	where, args := deckFilter("deck", deck)
	query := `SELECT id FROM notes WHERE ` + where
	if reviewedOnly {
		query += ` AND reviews > 0`
	}
	query += ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: find notes: %w", err)
	}
	defer rows.Close()

	var out []models.NoteID
	for rows.Next() {
		var id models.NoteID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetNote loads a note by id.
func (db *DB) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	var (
		n          models.Note
		fieldsJSON string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, path, deck, fields, reviews, checksum, updated_at
		FROM notes WHERE id = ?
	`, id).Scan(&n.ID, &n.Path, &n.Deck, &fieldsJSON, &n.Reviews, &n.Checksum, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: get note: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &n.Fields); err != nil {
		return nil, fmt.Errorf("collection: decode fields of note %d: %w", id, err)
	}
	return &n, nil
}

// ListDecks returns every deck holding at least one note, sorted.
func (db *DB) ListDecks(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT deck FROM notes ORDER BY deck`)
	if err != nil {
		return nil, fmt.Errorf("collection: list decks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListFields returns the distinct field names used by notes in deck and its
// sub-decks, in the order they are first met.
func (db *DB) ListFields(ctx context.Context, deck string) ([]string, error) {
	where, args := deckFilter("deck", deck)
	rows, err := db.conn.QueryContext(ctx, `SELECT fields FROM notes WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: list fields: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	out := []string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var fields []models.Field
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("collection: decode fields: %w", err)
		}
		for _, f := range fields {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			out = append(out, f.Name)
		}
	}
	return out, rows.Err()
}
