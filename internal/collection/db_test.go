package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
)

// CardsOfNote returns the cards of a note ordered by ord.
func (db *DB) CardsOfNote(ctx context.Context, id models.NoteID) ([]models.Card, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, note_id, ord, state FROM cards WHERE note_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, fmt.Errorf("collection: cards of note: %w", err)
	}
	defer rows.Close()

	var out []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.NoteID, &c.Ord, &c.State); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCardState sets the state of one card without recording undo history.
func (db *DB) SetCardState(ctx context.Context, id models.CardID, state models.CardState) error {
	if !state.IsValid() {
		return fmt.Errorf("collection: invalid card state %q", state)
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE cards SET state = ? WHERE id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("collection: set card state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection: card %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// GetChecksum returns the stored checksum for a note path, or "" if the
// path is not in the collection.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("collection: checksum: %w", err)
	}
	return cs, nil
}
