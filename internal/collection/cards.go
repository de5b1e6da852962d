package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
)

// FindCardIDs returns the ids of every card whose note is in deck or one of
// its sub-decks, ascending.
func (db *DB) FindCardIDs(ctx context.Context, deck string) ([]models.CardID, error) {
	where, args := deckFilter("n.deck", deck)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id FROM cards c
		JOIN notes n ON n.id = c.note_id
		WHERE `+where+`
		ORDER BY c.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: find cards: %w", err)
	}
	defer rows.Close()

	var out []models.CardID
	for rows.Next() {
		var id models.CardID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetCard loads a card by id.
func (db *DB) GetCard(ctx context.Context, id models.CardID) (*models.Card, error) {
	var c models.Card
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, note_id, ord, state FROM cards WHERE id = ?`, id,
	).Scan(&c.ID, &c.NoteID, &c.Ord, &c.State)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: card %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: get card: %w", err)
	}
	return &c, nil
}
