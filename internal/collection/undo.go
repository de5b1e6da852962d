package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
)

// ApplyTransitions suspends and unsuspends the given cards in one
// transaction and records their previous states under a new undo token.
// Unknown card ids abort the whole operation.
func (db *DB) ApplyTransitions(ctx context.Context, label string, suspend, unsuspend []models.CardID) (string, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("collection: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	token := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO undo_entries (token, label) VALUES (?, ?)`, token, label,
	); err != nil {
		return "", fmt.Errorf("collection: record undo entry: %w", err)
	}

	apply := func(ids []models.CardID, state models.CardState) error {
		for _, id := range ids {
			var prev models.CardState
			err := tx.QueryRowContext(ctx, `SELECT state FROM cards WHERE id = ?`, id).Scan(&prev)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("collection: card %d: %w", id, apperr.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("collection: read card state: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO undo_items (token, card_id, prev_state) VALUES (?, ?, ?)`,
				token, id, prev,
			); err != nil {
				return fmt.Errorf("collection: record undo item: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE cards SET state = ? WHERE id = ?`, state, id); err != nil {
				return fmt.Errorf("collection: update card state: %w", err)
			}
		}
		return nil
	}

	if err := apply(suspend, models.CardStateSuspended); err != nil {
		return "", err
	}
	if err := apply(unsuspend, models.CardStateActive); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("collection: commit: %w", err)
	}
	return token, nil
}

// Undo restores the card states recorded under token and returns how many
// cards were restored. Cards deleted since are skipped.
func (db *DB) Undo(ctx context.Context, token string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("collection: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var undone bool
	err = tx.QueryRowContext(ctx, `SELECT undone FROM undo_entries WHERE token = ?`, token).Scan(&undone)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("collection: undo %s: %w", token, apperr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("collection: read undo entry: %w", err)
	}
	if undone {
		return 0, fmt.Errorf("collection: undo %s already applied: %w", token, apperr.ErrConflict)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE cards SET state = (
			SELECT prev_state FROM undo_items u WHERE u.token = ? AND u.card_id = cards.id
		)
		WHERE id IN (SELECT card_id FROM undo_items WHERE token = ?)
	`, token, token)
	if err != nil {
		return 0, fmt.Errorf("collection: restore card states: %w", err)
	}
	restored, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `UPDATE undo_entries SET undone = 1 WHERE token = ?`, token); err != nil {
		return 0, fmt.Errorf("collection: mark undone: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("collection: commit: %w", err)
	}
	return int(restored), nil
}
