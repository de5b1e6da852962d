package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// LoadSettings decodes the JSON value stored under key into v. It reports
// false when nothing is stored.
func (db *DB) LoadSettings(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("collection: load settings %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("collection: decode settings %s: %w", key, err)
	}
	return true, nil
}

// SaveSettings stores v as JSON under key, replacing any previous value.
func (db *DB) SaveSettings(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("collection: encode settings %s: %w", key, err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("collection: save settings %s: %w", key, err)
	}
	return nil
}
