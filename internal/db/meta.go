package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const lastSyncKey = "last_sync_at"

func setSyncState(ctx context.Context, database *sql.DB, key, value string) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO sync_state (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set sync state %s: %w", key, err)
	}
	return nil
}

func getSyncState(ctx context.Context, database *sql.DB, key string) (string, error) {
	var v string
	err := database.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get sync state %s: %w", key, err)
	}
	return v, nil
}

// SetLastSyncAt records the completion time of a fully successful pass.
func SetLastSyncAt(ctx context.Context, database *sql.DB, t time.Time) error {
	return setSyncState(ctx, database, lastSyncKey, strconv.FormatInt(t.UnixMilli(), 10))
}

// LastSyncAt returns the zero time when no pass has completed yet.
func LastSyncAt(ctx context.Context, database *sql.DB) (time.Time, error) {
	v, err := getSyncState(ctx, database, lastSyncKey)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last sync: %w", err)
	}
	return time.UnixMilli(ms), nil
}
