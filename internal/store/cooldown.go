package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CooldownStore persists last-run timestamps so the sync cooldown survives
// restarts. It satisfies cooldown.Store.
type CooldownStore struct {
	db *sql.DB
}

func NewCooldownStore(db *sql.DB) *CooldownStore {
	return &CooldownStore{db: db}
}

func (s *CooldownStore) LastRunAt(key string) (time.Time, bool, error) {
	var t time.Time
	err := s.db.QueryRow(`SELECT last_run_at FROM sync_cooldowns WHERE key = ?`, key).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get cooldown %q: %w", key, err)
	}
	return t, true, nil
}

func (s *CooldownStore) RecordRun(key string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sync_cooldowns (key, last_run_at) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET last_run_at = excluded.last_run_at`,
		key, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("set cooldown %q: %w", key, err)
	}
	return nil
}

// DeleteExpired removes entries last run before cutoff.
func (s *CooldownStore) DeleteExpired(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sync_cooldowns WHERE last_run_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired cooldowns: %w", err)
	}
	return result.RowsAffected()
}
