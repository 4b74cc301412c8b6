package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/clubsite/internal/model"
)

type SyncRunStore struct {
	db *sql.DB
}

func NewSyncRunStore(db *sql.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

func (s *SyncRunStore) Create(run model.SyncRun) (*model.SyncRun, error) {
	var stats sql.NullString
	if len(run.Stats) > 0 {
		stats = sql.NullString{String: string(run.Stats), Valid: true}
	}
	var errMsg sql.NullString
	if run.ErrorMessage != "" {
		errMsg = sql.NullString{String: run.ErrorMessage, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO sync_runs (kind, trigger_source, status, stats, error_message, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Kind, run.Trigger, run.Status, stats, errMsg, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert sync run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *SyncRunStore) GetByID(id int64) (*model.SyncRun, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, trigger_source, status, stats, error_message, started_at, finished_at
		 FROM sync_runs WHERE id = ?`,
		id,
	)
	run, err := scanSyncRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sync run: %w", err)
	}
	return run, nil
}

// ListRecent returns the newest runs first. An empty kind lists every kind.
func (s *SyncRunStore) ListRecent(kind model.SyncKind, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	var err error
	if kind == "" {
		rows, err = s.db.Query(
			`SELECT id, kind, trigger_source, status, stats, error_message, started_at, finished_at
			 FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT id, kind, trigger_source, status, stats, error_message, started_at, finished_at
			 FROM sync_runs WHERE kind = ? ORDER BY started_at DESC, id DESC LIMIT ?`,
			kind, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LastSuccess returns the most recent successful run of kind, or nil.
func (s *SyncRunStore) LastSuccess(kind model.SyncKind) (*model.SyncRun, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, trigger_source, status, stats, error_message, started_at, finished_at
		 FROM sync_runs WHERE kind = ? AND status = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		kind, model.SyncStatusSuccess,
	)
	run, err := scanSyncRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last successful sync run: %w", err)
	}
	return run, nil
}

// DeleteOlderThan prunes history and returns the number of rows removed.
func (s *SyncRunStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sync_runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old sync runs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(row rowScanner) (*model.SyncRun, error) {
	var r model.SyncRun
	var stats, errMsg sql.NullString
	if err := row.Scan(&r.ID, &r.Kind, &r.Trigger, &r.Status, &stats, &errMsg, &r.StartedAt, &r.FinishedAt); err != nil {
		return nil, err
	}
	if stats.Valid {
		r.Stats = []byte(stats.String)
	}
	r.ErrorMessage = errMsg.String
	return &r, nil
}
