package attendance

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore persists attendance data in Postgres.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Postgres-backed store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the attendance tables when missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_windows (
			session_id TEXT PRIMARY KEY,
			active     BOOLEAN NOT NULL,
			opened_at  TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_by TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS attendance_records (
			session_id TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			marked_at  TIMESTAMPTZ NOT NULL,
			present    BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (session_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS attendance_records_user_idx ON attendance_records (user_id);
		CREATE TABLE IF NOT EXISTS shared_attendance (
			session_id      TEXT PRIMARY KEY,
			shared          BOOLEAN NOT NULL,
			shared_by       TEXT NOT NULL,
			shared_at       TIMESTAMPTZ NOT NULL,
			session_title   TEXT NOT NULL DEFAULT '',
			session_speaker TEXT NOT NULL DEFAULT '',
			session_time    TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

// PutWindow stores the window keyed by session id, replacing any prior one.
func (s *PGStore) PutWindow(ctx context.Context, w Window) error {
	if w.SessionID == "" {
		return errors.New("session id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_windows (session_id, active, opened_at, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			active = EXCLUDED.active,
			opened_at = EXCLUDED.opened_at,
			expires_at = EXCLUDED.expires_at,
			created_by = EXCLUDED.created_by
	`, w.SessionID, w.Active, w.OpenedAt, w.ExpiresAt, w.CreatedBy)
	return err
}

// Window returns the stored window for the session, or nil when none.
func (s *PGStore) Window(ctx context.Context, sessionID string) (*Window, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, active, opened_at, expires_at, created_by
		FROM attendance_windows WHERE session_id = $1
	`, sessionID)
	var w Window
	if err := row.Scan(&w.SessionID, &w.Active, &w.OpenedAt, &w.ExpiresAt, &w.CreatedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// PutRecord upserts one record per (session id, user id); a re-mark
// refreshes marked_at instead of inserting a duplicate.
func (s *PGStore) PutRecord(ctx context.Context, rec Record) error {
	if rec.SessionID == "" || rec.UserID == "" {
		return errors.New("session and user required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records (session_id, user_id, marked_at, present)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, user_id) DO UPDATE SET
			marked_at = EXCLUDED.marked_at,
			present = EXCLUDED.present
	`, rec.SessionID, rec.UserID, rec.MarkedAt, rec.Present)
	return err
}

// SessionRecords returns all records for a session.
func (s *PGStore) SessionRecords(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, marked_at, present
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY user_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// UserRecords returns all records for a user across sessions.
func (s *PGStore) UserRecords(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, marked_at, present
		FROM attendance_records
		WHERE user_id = $1
		ORDER BY session_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.SessionID, &rec.UserID, &rec.MarkedAt, &rec.Present); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PutShared upserts the sharing record keyed by session id.
func (s *PGStore) PutShared(ctx context.Context, sh SharedAttendance) error {
	if sh.SessionID == "" {
		return errors.New("session id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shared_attendance (session_id, shared, shared_by, shared_at, session_title, session_speaker, session_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			shared = EXCLUDED.shared,
			shared_by = EXCLUDED.shared_by,
			shared_at = EXCLUDED.shared_at,
			session_title = EXCLUDED.session_title,
			session_speaker = EXCLUDED.session_speaker,
			session_time = EXCLUDED.session_time
	`, sh.SessionID, sh.Shared, sh.SharedBy, sh.SharedAt, sh.SessionTitle, sh.SessionSpeaker, sh.SessionTime)
	return err
}

// Shared returns the sharing record for the session, or nil when none.
func (s *PGStore) Shared(ctx context.Context, sessionID string) (*SharedAttendance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, shared, shared_by, shared_at, session_title, session_speaker, session_time
		FROM shared_attendance WHERE session_id = $1
	`, sessionID)
	var sh SharedAttendance
	if err := row.Scan(&sh.SessionID, &sh.Shared, &sh.SharedBy, &sh.SharedAt, &sh.SessionTitle, &sh.SessionSpeaker, &sh.SessionTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sh, nil
}

// ListShared returns shared sessions, most recently shared first.
func (s *PGStore) ListShared(ctx context.Context) ([]SharedAttendance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, shared, shared_by, shared_at, session_title, session_speaker, session_time
		FROM shared_attendance
		WHERE shared = TRUE
		ORDER BY shared_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SharedAttendance
	for rows.Next() {
		var sh SharedAttendance
		if err := rows.Scan(&sh.SessionID, &sh.Shared, &sh.SharedBy, &sh.SharedAt, &sh.SessionTitle, &sh.SessionSpeaker, &sh.SessionTime); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}
