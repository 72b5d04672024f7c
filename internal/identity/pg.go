package identity

import (
	"context"
	"database/sql"
	"errors"
)

// PGDirectory resolves profiles from the user_profiles table.
type PGDirectory struct {
	db *sql.DB
}

// NewPGDirectory creates a Postgres-backed directory.
func NewPGDirectory(db *sql.DB) *PGDirectory {
	return &PGDirectory{db: db}
}

// EnsureSchema creates the profile table when missing.
func (d *PGDirectory) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_profiles (
			uid         TEXT PRIMARY KEY,
			role        TEXT NOT NULL,
			name        TEXT NOT NULL DEFAULT '',
			email       TEXT NOT NULL DEFAULT '',
			roll_number TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Upsert creates or updates a profile.
func (d *PGDirectory) Upsert(ctx context.Context, p Profile) error {
	if p.UID == "" {
		return errors.New("uid required")
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO user_profiles (uid, role, name, email, roll_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE SET
			role = EXCLUDED.role,
			name = COALESCE(NULLIF(EXCLUDED.name, ''), user_profiles.name),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), user_profiles.email),
			roll_number = COALESCE(NULLIF(EXCLUDED.roll_number, ''), user_profiles.roll_number)
	`, p.UID, p.Role, p.Name, p.Email, p.RollNumber)
	return err
}

// Lookup implements Directory.
func (d *PGDirectory) Lookup(ctx context.Context, uid string) (Profile, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT uid, role, name, email, roll_number
		FROM user_profiles WHERE uid = $1
	`, uid)
	var p Profile
	if err := row.Scan(&p.UID, &p.Role, &p.Name, &p.Email, &p.RollNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}
