package attendance

import "context"

// Store persists windows, records and sharing flags. Implementations must
// make each write an atomic upsert on its key: windows and share flags are
// keyed by session id, records by the (session id, user id) pair. No
// cross-key transaction is required.
type Store interface {
	// PutWindow stores the window keyed by session id, replacing any prior
	// window for that session.
	PutWindow(ctx context.Context, w Window) error
	// Window returns the stored window for the session, or nil when none.
	Window(ctx context.Context, sessionID string) (*Window, error)

	// PutRecord upserts the record keyed by (session id, user id).
	PutRecord(ctx context.Context, rec Record) error
	// SessionRecords returns all records for a session.
	SessionRecords(ctx context.Context, sessionID string) ([]Record, error)
	// UserRecords returns all records for a user across sessions.
	UserRecords(ctx context.Context, userID string) ([]Record, error)

	// PutShared upserts the sharing record keyed by session id.
	PutShared(ctx context.Context, sh SharedAttendance) error
	// Shared returns the sharing record for the session, or nil when none.
	Shared(ctx context.Context, sessionID string) (*SharedAttendance, error)
	// ListShared returns all sessions with shared = true, most recently
	// shared first.
	ListShared(ctx context.Context) ([]SharedAttendance, error)
}
