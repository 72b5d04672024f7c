package attendance

import (
	"errors"
	"time"
)

// Window is one check-in period for a session. At most one window is stored
// per session; opening a new one replaces the old rather than stacking.
type Window struct {
	SessionID string    `json:"session_id"`
	Active    bool      `json:"active"`
	OpenedAt  time.Time `json:"opened_at"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedBy string    `json:"created_by"`
}

// Record is one student's presence mark for one session. The (SessionID,
// UserID) pair is the identity; re-marking overwrites MarkedAt, never
// duplicates. Name and RollNumber are display-only, resolved at read time
// from the profile directory.
type Record struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	MarkedAt   time.Time `json:"marked_at"`
	Present    bool      `json:"present"`
	Name       string    `json:"name,omitempty"`
	RollNumber string    `json:"roll_number,omitempty"`
}

// SessionSnapshot carries the session display fields captured at share time,
// so a sharing record stays self-contained if the catalog changes later.
type SessionSnapshot struct {
	Title   string `json:"title"`
	Speaker string `json:"speaker"`
	Time    string `json:"time"`
}

// SharedAttendance is an organizer's decision to expose one session's
// records to teachers. Sharing is monotonic: nothing here un-shares.
type SharedAttendance struct {
	SessionID      string    `json:"session_id"`
	Shared         bool      `json:"shared"`
	SharedBy       string    `json:"shared_by"`
	SharedAt       time.Time `json:"shared_at"`
	SessionTitle   string    `json:"session_title"`
	SessionSpeaker string    `json:"session_speaker"`
	SessionTime    string    `json:"session_time"`
}

// Stats summarizes recorded marks for a session.
type Stats struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Percentage int `json:"percentage"`
}

var (
	// ErrWindowInactive means no window exists for the session or it has
	// expired; covers "never opened" and "expired" uniformly.
	ErrWindowInactive = errors.New("attendance window is not active")

	// ErrNotShared means an organizer has not published the session's
	// records to teachers.
	ErrNotShared = errors.New("attendance not shared for this session")
)
