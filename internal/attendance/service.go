package attendance

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"companion/internal/identity"
)

// unknownStudent is the display name used when a uid has no profile.
const unknownStudent = "Unknown Student"

// Service owns the attendance window lifecycle, presence marking, the
// organizer-to-teacher sharing gate, and aggregate statistics. It is
// stateless apart from the injected store and directory; caller identity
// is always an explicit parameter.
type Service struct {
	store     Store
	dir       identity.Directory
	windowTTL time.Duration
	now       func() time.Time
}

// NewService creates a service backed by a store and profile directory.
func NewService(store Store, dir identity.Directory, windowTTL time.Duration) *Service {
	if windowTTL <= 0 {
		windowTTL = 10 * time.Minute
	}
	return &Service{store: store, dir: dir, windowTTL: windowTTL, now: time.Now}
}

// OpenWindow opens a fresh check-in window for the session, replacing any
// prior window. Opening while one is still active is not an error; the
// single-window-per-session policy makes the new one the only window.
func (s *Service) OpenWindow(ctx context.Context, sessionID, organizerID string) (Window, error) {
	if sessionID == "" || organizerID == "" {
		return Window{}, errors.New("session and organizer required")
	}
	now := s.now().UTC()
	w := Window{
		SessionID: sessionID,
		Active:    true,
		OpenedAt:  now,
		ExpiresAt: now.Add(s.windowTTL),
		CreatedBy: organizerID,
	}
	if err := s.store.PutWindow(ctx, w); err != nil {
		return Window{}, err
	}
	windowsOpened.Inc()
	return w, nil
}

// GetWindow returns the stored window for the session, lazily expiring it:
// once wall clock passes ExpiresAt the stored active flag is flipped to
// false and persisted before returning. Wall clock at read time is the
// sole authority over expiry; no background timer runs.
func (s *Service) GetWindow(ctx context.Context, sessionID string) (*Window, error) {
	w, err := s.store.Window(ctx, sessionID)
	if err != nil || w == nil {
		return w, err
	}
	if w.Active && s.now().After(w.ExpiresAt) {
		w.Active = false
		if err := s.store.PutWindow(ctx, *w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Mark records the student's presence for the session. It fails with
// ErrWindowInactive when no window exists or the window has expired. A
// second mark for the same (session, user) pair refreshes the timestamp
// rather than producing a duplicate.
func (s *Service) Mark(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return errors.New("session and user required")
	}
	w, err := s.GetWindow(ctx, sessionID)
	if err != nil {
		return err
	}
	if w == nil || !w.Active {
		marksTotal.WithLabelValues("rejected").Inc()
		return ErrWindowInactive
	}
	rec := Record{
		SessionID: sessionID,
		UserID:    userID,
		MarkedAt:  s.now().UTC(),
		Present:   true,
	}
	if err := s.store.PutRecord(ctx, rec); err != nil {
		return err
	}
	marksTotal.WithLabelValues("accepted").Inc()
	return nil
}

// UserRecords returns every record for the user across all sessions.
func (s *Service) UserRecords(ctx context.Context, userID string) ([]Record, error) {
	if userID == "" {
		return nil, errors.New("user required")
	}
	return s.store.UserRecords(ctx, userID)
}

// Share publishes the session's records to teachers. Repeated calls just
// refresh SharedAt; once shared a session stays shared.
func (s *Service) Share(ctx context.Context, sessionID, organizerID string, snap SessionSnapshot) error {
	if sessionID == "" || organizerID == "" {
		return errors.New("session and organizer required")
	}
	sh := SharedAttendance{
		SessionID:      sessionID,
		Shared:         true,
		SharedBy:       organizerID,
		SharedAt:       s.now().UTC(),
		SessionTitle:   snap.Title,
		SessionSpeaker: snap.Speaker,
		SessionTime:    snap.Time,
	}
	if err := s.store.PutShared(ctx, sh); err != nil {
		return err
	}
	sharesTotal.Inc()
	return nil
}

// IsShared reports whether the session's records have been published.
func (s *Service) IsShared(ctx context.Context, sessionID string) (bool, error) {
	sh, err := s.store.Shared(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sh != nil && sh.Shared, nil
}

// SharedDetails returns the sharing record for a session, or nil when the
// session was never shared.
func (s *Service) SharedDetails(ctx context.Context, sessionID string) (*SharedAttendance, error) {
	return s.store.Shared(ctx, sessionID)
}

// ListShared returns all shared sessions, most recently shared first.
func (s *Service) ListShared(ctx context.Context) ([]SharedAttendance, error) {
	return s.store.ListShared(ctx)
}

// SessionRecords returns the session's records for the teacher view,
// enriched with display names via a join on user id against the profile
// directory and sorted by name ascending. It fails with ErrNotShared
// until an organizer has published the session.
func (s *Service) SessionRecords(ctx context.Context, sessionID string) ([]Record, error) {
	shared, err := s.IsShared(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, ErrNotShared
	}
	recs, err := s.store.SessionRecords(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		p, err := s.dir.Lookup(ctx, recs[i].UserID)
		switch {
		case err == nil:
			recs[i].Name = p.Name
			recs[i].RollNumber = p.RollNumber
		case errors.Is(err, identity.ErrNotFound):
			recs[i].Name = unknownStudent
		default:
			return nil, err
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs, nil
}

// Stats computes counts and the rounded presence percentage for a session.
// An unattended session yields zero percent, not a division error.
func (s *Service) Stats(ctx context.Context, sessionID string) (Stats, error) {
	recs, err := s.store.SessionRecords(ctx, sessionID)
	if err != nil {
		return Stats{}, err
	}
	present := 0
	for _, rec := range recs {
		if rec.Present {
			present++
		}
	}
	st := Stats{Total: len(recs), Present: present}
	if st.Total > 0 {
		st.Percentage = int(math.Round(float64(present) / float64(st.Total) * 100))
	}
	return st, nil
}
