package attendance

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory Store used by tests and the memory backend.
// Records are indexed by session id so enumeration is a direct lookup,
// not a scan over every key.
type MemStore struct {
	mu      sync.RWMutex
	windows map[string]Window
	records map[string]map[string]Record // session id -> user id -> record
	shared  map[string]SharedAttendance
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		windows: make(map[string]Window),
		records: make(map[string]map[string]Record),
		shared:  make(map[string]SharedAttendance),
	}
}

// PutWindow stores the window, replacing any prior window for the session.
func (m *MemStore) PutWindow(_ context.Context, w Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[w.SessionID] = w
	return nil
}

// Window returns the stored window for the session, or nil when none.
func (m *MemStore) Window(_ context.Context, sessionID string) (*Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[sessionID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// PutRecord upserts the record keyed by (session id, user id).
func (m *MemStore) PutRecord(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser, ok := m.records[rec.SessionID]
	if !ok {
		byUser = make(map[string]Record)
		m.records[rec.SessionID] = byUser
	}
	byUser[rec.UserID] = rec
	return nil
}

// SessionRecords returns all records for a session in stable user-id order.
func (m *MemStore) SessionRecords(_ context.Context, sessionID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byUser := m.records[sessionID]
	out := make([]Record, 0, len(byUser))
	for _, rec := range byUser {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// UserRecords returns all records for a user in stable session-id order.
func (m *MemStore) UserRecords(_ context.Context, userID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, byUser := range m.records {
		if rec, ok := byUser[userID]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}

// PutShared upserts the sharing record keyed by session id.
func (m *MemStore) PutShared(_ context.Context, sh SharedAttendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shared[sh.SessionID] = sh
	return nil
}

// Shared returns the sharing record for the session, or nil when none.
func (m *MemStore) Shared(_ context.Context, sessionID string) (*SharedAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sh, ok := m.shared[sessionID]
	if !ok {
		return nil, nil
	}
	return &sh, nil
}

// ListShared returns shared sessions, most recently shared first.
func (m *MemStore) ListShared(_ context.Context) ([]SharedAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []SharedAttendance
	for _, sh := range m.shared {
		if sh.Shared {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SharedAt.After(out[j].SharedAt) })
	return out, nil
}
