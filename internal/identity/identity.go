package identity

import (
	"context"
	"errors"
	"sync"
)

// Roles recognized across the application.
const (
	RoleOrganizer = "organizer"
	RoleTeacher   = "teacher"
	RoleStudent   = "student"
	RoleCommunity = "community"
)

// Profile is the display-facing slice of a user account.
type Profile struct {
	UID        string `json:"uid"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	RollNumber string `json:"roll_number,omitempty"`
}

// Directory resolves user profiles by uid. Lookups for unknown uids return
// ErrNotFound rather than a zero profile so callers can choose a fallback.
type Directory interface {
	Lookup(ctx context.Context, uid string) (Profile, error)
}

// ErrNotFound is returned when a uid has no profile.
var ErrNotFound = errors.New("profile not found")

// StaticDirectory is an in-memory directory for dev and tests.
type StaticDirectory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewStaticDirectory seeds a directory with the given profiles.
func NewStaticDirectory(profiles ...Profile) *StaticDirectory {
	d := &StaticDirectory{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		d.profiles[p.UID] = p
	}
	return d
}

// Registrar is a directory that also accepts profile writes; used by the
// dev registration endpoint.
type Registrar interface {
	Directory
	Upsert(ctx context.Context, p Profile) error
}

// Put registers or replaces a profile.
func (d *StaticDirectory) Put(p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.UID] = p
}

// Upsert implements Registrar.
func (d *StaticDirectory) Upsert(_ context.Context, p Profile) error {
	if p.UID == "" {
		return errors.New("uid required")
	}
	d.Put(p)
	return nil
}

// Lookup implements Directory.
func (d *StaticDirectory) Lookup(_ context.Context, uid string) (Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.profiles[uid]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}
