package catalog

import "errors"

// Session is one entry in the conference programme.
type Session struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Speaker     string `json:"speaker"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Day         string `json:"day"`
	Track       string `json:"track"`
	Description string `json:"description,omitempty"`
}

// ErrUnknownSession is returned for ids not in the catalog.
var ErrUnknownSession = errors.New("unknown session")

// Catalog is a read-only lookup over the conference programme. The catalog
// is owned elsewhere; this package only consumes it to resolve display
// fields for sharing snapshots and listings.
type Catalog struct {
	sessions map[string]Session
	order    []string
}

// New builds a catalog from the given sessions, preserving order.
func New(sessions ...Session) *Catalog {
	c := &Catalog{sessions: make(map[string]Session, len(sessions))}
	for _, s := range sessions {
		if _, ok := c.sessions[s.ID]; !ok {
			c.order = append(c.order, s.ID)
		}
		c.sessions[s.ID] = s
	}
	return c
}

// Get returns the session for an id.
func (c *Catalog) Get(id string) (Session, error) {
	s, ok := c.sessions[id]
	if !ok {
		return Session{}, ErrUnknownSession
	}
	return s, nil
}

// List returns all sessions in programme order.
func (c *Catalog) List() []Session {
	out := make([]Session, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sessions[id])
	}
	return out
}

// Seed returns the built-in programme used when no external catalog is wired.
func Seed() *Catalog {
	return New(
		Session{ID: "1", Title: "Machine Learning with TensorFlow", Speaker: "Dr. Sarah Chen", Time: "10:00 AM", Location: "Main Auditorium", Day: "Day 1", Track: "AI/ML"},
		Session{ID: "2", Title: "Building Progressive Web Apps", Speaker: "Alex Rodriguez", Time: "11:30 AM", Location: "Room A", Day: "Day 1", Track: "Web"},
		Session{ID: "3", Title: "Flutter for Cross-Platform Development", Speaker: "Maria Santos", Time: "2:00 PM", Location: "Room B", Day: "Day 1", Track: "Mobile"},
		Session{ID: "4", Title: "Cloud Architecture with Google Cloud", Speaker: "James Wilson", Time: "10:00 AM", Location: "Main Auditorium", Day: "Day 2", Track: "Cloud"},
		Session{ID: "5", Title: "AI Ethics and Responsible Development", Speaker: "Dr. Priya Patel", Time: "11:30 AM", Location: "Room A", Day: "Day 2", Track: "AI/ML"},
		Session{ID: "6", Title: "Modern JavaScript and Web APIs", Speaker: "Tom Anderson", Time: "2:00 PM", Location: "Room B", Day: "Day 2", Track: "Web"},
		Session{ID: "7", Title: "Keynote: The Future of Technology", Speaker: "Dr. Rajesh Gupta", Time: "9:00 AM", Location: "Main Auditorium", Day: "Day 1", Track: "Keynote"},
	)
}
