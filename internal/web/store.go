package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zephyrtronium/scicalc/internal/theme"
	"github.com/zephyrtronium/scicalc/session"
)

// Entry is one browser's calculator.
type Entry struct {
	mu      sync.Mutex
	session *session.Session
	theme   theme.Name
	// lastSeen is guarded by the store's lock.
	lastSeen time.Time
}

// Do runs f with exclusive use of the entry's session and theme.
func (e *Entry) Do(f func(s *session.Session, t *theme.Name)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f(e.session, &e.theme)
}

// Snapshot returns the entry's current view state.
func (e *Entry) Snapshot() View {
	var v View
	e.Do(func(s *session.Session, t *theme.Name) { v = viewOf(s, *t) })
	return v
}

// Store holds the sessions of all browsers, keyed by cookie id.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	factory func() *session.Session
	theme   theme.Name
	now     func() time.Time
}

// NewStore creates an empty store. New entries get sessions from factory and
// start in theme t.
func NewStore(factory func() *session.Session, t theme.Name) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		factory: factory,
		theme:   t,
		now:     time.Now,
	}
}

// Configure changes the session factory and theme used for new entries.
// Existing entries are unaffected.
func (st *Store) Configure(factory func() *session.Session, t theme.Name) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.factory = factory
	st.theme = t
}

// Lookup returns the entry for id and marks it as seen. If there is no such
// entry, a new one is created under a fresh id, which is returned.
func (st *Store) Lookup(id string) (string, *Entry) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	if e, ok := st.entries[id]; ok {
		e.lastSeen = now
		return id, e
	}
	id = uuid.NewString()
	e := &Entry{
		session:  st.factory(),
		theme:    st.theme,
		lastSeen: now,
	}
	st.entries[id] = e
	return id, e
}

// Touch marks the entry for id as seen. It reports false if there is no
// such entry.
func (st *Store) Touch(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[id]
	if ok {
		e.lastSeen = st.now()
	}
	return ok
}

// Sweep removes entries not seen for longer than ttl and returns how many it
// removed.
func (st *Store) Sweep(ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	cutoff := st.now().Add(-ttl)
	n := 0
	for id, e := range st.entries {
		if e.lastSeen.Before(cutoff) {
			delete(st.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}
