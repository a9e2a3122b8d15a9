package session

import (
	"errors"
	"sync"
)

// ErrBusy is returned when a turn is already in flight for the session id.
var ErrBusy = errors.New("session busy: a turn is already in flight")

// Store owns the process-wide session mapping. Sessions are created lazily on
// first acquire and serialized per id: at most one turn may hold a session at
// a time, and a second concurrent acquire for the same id fails with ErrBusy
// rather than racing on the history.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	sess *Session
	turn sync.Mutex
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Acquire returns the session for id, creating it with a system turn built
// from systemPrompt when absent, and locks it for the duration of one turn.
// The returned release func must be called when the turn ends.
func (st *Store) Acquire(id, caseStudy, systemPrompt string) (*Session, func(), error) {
	st.mu.Lock()
	e, ok := st.sessions[id]
	if !ok {
		e = &entry{sess: newSession(id, caseStudy, systemPrompt)}
		st.sessions[id] = e
	}
	st.mu.Unlock()

	if !e.turn.TryLock() {
		return nil, nil, ErrBusy
	}
	return e.sess, e.turn.Unlock, nil
}

// Reset discards the session for id entirely; the next acquire recreates it
// fresh. No-op when absent. A turn still in flight keeps its detached session
// pointer and its result is discarded along with it.
func (st *Store) Reset(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
