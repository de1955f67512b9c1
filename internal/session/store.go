package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sportbuddy/app/internal/content"
)

// Store maps session tokens to live sessions. Sessions idle for longer
// than the TTL are closed by Sweep.
type Store struct {
	gen  *content.Generator
	opts Options
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(gen *content.Generator, opts Options, ttl time.Duration) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		gen:      gen,
		opts:     opts,
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session under a fresh token.
func (st *Store) Create() (*Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	sess, err := New(token.String(), st.gen, st.opts)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	log.Printf("session %s: created", sess.ID)
	return sess, nil
}

// Get returns the live session for token and marks it as used.
func (st *Store) Get(token string) (*Session, bool) {
	st.mu.Lock()
	sess, ok := st.sessions[token]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	sess.Touch()
	return sess, true
}

// Delete closes and forgets the session for token.
func (st *Store) Delete(token string) {
	st.mu.Lock()
	sess, ok := st.sessions[token]
	delete(st.sessions, token)
	st.mu.Unlock()

	if ok {
		if err := sess.Close(); err != nil {
			log.Printf("session %s: close: %v", token, err)
		}
	}
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes every session idle for longer than the TTL and returns how
// many were closed.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for token, sess := range st.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, sess)
			delete(st.sessions, token)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		if err := sess.Close(); err != nil {
			log.Printf("session %s: close: %v", sess.ID, err)
		}
		log.Printf("session %s: expired", sess.ID)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// Close closes every session.
func (st *Store) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
