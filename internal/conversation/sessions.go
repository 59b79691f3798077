package conversation

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSessionID is used when a caller does not identify its session.
const DefaultSessionID = "default"

// Session is one conversation: a transcript plus a lock that keeps at most
// one turn in flight.
type Session struct {
	ID         string
	Transcript *Transcript

	turn sync.Mutex
}

// Lock marks the start of a turn. It blocks while another turn is in flight.
func (s *Session) Lock() { s.turn.Lock() }

// Unlock marks the end of a turn.
func (s *Session) Unlock() { s.turn.Unlock() }

// Sessions maps caller-supplied session IDs to sessions.
// At most capacity idle sessions are kept; a session idle for longer than ttl
// is dropped. A session acquired for a turn is pinned until it is released,
// so eviction never splits one ID across two sessions.
type Sessions struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Session]
	pinned map[string]*pin
}

type pin struct {
	sess *Session
	refs int
}

// NewSessions creates a bounded session registry.
// A non-positive ttl disables expiry.
func NewSessions(capacity int, ttl time.Duration) *Sessions {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Sessions{
		cache:  expirable.NewLRU[string, *Session](capacity, nil, ttl),
		pinned: make(map[string]*pin),
	}
}

// Get returns the session for id, creating an empty one if needed.
// An empty id resolves to DefaultSessionID.
func (s *Sessions) Get(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup(id)
}

// Acquire returns the session for id and pins it until Release.
// Every Acquire must be paired with a Release.
func (s *Sessions) Acquire(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.lookup(id)
	if p, ok := s.pinned[id]; ok {
		p.refs++
	} else {
		s.pinned[id] = &pin{sess: sess, refs: 1}
	}
	return sess
}

// Release unpins sess and restarts its idle timer.
func (s *Sessions) Release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pinned[sess.ID]; ok && p.sess == sess {
		p.refs--
		if p.refs <= 0 {
			delete(s.pinned, sess.ID)
		}
	}
	if cur, ok := s.cache.Peek(sess.ID); !ok || cur == sess {
		s.cache.Add(sess.ID, sess)
	}
}

// lookup returns the pinned or cached session for id, creating one if
// neither exists. Callers hold s.mu.
func (s *Sessions) lookup(id string) *Session {
	if p, ok := s.pinned[id]; ok {
		return p.sess
	}
	if sess, ok := s.cache.Get(id); ok {
		return sess
	}
	sess := &Session{ID: id, Transcript: NewTranscript()}
	s.cache.Add(id, sess)
	return sess
}

// Len returns the number of cached sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}
