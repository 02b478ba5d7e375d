// Package session keeps the per-user prescription sets of the HTTP API in a
// bounded LRU cache. Each Session serializes access to its Set.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/prescription"
)

// ErrNotFound is returned for unknown or evicted session IDs
var ErrNotFound = errors.New("session not found")

// Session is one user's working prescription
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	set      *prescription.Set
	lastSeen atomic.Int64 // unix nanoseconds
}

// With runs fn while holding the session lock. fn must not retain the Set.
func (s *Session) With(fn func(set *prescription.Set)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.set)
}

// LastSeen returns the time of the last Get or Create
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

// Store holds at most capacity sessions, evicting the least recently used
type Store struct {
	cache   *lru.Cache[string, *Session]
	catalog interfaces.CatalogStore
	now     func() time.Time
	evicted atomic.Uint64
}

// NewStore creates a session store whose sets are checked against catalog
func NewStore(capacity int, catalog interfaces.CatalogStore) (*Store, error) {
	s := &Store{catalog: catalog, now: time.Now}

	cache, err := lru.NewWithEvict(capacity, func(id string, _ *Session) {
		s.evicted.Add(1)
		logging.Debug("Session evicted", "session_id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	s.cache = cache

	return s, nil
}

// Create starts a new empty session
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		set:       prescription.NewSet(s.catalog),
	}
	sess.touch(now)

	s.cache.Add(sess.ID, sess)
	return sess
}

// Get returns the session and marks it as recently used
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes the session. Returns ErrNotFound if it did not exist.
func (s *Store) Delete(id string) error {
	if !s.cache.Remove(id) {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.cache.Len()
}

// Evicted returns how many sessions were dropped by capacity, pruning or Delete
func (s *Store) Evicted() uint64 {
	return s.evicted.Load()
}

// PruneIdle removes the sessions not seen for longer than ttl and returns how many
func (s *Store) PruneIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	pruned := 0

	for _, id := range s.cache.Keys() {
		sess, ok := s.cache.Peek(id)
		if !ok {
			continue
		}
		if sess.LastSeen().Before(cutoff) && s.cache.Remove(id) {
			pruned++
		}
	}

	if pruned > 0 {
		logging.Info("Pruned idle sessions", "count", pruned, "remaining", s.cache.Len())
	}
	return pruned
}
