package session

import (
	"sync"
	"time"

	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/tree"
)

// Session binds one reasoning tree to the strategy instances operating on
// it. A session is a live handle, not a snapshot: all callers share the same
// tree, and Serialize enforces the one-step-at-a-time processing contract.
type Session struct {
	ID        string
	Tree      *tree.Store
	CreatedAt time.Time

	stepMu sync.Mutex

	mu         sync.RWMutex
	strategies map[strategy.Type]strategy.Strategy
}

func newSession(id string) *Session {
	return &Session{
		ID:         id,
		Tree:       tree.NewStore(),
		CreatedAt:  time.Now(),
		strategies: make(map[strategy.Type]strategy.Strategy),
	}
}

// Serialize runs fn while holding the session's step lock. Each step mutates
// the tree that the next step's decision depends on, so steps within one
// session never interleave.
func (s *Session) Serialize(fn func() error) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return fn()
}

// Strategy returns the bound strategy instance for the given type.
func (s *Session) Strategy(t strategy.Type) (strategy.Strategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.strategies[t]
	return st, ok
}

// BindStrategy registers a strategy instance under its own type. Strategies
// carry per-session search state (beam membership, MCTS frontier), so each
// session owns its instances.
func (s *Session) BindStrategy(st strategy.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[st.Type()] = st
}

// InMemoryStore is a volatile session registry storing sessions in a process
// local map. It is safe for concurrent access and owns every session for the
// process's lifetime; there is no cross-process persistence.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore constructs an empty in-memory session registry.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// Get returns an existing session or creates a new one lazily.
func (s *InMemoryStore) Get(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	return s.createSessionLocked(sessionID)
}

// Create forces the creation (or replacement) of a session with the given id.
func (s *InMemoryStore) Create(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked(sessionID)
}

// Delete removes a session and its tree.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// List returns the ids of all live sessions.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// createSessionLocked allocates and stores a new session; caller must already
// hold the write lock.
func (s *InMemoryStore) createSessionLocked(sessionID string) *Session {
	sess := newSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}
