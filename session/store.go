// Package session owns upload-session lifecycle. The analysis core stays
// stateless: handlers fetch a session's sample snapshot, run the pure
// pipeline over it, and throw the intermediate tables away.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"dive-roast/dive"
)

// ErrNotFound indicates an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Session holds one uploaded dive log and its conversation transcript.
// Samples are immutable after Create. History is guarded by the store's
// lock; read it through Store.History, never off the pointer directly.
type Session struct {
	ID      string
	Samples []dive.Sample
	History []Message
}

// Message is one turn of the roast conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Store is the session registry handed to transport handlers.
type Store interface {
	Create(samples []dive.Sample) *Session
	// Restore re-registers a session under a known ID, e.g. one whose
	// samples were recovered from the database after a restart.
	Restore(id string, samples []dive.Sample) *Session
	Get(id string) (*Session, error)
	// List returns the live session IDs in unspecified order.
	List() []string
	// History returns a snapshot of the session's transcript, safe to
	// iterate while other goroutines append.
	History(id string) ([]Message, error)
	AppendHistory(id string, msgs ...Message) error
	Delete(id string)
}

// MemoryStore is the in-memory Store used by the server. Safe for
// concurrent handlers.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Create(samples []dive.Sample) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		Samples: samples,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *MemoryStore) Restore(id string, samples []dive.Sample) *Session {
	sess := &Session{
		ID:      id,
		Samples: samples,
	}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *MemoryStore) History(id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	msgs := make([]Message, len(sess.History))
	copy(msgs, sess.History)
	return msgs, nil
}

func (s *MemoryStore) AppendHistory(id string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.History = append(sess.History, msgs...)
	return nil
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
