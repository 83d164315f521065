package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/smarathe/yojanasetu/internal/scheme"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Everything is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	messages map[string][]Message
	schemes  map[string]scheme.Scheme
	nextID   int64
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		messages: make(map[string][]Message),
		schemes:  make(map[string]scheme.Scheme),
	}
}

// LoadOrCreate implements Store.
func (m *MemoryStore) LoadOrCreate(_ context.Context, sessionID, language string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[sessionID]; ok {
		return cloneSession(sess), nil
	}
	sess := newSession(sessionID, language)
	sess.UpdatedAt = time.Now()
	m.sessions[sessionID] = cloneSession(sess)
	return sess, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneSession(sess)
	cp.UpdatedAt = time.Now()
	m.sessions[sess.ID] = cp
	return nil
}

// AddMessage implements Store.
func (m *MemoryStore) AddMessage(_ context.Context, sessionID, role, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.messages[sessionID] = append(m.messages[sessionID], Message{
		ID:        m.nextID,
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
	return nil
}

// Messages implements Store.
func (m *MemoryStore) Messages(_ context.Context, sessionID string, limit int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// SaveScheme implements Store.
func (m *MemoryStore) SaveScheme(_ context.Context, s *scheme.Scheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemes[s.ID] = *s
	return nil
}

// GetScheme implements Store.
func (m *MemoryStore) GetScheme(_ context.Context, id string) (*scheme.Scheme, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schemes[id]
	if !ok {
		return nil, false, nil
	}
	cp := s
	return &cp, true, nil
}

// BootstrapSchemes implements Store.
func (m *MemoryStore) BootstrapSchemes(_ context.Context, schemes []scheme.Scheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.schemes) > 0 {
		return nil
	}
	for _, s := range schemes {
		m.schemes[s.ID] = s
	}
	return nil
}

// cloneSession deep-copies the session so callers cannot alias store state.
func cloneSession(s *Session) *Session {
	cp := *s
	cp.Profile = s.Profile.Clone()
	if s.Pending != nil {
		p := *s.Pending
		cp.Pending = &p
	}
	if s.State.Slot != nil {
		slot := *s.State.Slot
		slot.Missing = append(slot.Missing[:0:0], slot.Missing...)
		cp.State.Slot = &slot
	}
	return &cp
}
