// Package storage holds in-flight badge scan sessions in memory.
// Sessions bridge the gap between the scan request and the user's
// follow-up action (pick a candidate, create new, submit the form);
// nothing here survives a restart, which is acceptable because a lost
// session just means re-photographing the badge.
package storage

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
)

// SessionStore is an in-memory TTL store for scan sessions. Captured
// badge images live only here until attached to a dealer; expired
// sessions are dropped wholesale, image included.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration
}

// NewSessionStore creates a session store whose entries expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
	}
	go s.cleanupLoop()
	return s
}

// GenerateScanID creates a cryptographically random scan ID
func GenerateScanID() string {
	b := make([]byte, 16)
	rand.Read(b)
	const hex = "0123456789abcdef"
	id := make([]byte, 32)
	for i, v := range b {
		id[i*2] = hex[v>>4]
		id[i*2+1] = hex[v&0x0f]
	}
	return string(id)
}

// Store saves a session
func (s *SessionStore) Store(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ScanID] = sess
}

// Get retrieves a session by scan ID, or nil if absent or expired
func (s *SessionStore) Get(scanID string) *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sessions[scanID]
	if sess == nil || time.Since(sess.CreatedAt) > s.ttl {
		return nil
	}
	return sess
}

// Update applies a mutation to a stored session under the write lock
func (s *SessionStore) Update(scanID string, update func(*domain.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[scanID]; ok {
		update(sess)
	}
}

// Delete removes a session
func (s *SessionStore) Delete(scanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, scanID)
}

// cleanupLoop periodically removes expired sessions
func (s *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *SessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
