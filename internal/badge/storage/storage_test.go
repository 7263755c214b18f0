package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := &domain.Session{
		ScanID:    GenerateScanID(),
		AccountID: "acct-1",
		State:     domain.StateDisambiguating,
		CreatedAt: time.Now(),
	}
	store.Store(sess)

	got := store.Get(sess.ScanID)
	require.NotNil(t, got)
	assert.Equal(t, domain.StateDisambiguating, got.State)

	store.Update(sess.ScanID, func(s *domain.Session) {
		s.State = domain.StateAutoResolved
		s.DealerID = "dealer-9"
	})
	got = store.Get(sess.ScanID)
	require.NotNil(t, got)
	assert.Equal(t, domain.StateAutoResolved, got.State)
	assert.Equal(t, "dealer-9", got.DealerID)

	store.Delete(sess.ScanID)
	assert.Nil(t, store.Get(sess.ScanID))
}

func TestSessionStoreUnknownID(t *testing.T) {
	store := NewSessionStore(time.Minute)
	assert.Nil(t, store.Get("missing"))
	store.Update("missing", func(s *domain.Session) {
		t.Fatal("update callback must not run for unknown session")
	})
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := &domain.Session{
		ScanID:    GenerateScanID(),
		CreatedAt: time.Now().Add(-2 * time.Minute),
	}
	store.Store(sess)
	assert.Nil(t, store.Get(sess.ScanID), "expired session must not be returned")

	store.cleanup()
	store.mu.RLock()
	_, present := store.sessions[sess.ScanID]
	store.mu.RUnlock()
	assert.False(t, present, "cleanup must evict expired session")
}

func TestGenerateScanID(t *testing.T) {
	a := GenerateScanID()
	b := GenerateScanID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
