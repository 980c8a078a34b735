// store.go - In-memory store for per-interaction scan sessions

package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hospitex/medscan/internal/extractor"
)

// Session is the explicit per-interaction state object: one scan, its
// recognized text, and the record the user may still edit before scheduling.
type Session struct {
	ID             string           `json:"id"`
	RecognizedText string           `json:"recognized_text"`
	Record         extractor.Record `json:"record"`
	FallbackUsed   bool             `json:"fallback_used"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// FieldEdits carries user corrections. A nil pointer leaves the field
// untouched; an empty string clears it back to "not found".
type FieldEdits struct {
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Location   *string `json:"location"`
	Department *string `json:"department"`
	Doctor     *string `json:"doctor"`
}

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = fmt.Errorf("session not found")

// Store keeps sessions in memory with TTL expiry. Expired entries are
// purged lazily on every store operation.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewStore creates a session store with the given lifetime
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session for a completed scan
func (s *Store) Create(recognizedText string, record extractor.Record, fallbackUsed bool) *Session {
	now := time.Now()
	sess := &Session{
		ID:             uuid.New().String(),
		RecognizedText: recognizedText,
		Record:         record,
		FallbackUsed:   fallbackUsed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked(now)
	s.sessions[sess.ID] = sess
	return snapshot(sess)
}

// Get returns a copy of the session, or ErrNotFound if unknown/expired.
// The snapshot is taken under the lock so a concurrent edit can never be
// observed half-applied.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked(time.Now())

	sess, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return snapshot(sess), nil
}

// UpdateFields applies user edits to the session's record
func (s *Store) UpdateFields(id string, edits FieldEdits) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	sess, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}

	applyEdit(&sess.Record.Date, edits.Date)
	applyEdit(&sess.Record.Time, edits.Time)
	applyEdit(&sess.Record.Location, edits.Location)
	applyEdit(&sess.Record.Department, edits.Department)
	applyEdit(&sess.Record.Doctor, edits.Doctor)
	sess.UpdatedAt = time.Now()

	return snapshot(sess), nil
}

// Delete removes a session (end of interaction)
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func applyEdit(field **string, edit *string) {
	if edit == nil {
		return
	}
	if *edit == "" {
		*field = nil
		return
	}
	value := *edit
	*field = &value
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.UpdatedAt) > s.ttl
}

func (s *Store) purgeExpiredLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}

// snapshot copies a session so callers never share the stored struct
func snapshot(sess *Session) *Session {
	copied := *sess
	return &copied
}
