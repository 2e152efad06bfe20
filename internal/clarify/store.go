// Package clarify holds pending clarification tickets for low-confidence
// classifications. A ticket maps a short deterministic id, embedded in inline
// keyboard callback data, back to the original message text. The store is
// bounded: entries expire after a TTL and the oldest entry is evicted when
// the store is full.
package clarify

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"sync"
	"time"
)

// idLength is the number of hex characters kept from the text hash. Callback
// data carries "clarify:<id>:<category>" and must stay within Telegram's
// 64-byte limit.
const idLength = 12

type entry struct {
	text    string
	created time.Time
}

// Store is an in-process, bounded, TTL-evicting ticket cache. It is safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	capacity int
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewStore creates a ticket store holding at most capacity tickets, each
// valid for ttl.
func NewStore(capacity int, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		entries:  make(map[string]entry),
		capacity: capacity,
		ttl:      ttl,
		log:      logger.With("component", "clarify_store"),
		now:      time.Now,
	}
}

// TicketID returns the deterministic ticket id for a message text.
func TicketID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:idLength]
}

// Put stores a ticket for text and returns its id. Storing the same text
// again refreshes the existing ticket. Expired tickets are pruned on every
// call; when the store is full the oldest ticket is evicted.
func (s *Store) Put(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	id := TicketID(text)
	if _, exists := s.entries[id]; !exists && len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}
	s.entries[id] = entry{text: text, created: now}
	return id
}

// Resolve returns the text for a ticket id and removes the ticket. It returns
// false for unknown, expired, or already resolved tickets.
func (s *Store) Resolve(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	delete(s.entries, id)

	if s.now().Sub(e.created) > s.ttl {
		s.log.Debug("Ticket expired", "ticket_id", id)
		return "", false
	}
	return e.text, true
}

// Len reports the number of stored tickets, counting entries that have
// expired but not yet been pruned.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) pruneLocked(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.created) > s.ttl {
			delete(s.entries, id)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.created.Before(oldest) {
			oldestID = id
			oldest = e.created
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
		s.log.Debug("Evicted oldest ticket", "ticket_id", oldestID)
	}
}
