package clarify

import (
	"fmt"
	"testing"
	"time"
)

func newTestStore(capacity int, ttl time.Duration, clock *time.Time) *Store {
	s := NewStore(capacity, ttl, nil)
	s.now = func() time.Time { return *clock }
	return s
}

func TestTicketIDDeterministic(t *testing.T) {
	t.Parallel()

	a := TicketID("baby drank 120ml")
	b := TicketID("baby drank 120ml")
	c := TicketID("baby slept two hours")

	if a != b {
		t.Errorf("same text produced different ids: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different texts produced the same id %q", a)
	}
	if len(a) != idLength {
		t.Errorf("id length = %d, want %d", len(a), idLength)
	}
}

func TestPutAndResolve(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(8, 15*time.Minute, &clock)

	id := s.Put("drank a bottle")

	text, ok := s.Resolve(id)
	if !ok {
		t.Fatal("Resolve returned false for a live ticket")
	}
	if text != "drank a bottle" {
		t.Errorf("Resolve text = %q, want %q", text, "drank a bottle")
	}

	// A ticket is single-use.
	if _, ok := s.Resolve(id); ok {
		t.Error("second Resolve of the same id succeeded, want false")
	}
}

func TestResolveUnknownID(t *testing.T) {
	t.Parallel()

	clock := time.Now()
	s := newTestStore(8, 15*time.Minute, &clock)

	if _, ok := s.Resolve("000000000000"); ok {
		t.Error("Resolve of unknown id succeeded, want false")
	}
}

func TestTicketExpiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		advance time.Duration
		wantOK  bool
	}{
		{name: "just inside ttl", advance: 14 * time.Minute, wantOK: true},
		{name: "at ttl", advance: 15 * time.Minute, wantOK: true},
		{name: "past ttl", advance: 15*time.Minute + time.Second, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			s := newTestStore(8, 15*time.Minute, &clock)

			id := s.Put("fussy before nap")
			clock = clock.Add(tc.advance)

			if _, ok := s.Resolve(id); ok != tc.wantOK {
				t.Errorf("Resolve after %v = %v, want %v", tc.advance, ok, tc.wantOK)
			}
		})
	}
}

func TestPutRefreshesSameText(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(8, 15*time.Minute, &clock)

	first := s.Put("woke up crying")
	clock = clock.Add(10 * time.Minute)
	second := s.Put("woke up crying")

	if first != second {
		t.Fatalf("re-Put changed id: %q vs %q", first, second)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after re-Put, want 1", s.Len())
	}

	// The refresh restarted the clock, so the original deadline has passed
	// but the ticket is still alive.
	clock = clock.Add(10 * time.Minute)
	if _, ok := s.Resolve(first); !ok {
		t.Error("refreshed ticket expired on the original schedule")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(3, time.Hour, &clock)

	oldest := s.Put("message zero")
	var rest []string
	for i := 1; i < 3; i++ {
		clock = clock.Add(time.Minute)
		rest = append(rest, s.Put(fmt.Sprintf("message %d", i)))
	}

	clock = clock.Add(time.Minute)
	s.Put("message three")

	if _, ok := s.Resolve(oldest); ok {
		t.Error("oldest ticket survived insertion beyond capacity")
	}
	for i, id := range rest {
		if _, ok := s.Resolve(id); !ok {
			t.Errorf("ticket %d evicted, want only the oldest gone", i+1)
		}
	}
	if _, ok := s.Resolve(TicketID("message three")); !ok {
		t.Error("newest ticket missing after eviction")
	}
}

func TestPutPrunesExpired(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(8, 15*time.Minute, &clock)

	for i := 0; i < 4; i++ {
		s.Put(fmt.Sprintf("stale %d", i))
	}

	clock = clock.Add(16 * time.Minute)
	s.Put("fresh")

	if got := s.Len(); got != 1 {
		t.Errorf("Len = %d after prune, want 1", got)
	}
}
