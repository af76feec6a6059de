package memory

import (
	"sort"
	"sync"
	"time"

	"memebot/internal/domain"
)

type entry struct {
	mu      sync.Mutex
	session *domain.Session
	// dead is set under mu when Prune removes the entry from the map.
	dead bool
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*entry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*entry),
		now:      time.Now,
	}
}

func (s *Store) entry(chatID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[chatID]
	if !ok {
		e = &entry{session: domain.NewSession(chatID)}
		s.sessions[chatID] = e
	}
	return e
}

// lock returns the live entry for chatID with its mutex held. An entry
// pruned between the map lookup and the lock is skipped.
func (s *Store) lock(chatID int64) *entry {
	for {
		e := s.entry(chatID)
		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

func (s *Store) Update(chatID int64, fn func(*domain.Session) error) error {
	e := s.lock(chatID)
	defer e.mu.Unlock()

	err := fn(e.session)
	e.session.UpdatedAt = s.now()
	return err
}

func (s *Store) Snapshot(chatID int64) (domain.Session, bool) {
	s.mu.Lock()
	e, ok := s.sessions[chatID]
	s.mu.Unlock()
	if !ok {
		return domain.Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return copySession(e.session), true
}

func (s *Store) List() []domain.Session {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	list := make([]domain.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		list = append(list, copySession(e.session))
		e.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ChatID < list[j].ChatID })
	return list
}

// Prune drops sessions that were not touched within ttl and returns how
// many were removed.
func (s *Store) Prune(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.session.UpdatedAt.Before(cutoff) {
			e.dead = true
			delete(s.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func copySession(src *domain.Session) domain.Session {
	cp := *src
	cp.Results = append([]domain.SearchResult(nil), src.Results...)
	return cp
}
