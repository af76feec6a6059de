package domain

import "time"

type SessionStore interface {
	// Update runs fn with exclusive access to the chat's session, creating
	// it when missing. Changes made by fn are kept even if fn returns an
	// error, so callers mutate only after their checks pass.
	Update(chatID int64, fn func(s *Session) error) error
	Snapshot(chatID int64) (Session, bool)
	List() []Session
	Prune(ttl time.Duration) int
}
