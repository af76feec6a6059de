package domain

import "time"

type SearchResult struct {
	Index  int
	Name   string
	URL    string
	Width  int
	Height int
	Data   []byte
}

// Available reports whether the result was downloaded and can be selected.
func (r SearchResult) Available() bool {
	return len(r.Data) > 0
}

// Session is the per-chat editing state. Image buffers are replaced
// wholesale and never modified in place, so a copy of the struct can be
// handed out without cloning them.
type Session struct {
	ChatID     int64
	Format     FormattingState
	Query      string
	NextOffset int
	Results    []SearchResult
	Original   []byte
	Edited     []byte
	ClientID   string
	UpdatedAt  time.Time
}

func NewSession(chatID int64) *Session {
	return &Session{
		ChatID: chatID,
		Format: DefaultFormatting(),
	}
}

// SetOriginal replaces the image being edited and drops any previous edit.
func (s *Session) SetOriginal(data []byte) {
	s.Original = data
	s.Edited = nil
}

// Current returns the edited image when there is one, else the original.
func (s *Session) Current() []byte {
	if s.Edited != nil {
		return s.Edited
	}
	return s.Original
}
