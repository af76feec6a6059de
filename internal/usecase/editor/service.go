package editor

import (
	"errors"

	"memebot/internal/domain"
)

var (
	ErrNoImage      = errors.New("no image selected")
	ErrNotModified  = errors.New("image not modified")
	ErrUnknownSide  = errors.New("unknown side")
	ErrUnknownScope = errors.New("unknown reset scope")
)

type Renderer interface {
	Render(src []byte, f domain.FormattingState) ([]byte, error)
}

type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeText       Scope = "text"
	ScopeFont       Scope = "font"
	ScopeWhitespace Scope = "whitespace"
	ScopeImage      Scope = "image"
)

type Service struct {
	store    domain.SessionStore
	renderer Renderer
}

func NewService(store domain.SessionStore, renderer Renderer) *Service {
	return &Service{
		store:    store,
		renderer: renderer,
	}
}

func (s *Service) CaptionTop(chatID int64, text string) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetTopText(text)
	})
}

func (s *Service) CaptionBottom(chatID int64, text string) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetBottomText(text)
	})
}

// Whitespace adds a band on side ("top" or "bottom"). A nil ratio keeps the
// current one.
func (s *Service) Whitespace(chatID int64, side string, ratio *float64) ([]byte, error) {
	var mode domain.WhitespaceMode
	switch side {
	case "top":
		mode = domain.WhitespaceTop
	case "bottom", "bot":
		mode = domain.WhitespaceBottom
	default:
		return nil, ErrUnknownSide
	}
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.AddWhitespace(mode, ratio)
	})
}

func (s *Service) Font(chatID int64, name string) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetFont(name)
	})
}

func (s *Service) FontSize(chatID int64, size int) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetFontSize(size)
	})
}

func (s *Service) TextColor(chatID int64, name string) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetTextColor(name)
	})
}

func (s *Service) OutlineColor(chatID int64, name string) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetOutlineColor(name)
	})
}

func (s *Service) OutlineSize(chatID int64, size int) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetOutlineSize(size)
	})
}

func (s *Service) Align(chatID int64, name string) ([]byte, error) {
	return s.edit(chatID, func(f *domain.FormattingState) error {
		return f.SetAlignment(name)
	})
}

// Reset restores defaults for scope. Text, font and whitespace resets
// re-render and return the new image when one is selected; all and image
// drop the edit and return nil.
func (s *Service) Reset(chatID int64, scope Scope) ([]byte, error) {
	switch scope {
	case ScopeAll, "":
		return nil, s.store.Update(chatID, func(sess *domain.Session) error {
			sess.Format.Reset()
			sess.Edited = nil
			return nil
		})
	case ScopeImage:
		return nil, s.store.Update(chatID, func(sess *domain.Session) error {
			sess.Edited = nil
			return nil
		})
	}

	var reset func(f *domain.FormattingState)
	switch scope {
	case ScopeText:
		reset = (*domain.FormattingState).ResetText
	case ScopeFont:
		reset = (*domain.FormattingState).ResetFont
	case ScopeWhitespace:
		reset = (*domain.FormattingState).ResetWhitespace
	default:
		return nil, ErrUnknownScope
	}

	var out []byte
	err := s.store.Update(chatID, func(sess *domain.Session) error {
		next := sess.Format
		reset(&next)
		if sess.Original == nil {
			sess.Format = next
			return nil
		}
		img, err := s.renderer.Render(sess.Original, next)
		if err != nil {
			return err
		}
		sess.Format = next
		sess.Edited = img
		out = img
		return nil
	})
	return out, err
}

func (s *Service) Original(chatID int64) ([]byte, error) {
	sess, ok := s.store.Snapshot(chatID)
	if !ok || sess.Original == nil {
		return nil, ErrNoImage
	}
	return sess.Original, nil
}

func (s *Service) Edited(chatID int64) ([]byte, error) {
	sess, ok := s.store.Snapshot(chatID)
	if !ok || sess.Original == nil {
		return nil, ErrNoImage
	}
	if sess.Edited == nil {
		return nil, ErrNotModified
	}
	return sess.Edited, nil
}

func (s *Service) Format(chatID int64) domain.FormattingState {
	sess, ok := s.store.Snapshot(chatID)
	if !ok {
		return domain.DefaultFormatting()
	}
	return sess.Format
}

// edit validates the change on a copy of the formatting state, renders the
// original with it and commits both only when everything succeeded.
func (s *Service) edit(chatID int64, mutate func(f *domain.FormattingState) error) ([]byte, error) {
	var out []byte
	err := s.store.Update(chatID, func(sess *domain.Session) error {
		next := sess.Format
		if err := mutate(&next); err != nil {
			return err
		}
		if sess.Original == nil {
			return ErrNoImage
		}
		img, err := s.renderer.Render(sess.Original, next)
		if err != nil {
			return err
		}
		sess.Format = next
		sess.Edited = img
		out = img
		return nil
	})
	return out, err
}
