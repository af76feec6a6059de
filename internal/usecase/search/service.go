package search

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"memebot/internal/config"
	"memebot/internal/domain"
)

const MaxQueryLength = 100

var (
	ErrEmptyQuery       = errors.New("empty query")
	ErrQueryTooLong     = errors.New("query too long")
	ErrNoQuery          = errors.New("no previous query")
	ErrNoResults        = errors.New("no results")
	ErrNoSearch         = errors.New("no search results to select from")
	ErrImageUnavailable = errors.New("image unavailable")
	ErrUnsupportedFile  = errors.New("unsupported file extension")
	ErrNotAnImage       = errors.New("not an image")
	ErrNothingSelected  = errors.New("no image selected")
)

var AcceptedExtensions = []string{".jpg", ".jpeg", ".png"}

// ChoiceError reports a selection outside 1..Max.
type ChoiceError struct {
	Max int
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("choice must be between 1 and %d", e.Max)
}

type Query struct {
	Text       string
	Market     string
	Count      int
	Offset     int
	SafeSearch string
	MinWidth   int
	MinHeight  int
	MaxWidth   int
	MaxHeight  int
	ClientID   string
}

type Page struct {
	Results    []domain.SearchResult
	NextOffset int
}

type Client interface {
	Search(ctx context.Context, q Query) (Page, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Prober checks that bytes decode as an image without decoding pixels.
type Prober interface {
	Probe(data []byte) (image.Config, string, error)
}

type Service struct {
	store  domain.SessionStore
	client Client
	prober Prober
	cfg    config.Config
}

func NewService(store domain.SessionStore, client Client, prober Prober, cfg config.Config) *Service {
	return &Service{
		store:  store,
		client: client,
		prober: prober,
		cfg:    cfg,
	}
}

// Find runs a new search and downloads its results into the session.
func (s *Service) Find(ctx context.Context, chatID int64, text string) ([]domain.SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if utf8.RuneCountInString(text) > MaxQueryLength {
		return nil, ErrQueryTooLong
	}
	return s.fetch(ctx, chatID, text, 0)
}

// More fetches the next page for the previous query.
func (s *Service) More(ctx context.Context, chatID int64) ([]domain.SearchResult, error) {
	sess, ok := s.store.Snapshot(chatID)
	if !ok || sess.Query == "" {
		return nil, ErrNoQuery
	}
	return s.fetch(ctx, chatID, sess.Query, sess.NextOffset)
}

func (s *Service) fetch(ctx context.Context, chatID int64, text string, offset int) ([]domain.SearchResult, error) {
	var clientID string
	_ = s.store.Update(chatID, func(sess *domain.Session) error {
		if sess.ClientID == "" {
			sess.ClientID = uuid.NewString()
		}
		clientID = sess.ClientID
		return nil
	})

	page, err := s.client.Search(ctx, Query{
		Text:       text,
		Market:     s.cfg.SearchMarket,
		Count:      s.cfg.SearchCount,
		Offset:     offset,
		SafeSearch: s.cfg.SearchSafe,
		MinWidth:   s.cfg.SearchMinWidth,
		MinHeight:  s.cfg.SearchMinHeight,
		MaxWidth:   s.cfg.SearchMaxWidth,
		MaxHeight:  s.cfg.SearchMaxHeight,
		ClientID:   clientID,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, ErrNoResults
	}

	results := page.Results
	if len(results) > s.cfg.SearchCount {
		results = results[:s.cfg.SearchCount]
	}
	for i := range results {
		results[i].Index = i + 1
		data, err := s.client.Download(ctx, results[i].URL)
		if err != nil {
			log.Printf("could not download result %d (%s): %v", i+1, results[i].URL, err)
			continue
		}
		if _, _, err := s.prober.Probe(data); err != nil {
			log.Printf("result %d is not a decodable image: %v", i+1, err)
			continue
		}
		results[i].Data = data
	}

	next := page.NextOffset
	if next <= offset {
		next = offset + len(page.Results)
	}
	err = s.store.Update(chatID, func(sess *domain.Session) error {
		sess.Query = text
		sess.NextOffset = next
		sess.Results = results
		return nil
	})
	return results, err
}

// Select makes result n (1-based) the image being edited.
func (s *Service) Select(chatID int64, n int) error {
	return s.store.Update(chatID, func(sess *domain.Session) error {
		if len(sess.Results) == 0 {
			return ErrNoSearch
		}
		if n < 1 || n > len(sess.Results) {
			return &ChoiceError{Max: len(sess.Results)}
		}
		res := sess.Results[n-1]
		if !res.Available() {
			return ErrImageUnavailable
		}
		sess.SetOriginal(res.Data)
		return nil
	})
}

// Upload accepts a user supplied image by file name and content.
func (s *Service) Upload(chatID int64, filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(AcceptedExtensions, ext) {
		return ErrUnsupportedFile
	}
	return s.Adopt(chatID, data)
}

// Adopt sets already fetched image bytes as the image being edited.
func (s *Service) Adopt(chatID int64, data []byte) error {
	if _, _, err := s.prober.Probe(data); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return s.store.Update(chatID, func(sess *domain.Session) error {
		sess.SetOriginal(data)
		return nil
	})
}

func (s *Service) Selected(chatID int64) ([]byte, error) {
	sess, ok := s.store.Snapshot(chatID)
	if !ok || sess.Original == nil {
		return nil, ErrNothingSelected
	}
	return sess.Original, nil
}
