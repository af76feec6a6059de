package suggest

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"memebot/internal/config"
	"memebot/internal/domain"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"

	maxSuggestions = 5
	maxTokens      = 300
)

const systemPrompt = "You write short, punchy meme captions. " +
	"Reply with up to five caption ideas, one per line, no numbering and no quotes. " +
	"Each caption must be under 100 characters. " +
	"When an idea has a setup and a punchline, separate them with ' / '."

var (
	ErrEmptyTopic = errors.New("empty topic")
	ErrDisabled   = errors.New("suggestions are not configured")
	ErrNoIdeas    = errors.New("no caption ideas returned")
)

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Model               string
	Messages            []Message
	MaxCompletionTokens int
}

type Message struct {
	Role string
	Text string
}

type Service struct {
	client Client
	cfg    config.Config
}

// NewService returns a service that reports ErrDisabled when client is nil.
func NewService(client Client, cfg config.Config) *Service {
	return &Service{
		client: client,
		cfg:    cfg,
	}
}

func (s *Service) Suggest(ctx context.Context, topic string) ([]string, error) {
	if s.client == nil {
		return nil, ErrDisabled
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	resp, err := s.client.Complete(ctx, CompletionRequest{
		Model: s.cfg.Model,
		Messages: []Message{
			{Role: RoleSystem, Text: systemPrompt},
			{Role: RoleUser, Text: topic},
		},
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return nil, err
	}

	ideas := parseSuggestions(resp)
	if len(ideas) == 0 {
		return nil, ErrNoIdeas
	}
	return ideas, nil
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// parseSuggestions keeps one caption per line, dropping list markers,
// quotes and anything too long to be used as a caption.
func parseSuggestions(text string) []string {
	ideas := make([]string, 0, maxSuggestions)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, "\"'“”")
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) > domain.MaxCaptionLength {
			continue
		}
		ideas = append(ideas, line)
		if len(ideas) == maxSuggestions {
			break
		}
	}
	return ideas
}
