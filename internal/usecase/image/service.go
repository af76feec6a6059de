package image

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"memebot/internal/config"
)

const maxPromptLength = 1000

var (
	ErrEmptyPrompt   = errors.New("empty prompt")
	ErrPromptTooLong = errors.New("prompt too long")
	ErrDisabled      = errors.New("image generation is not configured")
	ErrInvalidImage  = errors.New("generated data is not a usable image")
)

type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Prober checks that bytes decode as an image without decoding pixels.
type Prober interface {
	Probe(data []byte) (image.Config, string, error)
}

type Request struct {
	Model   string
	Prompt  string
	Size    string
	Quality string
}

type Response struct {
	Data   []byte
	Format string
}

type Service struct {
	client Client
	prober Prober
	cfg    config.Config
}

// NewService returns a service that reports ErrDisabled when client is nil.
func NewService(client Client, prober Prober, cfg config.Config) *Service {
	return &Service{
		client: client,
		prober: prober,
		cfg:    cfg,
	}
}

// Generate asks for a meme background and checks that the result decodes
// before it is handed out for captioning.
func (s *Service) Generate(ctx context.Context, prompt string) (Response, error) {
	if s.client == nil {
		return Response{}, ErrDisabled
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Response{}, ErrEmptyPrompt
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return Response{}, ErrPromptTooLong
	}

	resp, err := s.client.Generate(ctx, Request{
		Model:   s.cfg.ImageModel,
		Prompt:  "Meme background image, no text or lettering: " + prompt,
		Size:    s.cfg.ImageSize,
		Quality: s.cfg.ImageQuality,
	})
	if err != nil {
		return Response{}, err
	}

	cfg, format, err := s.prober.Probe(resp.Data)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return Response{}, fmt.Errorf("%w: empty %dx%d image", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	resp.Format = format
	return resp, nil
}
