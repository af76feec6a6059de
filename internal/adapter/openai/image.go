package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"memebot/internal/usecase/image"
)

// Generate draws one background through the images endpoint. Only DALL-E
// models take a response format; GPT image models always answer in base64.
func (c *Client) Generate(ctx context.Context, req image.Request) (image.Response, error) {
	if strings.TrimSpace(req.Model) == "" {
		return image.Response{}, errors.New("image model is required")
	}

	apiReq := openaiapi.ImageRequest{
		Prompt:  req.Prompt,
		Model:   req.Model,
		N:       1,
		Size:    req.Size,
		Quality: req.Quality,
	}
	if strings.HasPrefix(req.Model, "dall-e") {
		apiReq.ResponseFormat = openaiapi.CreateImageResponseFormatB64JSON
	}

	resp, err := c.api.CreateImage(ctx, apiReq)
	if err != nil {
		return image.Response{}, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return image.Response{}, errors.New("openai returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return image.Response{}, fmt.Errorf("decode image: %w", err)
	}
	return image.Response{Data: data, Format: "png"}, nil
}
