package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"memebot/internal/usecase/suggest"
)

type Client struct {
	api *openaiapi.Client
}

// NewClient talks to baseURL, or to the public API when baseURL is empty.
func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg := openaiapi.DefaultConfig(token)
	cfg.HTTPClient = httpClient
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &Client{api: openaiapi.NewClientWithConfig(cfg)}
}

func (c *Client) Complete(ctx context.Context, req suggest.CompletionRequest) (string, error) {
	apiReq := openaiapi.ChatCompletionRequest{
		Model:               req.Model,
		MaxCompletionTokens: req.MaxCompletionTokens,
		Stream:              false,
		Messages:            toAPIMessages(req.Messages),
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toAPIMessages(msgs []suggest.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := openaiapi.ChatMessageRoleUser
		if m.Role == suggest.RoleSystem {
			role = openaiapi.ChatMessageRoleSystem
		}
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    role,
			Content: m.Text,
		})
	}
	return res
}
