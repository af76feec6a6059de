package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"memebot/internal/config"
)

type fakeClient struct {
	req  CompletionRequest
	resp string
	err  error
}

func (c *fakeClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	c.req = req
	return c.resp, c.err
}

func TestSuggestDisabledWithoutClient(t *testing.T) {
	svc := NewService(nil, config.Config{})
	if _, err := svc.Suggest(context.Background(), "mondays"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestSuggestRejectsEmptyTopic(t *testing.T) {
	svc := NewService(&fakeClient{}, config.Config{})
	if _, err := svc.Suggest(context.Background(), "  "); !errors.Is(err, ErrEmptyTopic) {
		t.Fatalf("expected ErrEmptyTopic, got %v", err)
	}
}

func TestSuggestBuildsRequestAndParses(t *testing.T) {
	client := &fakeClient{resp: "1. When the code compiles\n\n- \"Me / also me\"\n* third\n"}
	svc := NewService(client, config.Config{Model: "gpt-test"})

	ideas, err := svc.Suggest(context.Background(), " mondays ")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	want := []string{"When the code compiles", "Me / also me", "third"}
	if strings.Join(ideas, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, ideas)
	}

	if client.req.Model != "gpt-test" || len(client.req.Messages) != 2 {
		t.Fatalf("unexpected request %+v", client.req)
	}
	if client.req.Messages[0].Role != RoleSystem || client.req.Messages[1].Text != "mondays" {
		t.Fatalf("unexpected messages %+v", client.req.Messages)
	}
}

func TestParseSuggestionsLimits(t *testing.T) {
	long := strings.Repeat("x", 101)
	text := strings.Join([]string{"a", long, "b", "c", "d", "e", "f"}, "\n")
	ideas := parseSuggestions(text)
	if len(ideas) != 5 || ideas[0] != "a" || ideas[1] != "b" || ideas[4] != "e" {
		t.Fatalf("unexpected ideas %q", ideas)
	}

	ideas = parseSuggestions("90s kids remember this\n2 fast 2 furious\n3. numbered idea\n4) \"quoted\"\n- dash idea")
	want := []string{"90s kids remember this", "2 fast 2 furious", "numbered idea", "quoted", "dash idea"}
	if len(ideas) != len(want) {
		t.Fatalf("unexpected ideas %q", ideas)
	}
	for i := range want {
		if ideas[i] != want[i] {
			t.Fatalf("idea %d: got %q, want %q", i, ideas[i], want[i])
		}
	}
}

func TestSuggestNoIdeas(t *testing.T) {
	svc := NewService(&fakeClient{resp: "\n  \n"}, config.Config{})
	if _, err := svc.Suggest(context.Background(), "x"); !errors.Is(err, ErrNoIdeas) {
		t.Fatalf("expected ErrNoIdeas, got %v", err)
	}
}
