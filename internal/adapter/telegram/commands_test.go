package telegram

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"memebot/internal/config"
	"memebot/internal/domain"
	"memebot/internal/usecase/editor"
	"memebot/internal/usecase/search"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		name string
		args string
		ok   bool
	}{
		{"/find cats", "find", "cats", true},
		{"  /Caption top  hello world ", "caption", "top  hello world", true},
		{"/more@MemeBot", "more", "", true},
		{"/select@MemeBot 2", "select", "2", true},
		{"hello", "", "", false},
		{"/", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := parseCommand(tt.in)
		if name != tt.name || args != tt.args || ok != tt.ok {
			t.Errorf("parseCommand(%q) = %q, %q, %v", tt.in, name, args, ok)
		}
	}
}

func TestSplitFirst(t *testing.T) {
	head, rest := splitFirst("  outline   color red ")
	if head != "outline" || rest != "color red" {
		t.Fatalf("got %q %q", head, rest)
	}
	head, rest = splitFirst("top")
	if head != "top" || rest != "" {
		t.Fatalf("got %q %q", head, rest)
	}
}

func TestParseRatio(t *testing.T) {
	r, err := parseRatio("")
	if err != nil || r != nil {
		t.Fatalf("empty ratio: %v %v", r, err)
	}
	r, err = parseRatio(" 0.5 ")
	if err != nil || r == nil || *r != 0.5 {
		t.Fatalf("0.5: %v %v", r, err)
	}
	if _, err := parseRatio("half"); err == nil {
		t.Fatalf("expected error for non-number")
	}
	if _, err := parseRatio("0.1 0.2"); err == nil {
		t.Fatalf("expected error for two values")
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&search.ChoiceError{Max: 5}, "between 1 to 5"},
		{fmt.Errorf("wrapped: %w", domain.ErrCaptionTooLong), "100 characters"},
		{domain.ErrFontSize, "between 1 and 60"},
		{domain.ErrOutlineSize, "maximum value you can enter is 10"},
		{domain.ErrUnknownColor, "/show colors"},
		{editor.ErrNoImage, "select an image"},
		{editor.ErrNotModified, "/show original"},
		{search.ErrNoSearch, "/find"},
		{search.ErrUnsupportedFile, ".jpg, .jpeg, .png"},
		{errFileTooLarge, "too large"},
	}
	for _, tt := range tests {
		got, ok := describeError(tt.err)
		if !ok || !strings.Contains(got, tt.want) {
			t.Errorf("describeError(%v) = %q, %v; want it to contain %q", tt.err, got, ok, tt.want)
		}
	}

	if _, ok := describeError(errors.New("boom")); ok {
		t.Fatalf("unknown errors must not be described")
	}
}

func TestIsAllowedUser(t *testing.T) {
	open := config.Config{}
	if !isAllowedUser(1, open) {
		t.Fatalf("empty allow list should admit everyone")
	}

	cfg := config.Config{AdminUserIDs: []int64{1}, AllowedUserIDs: []int64{2}}
	for id, want := range map[int64]bool{1: true, 2: true, 3: false} {
		if got := isAllowedUser(id, cfg); got != want {
			t.Errorf("isAllowedUser(%d) = %v, want %v", id, got, want)
		}
	}
}

func TestImageAttachment(t *testing.T) {
	photo := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}}
	if id, name, ok := imageAttachment(photo); !ok || id != "large" || name != "" {
		t.Fatalf("photo: %q %q %v", id, name, ok)
	}

	doc := &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "d", FileName: "cat.png", MimeType: "image/png"}}
	if id, name, ok := imageAttachment(doc); !ok || id != "d" || name != "cat.png" {
		t.Fatalf("document: %q %q %v", id, name, ok)
	}

	pdf := &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "p", FileName: "a.pdf", MimeType: "application/pdf"}}
	if _, _, ok := imageAttachment(pdf); ok {
		t.Fatalf("pdf must not count as an image")
	}
	if _, _, ok := imageAttachment(&tgbotapi.Message{Text: "hi"}); ok {
		t.Fatalf("plain text has no attachment")
	}
}

func TestEveryMenuCommandIsHandled(t *testing.T) {
	b := &Bot{}
	table := b.commandTable()
	for _, c := range menuCommands() {
		if _, ok := table[c.Command]; !ok {
			t.Errorf("menu command %q has no handler", c.Command)
		}
		if !strings.Contains(helpText, "/"+c.Command) && c.Command != "help" {
			t.Errorf("help text does not mention /%s", c.Command)
		}
	}
}
