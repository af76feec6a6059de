package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var errFileTooLarge = errors.New("file too large")

// imageAttachment returns the file to fetch for a photo or an image
// document. Photos carry no file name; the name is taken from the file
// path once it is resolved.
func imageAttachment(msg *tgbotapi.Message) (fileID, name string, ok bool) {
	if len(msg.Photo) > 0 {
		best := msg.Photo[len(msg.Photo)-1]
		return best.FileID, "", true
	}
	if msg.Document != nil && strings.HasPrefix(strings.ToLower(msg.Document.MimeType), "image/") {
		return msg.Document.FileID, msg.Document.FileName, true
	}
	return "", "", false
}

// download fetches a Telegram file and returns its bytes and server path.
func (b *Bot) download(ctx context.Context, fileID string) ([]byte, string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", err
	}
	if limit := b.cfg.MaxDownloadBytes; limit > 0 && int64(file.FileSize) > limit {
		return nil, "", errFileTooLarge
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("telegram file download: status %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if limit := b.cfg.MaxDownloadBytes; limit > 0 {
		r = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if limit := b.cfg.MaxDownloadBytes; limit > 0 && int64(len(data)) > limit {
		return nil, "", errFileTooLarge
	}
	return data, file.FilePath, nil
}
