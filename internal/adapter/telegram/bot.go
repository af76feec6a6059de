package telegram

import (
	"context"
	"log"
	"net/http"
	"slices"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"memebot/internal/config"
	"memebot/internal/usecase/editor"
	"memebot/internal/usecase/image"
	"memebot/internal/usecase/search"
	"memebot/internal/usecase/suggest"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      config.Config
	search   *search.Service
	editor   *editor.Service
	suggest  *suggest.Service
	images   *image.Service
	fonts    []string
	http     *http.Client
	commands map[string]commandFunc
}

type Services struct {
	Search  *search.Service
	Editor  *editor.Service
	Suggest *suggest.Service
	Images  *image.Service
	Fonts   []string
}

func NewBot(cfg config.Config, svc Services) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:     api,
		cfg:     cfg,
		search:  svc.Search,
		editor:  svc.Editor,
		suggest: svc.Suggest,
		images:  svc.Images,
		fonts:   svc.Fonts,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
	b.commands = b.commandTable()
	return b, nil
}

func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(menuCommands()...)); err != nil {
		log.Printf("failed to register command menu: %v", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			msg := update.Message
			if msg.From == nil {
				continue
			}
			go b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !isAllowedUser(msg.From.ID, b.cfg) {
		b.sendText(msg.Chat.ID, msg.MessageID, "access denied")
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	name, args, isCommand := parseCommand(text)

	if !msg.Chat.IsPrivate() {
		if isCommand {
			b.sendText(msg.Chat.ID, msg.MessageID, "I only edit memes in private chats. Send me a message directly to get started.")
		}
		return
	}

	if _, _, ok := imageAttachment(msg); ok && (!isCommand || name == "upload") {
		b.cmdUpload(ctx, msg, args)
		return
	}
	if !isCommand {
		b.sendText(msg.Chat.ID, msg.MessageID, "I only understand commands. Use /help to see them.")
		return
	}

	cmd, ok := b.commands[name]
	if !ok {
		b.sendText(msg.Chat.ID, msg.MessageID, "Unknown command. Use /help to see what I can do.")
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	cmd(reqCtx, msg, args)
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("failed to send reply: %v", err)
	}
}

func (b *Bot) sendPhoto(chatID int64, replyTo int, name string, data []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: data,
	})
	photo.Caption = caption
	photo.ReplyToMessageID = replyTo
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("failed to send photo %s: %v", name, err)
		b.sendText(chatID, replyTo, "could not send the image, try again later")
	}
}

func (b *Bot) sendChatAction(chatID int64, action string) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		log.Printf("failed to send chat action: %v", err)
	}
}

// replyError turns a service error into a user facing message. Errors
// without a known message are logged and reported generically.
func (b *Bot) replyError(msg *tgbotapi.Message, op string, err error) {
	if text, ok := describeError(err); ok {
		b.sendText(msg.Chat.ID, msg.MessageID, text)
		return
	}
	log.Printf("%s failed for chat %d: %v", op, msg.Chat.ID, err)
	b.sendText(msg.Chat.ID, msg.MessageID, "Something went wrong, please try again later.")
}

func isAllowedUser(userID int64, cfg config.Config) bool {
	if slices.Contains(cfg.AdminUserIDs, userID) {
		return true
	}
	if len(cfg.AllowedUserIDs) == 0 {
		return true
	}
	return slices.Contains(cfg.AllowedUserIDs, userID)
}
