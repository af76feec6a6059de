package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"memebot/internal/domain"
	"memebot/internal/usecase/editor"
	"memebot/internal/usecase/image"
	"memebot/internal/usecase/search"
	"memebot/internal/usecase/suggest"
)

type commandFunc func(ctx context.Context, msg *tgbotapi.Message, args string)

const welcomeText = "Bot activated! Use /find <query> to search for a background image " +
	"or send me a picture to upload your own. /help lists everything I can do."

const helpText = `/find <query> - search for background images
/more - more results for the same search
/select <n> - pick one of the results
/upload - send a .jpg or .png with this caption (plain photos work too)
/show [original|new|colors|fonts] - show the selected image or the options
/edit - check that an image is ready for editing
/caption top|bottom <text> - add a caption (up to 100 characters)
/whitespace top|bottom [ratio] - add a white band, ratio up to 1 (default 0.25)
/text font <name>
/text size <n> - up to 60, default 42
/text color <color|#rrggbb>
/text outline color <color|none>
/text outline size <n> - up to 10, default 2
/text align left|center|right
/reset [text|font|whitespace|image]
/suggest <topic> - caption ideas
/generate <prompt> - create a background image`

func (b *Bot) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"start":      b.cmdStart,
		"meme":       b.cmdStart,
		"help":       b.cmdHelp,
		"find":       b.cmdFind,
		"more":       b.cmdMore,
		"select":     b.cmdSelect,
		"upload":     b.cmdUpload,
		"show":       b.cmdShow,
		"edit":       b.cmdEdit,
		"caption":    b.cmdCaption,
		"whitespace": b.cmdWhitespace,
		"text":       b.cmdText,
		"reset":      b.cmdReset,
		"suggest":    b.cmdSuggest,
		"generate":   b.cmdGenerate,
	}
}

func menuCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "find", Description: "Search for a background image"},
		{Command: "more", Description: "More results for the last search"},
		{Command: "select", Description: "Pick a search result"},
		{Command: "show", Description: "Show the selected or edited image"},
		{Command: "caption", Description: "Add a top or bottom caption"},
		{Command: "whitespace", Description: "Add a white band"},
		{Command: "text", Description: "Change font, size, color, outline or alignment"},
		{Command: "reset", Description: "Reset text, font, whitespace or image"},
		{Command: "suggest", Description: "Get caption ideas"},
		{Command: "generate", Description: "Generate a background image"},
		{Command: "help", Description: "List all commands"},
	}
}

func (b *Bot) cmdStart(_ context.Context, msg *tgbotapi.Message, _ string) {
	b.sendText(msg.Chat.ID, msg.MessageID, welcomeText)
}

func (b *Bot) cmdHelp(_ context.Context, msg *tgbotapi.Message, _ string) {
	b.sendText(msg.Chat.ID, msg.MessageID, helpText)
}

func (b *Bot) cmdFind(ctx context.Context, msg *tgbotapi.Message, args string) {
	if strings.TrimSpace(args) != "" {
		b.sendText(msg.Chat.ID, msg.MessageID, "Finding image results for "+strings.TrimSpace(args)+". Please wait...")
	}
	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatUploadPhoto)

	results, err := b.search.Find(ctx, msg.Chat.ID, args)
	if err != nil {
		b.replyError(msg, "find", err)
		return
	}
	b.sendResults(msg, results)
}

func (b *Bot) cmdMore(ctx context.Context, msg *tgbotapi.Message, _ string) {
	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatUploadPhoto)

	results, err := b.search.More(ctx, msg.Chat.ID)
	if err != nil {
		b.replyError(msg, "more", err)
		return
	}
	b.sendResults(msg, results)
}

func (b *Bot) sendResults(msg *tgbotapi.Message, results []domain.SearchResult) {
	for _, r := range results {
		if !r.Available() {
			b.sendText(msg.Chat.ID, 0, fmt.Sprintf("An unexpected error occurred while retrieving image %d.", r.Index))
			continue
		}
		b.sendPhoto(msg.Chat.ID, 0, fmt.Sprintf("%d.jpg", r.Index), r.Data, strconv.Itoa(r.Index))
	}
	b.sendText(msg.Chat.ID, 0, fmt.Sprintf("Use /select 1-%d to pick an image or /more for other results.", len(results)))
}

func (b *Bot) cmdSelect(_ context.Context, msg *tgbotapi.Message, args string) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		b.sendText(msg.Chat.ID, msg.MessageID, "Please enter the number of the image, e.g. /select 2")
		return
	}
	if err := b.search.Select(msg.Chat.ID, n); err != nil {
		b.replyError(msg, "select", err)
		return
	}
	b.sendText(msg.Chat.ID, msg.MessageID, fmt.Sprintf(
		"Image number %d was successfully selected. Use /caption top <text> or /whitespace top to edit it.", n))
}

func (b *Bot) cmdUpload(ctx context.Context, msg *tgbotapi.Message, _ string) {
	fileID, name, ok := imageAttachment(msg)
	if !ok {
		b.sendText(msg.Chat.ID, msg.MessageID, "You need to attach an image when using this command.")
		return
	}

	data, path, err := b.download(ctx, fileID)
	if err != nil {
		b.replyError(msg, "upload", err)
		return
	}
	if name == "" {
		name = path
	}
	if err := b.search.Upload(msg.Chat.ID, name, data); err != nil {
		b.replyError(msg, "upload", err)
		return
	}
	b.sendText(msg.Chat.ID, msg.MessageID, "Image upload successful. Use /caption top <text> to start editing.")
}

func (b *Bot) cmdShow(_ context.Context, msg *tgbotapi.Message, args string) {
	var (
		data []byte
		name string
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "":
		data, err = b.search.Selected(msg.Chat.ID)
		name = "selected_image.jpg"
	case "original":
		data, err = b.editor.Original(msg.Chat.ID)
		name = "original_image.jpg"
	case "new":
		data, err = b.editor.Edited(msg.Chat.ID)
		name = "new_image.jpg"
	case "colors", "colours":
		b.sendText(msg.Chat.ID, msg.MessageID, "Available colors: "+strings.Join(domain.Colors, ", ")+
			", or any #rrggbb value. The outline color can also be none.")
		return
	case "fonts":
		b.sendText(msg.Chat.ID, msg.MessageID, "Available fonts: "+strings.Join(b.fonts, ", "))
		return
	default:
		b.sendText(msg.Chat.ID, msg.MessageID, "Incorrect parameter. Use /show, /show original, /show new, /show colors or /show fonts.")
		return
	}
	if err != nil {
		b.replyError(msg, "show", err)
		return
	}
	b.sendPhoto(msg.Chat.ID, msg.MessageID, name, data, "")
}

func (b *Bot) cmdEdit(_ context.Context, msg *tgbotapi.Message, _ string) {
	if _, err := b.editor.Original(msg.Chat.ID); err != nil {
		b.replyError(msg, "edit", err)
		return
	}
	b.sendText(msg.Chat.ID, msg.MessageID,
		"The editor is ready. You can use commands like /caption top <text> or /whitespace top to edit your image.")
}

func (b *Bot) cmdCaption(_ context.Context, msg *tgbotapi.Message, args string) {
	side, text := splitFirst(args)
	if text == "" {
		b.sendText(msg.Chat.ID, msg.MessageID, "Usage: /caption top <text> or /caption bottom <text>")
		return
	}

	var (
		out []byte
		err error
	)
	switch strings.ToLower(side) {
	case "top":
		out, err = b.editor.CaptionTop(msg.Chat.ID, text)
	case "bottom", "bot":
		out, err = b.editor.CaptionBottom(msg.Chat.ID, text)
	default:
		err = editor.ErrUnknownSide
	}
	b.replyEdit(msg, "caption", out, err)
}

func (b *Bot) cmdWhitespace(_ context.Context, msg *tgbotapi.Message, args string) {
	side, rest := splitFirst(args)
	ratio, err := parseRatio(rest)
	if err != nil {
		b.sendText(msg.Chat.ID, msg.MessageID, "Incorrect parameter. Please try again.")
		return
	}

	out, err := b.editor.Whitespace(msg.Chat.ID, strings.ToLower(side), ratio)
	if err == nil && ratio != nil {
		b.sendText(msg.Chat.ID, 0, "Whitespace ratio set to "+strconv.FormatFloat(*ratio, 'g', -1, 64))
	}
	b.replyEdit(msg, "whitespace", out, err)
}

func (b *Bot) cmdText(_ context.Context, msg *tgbotapi.Message, args string) {
	sub, rest := splitFirst(args)
	chatID := msg.Chat.ID

	var (
		out []byte
		err error
	)
	switch strings.ToLower(sub) {
	case "font":
		out, err = b.editor.Font(chatID, rest)
	case "size":
		size, convErr := strconv.Atoi(rest)
		if convErr != nil {
			b.sendText(chatID, msg.MessageID, "Incorrect parameter. The size must be a whole number.")
			return
		}
		out, err = b.editor.FontSize(chatID, size)
		if err == nil {
			b.sendText(chatID, 0, fmt.Sprintf("Text size changed to %d.", size))
		}
	case "color", "colour":
		out, err = b.editor.TextColor(chatID, rest)
		if err == nil {
			b.sendText(chatID, 0, "Text color changed to "+strings.ToLower(rest)+".")
		}
	case "align":
		out, err = b.editor.Align(chatID, rest)
	case "outline":
		prop, value := splitFirst(rest)
		switch strings.ToLower(prop) {
		case "color", "colour":
			out, err = b.editor.OutlineColor(chatID, value)
		case "none":
			out, err = b.editor.OutlineColor(chatID, domain.OutlineNone)
		case "size":
			size, convErr := strconv.Atoi(value)
			if convErr != nil {
				b.sendText(chatID, msg.MessageID, "Incorrect parameter. The outline size must be a whole number.")
				return
			}
			out, err = b.editor.OutlineSize(chatID, size)
		default:
			b.sendText(chatID, msg.MessageID, "Usage: /text outline color <color|none> or /text outline size <n>")
			return
		}
	default:
		b.sendText(chatID, msg.MessageID, "Usage: /text font|size|color|align|outline ...")
		return
	}
	b.replyEdit(msg, "text", out, err)
}

func (b *Bot) cmdReset(_ context.Context, msg *tgbotapi.Message, args string) {
	scope := editor.Scope(strings.ToLower(strings.TrimSpace(args)))
	out, err := b.editor.Reset(msg.Chat.ID, scope)
	if err != nil {
		b.replyError(msg, "reset", err)
		return
	}
	if out != nil {
		b.sendPhoto(msg.Chat.ID, msg.MessageID, "new_image.jpg", out, "")
		return
	}
	b.sendText(msg.Chat.ID, msg.MessageID, "Reset done.")
}

func (b *Bot) cmdSuggest(ctx context.Context, msg *tgbotapi.Message, args string) {
	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatTyping)
	ideas, err := b.suggest.Suggest(ctx, args)
	if err != nil {
		b.replyError(msg, "suggest", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("Caption ideas:\n")
	for i, idea := range ideas {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, idea)
	}
	sb.WriteString("Use /caption top <text> or /caption bottom <text> to apply one.")
	b.sendText(msg.Chat.ID, msg.MessageID, sb.String())
}

func (b *Bot) cmdGenerate(ctx context.Context, msg *tgbotapi.Message, args string) {
	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatUploadPhoto)
	resp, err := b.images.Generate(ctx, args)
	if err != nil {
		b.replyError(msg, "generate", err)
		return
	}
	if err := b.search.Adopt(msg.Chat.ID, resp.Data); err != nil {
		b.replyError(msg, "generate", err)
		return
	}
	b.sendPhoto(msg.Chat.ID, msg.MessageID, "generated."+resp.Format, resp.Data,
		"Generated image selected. Use /caption top <text> to start editing.")
}

func (b *Bot) replyEdit(msg *tgbotapi.Message, op string, out []byte, err error) {
	if err != nil {
		b.replyError(msg, op, err)
		return
	}
	b.sendPhoto(msg.Chat.ID, msg.MessageID, "new_image.jpg", out, "")
}

// parseCommand splits "/name@bot args" into a lower-cased name and the
// trimmed argument string.
func parseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args := splitFirst(text[1:])
	name, _, _ := strings.Cut(head, "@")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), args, true
}

// splitFirst returns the first word of s and the trimmed remainder.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

// parseRatio accepts an empty string (keep the current ratio) or exactly
// one number.
func parseRatio(s string) (*float64, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return nil, nil
	case 1:
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, errors.New("too many parameters")
	}
}

func describeError(err error) (string, bool) {
	var choice *search.ChoiceError
	switch {
	case errors.As(err, &choice):
		return fmt.Sprintf("Please enter a valid choice from between 1 to %d.", choice.Max), true
	case errors.Is(err, domain.ErrCaptionTooLong):
		return fmt.Sprintf("The text you entered was too long. The bot has a limit of %d characters for captions.", domain.MaxCaptionLength), true
	case errors.Is(err, domain.ErrFontSize):
		return fmt.Sprintf("Invalid size value entered. Text size must be between 1 and %d.", domain.MaxFontSize), true
	case errors.Is(err, domain.ErrOutlineSize):
		return fmt.Sprintf("Invalid size value entered. The maximum value you can enter is %d.", domain.MaxOutlineSize), true
	case errors.Is(err, domain.ErrWhitespaceRatio):
		return "Incorrect parameter. The whitespace ratio must be greater than 0 and at most 1.", true
	case errors.Is(err, domain.ErrUnknownFont):
		return "Unrecognized font type. Use /show fonts to see the available fonts.", true
	case errors.Is(err, domain.ErrUnknownColor):
		return "Invalid color entered. Use /show colors to get a list of the supported colors.", true
	case errors.Is(err, domain.ErrUnknownAlignment):
		return "Incorrect parameter. Text can be aligned left, center, or right.", true
	case errors.Is(err, editor.ErrNoImage), errors.Is(err, search.ErrNothingSelected):
		return "You need to select an image before you can edit it. Use /find or send me a picture first.", true
	case errors.Is(err, editor.ErrNotModified):
		return "The image has not been modified. Use /show original to display the image.", true
	case errors.Is(err, editor.ErrUnknownSide):
		return "Incorrect parameter. Use top or bottom.", true
	case errors.Is(err, editor.ErrUnknownScope):
		return "Incorrect parameter. You can reset text, font, whitespace or image.", true
	case errors.Is(err, search.ErrEmptyQuery):
		return "Tell me what to look for, e.g. /find surprised cat", true
	case errors.Is(err, search.ErrQueryTooLong):
		return fmt.Sprintf("Search queries are limited to %d characters.", search.MaxQueryLength), true
	case errors.Is(err, search.ErrNoQuery):
		return "You need to use the /find command before asking for more results.", true
	case errors.Is(err, search.ErrNoResults):
		return "No images found for that search.", true
	case errors.Is(err, search.ErrNoSearch):
		return "You need to use the /find command to search for a list of images before you can use this command.", true
	case errors.Is(err, search.ErrImageUnavailable):
		return "An unexpected error occurred while retrieving this image. Please select another.", true
	case errors.Is(err, search.ErrUnsupportedFile):
		return "This filename extension is not supported. Only " + strings.Join(search.AcceptedExtensions, ", ") + " files are accepted.", true
	case errors.Is(err, search.ErrNotAnImage):
		return "That file does not look like an image I can read.", true
	case errors.Is(err, errFileTooLarge):
		return "That file is too large.", true
	case errors.Is(err, suggest.ErrDisabled), errors.Is(err, image.ErrDisabled):
		return "This feature is not enabled on this bot.", true
	case errors.Is(err, suggest.ErrEmptyTopic):
		return "Tell me what the meme is about, e.g. /suggest mondays", true
	case errors.Is(err, suggest.ErrNoIdeas):
		return "I could not come up with anything, try another topic.", true
	case errors.Is(err, image.ErrEmptyPrompt):
		return "Describe the image you want, e.g. /generate a cat in a business suit", true
	case errors.Is(err, image.ErrPromptTooLong):
		return "That description is too long.", true
	case errors.Is(err, image.ErrInvalidImage):
		return "The generated image could not be read, please try again.", true
	}
	return "", false
}
