package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"savbot/pkg/message"
)

// Telegram implements Chat over a telego bot.
type Telegram struct {
	bot     *telego.Bot
	log     *slog.Logger
	dataDir string
	maxSize int64
	client  *http.Client
}

// NewTelegram wraps a bot. Downloads land in dataDir and are refused above
// maxSize bytes.
func NewTelegram(bot *telego.Bot, dataDir string, maxSize int64, log *slog.Logger) *Telegram {
	if log == nil {
		log = slog.Default()
	}
	return &Telegram{
		bot:     bot,
		log:     log.With("component", "chat.telegram"),
		dataDir: dataDir,
		maxSize: maxSize,
		client:  http.DefaultClient,
	}
}

func (t *Telegram) SendMenu(ctx context.Context, chatID int64, replyTo int, text string, recordID string, buttons []Button) (int, error) {
	params := tu.Message(tu.ID(chatID), text).
		WithReplyParameters(&telego.ReplyParameters{MessageID: replyTo}).
		WithReplyMarkup(inlineKeyboard(recordID, buttons))

	sent, err := t.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("send menu reply: %w", err)
	}
	return sent.MessageID, nil
}

func (t *Telegram) EditMenu(ctx context.Context, chatID int64, messageID int, recordID string, buttons []Button) error {
	var markup *telego.InlineKeyboardMarkup
	if len(buttons) > 0 {
		markup = inlineKeyboard(recordID, buttons)
	}
	_, err := t.bot.EditMessageReplyMarkup(ctx, &telego.EditMessageReplyMarkupParams{
		ChatID:      tu.ID(chatID),
		MessageID:   messageID,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("edit menu keyboard: %w", err)
	}
	return nil
}

func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	err := t.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}
	return nil
}

func (t *Telegram) AnswerPopup(ctx context.Context, callbackID string, text string) error {
	err := t.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

// SaveFile resolves the file on the Bot API server and streams it to disk.
func (t *Telegram) SaveFile(ctx context.Context, fileID string, name string) error {
	file, err := t.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	if t.maxSize > 0 && file.FileSize > t.maxSize {
		return ErrFileTooLarge
	}

	if err := os.MkdirAll(t.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.bot.FileDownloadURL(file.FilePath), nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file %s: unexpected status %s", fileID, resp.Status)
	}

	dest := filepath.Join(t.dataDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	t.log.Info("Saved file", "file_id", fileID, "path", dest, "size", file.FileSize)
	return nil
}

func (t *Telegram) StickerSet(ctx context.Context, name string) ([]message.FileVariant, error) {
	set, err := t.bot.GetStickerSet(ctx, &telego.GetStickerSetParams{Name: name})
	if err != nil {
		return nil, fmt.Errorf("get sticker set %s: %w", name, err)
	}
	variants := make([]message.FileVariant, 0, len(set.Stickers))
	for _, sticker := range set.Stickers {
		variants = append(variants, message.FileVariant{
			FileID:       sticker.FileID,
			FileUniqueID: sticker.FileUniqueID,
			Width:        sticker.Width,
			Height:       sticker.Height,
			IsVideo:      sticker.IsVideo,
		})
	}
	return variants, nil
}
