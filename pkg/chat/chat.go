// Package chat is the messenger boundary: rendering action menus, deleting
// messages, downloading files. The rest of the bot talks to the Chat
// interface so handlers stay testable without a live bot.
package chat

import (
	"context"
	"errors"

	"savbot/pkg/message"
)

// ErrFileTooLarge marks a download refused because the payload exceeds the
// configured size cap.
var ErrFileTooLarge = errors.New("file exceeds download size limit")

// Button is one rendered menu entry. Order decides row placement, see
// BuildRows.
type Button struct {
	Code    string
	Caption string
	Order   int
}

// Chat is the messenger contract used by the action handlers and the
// reconciler.
type Chat interface {
	// SendMenu posts a reply under the original message carrying the action
	// keyboard and returns the id of the posted reply.
	SendMenu(ctx context.Context, chatID int64, replyTo int, text string, recordID string, buttons []Button) (int, error)
	// EditMenu swaps the keyboard (and optionally the text) of an existing
	// reply in place.
	EditMenu(ctx context.Context, chatID int64, messageID int, recordID string, buttons []Button) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// AnswerPopup acknowledges a callback query with a short popup text.
	AnswerPopup(ctx context.Context, callbackID string, text string) error
	// SaveFile downloads one file payload into the data directory under the
	// given name.
	SaveFile(ctx context.Context, fileID string, name string) error
	// StickerSet resolves every sticker of a set as downloadable variants.
	StickerSet(ctx context.Context, name string) ([]message.FileVariant, error)
}
