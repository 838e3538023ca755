package bot

import (
	"time"

	"github.com/mymmrac/telego"

	"savbot/pkg/message"
)

// Convert maps a Telegram message onto the persisted record shape. The
// second return is false for payloads the bot does not manage (locations,
// polls, service messages).
func Convert(msg *telego.Message) (*message.State, bool) {
	st := &message.State{
		ChatID:       msg.Chat.ID,
		MessageID:    msg.MessageID,
		ChatTitle:    msg.Chat.Title,
		MediaGroupID: msg.MediaGroupID,
		ReceivedAt:   time.Now().UTC(),
	}
	st.ClearSchedule()
	if msg.From != nil {
		st.UserID = msg.From.ID
		st.Username = msg.From.Username
	}

	switch {
	case msg.Text != "":
		st.ContentKind = message.KindText
		st.Text = msg.Text
		st.Entities = convertEntities(msg.Entities)
	case len(msg.Photo) > 0:
		st.ContentKind = message.KindPhoto
		for _, size := range msg.Photo {
			st.Files = append(st.Files, message.FileVariant{
				FileID:       size.FileID,
				FileUniqueID: size.FileUniqueID,
				Width:        size.Width,
				Height:       size.Height,
				FileSize:     int64(size.FileSize),
			})
		}
		st.FileSize = largestSize(st.Files)
		applyCaption(st, msg)
	case msg.Video != nil:
		st.ContentKind = message.KindVideo
		setSingleFile(st, msg.Video.FileID, msg.Video.FileUniqueID, int64(msg.Video.FileSize))
		applyCaption(st, msg)
	case msg.Animation != nil:
		st.ContentKind = message.KindAnimation
		setSingleFile(st, msg.Animation.FileID, msg.Animation.FileUniqueID, int64(msg.Animation.FileSize))
		applyCaption(st, msg)
	case msg.Audio != nil:
		st.ContentKind = message.KindAudio
		setSingleFile(st, msg.Audio.FileID, msg.Audio.FileUniqueID, int64(msg.Audio.FileSize))
		applyCaption(st, msg)
	case msg.Voice != nil:
		st.ContentKind = message.KindVoice
		setSingleFile(st, msg.Voice.FileID, msg.Voice.FileUniqueID, int64(msg.Voice.FileSize))
	case msg.VideoNote != nil:
		st.ContentKind = message.KindVideoNote
		setSingleFile(st, msg.VideoNote.FileID, msg.VideoNote.FileUniqueID, int64(msg.VideoNote.FileSize))
	case msg.Sticker != nil:
		st.ContentKind = message.KindSticker
		st.StickerSetName = msg.Sticker.SetName
		st.Files = []message.FileVariant{{
			FileID:       msg.Sticker.FileID,
			FileUniqueID: msg.Sticker.FileUniqueID,
			Width:        msg.Sticker.Width,
			Height:       msg.Sticker.Height,
			FileSize:     int64(msg.Sticker.FileSize),
			IsVideo:      msg.Sticker.IsVideo,
		}}
		st.FileSize = int64(msg.Sticker.FileSize)
	case msg.Document != nil:
		st.ContentKind = message.KindDocument
		setSingleFile(st, msg.Document.FileID, msg.Document.FileUniqueID, int64(msg.Document.FileSize))
		applyCaption(st, msg)
	default:
		return nil, false
	}
	return st, true
}

func setSingleFile(st *message.State, fileID, uniqueID string, size int64) {
	st.Files = []message.FileVariant{{FileID: fileID, FileUniqueID: uniqueID, FileSize: size}}
	st.FileSize = size
}

func applyCaption(st *message.State, msg *telego.Message) {
	st.Text = msg.Caption
	st.Entities = convertEntities(msg.CaptionEntities)
}

func convertEntities(entities []telego.MessageEntity) []message.Entity {
	if len(entities) == 0 {
		return nil
	}
	converted := make([]message.Entity, 0, len(entities))
	for _, entity := range entities {
		converted = append(converted, message.Entity{
			Type:   entity.Type,
			URL:    entity.URL,
			Offset: entity.Offset,
			Length: entity.Length,
		})
	}
	return converted
}

func largestSize(files []message.FileVariant) int64 {
	var largest int64
	for _, file := range files {
		if file.FileSize > largest {
			largest = file.FileSize
		}
	}
	return largest
}
