// Package message holds the persisted per-message record: its content kind,
// the navigable action-menu stack, and the scheduled-action state.
package message

// ContentKind is the payload type of a Telegram message, driving which
// content strategy handles it.
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindAnimation ContentKind = "animation"
	KindAudio     ContentKind = "audio"
	KindVoice     ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
	KindSticker   ContentKind = "sticker"
	KindDocument  ContentKind = "document"
)

// Collection names the logical store owning a record. Empty means the record
// was deleted and must not be mutated further.
type Collection string

const (
	CollectionNew   Collection = "new"
	CollectionSaved Collection = "saved"
	CollectionNone  Collection = ""
)
