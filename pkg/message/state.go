package message

import (
	"errors"
	"time"
)

// ErrDeleted marks an attempt to mutate or delete a record whose collection is
// already gone.
var ErrDeleted = errors.New("message record already deleted")

// ScheduledNone is the sentinel for "no action scheduled".
const ScheduledNone = "NONE"

// Entity is one rich-text entity descriptor from the original message.
type Entity struct {
	Type   string `json:"type"`
	URL    string `json:"url,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Length int    `json:"length,omitempty"`
}

// FileVariant is one downloadable representation of the message payload.
// Photos carry several sizes; other kinds carry exactly one variant.
type FileVariant struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	IsVideo      bool   `json:"is_video,omitempty"`
}

// State is the persisted record for one message.
//
// Invariant: FireAt > 0 exactly when ScheduledAction != NONE. Both fields
// change only through SetSchedule and ClearSchedule.
type State struct {
	ID         string     `json:"-"`
	Collection Collection `json:"-"`

	ContentKind ContentKind `json:"content_kind"`
	ChatID      int64       `json:"chat_id"`
	MessageID   int         `json:"message_id"`
	UserID      int64       `json:"user_id,omitempty"`
	Username    string      `json:"username,omitempty"`
	ChatTitle   string      `json:"chat_title,omitempty"`
	Text        string      `json:"text,omitempty"`
	Entities    []Entity    `json:"entities,omitempty"`

	MediaGroupID   string        `json:"media_group_id,omitempty"`
	StickerSetName string        `json:"sticker_set_name,omitempty"`
	Files          []FileVariant `json:"files,omitempty"`
	FileSize       int64         `json:"file_size,omitempty"`

	ReceivedAt time.Time `json:"received_at"`

	ScheduledAction string    `json:"scheduled_action"`
	FireAt          int64     `json:"fire_at"`
	Menu            MenuStack `json:"menu,omitempty"`
	ReplyMessageID  int       `json:"reply_message_id,omitempty"`
}

// SetSchedule arms the automatic action. A NONE code delegates to ClearSchedule.
func (s *State) SetSchedule(code string, fireAt time.Time) {
	if code == ScheduledNone || code == "" {
		s.ClearSchedule()
		return
	}
	s.ScheduledAction = code
	s.FireAt = fireAt.Unix()
}

// ClearSchedule disarms the automatic action.
func (s *State) ClearSchedule() {
	s.ScheduledAction = ScheduledNone
	s.FireAt = 0
}

// Scheduled reports whether an automatic action is armed.
func (s *State) Scheduled() bool {
	return s.ScheduledAction != ScheduledNone && s.ScheduledAction != ""
}

// Due reports whether the armed action should fire at now.
func (s *State) Due(now time.Time) bool {
	return s.FireAt > 0 && s.FireAt <= now.Unix()
}

// Links harvests link URLs from the stored entities for matcher parsing.
func (s *State) Links() []string {
	if len(s.Entities) == 0 {
		return nil
	}
	links := make([]string, 0, len(s.Entities))
	for _, entity := range s.Entities {
		if entity.Type == "text_link" && entity.URL != "" {
			links = append(links, entity.URL)
		}
	}
	if len(links) == 0 {
		return nil
	}
	return links
}

// Deleted reports whether the record left both collections.
func (s *State) Deleted() bool {
	return s.Collection == CollectionNone
}
