// Package store persists message records in two logical collections (new and
// saved) and exposes the repository operations the strategies and the
// reconciler run against.
package store

import (
	"context"
	"errors"
	"time"

	"savbot/pkg/message"
)

// ErrNotFound marks a lookup for a record that exists in neither collection.
var ErrNotFound = errors.New("message record not found")

// Projection is the mutable slice of a message record. Saves write only this;
// the original payload fields are immutable after insertion.
type Projection struct {
	ScheduledAction string            `json:"scheduled_action"`
	FireAt          int64             `json:"fire_at"`
	Menu            message.MenuStack `json:"menu"`
	Entities        []message.Entity  `json:"entities"`
	ReplyMessageID  int               `json:"reply_message_id"`
}

// ProjectionOf captures the mutable fields of a state.
func ProjectionOf(st *message.State) Projection {
	return Projection{
		ScheduledAction: st.ScheduledAction,
		FireAt:          st.FireAt,
		Menu:            st.Menu,
		Entities:        st.Entities,
		ReplyMessageID:  st.ReplyMessageID,
	}
}

// Store is the document-store contract. Single-document operations are atomic;
// there is no cross-document transaction.
type Store interface {
	// Insert stores the state under a fresh id and returns it.
	Insert(ctx context.Context, col message.Collection, st *message.State) (string, error)
	Get(ctx context.Context, col message.Collection, id string) (*message.State, error)
	Update(ctx context.Context, col message.Collection, id string, proj Projection) error
	Delete(ctx context.Context, col message.Collection, id string) error

	// FindByGroup returns every record in col sharing the media group key.
	FindByGroup(ctx context.Context, col message.Collection, groupID string) ([]*message.State, error)
	// CountInGroup is the cheap existence check used for media-group dedup.
	CountInGroup(ctx context.Context, col message.Collection, groupID string) (int, error)

	// FindDue returns new-collection records whose fire time has passed.
	FindDue(ctx context.Context, now time.Time) ([]*message.State, error)
	// FindExpired returns records from both collections received before the cutoff.
	FindExpired(ctx context.Context, olderThan time.Time) ([]*message.State, error)
}
