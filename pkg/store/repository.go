package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"savbot/pkg/message"
	"savbot/pkg/result"
)

// Repository exposes the message lifecycle operations on top of a Store.
type Repository struct {
	store Store
	log   *slog.Logger
}

// NewRepository wires a store. A nil logger falls back to slog.Default.
func NewRepository(store Store, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{store: store, log: log.With("component", "store.repository")}
}

// Insert stores a fresh record in the new collection and stamps its identity
// on the state.
func (r *Repository) Insert(ctx context.Context, st *message.State) error {
	id, err := r.store.Insert(ctx, message.CollectionNew, st)
	if err != nil {
		return fmt.Errorf("insert new message: %w", err)
	}
	st.ID = id
	st.Collection = message.CollectionNew
	return nil
}

// Load resolves a record by probing the new collection first, then saved.
func (r *Repository) Load(ctx context.Context, id string) (*message.State, error) {
	st, err := r.store.Get(ctx, message.CollectionNew, id)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.store.Get(ctx, message.CollectionSaved, id)
}

// Save persists the mutable projection of the state. Records that already
// left both collections are rejected.
func (r *Repository) Save(ctx context.Context, st *message.State) error {
	if st.Deleted() {
		return message.ErrDeleted
	}
	return r.store.Update(ctx, st.Collection, st.ID, ProjectionOf(st))
}

// Promote moves a record from new to saved under a fresh id.
//
// The insert happens first: if it fails, the new-collection copy is untouched
// and the promotion fails. If the insert succeeds but the source delete
// fails, the record now exists twice; that is reported as success with a
// duplication warning rather than rolled back, since a rollback could lose
// the only copy. The retention purge collects the stray eventually.
func (r *Repository) Promote(ctx context.Context, st *message.State) result.AppResult {
	if st.Deleted() {
		return result.Fail(message.ErrDeleted)
	}
	if st.Collection != message.CollectionNew {
		return result.Fail(fmt.Errorf("promote from %q: only new messages can be kept", st.Collection))
	}

	newID, err := r.store.Insert(ctx, message.CollectionSaved, st)
	if err != nil {
		return result.Fail(fmt.Errorf("insert into saved: %w", err))
	}

	oldID := st.ID
	st.ID = newID
	st.Collection = message.CollectionSaved

	if err := r.store.Delete(ctx, message.CollectionNew, oldID); err != nil {
		r.log.Warn("Promoted message left a duplicate in the new collection",
			"old_id", oldID, "new_id", newID, "error", err)
	}
	return result.OK()
}

// Delete removes the record from its current collection. Deleting an
// already-deleted record is a caller error.
func (r *Repository) Delete(ctx context.Context, st *message.State) error {
	if st.Deleted() {
		return message.ErrDeleted
	}
	if err := r.store.Delete(ctx, st.Collection, st.ID); err != nil {
		return fmt.Errorf("delete message record: %w", err)
	}
	st.Collection = message.CollectionNone
	return nil
}

// FindByGroupKey returns every new-collection record sharing the state's
// media group, the state itself included. Non-grouped messages yield nil.
func (r *Repository) FindByGroupKey(ctx context.Context, st *message.State) ([]*message.State, error) {
	if st.MediaGroupID == "" {
		return nil, nil
	}
	return r.store.FindByGroup(ctx, message.CollectionNew, st.MediaGroupID)
}

// HasGroupSiblings reports whether other records of the same media group were
// already stored. Called right after insertion, so "siblings" means a count
// above one.
func (r *Repository) HasGroupSiblings(ctx context.Context, st *message.State) (bool, error) {
	if st.MediaGroupID == "" {
		return false, nil
	}
	count, err := r.store.CountInGroup(ctx, message.CollectionNew, st.MediaGroupID)
	if err != nil {
		return false, err
	}
	return count > 1, nil
}

// FindDue returns new-collection records whose scheduled action should fire.
func (r *Repository) FindDue(ctx context.Context, now time.Time) ([]*message.State, error) {
	return r.store.FindDue(ctx, now)
}

// FindExpired returns records past the hard retention horizon.
func (r *Repository) FindExpired(ctx context.Context, now time.Time, hardTTL time.Duration) ([]*message.State, error) {
	return r.store.FindExpired(ctx, now.Add(-hardTTL))
}
