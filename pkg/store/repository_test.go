package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savbot/pkg/message"
)

func newTestState(kind message.ContentKind) *message.State {
	return &message.State{
		ContentKind:     kind,
		ChatID:          100,
		MessageID:       7,
		Text:            "hello",
		ReceivedAt:      time.Now().UTC(),
		ScheduledAction: message.ScheduledNone,
	}
}

func TestInsertAndLoad(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	ctx := context.Background()

	st := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, st))
	require.NotEmpty(t, st.ID)
	assert.Equal(t, message.CollectionNew, st.Collection)

	loaded, err := repo.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.Text)
	assert.Equal(t, message.CollectionNew, loaded.Collection)
}

func TestLoadProbesSavedCollection(t *testing.T) {
	mem := NewMemoryStore()
	repo := NewRepository(mem, nil)
	ctx := context.Background()

	id, err := mem.Insert(ctx, message.CollectionSaved, newTestState(message.KindText))
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, message.CollectionSaved, loaded.Collection)

	_, err = repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePersistsOnlyProjection(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	ctx := context.Background()

	st := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, st))

	st.SetSchedule("DELN", time.Now().Add(time.Minute))
	st.Menu.Mutate(message.Menu{"KEEP": {}}, nil, nil)
	st.ReplyMessageID = 42
	st.Text = "mutated payload must not persist"
	require.NoError(t, repo.Save(ctx, st))

	loaded, err := repo.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "DELN", loaded.ScheduledAction)
	assert.Equal(t, 42, loaded.ReplyMessageID)
	assert.Contains(t, loaded.Menu.Current(), "KEEP")
	assert.Equal(t, "hello", loaded.Text)
}

func TestPromoteMovesRecordWithFreshID(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	ctx := context.Background()

	st := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, st))
	oldID := st.ID

	res := repo.Promote(ctx, st)
	require.True(t, res.OK())
	assert.Equal(t, message.CollectionSaved, st.Collection)
	assert.NotEqual(t, oldID, st.ID)

	// the old id no longer resolves
	_, err := repo.Load(ctx, oldID)
	assert.ErrorIs(t, err, ErrNotFound)

	loaded, err := repo.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, message.CollectionSaved, loaded.Collection)
}

type failingDeleteStore struct {
	Store
	failCol message.Collection
}

func (f *failingDeleteStore) Delete(ctx context.Context, col message.Collection, id string) error {
	if col == f.failCol {
		return errors.New("simulated delete failure")
	}
	return f.Store.Delete(ctx, col, id)
}

func TestPromoteSurvivesSourceDeleteFailure(t *testing.T) {
	mem := NewMemoryStore()
	repo := NewRepository(&failingDeleteStore{Store: mem, failCol: message.CollectionNew}, nil)
	ctx := context.Background()

	st := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, st))
	oldID := st.ID

	res := repo.Promote(ctx, st)
	require.True(t, res.OK(), "promotion reports success despite the cleanup failure")

	// the saved copy exists; the stray new copy is tolerated
	saved, err := repo.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, message.CollectionSaved, saved.Collection)

	stray, err := mem.Get(ctx, message.CollectionNew, oldID)
	require.NoError(t, err)
	assert.Equal(t, oldID, stray.ID)
}

type failingInsertStore struct {
	Store
	failCol message.Collection
}

func (f *failingInsertStore) Insert(ctx context.Context, col message.Collection, st *message.State) (string, error) {
	if col == f.failCol {
		return "", errors.New("simulated insert failure")
	}
	return f.Store.Insert(ctx, col, st)
}

func TestPromoteInsertFailureLeavesSourceUntouched(t *testing.T) {
	mem := NewMemoryStore()
	repo := NewRepository(&failingInsertStore{Store: mem, failCol: message.CollectionSaved}, nil)
	ctx := context.Background()

	st := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, st))

	res := repo.Promote(ctx, st)
	require.False(t, res.OK())
	assert.Equal(t, message.CollectionNew, st.Collection)

	loaded, err := repo.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, message.CollectionNew, loaded.Collection)
}

func TestDeleteIsTerminal(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	ctx := context.Background()

	st := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, st))

	require.NoError(t, repo.Delete(ctx, st))
	assert.True(t, st.Deleted())

	// a second delete is a caller error, never a silent success
	assert.ErrorIs(t, repo.Delete(ctx, st), message.ErrDeleted)
	assert.ErrorIs(t, repo.Save(ctx, st), message.ErrDeleted)
}

func TestGroupLookups(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	ctx := context.Background()

	first := newTestState(message.KindPhoto)
	first.MediaGroupID = "album-1"
	require.NoError(t, repo.Insert(ctx, first))

	siblings, err := repo.HasGroupSiblings(ctx, first)
	require.NoError(t, err)
	assert.False(t, siblings, "single member has no siblings")

	second := newTestState(message.KindPhoto)
	second.MediaGroupID = "album-1"
	require.NoError(t, repo.Insert(ctx, second))

	siblings, err = repo.HasGroupSiblings(ctx, second)
	require.NoError(t, err)
	assert.True(t, siblings)

	group, err := repo.FindByGroupKey(ctx, first)
	require.NoError(t, err)
	assert.Len(t, group, 2)

	solo := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, solo))
	group, err = repo.FindByGroupKey(ctx, solo)
	require.NoError(t, err)
	assert.Nil(t, group)
}

func TestFindDueAndExpired(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	ctx := context.Background()
	now := time.Now()

	due := newTestState(message.KindText)
	due.SetSchedule("DELN", now.Add(-time.Minute))
	require.NoError(t, repo.Insert(ctx, due))

	future := newTestState(message.KindText)
	future.SetSchedule("DELN", now.Add(time.Hour))
	require.NoError(t, repo.Insert(ctx, future))

	idle := newTestState(message.KindText)
	require.NoError(t, repo.Insert(ctx, idle))

	found, err := repo.FindDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)

	old := newTestState(message.KindText)
	old.ReceivedAt = now.Add(-48 * time.Hour)
	require.NoError(t, repo.Insert(ctx, old))
	res := repo.Promote(ctx, old)
	require.True(t, res.OK())

	expired, err := repo.FindExpired(ctx, now, 47*time.Hour)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, message.CollectionSaved, expired[0].Collection)
}
