package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"savbot/pkg/message"
)

// MemoryStore is a map-backed Store. It backs test doubles and lets the bot
// run without Postgres (at the cost of losing state on restart, which also
// disables plugin tasks).
type MemoryStore struct {
	mu   sync.RWMutex
	cols map[message.Collection]map[string]*message.State
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cols: map[message.Collection]map[string]*message.State{
			message.CollectionNew:   {},
			message.CollectionSaved: {},
		},
	}
}

func (m *MemoryStore) collection(col message.Collection) (map[string]*message.State, error) {
	docs, ok := m.cols[col]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", col)
	}
	return docs, nil
}

func (m *MemoryStore) Insert(_ context.Context, col message.Collection, st *message.State) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, err := m.collection(col)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	clone := cloneState(st)
	clone.ID = id
	clone.Collection = col
	docs[id] = clone
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, col message.Collection, id string) (*message.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, err := m.collection(col)
	if err != nil {
		return nil, err
	}
	st, ok := docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneState(st)
	out.ID = id
	out.Collection = col
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, col message.Collection, id string, proj Projection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, err := m.collection(col)
	if err != nil {
		return err
	}
	st, ok := docs[id]
	if !ok {
		return ErrNotFound
	}
	st.ScheduledAction = proj.ScheduledAction
	st.FireAt = proj.FireAt
	st.Menu = cloneMenu(proj.Menu)
	st.Entities = append([]message.Entity(nil), proj.Entities...)
	st.ReplyMessageID = proj.ReplyMessageID
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, col message.Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, err := m.collection(col)
	if err != nil {
		return err
	}
	if _, ok := docs[id]; !ok {
		return ErrNotFound
	}
	delete(docs, id)
	return nil
}

func (m *MemoryStore) FindByGroup(_ context.Context, col message.Collection, groupID string) ([]*message.State, error) {
	if groupID == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, err := m.collection(col)
	if err != nil {
		return nil, err
	}
	var found []*message.State
	for id, st := range docs {
		if st.MediaGroupID == groupID {
			out := cloneState(st)
			out.ID = id
			out.Collection = col
			found = append(found, out)
		}
	}
	return found, nil
}

func (m *MemoryStore) CountInGroup(_ context.Context, col message.Collection, groupID string) (int, error) {
	if groupID == "" {
		return 0, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, err := m.collection(col)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, st := range docs {
		if st.MediaGroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) FindDue(_ context.Context, now time.Time) ([]*message.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []*message.State
	for id, st := range m.cols[message.CollectionNew] {
		if st.FireAt > 0 && st.FireAt <= now.Unix() {
			out := cloneState(st)
			out.ID = id
			out.Collection = message.CollectionNew
			due = append(due, out)
		}
	}
	return due, nil
}

func (m *MemoryStore) FindExpired(_ context.Context, olderThan time.Time) ([]*message.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var expired []*message.State
	for _, col := range []message.Collection{message.CollectionNew, message.CollectionSaved} {
		for id, st := range m.cols[col] {
			if !st.ReceivedAt.After(olderThan) {
				out := cloneState(st)
				out.ID = id
				out.Collection = col
				expired = append(expired, out)
			}
		}
	}
	return expired, nil
}

func cloneState(st *message.State) *message.State {
	raw, err := json.Marshal(st)
	if err != nil {
		clone := *st
		return &clone
	}
	var out message.State
	if err := json.Unmarshal(raw, &out); err != nil {
		clone := *st
		return &clone
	}
	return &out
}

func cloneMenu(stack message.MenuStack) message.MenuStack {
	if stack == nil {
		return nil
	}
	out := make(message.MenuStack, 0, len(stack))
	for _, level := range stack {
		levelCopy := make(message.Menu, len(level))
		for code, data := range level {
			levelCopy[code] = data
		}
		out = append(out, levelCopy)
	}
	return out
}
