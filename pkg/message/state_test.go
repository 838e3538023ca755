package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleInvariant(t *testing.T) {
	now := time.Now()
	st := &State{}

	st.SetSchedule("DELN", now.Add(time.Minute))
	assert.True(t, st.Scheduled())
	assert.Greater(t, st.FireAt, int64(0))

	st.ClearSchedule()
	assert.False(t, st.Scheduled())
	assert.Equal(t, int64(0), st.FireAt)

	// setting the sentinel behaves like clearing
	st.SetSchedule(ScheduledNone, now.Add(time.Minute))
	assert.False(t, st.Scheduled())
	assert.Equal(t, int64(0), st.FireAt)
}

func TestDue(t *testing.T) {
	now := time.Now()
	st := &State{}
	st.SetSchedule("DELN", now.Add(-time.Second))

	assert.True(t, st.Due(now))
	assert.False(t, st.Due(now.Add(-time.Hour)))

	st.ClearSchedule()
	assert.False(t, st.Due(now))
}

func TestLinksHarvestsTextLinkEntities(t *testing.T) {
	st := &State{Entities: []Entity{
		{Type: "text_link", URL: "https://example.org/a"},
		{Type: "bold"},
		{Type: "text_link", URL: "https://example.org/b"},
	}}

	assert.Equal(t, []string{"https://example.org/a", "https://example.org/b"}, st.Links())
	assert.Nil(t, (&State{}).Links())
}

func TestDeleted(t *testing.T) {
	st := &State{Collection: CollectionNew}
	assert.False(t, st.Deleted())

	st.Collection = CollectionNone
	assert.True(t, st.Deleted())
}
