package tasks

import (
	"encoding/json"
	"testing"

	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailure.Terminal())
}

func TestStatusFromJobState(t *testing.T) {
	cases := map[rivertype.JobState]Status{
		rivertype.JobStateAvailable: StatusPending,
		rivertype.JobStateScheduled: StatusPending,
		rivertype.JobStatePending:   StatusPending,
		rivertype.JobStateRetryable: StatusPending,
		rivertype.JobStateRunning:   StatusRunning,
		rivertype.JobStateCompleted: StatusSuccess,
		rivertype.JobStateCancelled: StatusFailure,
		rivertype.JobStateDiscarded: StatusFailure,
	}
	for state, want := range cases {
		assert.Equal(t, want, statusFromJobState(state), "state %s", state)
	}
}

func TestTaskArgsKindAndShape(t *testing.T) {
	args := taskArgs{task: "link_archiver", Payload: map[string]any{"links": []string{"https://example.com"}}}
	assert.Equal(t, "link_archiver", args.Kind())

	raw, err := json.Marshal(args)
	require.NoError(t, err)
	// the task name travels as the job kind, not inside the payload document
	assert.JSONEq(t, `{"payload":{"links":["https://example.com"]}}`, string(raw))
}

func TestParseJobID(t *testing.T) {
	id, err := parseJobID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseJobID("not-a-number")
	assert.Error(t, err)
}
