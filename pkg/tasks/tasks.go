// Package tasks submits plugin work to the shared job queue and tracks it.
// Workers run in a separate process; this side only inserts, polls and
// cancels.
package tasks

import (
	"context"
	"errors"
)

// ErrTaskNotFound marks a status or cancel call for a job id the queue does
// not know.
var ErrTaskNotFound = errors.New("task not found")

// Status is the coarse lifecycle phase of a submitted task.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Terminal reports whether the task will not change state anymore.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Runner is the task queue contract the action handlers use.
type Runner interface {
	// Submit enqueues one task invocation and returns its queue id.
	Submit(ctx context.Context, task string, payload map[string]any) (string, error)
	Status(ctx context.Context, id string) (Status, error)
	Cancel(ctx context.Context, id string) error
}
