package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

// taskArgs carries one task invocation. Kind is the plugin task name, so the
// worker process registers one worker per plugin task.
type taskArgs struct {
	task string

	Payload map[string]any `json:"payload"`
}

func (a taskArgs) Kind() string { return a.task }

// RiverRunner is an insert-only River client on the bot's Postgres pool.
// It never starts workers; the worker process owns execution.
type RiverRunner struct {
	client *river.Client[pgx.Tx]
	queue  string
}

// NewRiverRunner builds the insert-only client. An empty queue name falls
// back to River's default queue.
func NewRiverRunner(pool *pgxpool.Pool, queue string) (*RiverRunner, error) {
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, fmt.Errorf("create river client: %w", err)
	}
	if queue == "" {
		queue = river.QueueDefault
	}
	return &RiverRunner{client: client, queue: queue}, nil
}

func (r *RiverRunner) Submit(ctx context.Context, task string, payload map[string]any) (string, error) {
	res, err := r.client.Insert(ctx, taskArgs{task: task, Payload: payload}, &river.InsertOpts{Queue: r.queue})
	if err != nil {
		return "", fmt.Errorf("enqueue task %s: %w", task, err)
	}
	return strconv.FormatInt(res.Job.ID, 10), nil
}

func (r *RiverRunner) Status(ctx context.Context, id string) (Status, error) {
	jobID, err := parseJobID(id)
	if err != nil {
		return "", err
	}
	job, err := r.client.JobGet(ctx, jobID)
	if err != nil {
		if errors.Is(err, river.ErrNotFound) {
			return "", ErrTaskNotFound
		}
		return "", fmt.Errorf("get job %d: %w", jobID, err)
	}
	return statusFromJobState(job.State), nil
}

func (r *RiverRunner) Cancel(ctx context.Context, id string) error {
	jobID, err := parseJobID(id)
	if err != nil {
		return err
	}
	if _, err := r.client.JobCancel(ctx, jobID); err != nil {
		if errors.Is(err, river.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("cancel job %d: %w", jobID, err)
	}
	return nil
}

func parseJobID(id string) (int64, error) {
	jobID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed task id %q: %w", id, err)
	}
	return jobID, nil
}

func statusFromJobState(state rivertype.JobState) Status {
	switch state {
	case rivertype.JobStateRunning:
		return StatusRunning
	case rivertype.JobStateCompleted:
		return StatusSuccess
	case rivertype.JobStateCancelled, rivertype.JobStateDiscarded:
		return StatusFailure
	default:
		// available, scheduled, pending, retryable
		return StatusPending
	}
}
