// Package reconciler drives the time-based part of the message lifecycle:
// firing scheduled actions once they are due and purging records past the
// retention horizon.
package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"savbot/pkg/chat"
	"savbot/pkg/config"
	"savbot/pkg/message"
	"savbot/pkg/store"
	"savbot/pkg/strategy"
)

// Reconciler scans the store on two tickers and replays scheduled actions
// through the same dispatcher the button taps use.
type Reconciler struct {
	repo       *store.Repository
	dispatcher *strategy.Dispatcher
	chat       chat.Chat
	lifecycle  config.LifecycleConfig
	log        *slog.Logger
}

func New(repo *store.Repository, dispatcher *strategy.Dispatcher, ch chat.Chat, lifecycle config.LifecycleConfig, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		repo:       repo,
		dispatcher: dispatcher,
		chat:       ch,
		lifecycle:  lifecycle,
		log:        log.With("component", "reconciler"),
	}
}

// Run blocks until the context ends, alternating due-action and retention
// scans on their configured intervals.
func (r *Reconciler) Run(ctx context.Context) error {
	dueTicker := time.NewTicker(r.lifecycle.DueScanInterval())
	defer dueTicker.Stop()
	expiredTicker := time.NewTicker(r.lifecycle.ExpiredScanInterval())
	defer expiredTicker.Stop()

	r.log.Info("Reconciler started",
		"due_scan", r.lifecycle.DueScanInterval(),
		"expired_scan", r.lifecycle.ExpiredScanInterval(),
		"retention_ttl", r.lifecycle.RetentionTTL())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-dueTicker.C:
			r.RunDueActions(ctx, time.Now())
		case <-expiredTicker.C:
			r.PurgeExpired(ctx, time.Now())
		}
	}
}

// RunDueActions fires every armed action whose time has passed. The schedule
// is disarmed and persisted before the action runs, so a crash mid-action can
// skip one firing but never repeat it forever.
func (r *Reconciler) RunDueActions(ctx context.Context, now time.Time) {
	due, err := r.repo.FindDue(ctx, now)
	if err != nil {
		r.log.Error("Due scan failed", "error", err)
		return
	}
	for _, st := range due {
		code := st.ScheduledAction
		st.ClearSchedule()
		if err := r.repo.Save(ctx, st); err != nil {
			r.log.Error("Failed to disarm schedule", "record_id", st.ID, "error", err)
			continue
		}

		r.log.Info("Firing scheduled action", "record_id", st.ID, "code", code)
		if _, res := r.dispatcher.Perform(ctx, st, code); !res.OK() {
			r.log.Error("Scheduled action failed", "record_id", st.ID, "code", code, "error", res.Err())
		}
	}
}

// PurgeExpired drops every record past the retention horizon. The menu reply
// is removed best effort; the record itself always goes.
func (r *Reconciler) PurgeExpired(ctx context.Context, now time.Time) {
	expired, err := r.repo.FindExpired(ctx, now, r.lifecycle.RetentionTTL())
	if err != nil {
		r.log.Error("Retention scan failed", "error", err)
		return
	}
	for _, st := range expired {
		if st.ReplyMessageID != 0 {
			if err := r.chat.DeleteMessage(ctx, st.ChatID, st.ReplyMessageID); err != nil {
				r.log.Warn("Failed to delete menu reply of expired record", "record_id", st.ID, "error", err)
			}
		}
		collection := st.Collection
		if err := r.repo.Delete(ctx, st); err != nil && !errors.Is(err, message.ErrDeleted) {
			r.log.Error("Failed to purge expired record", "record_id", st.ID, "error", err)
			continue
		}
		r.log.Info("Purged expired record", "record_id", st.ID, "collection", collection)
	}
}
