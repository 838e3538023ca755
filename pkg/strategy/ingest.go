package strategy

import (
	"context"
	"fmt"
	"time"

	"savbot/pkg/action"
	"savbot/pkg/message"
	"savbot/pkg/result"
)

const menuPrompt = "Choose action for this message:"

// AddNewMessage stores an incoming message, arms its default action, and
// posts the action menu reply.
//
// Later members of a media group get no menu of their own; the first member's
// menu controls the whole album.
func (d *Dispatcher) AddNewMessage(ctx context.Context, st *message.State) result.AppResult {
	st.ClearSchedule()
	if err := d.repo.Insert(ctx, st); err != nil {
		return result.Fail(err)
	}

	spec := specFor(st.ContentKind)
	st.SetSchedule(d.defaultAction(st, spec), time.Now().Add(d.lifecycle.GracePeriod()))

	grouped, err := d.repo.HasGroupSiblings(ctx, st)
	if err != nil {
		d.log.Warn("Failed media group lookup, treating message as standalone", "record_id", st.ID, "error", err)
	}
	if grouped {
		// secondary album members share the first member's menu but still
		// carry their own default schedule
		if err := d.repo.Save(ctx, st); err != nil {
			return result.Fail(fmt.Errorf("save arrival state: %w", err))
		}
		d.log.Debug("Media group member joins the existing menu", "record_id", st.ID, "group", st.MediaGroupID)
		return result.OK()
	}

	menu := d.arrivalMenu(ctx, st, spec)
	st.Menu.Mutate(menu, nil, nil)

	replyID, err := d.chat.SendMenu(ctx, st.ChatID, st.MessageID, menuPrompt, st.ID, d.buttonsFor(st))
	if err != nil {
		d.log.Warn("Failed to post action menu", "record_id", st.ID, "error", err)
	} else {
		st.ReplyMessageID = replyID
	}

	if err := d.repo.Save(ctx, st); err != nil {
		return result.Fail(fmt.Errorf("save arrival state: %w", err))
	}
	return result.OK()
}

// arrivalMenu assembles the first menu level: the kind's built-in actions
// plus every matched plugin action. Instant plugin actions submit right away
// instead of waiting for a button tap.
func (d *Dispatcher) arrivalMenu(ctx context.Context, st *message.State, spec kindSpec) message.Menu {
	menu := make(message.Menu, len(spec.possible)+2)
	for _, code := range spec.possible {
		menu[code] = message.EntryData{}
	}
	if st.MediaGroupID != "" {
		// the album menu controls every member; per-file DOWNLOAD gives way
		// to DOWNLOAD_ALL
		menu[action.CodeDownloadAll] = message.EntryData{}
		delete(menu, action.CodeDownload)
	}
	if spec.downloadable && st.FileSize > d.lifecycle.MaxDownloadSize() {
		// oversize payloads can not be fetched through the Bot API
		delete(menu, action.CodeDownload)
		delete(menu, action.CodeDownloadAll)
	}

	links := st.Links()
	for _, def := range d.catalog.Custom() {
		payload := def.Matcher.Match(st.Text, links)
		if len(payload) == 0 {
			continue
		}
		if def.Instant {
			d.submitInstant(ctx, st, def, payload)
			continue
		}
		menu[def.Code] = message.EntryData{Payload: payload, Timeout: def.Timeout}
	}
	return menu
}

func (d *Dispatcher) submitInstant(ctx context.Context, st *message.State, def action.Definition, payload []string) {
	if d.runner == nil {
		d.log.Warn("Skipping instant task, task queue is not available", "task", def.TaskName)
		return
	}
	taskID, err := d.runner.Submit(ctx, def.TaskName, map[string]any{
		"record_id":  st.ID,
		"chat_id":    st.ChatID,
		"message_id": st.MessageID,
		"text":       st.Text,
		"matches":    payload,
	})
	if err != nil {
		d.log.Error("Failed to submit instant task", "task", def.TaskName, "error", err)
		return
	}
	d.log.Info("Submitted instant task", "task", def.TaskName, "task_id", taskID, "record_id", st.ID)
}

// defaultAction picks what fires when the owner ignores the message. A
// downloadable payload defaults to a download unless it exceeds the size
// cap, in which case it falls back to deletion.
func (d *Dispatcher) defaultAction(st *message.State, spec kindSpec) string {
	code := spec.defaultAction
	if code != action.CodeDownload {
		return code
	}
	if _, ok := bestVariant(st); !ok {
		return action.CodeDeleteNow
	}
	if st.FileSize > 0 && st.FileSize > d.lifecycle.MaxDownloadSize() {
		return action.CodeDeleteNow
	}
	return code
}
