package strategy

import (
	"context"
	"errors"
	"fmt"

	"savbot/pkg/action"
	"savbot/pkg/chat"
	"savbot/pkg/message"
	"savbot/pkg/result"
	"savbot/pkg/tasks"
)

// keep promotes the record into the saved collection. The menu collapses to
// the single delete-from-chat action a saved message still supports.
func (d *Dispatcher) keep(ctx context.Context, st *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	res := d.repo.Promote(ctx, st)
	if !res.OK() {
		return update{popup: "Failed to save message"}, res
	}
	return update{
		clearStack:   true,
		add:          message.Menu{action.CodeDeleteFromChat: {}},
		scheduleSet:  true,
		scheduleCode: message.ScheduledNone,
		popup:        "Message saved",
	}, res
}

// deleteRequest opens the delete submenu and disarms any pending schedule so
// the owner's choice is not raced by the default action.
func (d *Dispatcher) deleteRequest(_ context.Context, _ *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	return update{
		replace: message.Menu{
			action.CodeDelete1:   {},
			action.CodeDelete2:   {},
			action.CodeDelete3:   {},
			action.CodeDeleteNow: {},
		},
		scheduleSet:  true,
		scheduleCode: message.ScheduledNone,
	}, result.OK()
}

// deleteAfterTime arms a delayed delete and retires the menu entirely.
func (d *Dispatcher) deleteAfterTime(_ context.Context, _ *message.State, def action.Definition, entry message.EntryData) (update, result.AppResult) {
	timeout := entry.Timeout
	if timeout == 0 {
		timeout = def.Timeout
	}
	return update{
		clearStack:    true,
		scheduleSet:   true,
		scheduleCode:  action.CodeDeleteNow,
		scheduleAfter: timeout,
		popup:         fmt.Sprintf("Deleting in %s", timeout),
	}, result.OK()
}

// deleteNow removes the record and its chat messages. Storage goes first so a
// replay can never resurrect the record; chat deletes are best effort since
// Telegram refuses deletes on old messages.
func (d *Dispatcher) deleteNow(ctx context.Context, st *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	var res result.AppResult

	siblings := d.groupSiblings(ctx, st)
	for _, rec := range siblings {
		if err := d.repo.Delete(ctx, rec); err != nil {
			if !errors.Is(err, message.ErrDeleted) {
				res.MergeErr(fmt.Errorf("delete group record %s: %w", rec.ID, err))
			}
			continue
		}
		d.deleteChatMessages(ctx, rec)
	}

	if err := d.repo.Delete(ctx, st); err != nil {
		res.MergeErr(err)
		return update{popup: "Failed to delete"}, res
	}
	d.deleteChatMessages(ctx, st)
	return update{terminal: true, popup: "Deleted"}, res
}

// groupSiblings returns the other new-collection records of the message's
// media group. Only downloadable kinds cascade; a text message can not be
// part of an album.
func (d *Dispatcher) groupSiblings(ctx context.Context, st *message.State) []*message.State {
	if !specFor(st.ContentKind).downloadable || st.MediaGroupID == "" {
		return nil
	}
	group, err := d.repo.FindByGroupKey(ctx, st)
	if err != nil {
		d.log.Warn("Failed to resolve media group", "record_id", st.ID, "error", err)
		return nil
	}
	siblings := group[:0]
	for _, rec := range group {
		if rec.ID != st.ID {
			siblings = append(siblings, rec)
		}
	}
	return siblings
}

func (d *Dispatcher) deleteChatMessages(ctx context.Context, st *message.State) {
	if err := d.chat.DeleteMessage(ctx, st.ChatID, st.MessageID); err != nil {
		d.log.Warn("Failed to delete chat message", "record_id", st.ID, "error", err)
	}
	if st.ReplyMessageID != 0 {
		if err := d.chat.DeleteMessage(ctx, st.ChatID, st.ReplyMessageID); err != nil {
			d.log.Warn("Failed to delete menu reply", "record_id", st.ID, "error", err)
		}
	}
}

// deleteFromChat removes the menu reply and then the original message from
// the chat while keeping the stored record.
func (d *Dispatcher) deleteFromChat(ctx context.Context, st *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	if st.ReplyMessageID != 0 {
		if err := d.chat.DeleteMessage(ctx, st.ChatID, st.ReplyMessageID); err != nil {
			d.log.Warn("Failed to delete menu reply", "record_id", st.ID, "error", err)
		}
		st.ReplyMessageID = 0
	}
	if err := d.chat.DeleteMessage(ctx, st.ChatID, st.MessageID); err != nil {
		return update{popup: "Failed to delete from chat"}, result.Fail(fmt.Errorf("delete from chat: %w", err))
	}
	return update{
		clearStack: true,
		popup:      "Deleted from chat",
	}, result.OK()
}

// download saves the best file variant and retires the download buttons.
func (d *Dispatcher) download(ctx context.Context, st *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	variant, ok := bestVariant(st)
	if !ok {
		return update{popup: "Nothing to download"}, result.OK()
	}
	if err := d.chat.SaveFile(ctx, variant.FileID, fileName(st, variant)); err != nil {
		if errors.Is(err, chat.ErrFileTooLarge) {
			return update{popup: "File is too large to download"}, result.OK()
		}
		return update{popup: "Download failed"}, result.Fail(err)
	}
	return update{
		remove: []string{action.CodeDownload, action.CodeDownloadAll},
		popup:  "Downloaded",
	}, result.OK()
}

// downloadAll fans out over the media group, or over the whole sticker set
// for stickers. Partial failures keep the buttons so the owner can retry.
func (d *Dispatcher) downloadAll(ctx context.Context, st *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	var (
		res   result.AppResult
		saved int
	)

	switch {
	case st.ContentKind == message.KindSticker && st.StickerSetName != "":
		variants, err := d.chat.StickerSet(ctx, st.StickerSetName)
		if err != nil {
			return update{popup: "Failed to resolve sticker set"}, result.Fail(err)
		}
		for _, variant := range variants {
			if err := d.saveVariant(ctx, st, variant); err != nil {
				res.MergeErr(err)
				continue
			}
			saved++
		}
	case st.MediaGroupID != "":
		group, err := d.repo.FindByGroupKey(ctx, st)
		if err != nil {
			return update{popup: "Failed to resolve media group"}, result.Fail(err)
		}
		for _, rec := range group {
			variant, ok := bestVariant(rec)
			if !ok {
				continue
			}
			if err := d.saveVariant(ctx, rec, variant); err != nil {
				res.MergeErr(err)
				continue
			}
			saved++
		}
	default:
		return d.download(ctx, st, action.Definition{}, message.EntryData{})
	}

	if !res.OK() {
		return update{popup: fmt.Sprintf("Downloaded %d, some failed", saved)}, res
	}
	return update{
		remove: []string{action.CodeDownload, action.CodeDownloadAll},
		popup:  fmt.Sprintf("Downloaded %d files", saved),
	}, res
}

func (d *Dispatcher) saveVariant(ctx context.Context, st *message.State, variant message.FileVariant) error {
	err := d.chat.SaveFile(ctx, variant.FileID, fileName(st, variant))
	if errors.Is(err, chat.ErrFileTooLarge) {
		d.log.Warn("Skipping oversized file", "record_id", st.ID, "file_id", variant.FileID)
		return nil
	}
	return err
}

// menuBack pops one menu level and disarms any schedule the abandoned level
// set up.
func (d *Dispatcher) menuBack(_ context.Context, _ *message.State, _ action.Definition, _ message.EntryData) (update, result.AppResult) {
	return update{
		replace:      message.Menu{},
		scheduleSet:  true,
		scheduleCode: message.ScheduledNone,
	}, result.OK()
}

// customTask submits the plugin task on the first tap and polls it on every
// following tap. A running task answers with its status only; a failed task
// opens the task-control submenu.
func (d *Dispatcher) customTask(ctx context.Context, st *message.State, def action.Definition, entry message.EntryData) (update, result.AppResult) {
	if d.runner == nil {
		return update{popup: "Task queue is not available"}, result.OK()
	}

	if entry.TaskID == "" {
		payload := map[string]any{
			"record_id":  st.ID,
			"chat_id":    st.ChatID,
			"message_id": st.MessageID,
			"text":       st.Text,
			"matches":    entry.Payload,
		}
		taskID, err := d.runner.Submit(ctx, def.TaskName, payload)
		if err != nil {
			return update{popup: "Failed to start task"}, result.Fail(err)
		}
		return update{
			add: message.Menu{def.Code: {
				TaskID:        taskID,
				CaptionSuffix: " [in progress]",
				Payload:       entry.Payload,
			}},
			forceRender: true,
			popup:       "Started",
		}, result.OK()
	}

	status, err := d.runner.Status(ctx, entry.TaskID)
	if err != nil {
		return update{popup: "Failed to check task"}, result.Fail(err)
	}
	switch status {
	case tasks.StatusSuccess:
		return update{remove: []string{def.Code}, popup: "Done"}, result.OK()
	case tasks.StatusFailure:
		return update{
			replace: message.Menu{
				action.CodeTaskStatus: {TaskID: entry.TaskID},
				action.CodeTaskAbort:  {TaskID: entry.TaskID},
			},
			popup: "Task failed",
		}, result.OK()
	default:
		return update{popup: fmt.Sprintf("Task is %s", status)}, result.OK()
	}
}

func (d *Dispatcher) taskStatus(ctx context.Context, _ *message.State, _ action.Definition, entry message.EntryData) (update, result.AppResult) {
	if d.runner == nil || entry.TaskID == "" {
		return update{popup: "No task to check"}, result.OK()
	}
	status, err := d.runner.Status(ctx, entry.TaskID)
	if err != nil {
		return update{popup: "Failed to check task"}, result.Fail(err)
	}
	return update{popup: fmt.Sprintf("Task is %s", status)}, result.OK()
}

// taskAbort cancels best effort: the control submenu retires even when the
// queue refuses the cancel, since a finished job can not be cancelled anyway.
func (d *Dispatcher) taskAbort(ctx context.Context, st *message.State, _ action.Definition, entry message.EntryData) (update, result.AppResult) {
	if d.runner == nil || entry.TaskID == "" {
		return update{popup: "No task to stop"}, result.OK()
	}
	if err := d.runner.Cancel(ctx, entry.TaskID); err != nil {
		d.log.Warn("Failed to cancel task", "record_id", st.ID, "task_id", entry.TaskID, "error", err)
	}
	return update{replace: message.Menu{}, popup: "Task stopped"}, result.OK()
}
