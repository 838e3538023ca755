// Package strategy dispatches actions on stored messages. Each content kind
// maps to a row in the kind table; each action handler is a named entry in an
// explicit handler table, resolved through the catalog at dispatch time.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"savbot/pkg/action"
	"savbot/pkg/chat"
	"savbot/pkg/config"
	"savbot/pkg/message"
	"savbot/pkg/result"
	"savbot/pkg/store"
	"savbot/pkg/tasks"
)

// Outcome is what a performed action reports back to the chat layer.
type Outcome struct {
	// Popup is shown as the callback acknowledgement text. Empty means a
	// silent acknowledgement.
	Popup string
}

// handlerFunc runs one action against a message state and returns the menu,
// schedule and render effects to apply.
type handlerFunc func(ctx context.Context, st *message.State, def action.Definition, entry message.EntryData) (update, result.AppResult)

// update collects the state mutations a handler requests. Perform applies
// them in a fixed order so every handler persists and renders the same way.
type update struct {
	add     message.Menu
	remove  []string
	replace message.Menu

	clearStack bool

	// scheduleSet arms (or, with a NONE code, disarms) the automatic action.
	scheduleSet   bool
	scheduleCode  string
	scheduleAfter time.Duration

	popup       string
	forceRender bool
	// terminal means the record left storage; nothing is saved or rendered.
	terminal bool
}

// Dispatcher owns the handler table and the collaborators handlers need.
type Dispatcher struct {
	repo      *store.Repository
	chat      chat.Chat
	runner    tasks.Runner
	catalog   *action.Catalog
	lifecycle config.LifecycleConfig
	log       *slog.Logger

	handlers map[string]handlerFunc
}

// New builds the dispatcher. Runner may be nil when the bot runs without
// Postgres; custom task actions then answer with an explanatory popup.
func New(repo *store.Repository, ch chat.Chat, runner tasks.Runner, catalog *action.Catalog, lifecycle config.LifecycleConfig, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		repo:      repo,
		chat:      ch,
		runner:    runner,
		catalog:   catalog,
		lifecycle: lifecycle,
		log:       log.With("component", "strategy"),
	}
	d.handlers = map[string]handlerFunc{
		action.HandlerKeep:            d.keep,
		action.HandlerDeleteRequest:   d.deleteRequest,
		action.HandlerDelete:          d.deleteNow,
		action.HandlerDeleteFromChat:  d.deleteFromChat,
		action.HandlerDeleteAfterTime: d.deleteAfterTime,
		action.HandlerDownload:        d.download,
		action.HandlerDownloadAll:     d.downloadAll,
		action.HandlerMenuBack:        d.menuBack,
		action.HandlerCustomTask:      d.customTask,
		action.HandlerTaskStatus:      d.taskStatus,
		action.HandlerTaskAbort:       d.taskAbort,
	}
	return d
}

// HandlerNames returns the handler table keys. The catalog validates action
// definitions against this set at registration.
func HandlerNames() map[string]struct{} {
	return map[string]struct{}{
		action.HandlerKeep:            {},
		action.HandlerDeleteRequest:   {},
		action.HandlerDelete:          {},
		action.HandlerDeleteFromChat:  {},
		action.HandlerDeleteAfterTime: {},
		action.HandlerDownload:        {},
		action.HandlerDownloadAll:     {},
		action.HandlerMenuBack:        {},
		action.HandlerCustomTask:      {},
		action.HandlerTaskStatus:      {},
		action.HandlerTaskAbort:       {},
	}
}

// Perform runs one action code against the message. It resolves the handler
// through the catalog, applies the requested menu and schedule mutations,
// persists the projection, and re-renders the reply keyboard when the visible
// menu changed.
func (d *Dispatcher) Perform(ctx context.Context, st *message.State, code string) (Outcome, result.AppResult) {
	def, ok := d.catalog.ByCode(code)
	if !ok {
		return Outcome{}, result.Fail(fmt.Errorf("%w: %q", action.ErrUnknownAction, code))
	}
	handler, ok := d.handlers[def.Handler]
	if !ok {
		return Outcome{}, result.Fail(fmt.Errorf("action %q has no handler %q", code, def.Handler))
	}

	entry := st.Menu.Current()[code]
	up, res := handler(ctx, st, def, entry)
	if !res.OK() {
		return Outcome{Popup: up.popup}, res
	}
	if up.terminal {
		return Outcome{Popup: up.popup}, res
	}

	changed := false
	if up.clearStack {
		changed = st.Menu.Clear()
	}
	if up.add != nil || up.remove != nil || up.replace != nil {
		changed = st.Menu.Mutate(up.add, up.remove, up.replace) || changed
	}
	if up.scheduleSet {
		st.SetSchedule(up.scheduleCode, time.Now().Add(up.scheduleAfter))
	}

	if err := d.repo.Save(ctx, st); err != nil {
		res.MergeErr(fmt.Errorf("save after %s: %w", code, err))
		return Outcome{Popup: up.popup}, res
	}
	if changed || up.forceRender {
		if err := d.renderMenu(ctx, st); err != nil {
			d.log.Warn("Failed to re-render menu", "record_id", st.ID, "error", err)
		}
	}
	return Outcome{Popup: up.popup}, res
}

// buttonsFor renders the current menu level as sorted buttons. Caption
// suffixes from entry data are appended, so an in-flight task shows its
// progress marker.
func (d *Dispatcher) buttonsFor(st *message.State) []chat.Button {
	current := st.Menu.Current()
	buttons := make([]chat.Button, 0, len(current))
	for code, entry := range current {
		def, ok := d.catalog.ByCode(code)
		if !ok {
			d.log.Warn("Dropping unknown action code from menu", "record_id", st.ID, "code", code)
			continue
		}
		buttons = append(buttons, chat.Button{
			Code:    code,
			Caption: def.Caption + entry.CaptionSuffix,
			Order:   def.Order,
		})
	}
	sort.SliceStable(buttons, func(i, j int) bool {
		if buttons[i].Order != buttons[j].Order {
			return buttons[i].Order < buttons[j].Order
		}
		return d.catalog.RegistrationIndex(buttons[i].Code) < d.catalog.RegistrationIndex(buttons[j].Code)
	})
	return buttons
}

// renderMenu pushes the current menu level onto the reply keyboard.
func (d *Dispatcher) renderMenu(ctx context.Context, st *message.State) error {
	if st.ReplyMessageID == 0 {
		return nil
	}
	return d.chat.EditMenu(ctx, st.ChatID, st.ReplyMessageID, st.ID, d.buttonsFor(st))
}
