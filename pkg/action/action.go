// Package action defines message actions and the immutable catalog resolving
// them by code.
package action

import (
	"sort"
	"time"
)

// Codes of the built-in actions. Codes are the map keys used everywhere:
// menu entries, callback payloads, scheduled actions.
const (
	CodeNone           = "NONE"
	CodeDeleteRequest  = "DEL"
	CodeKeep           = "KEEP"
	CodeDeleteFromChat = "DFC"
	CodeDeleteNow      = "DELN"
	CodeDelete1        = "DEL1"
	CodeDelete2        = "DEL2"
	CodeDelete3        = "DEL3"
	CodeDownload       = "DL"
	CodeDownloadAll    = "DLAL"
	CodeTaskStatus     = "TSK_ST"
	CodeTaskAbort      = "TSK_AB"
	CodeBack           = "BACK"
)

// CustomMinOrder is the order threshold above which actions render in their
// own keyboard rows, grouped by Order/100.
const CustomMinOrder = 100

// Definition describes one action: how it renders and which handler runs it.
type Definition struct {
	Code    string
	Caption string
	// Order is the sort priority. Definitions compare by Order only; ties keep
	// catalog registration order.
	Order   int
	Handler string
	// Timeout is a static handler argument (delayed deletes); per-invocation
	// menu entry data overrides it.
	Timeout time.Duration

	// Custom (plugin) action fields.
	Matcher  *Matcher
	TaskName string
	Instant  bool
}

// IsCustom reports whether the definition was contributed by a plugin or is
// part of the task-control action set.
func (d Definition) IsCustom() bool {
	return d.Matcher != nil || d.TaskName != "" ||
		d.Code == CodeTaskStatus || d.Code == CodeTaskAbort
}

// SortStable orders definitions by Order, keeping the incoming order for ties.
func SortStable(defs []Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].Order < defs[j].Order
	})
}
