package action

import "savbot/pkg/config"

// Handler names implemented by the content strategies. Kept here so built-in
// definitions and the strategy handler table agree on spelling.
const (
	HandlerKeep            = "keep"
	HandlerDeleteRequest   = "delete_request"
	HandlerDelete          = "delete"
	HandlerDeleteFromChat  = "delete_from_chat"
	HandlerDeleteAfterTime = "delete_after_time"
	HandlerDownload        = "download"
	HandlerDownloadAll     = "download_all"
	HandlerMenuBack        = "menu_back"
	HandlerCustomTask      = "custom_task"
	HandlerTaskStatus      = "task_status"
	HandlerTaskAbort       = "task_abort"
)

// Builtin returns the built-in action set. Delayed-delete timeouts come from
// lifecycle config.
func Builtin(lc config.LifecycleConfig) []Definition {
	return []Definition{
		{Code: CodeNone, Caption: "", Order: 0, Handler: ""},
		{Code: CodeDeleteRequest, Caption: "Delete", Order: 0, Handler: HandlerDeleteRequest},
		{Code: CodeKeep, Caption: "Keep", Order: 1, Handler: HandlerKeep},
		{Code: CodeDeleteFromChat, Caption: "Delete from chat", Order: 1, Handler: HandlerDeleteFromChat},
		{Code: CodeDeleteNow, Caption: "Delete now", Order: 1, Handler: HandlerDelete},
		{Code: CodeDelete1, Caption: "Del in 15m", Order: 2, Handler: HandlerDeleteAfterTime, Timeout: lc.DeleteDelay(0)},
		{Code: CodeDelete2, Caption: "Del in 12H", Order: 3, Handler: HandlerDeleteAfterTime, Timeout: lc.DeleteDelay(1)},
		{Code: CodeDelete3, Caption: "Del in 48H", Order: 4, Handler: HandlerDeleteAfterTime, Timeout: lc.DeleteDelay(2)},
		{Code: CodeDownload, Caption: "Download", Order: 100, Handler: HandlerDownload},
		{Code: CodeDownloadAll, Caption: "Download all", Order: 101, Handler: HandlerDownloadAll},
		{Code: CodeTaskStatus, Caption: "Show status", Order: 200, Handler: HandlerTaskStatus},
		{Code: CodeTaskAbort, Caption: "Stop", Order: 201, Handler: HandlerTaskAbort},
		{Code: CodeBack, Caption: "<- Back", Order: 5000, Handler: HandlerMenuBack},
	}
}
