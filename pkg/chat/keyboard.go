package chat

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"savbot/pkg/action"
)

// callbackPrefix namespaces this bot's callback payloads so foreign inline
// keyboards never reach the dispatcher.
const callbackPrefix = "SVM"

// EncodeCallback packs an action code and a record id into callback data.
func EncodeCallback(code, recordID string) string {
	return callbackPrefix + ":" + code + ":" + recordID
}

// DecodeCallback unpacks callback data produced by EncodeCallback.
func DecodeCallback(data string) (code, recordID string, err error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != callbackPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("malformed callback data %q", data)
	}
	return parts[1], parts[2], nil
}

// BuildRows lays sorted buttons out into keyboard rows. Built-in actions
// share one row; plugin actions get one row per order group (Order/100), so
// a plugin can claim a row of related buttons.
func BuildRows(buttons []Button) [][]Button {
	var (
		rows     [][]Button
		row      []Button
		rowGroup = -1
	)
	for _, btn := range buttons {
		group := 0
		if btn.Order >= action.CustomMinOrder {
			group = btn.Order / 100
		}
		if group != rowGroup && len(row) > 0 {
			rows = append(rows, row)
			row = nil
		}
		rowGroup = group
		row = append(row, btn)
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// inlineKeyboard renders buttons into the telego reply markup.
func inlineKeyboard(recordID string, buttons []Button) *telego.InlineKeyboardMarkup {
	rows := BuildRows(buttons)
	keyboard := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			line = append(line, tu.InlineKeyboardButton(btn.Caption).
				WithCallbackData(EncodeCallback(btn.Code, recordID)))
		}
		keyboard = append(keyboard, line)
	}
	return tu.InlineKeyboard(keyboard...)
}
