package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	categoryCallbackPrefix = "set_cat_"
	noCategoryCallback     = "None"
	buttonsPerRow          = 3
)

// categoryKeyboard lays out category buttons three per row, with a trailing
// "No Category" option.
func categoryKeyboard(categories []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, category := range categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(category, categoryCallbackPrefix+category))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("No Category", categoryCallbackPrefix+noCategoryCallback),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// categoryFromCallback decodes a keyboard callback. The second return is
// false for callback data this bot never produced. "No Category" decodes to
// an empty name.
func categoryFromCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, categoryCallbackPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(data, categoryCallbackPrefix)
	if name == noCategoryCallback {
		return "", true
	}
	return name, true
}
