package telegram

import (
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/domain"
)

// ProposeButton is the reply keyboard label that starts a submission.
const ProposeButton = "📝 Propose post"

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// ControlsKeyboard renders controls one per row. Nil or empty controls yield
// an empty keyboard, which removes any existing one when used in an edit.
func ControlsKeyboard(controls []domain.Control) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(controls))
	for _, c := range controls {
		rows = append(rows, ButtonRow(InlineButton(c.Text, c.Data)))
	}
	return InlineKeyboard(rows...)
}

// MainMenu is the persistent reply keyboard shown after start and reset.
func MainMenu() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:       [][]models.KeyboardButton{{{Text: ProposeButton}}},
		ResizeKeyboard: true,
	}
}
