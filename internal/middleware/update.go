package middleware

import "github.com/go-telegram/bot/models"

// origin returns the user and chat an update comes from. Zero values mean
// the update carries no such information.
func origin(update *models.Update) (userID, chatID int64) {
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		if update.CallbackQuery.Message.Message != nil {
			chatID = update.CallbackQuery.Message.Message.Chat.ID
		}
	}
	return userID, chatID
}
