package middleware

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/samber/lo"
)

// AllowedChats пропускает обновления только из перечисленных чатов.
// Пустой список открывает бота для всех.
func AllowedChats(ids ...int64) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		if len(ids) == 0 {
			return ctx.Next(update)
		}

		chatID, ok := chatOf(update)
		if !ok || !lo.Contains(ids, chatID) {
			return nil
		}

		return ctx.Next(update)
	}
}

func chatOf(update telego.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.GetChat().ID, true
	default:
		return 0, false
	}
}
