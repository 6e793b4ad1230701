package handler

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"geo_feedback/internal/transport/bot/view"
	"geo_feedback/pkg/contextx"
)

const nearbyCallbackPrefix = "nearby:"

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage, nil)
}

func (h *Handler) OnZip(ctx *th.Context, msg telego.Message) error {
	args := commandArgs(msg.Text)

	text, found := h.ZipReply(withChat(ctx, msg.Chat.ID), args)
	if !found {
		return h.sendHTML(ctx, msg.Chat.ID, text, nil)
	}

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(view.NearbyButton).
				WithCallbackData(nearbyCallbackPrefix + strings.Join(args, "")),
		),
	)

	return h.sendHTML(ctx, msg.Chat.ID, text, keyboard)
}

func (h *Handler) OnArea(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.AreaReply(withChat(ctx, msg.Chat.ID), commandArgs(msg.Text)), nil)
}

func (h *Handler) OnDistance(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.DistanceReply(withChat(ctx, msg.Chat.ID), commandArgs(msg.Text)), nil)
}

// Вспомогательные методы

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string, markup telego.ReplyMarkup) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}

	_, err := ctx.Bot().SendMessage(ctx, params)
	return err
}

// commandArgs возвращает слова сообщения после команды.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}

func withChat(ctx context.Context, chatID int64) context.Context {
	return contextx.WithChatID(ctx, contextx.ChatID(chatID))
}
