package handler

import (
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"geo_feedback/pkg/logx"
)

// OnNearbyCallback отвечает на кнопку «Рядом» под адресом. Формат данных: "nearby:<индекс>".
func (h *Handler) OnNearbyCallback(ctx *th.Context, query telego.CallbackQuery) error {
	code := strings.TrimPrefix(query.Data, nearbyCallbackPrefix)

	// без ответа на коллбэк у кнопки остаются часики
	defer func() {
		if err := ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID)); err != nil {
			logger(ctx).Warn("answer callback failed", logx.Error(err))
		}
	}()

	if query.Message == nil {
		return nil
	}

	chatID := query.Message.GetChat().ID

	return h.sendHTML(ctx, chatID, h.NearbyReply(withChat(ctx, chatID), code), nil)
}
