package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"geo_feedback/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, allowedChats ...int64) {
	messages := bh.Group(th.AnyMessage())
	messages.Use(middleware.Logging, middleware.AllowedChats(allowedChats...))

	messages.HandleMessage(h.OnStart, th.CommandEqual("start"))
	messages.HandleMessage(h.OnZip, th.CommandEqual("zip"))
	messages.HandleMessage(h.OnArea, th.CommandEqual("area"))
	messages.HandleMessage(h.OnDistance, th.CommandEqual("distance"))

	callbacks := bh.Group(th.AnyCallbackQuery())
	callbacks.Use(middleware.Logging, middleware.AllowedChats(allowedChats...))

	callbacks.HandleCallbackQuery(h.OnNearbyCallback, th.CallbackDataPrefix(nearbyCallbackPrefix))
}
