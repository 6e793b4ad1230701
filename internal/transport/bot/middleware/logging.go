package middleware

import (
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Logging пишет одну запись на апдейт с его trace id и длительностью обработки.
func Logging(ctx *th.Context, update telego.Update) error {
	start := time.Now()
	chatID, _ := chatOf(update)

	err := ctx.Next(update)

	log := logger(ctx).With(
		logx.Stringer(logx.FieldTraceID, contextx.NewTraceID()),
		logx.FieldChatID, chatID,
		"update_id", update.UpdateID,
		"duration", time.Since(start),
	)
	if err != nil {
		log.Error("update handling failed", logx.Error(err))
		return err
	}

	log.Debug("update handled")
	return nil
}
