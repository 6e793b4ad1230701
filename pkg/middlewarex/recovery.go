package middlewarex

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/httpx/reply"
	"geo_feedback/pkg/logx"
)

// Recovery превращает панику обработчика в ответ 500 с кодом InternalServerError.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger(ctx).Error(
					"panic in handler",
					slog.Any(logx.FieldError, rec),
					slog.String(logx.FieldStack, string(debug.Stack())),
				)

				reply.Status(ctx, w, http.StatusInternalServerError, errcodes.InternalServerError, "internal error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
