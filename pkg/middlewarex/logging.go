package middlewarex

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/zenazn/goji/web/mutil"

	"geo_feedback/pkg/logx"
)

// Logging пишет запрос и ответ одной записью. Пароли, никнеймы и токены
// вырезаются masker, каждое поле обрезается до maxLen байт (0 без ограничения).
//
// mutil.WrapWriter сохраняет у обёртки интерфейсы исходного writer:
// https://blog.merovius.de/posts/2017-07-30-the-trouble-with-optional-interfaces/
func Logging(masker logx.SensitiveDataMaskerInterface, maxLen int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			request, err := httputil.DumpRequest(r, true)
			if err != nil {
				logger(ctx).Error("httputil.DumpRequest", logx.Error(err))
			}

			lw := mutil.WrapWriter(w)

			var body bytes.Buffer
			lw.Tee(&body)

			next.ServeHTTP(lw, r)

			headers, err := responseHeaders(w)
			if err != nil {
				logger(ctx).Error("responseHeaders", logx.Error(err))
			}

			// без явного WriteHeader mutil сообщает статус 0
			status := cmp.Or(lw.Status(), http.StatusOK)

			log := logger(ctx).Info
			if status >= http.StatusInternalServerError {
				log = logger(ctx).Error
			}

			log(
				logx.FieldHTTPResponse,
				slog.Int(logx.FieldResponseStatus, status),
				slog.String(logx.FieldRequestBody, string(masker.Mask(truncate(request, maxLen)))),
				slog.String(logx.FieldResponseHeaders, string(masker.Mask(headers))),
				slog.String(logx.FieldResponseBody, string(masker.Mask(truncate(body.Bytes(), maxLen)))),
				slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
			)
		})
	}
}

func truncate(b []byte, maxLen int) []byte {
	if maxLen > 0 && len(b) > maxLen {
		return b[:maxLen]
	}
	return b
}

func responseHeaders(w http.ResponseWriter) ([]byte, error) {
	var buf bytes.Buffer

	if err := w.Header().WriteSubset(&buf, nil); err != nil {
		return nil, fmt.Errorf("header.WriteSubset: %w", err)
	}

	return buf.Bytes(), nil
}
