package reply

import (
	"context"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	jsoniter "github.com/json-iterator/go"

	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

// errorStatus сопоставляет вид ошибки failure со статусом ответа.
// Пустой код ошибки заменяется на fallback.
type errorStatus struct {
	is       func(error) bool
	status   int
	fallback failure.ErrorCode
}

//nolint:gochecknoglobals
var errorStatuses = []errorStatus{
	{is: failure.IsInvalidArgumentError, status: http.StatusBadRequest, fallback: errcodes.ValidationError},
	{is: failure.IsNotFoundError, status: http.StatusNotFound, fallback: errcodes.NotFound},
	{is: failure.IsUnauthorizedError, status: http.StatusUnauthorized, fallback: errcodes.Unauthorized},
	{is: failure.IsForbiddenError, status: http.StatusForbidden, fallback: errcodes.Forbidden},
	{is: failure.IsConflictError, status: http.StatusConflict, fallback: errcodes.Conflict},
	{is: failure.IsUnprocessableEntityError, status: http.StatusUnprocessableEntity, fallback: errcodes.ValidationError},
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

// Error отвечает ошибкой failure. Статус выбирается по её виду,
// всё неизвестное считается внутренней ошибкой.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, failure.Code(err)
	if code == "" {
		code = errcodes.InternalServerError
	}

	for _, s := range errorStatuses {
		if !s.is(err) {
			continue
		}

		status = s.status
		if failure.Code(err) == "" {
			code = s.fallback
		}
		break
	}

	if status >= http.StatusInternalServerError {
		logger(ctx).Error("request failed", logx.Error(err))
	} else {
		logger(ctx).Warn("request rejected", logx.Error(err))
	}

	JSON(ctx, w, status, errorResponse{
		Code:      code.String(),
		Message:   failure.Description(err),
		SupportID: supportID(ctx),
	})
}

// Status отвечает ошибкой с явно выбранным статусом и кодом.
func Status(ctx context.Context, w http.ResponseWriter, statusCode int, code failure.ErrorCode, message string) {
	if statusCode >= http.StatusInternalServerError {
		logger(ctx).Error("request failed", "code", code.String(), "message", message)
	} else {
		logger(ctx).Warn("request rejected", "code", code.String(), "message", message)
	}

	JSON(ctx, w, statusCode, errorResponse{
		Code:      code.String(),
		Message:   message,
		SupportID: supportID(ctx),
	})
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
