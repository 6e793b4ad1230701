package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	Unauthorized        failure.ErrorCode = "Unauthorized"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	Conflict            failure.ErrorCode = "Conflict"

	// Коды движка поиска и отзывов
	InvalidCoordinate failure.ErrorCode = "InvalidCoordinate" // Широта/долгота вне диапазона
	InvalidCodeFormat failure.ErrorCode = "InvalidCodeFormat" // Индекс не из 6 цифр
	EntityNotFound    failure.ErrorCode = "EntityNotFound"    // Нет рынка/индекса с таким ID
	AuthMismatch      failure.ErrorCode = "AuthMismatch"      // Пароль не совпал
	ValidationFailure failure.ErrorCode = "ValidationFailure" // Не хватает никнейма/оценки
	InvalidRadius     failure.ErrorCode = "InvalidRadius"
	InvalidSortKey    failure.ErrorCode = "InvalidSortKey"
	InvalidRank       failure.ErrorCode = "InvalidRank"
	InvalidMarketID   failure.ErrorCode = "InvalidMarketID"
)
