// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Market struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Street     string   `json:"street"`
	City       string   `json:"city"`
	County     string   `json:"county"`
	State      string   `json:"state"`
	Zip        string   `json:"zip"`
	Website    string   `json:"website,omitempty"`
	Facebook   string   `json:"facebook,omitempty"`
	OtherMedia string   `json:"otherMedia,omitempty"`
	Location   Point    `json:"location"`
	Goods      []string `json:"goods"`
	// MeanRank Средняя оценка, 0 если голосов нет
	MeanRank  int `json:"meanRank"`
	VoteCount int `json:"voteCount"`
}

type MarketDetail struct {
	Market
	// Coordinates Координаты в градусах, минутах и секундах
	Coordinates string `json:"coordinates"`
	Previous    *int64 `json:"previous"`
	Next        *int64 `json:"next"`
}

type NearbyEntity struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	County     string  `json:"county"`
	State      string  `json:"state"`
	Location   Point   `json:"location"`
	DistanceKm float64 `json:"distanceKm"`
	MeanRank   int     `json:"meanRank"`
	VoteCount  int     `json:"voteCount"`
}

type Comment struct {
	Nickname string `json:"nickname"`
	Comment  string `json:"comment"`
	// Rank Оценка 1..5, null если не указана
	Rank *int `json:"rank"`
}

type CommentRequest struct {
	Nickname string `json:"nickname" validate:"required,max=64"`
	Password string `json:"password" validate:"max=128"`
	Comment  string `json:"comment" validate:"max=4000"`
	Rank     *int   `json:"rank"`
}

type Credentials struct {
	Nickname string `json:"nickname" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// CommentOutcome Результат создания, изменения или удаления отзыва
type CommentOutcome struct {
	// Outcome created, updated, deleted или rejected
	Outcome string `json:"outcome"`
	// Reason Причина отказа: validation_failure, auth_mismatch, not_found
	Reason string `json:"reason,omitempty"`
}

type PostalAddress struct {
	Code        string `json:"code"`
	County      string `json:"county"`
	Area        string `json:"area"`
	Street      string `json:"street"`
	Address     string `json:"address"`
	Location    Point  `json:"location"`
	Coordinates string `json:"coordinates"`
}

type PostalCodes struct {
	Area  string   `json:"area"`
	Codes []string `json:"codes"`
}

type Distance struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	DistanceKm float64 `json:"distanceKm"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID Идентификатор запроса для обращения в поддержку
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
