package entity

import "geo_feedback/internal/domain/value"

// FeedbackEntry отзыв посетителя об объекте. На пару (EntityID, VisitorID)
// допускается не больше одной записи.
type FeedbackEntry struct {
	EntityID  int64      `json:"entity_id"`
	VisitorID int64      `json:"visitor_id"`
	Comment   string     `json:"comment"`
	Rank      value.Rank `json:"rank"`
}

type Visitor struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Password string `json:"-"`
}

// CommentView отзыв в списке комментариев рынка.
type CommentView struct {
	Nickname string     `json:"nickname"`
	Comment  string     `json:"comment"`
	Rank     value.Rank `json:"rank"`
}

// CommentEvent уведомление о применённом изменении отзыва.
type CommentEvent struct {
	MarketID   int64
	MarketName string
	Nickname   string
	Outcome    string
	Comment    string
	Rank       value.Rank
}
