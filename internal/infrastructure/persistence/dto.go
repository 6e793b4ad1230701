package persistence

import (
	"database/sql"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
)

// marketSchema строка таблицы markets.
type marketSchema struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	Street     string  `db:"street"`
	City       string  `db:"city"`
	County     string  `db:"county"`
	State      string  `db:"state"`
	Zip        string  `db:"zip"`
	Website    string  `db:"website"`
	Facebook   string  `db:"facebook"`
	OtherMedia string  `db:"other_media"`
	Lat        float64 `db:"lat"`
	Lon        float64 `db:"lon"`
}

func fromMarket(m entity.Market) marketSchema {
	return marketSchema{
		ID:         m.ID,
		Name:       m.Name,
		Street:     m.Street,
		City:       m.City,
		County:     m.County,
		State:      m.State,
		Zip:        m.Zip,
		Website:    m.Website,
		Facebook:   m.Facebook,
		OtherMedia: m.OtherMedia,
		Lat:        m.Location.Lat,
		Lon:        m.Location.Lon,
	}
}

func (s marketSchema) toDomain(goods []string) entity.Market {
	if goods == nil {
		goods = []string{}
	}

	return entity.Market{
		LocatedEntity: entity.LocatedEntity{
			ID:       s.ID,
			Name:     s.Name,
			Street:   s.Street,
			City:     s.City,
			County:   s.County,
			State:    s.State,
			Location: value.Point{Lat: s.Lat, Lon: s.Lon},
		},
		Zip:        s.Zip,
		Website:    s.Website,
		Facebook:   s.Facebook,
		OtherMedia: s.OtherMedia,
		Goods:      goods,
	}
}

type goodSchema struct {
	MarketID int64  `db:"market_id"`
	Good     string `db:"good"`
}

type visitorSchema struct {
	ID       int64  `db:"id"`
	Nickname string `db:"nick_name"`
	Password string `db:"user_password"`
}

func (s visitorSchema) toDomain() entity.Visitor {
	return entity.Visitor{ID: s.ID, Nickname: s.Nickname, Password: s.Password}
}

// commentSchema строка comments. Отсутствующая оценка хранится как NULL.
type commentSchema struct {
	MarketID  int64         `db:"market_id"`
	VisitorID int64         `db:"visitor_id"`
	Comment   string        `db:"comment"`
	Rank      sql.NullInt64 `db:"rank"`
}

func (s commentSchema) toDomain() entity.FeedbackEntry {
	return entity.FeedbackEntry{
		EntityID:  s.MarketID,
		VisitorID: s.VisitorID,
		Comment:   s.Comment,
		Rank:      rankFromNull(s.Rank),
	}
}

type commentViewSchema struct {
	Nickname string        `db:"nick_name"`
	Comment  string        `db:"comment"`
	Rank     sql.NullInt64 `db:"rank"`
}

func (s commentViewSchema) toDomain() entity.CommentView {
	return entity.CommentView{
		Nickname: s.Nickname,
		Comment:  s.Comment,
		Rank:     rankFromNull(s.Rank),
	}
}

func rankToNull(r value.Rank) sql.NullInt64 {
	if !r.Present() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(r), Valid: true}
}

func rankFromNull(n sql.NullInt64) value.Rank {
	if !n.Valid {
		return value.NoRank
	}
	return value.Rank(n.Int64)
}
