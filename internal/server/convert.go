package server

import (
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/geomath"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/rest"
)

func newRESTPoint(p value.Point) rest.Point {
	return rest.Point{Lat: p.Lat, Lon: p.Lon}
}

func newRESTMarket(m entity.Market, agg entity.Aggregate) rest.Market {
	goods := m.Goods
	if goods == nil {
		goods = []string{}
	}

	return rest.Market{
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
		Location:   newRESTPoint(m.Location),
		Goods:      goods,
		MeanRank:   agg.MeanRank,
		VoteCount:  agg.VoteCount,
	}
}

func newRESTMarkets(markets []entity.MarketSummary) []rest.Market {
	result := make([]rest.Market, 0, len(markets))
	for _, m := range markets {
		result = append(result, newRESTMarket(m.Market, m.Aggregate))
	}
	return result
}

func newRESTMarketDetail(d entity.MarketDetail) rest.MarketDetail {
	return rest.MarketDetail{
		Market:      newRESTMarket(d.Market, d.Aggregate),
		Coordinates: geomath.Format(d.Location),
		Previous:    d.Previous,
		Next:        d.Next,
	}
}

func newRESTNearby(items []entity.NearbyEntity) []rest.NearbyEntity {
	result := make([]rest.NearbyEntity, 0, len(items))
	for _, n := range items {
		result = append(result, rest.NearbyEntity{
			ID:         n.Entity.ID,
			Name:       n.Entity.Name,
			Street:     n.Entity.Street,
			City:       n.Entity.City,
			County:     n.Entity.County,
			State:      n.Entity.State,
			Location:   newRESTPoint(n.Entity.Location),
			DistanceKm: n.DistanceKm,
			MeanRank:   n.MeanRank,
			VoteCount:  n.VoteCount,
		})
	}
	return result
}

func newRESTRank(r value.Rank) *int {
	if !r.Present() {
		return nil
	}
	n := r.Int()
	return &n
}

// newDomainRank отсутствующая оценка допустима, оценка вне 1..5 даёт InvalidRank.
func newDomainRank(n *int) (value.Rank, error) {
	if n == nil {
		return value.NoRank, nil
	}
	return value.NewRank(*n)
}

func newRESTComment(c entity.CommentView) rest.Comment {
	return rest.Comment{
		Nickname: c.Nickname,
		Comment:  c.Comment,
		Rank:     newRESTRank(c.Rank),
	}
}

func newRESTComments(comments []entity.CommentView) []rest.Comment {
	result := make([]rest.Comment, 0, len(comments))
	for _, c := range comments {
		result = append(result, newRESTComment(c))
	}
	return result
}

func newRESTPostalAddress(a postal.Address) rest.PostalAddress {
	return rest.PostalAddress{
		Code:        a.Zone.Code.String(),
		County:      a.Zone.County,
		Area:        a.Zone.Area,
		Street:      a.Zone.Street,
		Address:     a.Address,
		Location:    newRESTPoint(a.Zone.Location),
		Coordinates: a.Location,
	}
}
