package entity

import "geo_feedback/internal/domain/value"

// LocatedEntity адресуемый объект с координатами: рынок или почтовый участок.
type LocatedEntity struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Street   string      `json:"street"`
	City     string      `json:"city"`
	County   string      `json:"county"`
	State    string      `json:"state"`
	Location value.Point `json:"location"`
}

// Aggregate средняя оценка и число голосов по объекту.
type Aggregate struct {
	MeanRank  int `json:"mean_rank"`
	VoteCount int `json:"vote_count"`
}

type NearbyEntity struct {
	Entity     LocatedEntity `json:"entity"`
	DistanceKm float64       `json:"distance_km"`
	Aggregate
}
