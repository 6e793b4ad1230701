package entity

type Market struct {
	LocatedEntity
	Zip        string   `json:"zip"`
	Website    string   `json:"website"`
	Facebook   string   `json:"facebook"`
	OtherMedia string   `json:"other_media"`
	Goods      []string `json:"goods"`
}

// MarketSummary строка списка рынков вместе с оценками.
type MarketSummary struct {
	Market
	Aggregate
}

type MarketDetail struct {
	Market
	Aggregate
	Previous *int64 `json:"previous,omitempty"`
	Next     *int64 `json:"next,omitempty"`
}
