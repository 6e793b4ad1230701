package entity

import (
	"strconv"

	"geo_feedback/internal/domain/value"
)

// PostalZone строка справочника московских индексов.
type PostalZone struct {
	Code     value.PostalCode `json:"code"`
	County   string           `json:"county"`
	Area     string           `json:"area"`
	Street   string           `json:"street"`
	Location value.Point      `json:"location"`
}

// LocatedEntity приводит участок к общему виду для поиска по радиусу.
// Индекс состоит из цифр, поэтому служит и числовым ID.
func (z PostalZone) LocatedEntity() LocatedEntity {
	id, _ := strconv.ParseInt(z.Code.String(), 10, 64)

	return LocatedEntity{
		ID:       id,
		Name:     z.Street,
		Street:   z.Street,
		City:     z.Area,
		County:   z.County,
		State:    z.County,
		Location: z.Location,
	}
}

// Address адрес участка в виде «округ, район, улица».
func (z PostalZone) Address() string {
	return z.County + ", " + z.Area + ", " + z.Street
}
