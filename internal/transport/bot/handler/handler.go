package handler

import (
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// nearbyRadiusMiles радиус поиска по кнопке «Рядом».
const nearbyRadiusMiles = 1

type PostalService interface {
	Lookup(code string) (postal.Address, error)
	ByArea(name string) []string
	Distance(from, to string) (float64, error)
	Nearby(code string, radiusMiles float64, key value.SortKey) ([]entity.NearbyEntity, error)
}

type Handler struct {
	postal PostalService
}

func New(postalService PostalService) *Handler {
	return &Handler{
		postal: postalService,
	}
}
