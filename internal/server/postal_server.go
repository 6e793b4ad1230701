package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/lookup"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/httpx/reply"
	"geo_feedback/pkg/rest"
)

type postalService interface {
	Lookup(code string) (postal.Address, error)
	ByArea(name string) []string
	Distance(from, to string) (float64, error)
	Nearby(code string, radiusMiles float64, key value.SortKey) ([]entity.NearbyEntity, error)
}

type PostalServer struct {
	postalService postalService
}

func NewPostalServer(postalService postalService) PostalServer {
	return PostalServer{
		postalService: postalService,
	}
}

func (s PostalServer) getV1PostalCode(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := s.postalService.Lookup(chi.URLParam(r, "code"))
	if err != nil {
		return fmt.Errorf("postalService.Lookup: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPostalAddress(address))

	return nil
}

func (s PostalServer) getV1PostalCodes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	area := lookup.DisplayArea(r.URL.Query().Get("area"))

	codes := s.postalService.ByArea(area)
	if codes == nil {
		codes = []string{}
	}

	reply.JSON(ctx, w, http.StatusOK, rest.PostalCodes{
		Area:  area,
		Codes: codes,
	})

	return nil
}

func (s PostalServer) getV1PostalCodeNearby(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	radius, sortKey, err := nearbyQuery(r)
	if err != nil {
		return err
	}

	nearby, err := s.postalService.Nearby(chi.URLParam(r, "code"), radius, sortKey)
	if err != nil {
		return fmt.Errorf("postalService.Nearby: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTNearby(nearby))

	return nil
}

func (s PostalServer) getV1Distance(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()
	from, to := query.Get("from"), query.Get("to")

	distance, err := s.postalService.Distance(from, to)
	if err != nil {
		return fmt.Errorf("postalService.Distance: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Distance{
		From:       from,
		To:         to,
		DistanceKm: math.Round(distance*100) / 100,
	})

	return nil
}
