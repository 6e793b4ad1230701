package postal

import (
	"context"
	"fmt"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/geomath"
	"geo_feedback/internal/domain/service/lookup"
	"geo_feedback/internal/domain/service/proximity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Recorder interface {
	PostalLookup(kind string)
	NearbySearch(source string)
}

// Loader отдаёт справочник индексов целиком.
type Loader interface {
	Load(ctx context.Context) ([]entity.PostalZone, error)
}

// Address результат поиска по индексу.
type Address struct {
	Zone     entity.PostalZone `json:"zone"`
	Address  string            `json:"address"`
	Location string            `json:"location"`
}

type Service struct {
	lookup   *lookup.Index
	near     *proximity.Index
	recorder Recorder
}

func NewService(zones []entity.PostalZone) *Service {
	located := make([]entity.LocatedEntity, 0, len(zones))
	for _, z := range zones {
		located = append(located, z.LocatedEntity())
	}

	return &Service{
		lookup:   lookup.NewIndex(zones),
		near:     proximity.NewIndex(located),
		recorder: nopRecorder{},
	}
}

// LoadService читает справочник через loader и строит индексы.
func LoadService(ctx context.Context, loader Loader) (*Service, error) {
	zones, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load postal zones: %w", err)
	}

	logger(ctx).Info("postal zones loaded", "count", len(zones))

	return NewService(zones), nil
}

func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

func (s *Service) Len() int {
	return s.lookup.Len()
}

func (s *Service) Lookup(code string) (Address, error) {
	s.recorder.PostalLookup("code")

	zone, err := s.lookup.ByCode(code)
	if err != nil {
		return Address{}, err
	}

	return Address{
		Zone:     zone,
		Address:  zone.Address(),
		Location: geomath.Format(zone.Location),
	}, nil
}

func (s *Service) Format(code string) (string, error) {
	zone, err := s.lookup.ByCode(code)
	if err != nil {
		return "", err
	}

	return geomath.Format(zone.Location), nil
}

func (s *Service) ByArea(name string) []string {
	s.recorder.PostalLookup("area")

	return s.lookup.ByArea(name)
}

// Distance расстояние между двумя индексами в километрах.
func (s *Service) Distance(from, to string) (float64, error) {
	s.recorder.PostalLookup("distance")

	z1, err := s.lookup.ByCode(from)
	if err != nil {
		return 0, err
	}

	z2, err := s.lookup.ByCode(to)
	if err != nil {
		return 0, err
	}

	return geomath.Distance(z1.Location, z2.Location), nil
}

func (s *Service) Nearby(code string, radiusMiles float64, key value.SortKey) ([]entity.NearbyEntity, error) {
	zone, err := s.lookup.ByCode(code)
	if err != nil {
		return nil, err
	}

	s.recorder.NearbySearch("postal")

	return s.near.Nearby(zone.LocatedEntity().ID, radiusMiles, nil, key)
}

type nopRecorder struct{}

func (nopRecorder) PostalLookup(string) {}
func (nopRecorder) NearbySearch(string) {}
