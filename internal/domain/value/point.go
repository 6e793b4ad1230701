package value

import (
	"math"

	"geo_feedback/internal/domain"
	"geo_feedback/pkg/errcodes"
)

// Point координаты WGS84 в десятичных градусах.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate проверяет, что lat ∈ [-90,90] и lon ∈ [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return domain.Errorf(errcodes.InvalidCoordinate, "latitude %v out of range", p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return domain.Errorf(errcodes.InvalidCoordinate, "longitude %v out of range", p.Lon)
	}
	return nil
}
