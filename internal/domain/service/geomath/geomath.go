// Package geomath содержит расчёт расстояний по большому кругу и
// форматирование координат в градусы, минуты и секунды.
package geomath

import (
	"fmt"
	"math"

	"geo_feedback/internal/domain/value"
)

const (
	EarthRadiusKm = 6371.008
	KmPerMile     = 1.60934

	minutesInDegree = 60
	secondsInMinute = 60
)

// Distance возвращает расстояние между точками в километрах (формула гаверсинусов).
func Distance(p1, p2 value.Point) float64 {
	lat1 := radians(p1.Lat)
	lat2 := radians(p2.Lat)
	halfDLat := (lat1 - lat2) / 2
	halfDLon := (radians(p1.Lon) - radians(p2.Lon)) / 2

	a := math.Pow(math.Sin(halfDLat), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(halfDLon), 2)

	// Для антиподов a может чуть превысить 1 из-за округления
	a = math.Max(0, math.Min(1, a))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

func MilesToKm(miles float64) float64 {
	return miles * KmPerMile
}

// Cardinal возвращает стороны света; ноль относится к N и E.
func Cardinal(p value.Point) (ns, ew string) {
	ns, ew = "N", "E"
	if p.Lat < 0 {
		ns = "S"
	}
	if p.Lon < 0 {
		ew = "W"
	}
	return ns, ew
}

// DMS угол в градусах, минутах и секундах.
type DMS struct {
	Degrees int
	Minutes int
	Seconds float64
}

// ToDMS раскладывает модуль угла на градусы, минуты и секунды.
// Секунды, которые при выводе с двумя знаками дали бы 60.00, переносятся в минуты.
func ToDMS(degrees float64) DMS {
	degrees = math.Abs(degrees)

	d := math.Floor(degrees)
	minutes := (degrees - d) * minutesInDegree
	m := math.Floor(minutes)
	s := (minutes - m) * secondsInMinute

	if math.Round(s*100) >= secondsInMinute*100 {
		s = 0
		m++
	}
	if m >= minutesInDegree {
		m = 0
		d++
	}

	return DMS{Degrees: int(d), Minutes: int(m), Seconds: s}
}

func (d DMS) String() string {
	return fmt.Sprintf("%03d°%d'%.2f\"", d.Degrees, d.Minutes, d.Seconds)
}

// Format выводит точку в виде (055°45'49.90"N,037°38'13.80"E).
func Format(p value.Point) string {
	ns, ew := Cardinal(p)
	return "(" + ToDMS(p.Lat).String() + ns + "," + ToDMS(p.Lon).String() + ew + ")"
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
