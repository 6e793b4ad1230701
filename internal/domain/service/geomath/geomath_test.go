package geomath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umahmood/haversine"

	"geo_feedback/internal/domain/service/geomath"
	"geo_feedback/internal/domain/value"
)

var (
	myasnitskaya = value.Point{Lat: 55.763861, Lon: 37.637167} // 101000
	ilyinka      = value.Point{Lat: 55.7552, Lon: 37.6226}     // 109012
)

func TestDistanceKnownValue(t *testing.T) {
	rq := require.New(t)

	rq.InDelta(1.33, geomath.Distance(myasnitskaya, ilyinka), 0.01)
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	rq := require.New(t)

	points := []value.Point{
		myasnitskaya,
		ilyinka,
		{Lat: 0, Lon: 0},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 40.7128, Lon: -74.006},
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 180},
	}

	for _, a := range points {
		rq.Zero(geomath.Distance(a, a))

		for _, b := range points {
			rq.Equal(geomath.Distance(a, b), geomath.Distance(b, a))
		}
	}
}

func TestDistanceAntipodal(t *testing.T) {
	rq := require.New(t)

	d := geomath.Distance(value.Point{Lat: 0, Lon: 0}, value.Point{Lat: 0, Lon: 180})
	rq.False(math.IsNaN(d))
	rq.InDelta(math.Pi*geomath.EarthRadiusKm, d, 1e-3)

	d = geomath.Distance(value.Point{Lat: 45, Lon: 30}, value.Point{Lat: -45, Lon: -150})
	rq.False(math.IsNaN(d))
	rq.InDelta(math.Pi*geomath.EarthRadiusKm, d, 1e-3)
}

// umahmood/haversine считает с радиусом 6371 км, поэтому сравниваем с поправкой на радиус.
func TestDistanceMatchesReferenceLibrary(t *testing.T) {
	rq := require.New(t)

	pairs := [][2]value.Point{
		{myasnitskaya, ilyinka},
		{{Lat: 40.7128, Lon: -74.006}, {Lat: 34.0522, Lon: -118.2437}},
		{{Lat: 51.5074, Lon: -0.1278}, {Lat: 48.8566, Lon: 2.3522}},
	}

	for _, p := range pairs {
		_, km := haversine.Distance(
			haversine.Coord{Lat: p[0].Lat, Lon: p[0].Lon},
			haversine.Coord{Lat: p[1].Lat, Lon: p[1].Lon},
		)

		expected := km * geomath.EarthRadiusKm / 6371
		rq.InEpsilon(expected, geomath.Distance(p[0], p[1]), 1e-6)
	}
}

func TestMilesToKm(t *testing.T) {
	require.InDelta(t, 16.0934, geomath.MilesToKm(10), 1e-9)
}

func TestCardinal(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		point  value.Point
		ns, ew string
	}{
		{name: "Origin", point: value.Point{Lat: 0, Lon: 0}, ns: "N", ew: "E"},
		{name: "South west", point: value.Point{Lat: -1, Lon: -1}, ns: "S", ew: "W"},
		{name: "Moscow", point: myasnitskaya, ns: "N", ew: "E"},
		{name: "New York", point: value.Point{Lat: 40.7, Lon: -74}, ns: "N", ew: "W"},
		{name: "Sydney", point: value.Point{Lat: -33.8, Lon: 151.2}, ns: "S", ew: "E"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			ns, ew := geomath.Cardinal(tc.point)
			rq.Equal(tc.ns, ns)
			rq.Equal(tc.ew, ew)
		})
	}
}

func TestToDMS(t *testing.T) {
	rq := require.New(t)

	dms := geomath.ToDMS(55.763861)
	rq.Equal(55, dms.Degrees)
	rq.Equal(45, dms.Minutes)
	rq.InDelta(49.90, dms.Seconds, 0.005)

	dms = geomath.ToDMS(-37.5)
	rq.Equal(geomath.DMS{Degrees: 37, Minutes: 30, Seconds: 0}, dms)

	// 10°59'59.999" при двух знаках превратилось бы в 60.00
	dms = geomath.ToDMS(10 + 59.0/60 + 59.999/3600)
	rq.Equal(11, dms.Degrees)
	rq.Equal(0, dms.Minutes)
	rq.Equal("011°0'0.00\"", dms.String())
}

func TestToDMSNeverRendersSixty(t *testing.T) {
	rq := require.New(t)

	for i := 0; i <= 100000; i++ {
		deg := float64(i) * 179.99 / 100000
		dms := geomath.ToDMS(deg)

		rq.Less(dms.Minutes, 60)
		rq.Less(math.Round(dms.Seconds*100), 6000.0)

		back := float64(dms.Degrees) + float64(dms.Minutes)/60 + dms.Seconds/3600
		rq.InDelta(deg, back, 0.005/3600+1e-9)
	}
}

func TestFormat(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		point  value.Point
		output string
	}{
		{
			name:   "Moscow sample",
			point:  value.Point{Lat: 55 + 45.0/60 + 49.9/3600, Lon: 37 + 38.0/60 + 13.8/3600},
			output: `(055°45'49.90"N,037°38'13.80"E)`,
		},
		{
			name:   "Origin",
			point:  value.Point{Lat: 0, Lon: 0},
			output: `(000°0'0.00"N,000°0'0.00"E)`,
		},
		{
			name:   "South west",
			point:  value.Point{Lat: -12.5, Lon: -122.25},
			output: `(012°30'0.00"S,122°15'0.00"W)`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.output, geomath.Format(tc.point))
		})
	}
}
