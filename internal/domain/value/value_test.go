package value_test

import (
	"math"
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/errcodes"
)

func requireCode(rq *require.Assertions, err error, code failure.ErrorCode) {
	rq.Error(err)
	got, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(code, got)
}

func TestPointValidate(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name  string
		point value.Point
		valid bool
	}{
		{name: "Moscow", point: value.Point{Lat: 55.75, Lon: 37.61}, valid: true},
		{name: "Bounds", point: value.Point{Lat: -90, Lon: 180}, valid: true},
		{name: "Latitude too big", point: value.Point{Lat: 90.01, Lon: 0}},
		{name: "Longitude too small", point: value.Point{Lat: 0, Lon: -180.5}},
		{name: "NaN", point: value.Point{Lat: math.NaN(), Lon: 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			err := tc.point.Validate()
			if tc.valid {
				rq.NoError(err)
				return
			}
			requireCode(rq, err, errcodes.InvalidCoordinate)
		})
	}
}

func TestParseRank(t *testing.T) {
	rq := require.New(t)

	rank, err := value.ParseRank("")
	rq.NoError(err)
	rq.False(rank.Present())

	rank, err = value.ParseRank(" 4 ")
	rq.NoError(err)
	rq.True(rank.Present())
	rq.Equal(4, rank.Int())

	_, err = value.ParseRank("6")
	requireCode(rq, err, errcodes.InvalidRank)

	_, err = value.ParseRank("five")
	requireCode(rq, err, errcodes.InvalidRank)
}

func TestParseSortKey(t *testing.T) {
	rq := require.New(t)

	testCases := map[string]value.SortKey{
		"":           value.SortNameAsc,
		"Sort":       value.SortNameAsc,
		"A-Z":        value.SortNameAsc,
		"Z-A":        value.SortNameDesc,
		"name_desc":  value.SortNameDesc,
		"city":       value.SortCity,
		"STATE":      value.SortState,
		"rank":       value.SortRank,
		"votes":      value.SortVotes,
		"rank_desc":  value.SortRankDesc,
		"VOTES_DESC": value.SortVotesDesc,
	}

	for in, want := range testCases {
		got, err := value.ParseSortKey(in)
		rq.NoError(err, in)
		rq.Equal(want, got, in)
	}

	_, err := value.ParseSortKey("distance")
	requireCode(rq, err, errcodes.InvalidSortKey)
}

func TestParsePostalCode(t *testing.T) {
	rq := require.New(t)

	code, err := value.ParsePostalCode(" 101 000 ")
	rq.NoError(err)
	rq.Equal("101000", code.String())

	for _, bad := range []string{"", "10100", "1010000", "10100a"} {
		_, err := value.ParsePostalCode(bad)
		requireCode(rq, err, errcodes.InvalidCodeFormat)
	}
}

func TestParseSearchField(t *testing.T) {
	rq := require.New(t)

	field, err := value.ParseSearchField("")
	rq.NoError(err)
	rq.Equal(value.SearchByName, field)

	field, err = value.ParseSearchField("Zip")
	rq.NoError(err)
	rq.Equal(value.SearchByZip, field)

	_, err = value.ParseSearchField("website")
	requireCode(rq, err, errcodes.ValidationFailure)
}
