package value

import (
	"strings"

	"geo_feedback/internal/domain"
	"geo_feedback/pkg/errcodes"
)

// SearchField поле, по началу которого ищутся рынки.
type SearchField string

const (
	SearchByName  SearchField = "name"
	SearchByCity  SearchField = "city"
	SearchByState SearchField = "state"
	SearchByZip   SearchField = "zip"
)

func ParseSearchField(s string) (SearchField, error) {
	switch f := SearchField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SearchByName, nil
	case SearchByName, SearchByCity, SearchByState, SearchByZip:
		return f, nil
	}

	return "", domain.Errorf(errcodes.ValidationFailure, "unknown search field %q", s)
}

func (f SearchField) String() string {
	return string(f)
}
