package value

import (
	"strconv"
	"strings"

	"geo_feedback/internal/domain"
	"geo_feedback/pkg/errcodes"
)

const (
	NoRank  Rank = 0
	MinRank Rank = 1
	MaxRank Rank = 5
)

// Rank оценка посетителя 1..5. Нулевое значение означает «оценки нет».
type Rank int

func ParseRank(s string) (Rank, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoRank, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return NoRank, domain.WrapError(err, errcodes.InvalidRank, "rank is not a number")
	}

	return NewRank(n)
}

func NewRank(n int) (Rank, error) {
	r := Rank(n)
	if r != NoRank && (r < MinRank || r > MaxRank) {
		return NoRank, domain.Errorf(errcodes.InvalidRank, "rank %d out of range 1..5", n)
	}
	return r, nil
}

func (r Rank) Present() bool {
	return r >= MinRank && r <= MaxRank
}

func (r Rank) Int() int {
	return int(r)
}
