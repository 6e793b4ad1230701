package value

import (
	"strings"

	"geo_feedback/internal/domain"
	"geo_feedback/pkg/errcodes"
)

// SortKey критерий сортировки результатов поиска.
type SortKey string

const (
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
	SortCity      SortKey = "city"
	SortState     SortKey = "state"
	SortRank      SortKey = "rank"
	SortRankDesc  SortKey = "rank_desc"
	SortVotes     SortKey = "votes"
	SortVotesDesc SortKey = "votes_desc"
)

// ParseSortKey принимает также «A-Z»/«Z-A» из формы исходного приложения.
// rank и votes сортируют по возрастанию, варианты *_desc по убыванию.
// Пустая строка и «Sort» дают сортировку по имени.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sort", "a-z", string(SortNameAsc), "name":
		return SortNameAsc, nil
	case "z-a", string(SortNameDesc):
		return SortNameDesc, nil
	case string(SortCity):
		return SortCity, nil
	case string(SortState):
		return SortState, nil
	case string(SortRank):
		return SortRank, nil
	case string(SortRankDesc):
		return SortRankDesc, nil
	case string(SortVotes):
		return SortVotes, nil
	case string(SortVotesDesc):
		return SortVotesDesc, nil
	}

	return "", domain.Errorf(errcodes.InvalidSortKey, "unknown sort key %q", s)
}

func (k SortKey) String() string {
	return string(k)
}
