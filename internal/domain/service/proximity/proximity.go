// Package proximity поиск объектов в радиусе от заданного с сортировкой и
// аннотацией оценками.
package proximity

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/dhconnelly/rtreego"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/feedback"
	"geo_feedback/internal/domain/service/geomath"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/errcodes"
)

const (
	// размер «точки» в дереве; NewRect не принимает нулевые стороны
	pointSize = 1e-9
	// запас к ограничивающему прямоугольнику на погрешность вычислений
	boxMargin = 1e-7

	treeMinChildren = 25
	treeMaxChildren = 50
)

// Nearby ищет объекты, лежащие строго ближе radiusMiles миль от centerID.
// Сам центр в результат не попадает.
func Nearby(
	centerID int64,
	radiusMiles float64,
	entities []entity.LocatedEntity,
	entries []entity.FeedbackEntry,
	key value.SortKey,
) ([]entity.NearbyEntity, error) {
	return NewIndex(entities).Nearby(centerID, radiusMiles, entries, key)
}

type treeItem struct {
	pos  int
	rect rtreego.Rect
}

func (t *treeItem) Bounds() rtreego.Rect {
	return t.rect
}

// Index снимок объектов с R-деревом по координатам. Строится один раз и
// переиспользуется между запросами, пока снимок не изменился.
type Index struct {
	entities []entity.LocatedEntity
	byID     map[int64]int
	tree     *rtreego.Rtree
}

func NewIndex(entities []entity.LocatedEntity) *Index {
	idx := &Index{
		entities: entities,
		byID:     make(map[int64]int, len(entities)),
		tree:     rtreego.NewTree(2, treeMinChildren, treeMaxChildren),
	}

	for i, e := range entities {
		if _, ok := idx.byID[e.ID]; !ok {
			idx.byID[e.ID] = i
		}

		point := rtreego.Point{e.Location.Lon, e.Location.Lat}
		rect, err := rtreego.NewRect(point, []float64{pointSize, pointSize})
		if err != nil {
			continue
		}
		idx.tree.Insert(&treeItem{pos: i, rect: rect})
	}

	return idx
}

func (idx *Index) Len() int {
	return len(idx.entities)
}

func (idx *Index) Entity(id int64) (entity.LocatedEntity, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return entity.LocatedEntity{}, false
	}
	return idx.entities[i], true
}

func (idx *Index) Nearby(
	centerID int64,
	radiusMiles float64,
	entries []entity.FeedbackEntry,
	key value.SortKey,
) ([]entity.NearbyEntity, error) {
	center, ok := idx.Entity(centerID)
	if !ok {
		return nil, domain.Errorf(errcodes.EntityNotFound, "entity %d not found", centerID)
	}

	if math.IsNaN(radiusMiles) || math.IsInf(radiusMiles, 0) || radiusMiles < 0 {
		return nil, domain.Errorf(errcodes.ValidationFailure, "invalid radius %v", radiusMiles)
	}

	less, err := comparator(key)
	if err != nil {
		return nil, err
	}

	if err := center.Location.Validate(); err != nil {
		return nil, err
	}

	limitKm := geomath.MilesToKm(radiusMiles)
	aggregates := feedback.AggregateAll(entries)
	result := make([]entity.NearbyEntity, 0)

	for _, pos := range idx.candidates(center.Location, limitKm) {
		e := idx.entities[pos]
		if e.ID == center.ID {
			continue
		}

		d := geomath.Distance(center.Location, e.Location)
		if d >= limitKm {
			continue
		}

		result = append(result, entity.NearbyEntity{
			Entity:     e,
			DistanceKm: d,
			Aggregate:  aggregates[e.ID],
		})
	}

	slices.SortFunc(result, less)

	return result, nil
}

// candidates возвращает позиции объектов внутри ограничивающего прямоугольника.
// Если прямоугольник задевает полюс или 180-й меридиан, проверяются все объекты.
func (idx *Index) candidates(center value.Point, limitKm float64) []int {
	if limitKm <= 0 {
		return nil
	}

	minLat, maxLat, minLon, maxLon, ok := boundingBox(center, limitKm)
	if !ok {
		all := make([]int, len(idx.entities))
		for i := range all {
			all[i] = i
		}
		return all
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{minLon, minLat},
		[]float64{maxLon - minLon, maxLat - minLat},
	)
	if err != nil {
		return nil
	}

	found := idx.tree.SearchIntersect(rect)
	positions := make([]int, 0, len(found))
	for _, s := range found {
		positions = append(positions, s.(*treeItem).pos)
	}

	return positions
}

// boundingBox даёт прямоугольник в градусах, содержащий все точки ближе limitKm.
func boundingBox(center value.Point, limitKm float64) (minLat, maxLat, minLon, maxLon float64, ok bool) {
	angular := limitKm / geomath.EarthRadiusKm
	if angular >= math.Pi/2 {
		return 0, 0, 0, 0, false
	}

	dLat := angular*180/math.Pi + boxMargin
	minLat = center.Lat - dLat
	maxLat = center.Lat + dLat
	if minLat <= -90 || maxLat >= 90 {
		return 0, 0, 0, 0, false
	}

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	ratio := math.Sin(angular) / cosLat
	if ratio >= 1 {
		return 0, 0, 0, 0, false
	}

	dLon := math.Asin(ratio)*180/math.Pi + boxMargin
	minLon = center.Lon - dLon
	maxLon = center.Lon + dLon
	if minLon <= -180 || maxLon >= 180 {
		return 0, 0, 0, 0, false
	}

	return minLat, maxLat, minLon, maxLon, true
}

// Sort упорядочивает объекты по key. Используется и для списков без расстояний.
func Sort(items []entity.NearbyEntity, key value.SortKey) error {
	less, err := comparator(key)
	if err != nil {
		return err
	}

	slices.SortFunc(items, less)

	return nil
}

func comparator(key value.SortKey) (func(a, b entity.NearbyEntity) int, error) {
	var primary func(a, b entity.NearbyEntity) int

	switch key {
	case value.SortNameAsc:
		primary = func(a, b entity.NearbyEntity) int {
			return strings.Compare(strings.ToLower(a.Entity.Name), strings.ToLower(b.Entity.Name))
		}
	case value.SortNameDesc:
		primary = func(a, b entity.NearbyEntity) int {
			return strings.Compare(strings.ToLower(b.Entity.Name), strings.ToLower(a.Entity.Name))
		}
	case value.SortCity:
		primary = func(a, b entity.NearbyEntity) int {
			return strings.Compare(strings.ToLower(a.Entity.City), strings.ToLower(b.Entity.City))
		}
	case value.SortState:
		primary = func(a, b entity.NearbyEntity) int {
			return strings.Compare(strings.ToLower(a.Entity.State), strings.ToLower(b.Entity.State))
		}
	case value.SortRank:
		primary = func(a, b entity.NearbyEntity) int {
			return cmp.Compare(a.MeanRank, b.MeanRank)
		}
	case value.SortRankDesc:
		primary = func(a, b entity.NearbyEntity) int {
			return cmp.Compare(b.MeanRank, a.MeanRank)
		}
	case value.SortVotes:
		primary = func(a, b entity.NearbyEntity) int {
			return cmp.Compare(a.VoteCount, b.VoteCount)
		}
	case value.SortVotesDesc:
		primary = func(a, b entity.NearbyEntity) int {
			return cmp.Compare(b.VoteCount, a.VoteCount)
		}
	default:
		return nil, domain.Errorf(errcodes.ValidationFailure, "unknown sort key %q", key)
	}

	return func(a, b entity.NearbyEntity) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity.ID, b.Entity.ID)
	}, nil
}
