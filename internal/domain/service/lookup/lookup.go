// Package lookup обратный поиск по справочнику индексов: индекс → адрес,
// район → список индексов.
package lookup

import (
	"strings"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/errcodes"
)

// districtWord слово «район», которое отбрасывается при сравнении названий.
const districtWord = "район"

type Index struct {
	zones  []entity.PostalZone
	byCode map[value.PostalCode]int
}

func NewIndex(zones []entity.PostalZone) *Index {
	idx := &Index{
		zones:  zones,
		byCode: make(map[value.PostalCode]int, len(zones)),
	}

	for i, z := range zones {
		// при дублях побеждает первая строка справочника
		if _, ok := idx.byCode[z.Code]; !ok {
			idx.byCode[z.Code] = i
		}
	}

	return idx
}

// ByCode ищет участок по индексу. Неверная длина даёт InvalidCodeFormat,
// при отсутствии в справочнике EntityNotFound.
func (idx *Index) ByCode(code string) (entity.PostalZone, error) {
	parsed, err := value.ParsePostalCode(code)
	if err != nil {
		return entity.PostalZone{}, err
	}

	i, ok := idx.byCode[parsed]
	if !ok {
		return entity.PostalZone{}, domain.Errorf(errcodes.EntityNotFound, "postal code %s not found", parsed)
	}

	return idx.zones[i], nil
}

// ByArea возвращает индексы района в порядке справочника. Если ничего не найдено,
// возвращается пустой срез без ошибки.
func (idx *Index) ByArea(name string) []string {
	query := NormalizeArea(name)
	codes := make([]string, 0)

	if query == "" {
		return codes
	}

	for _, z := range idx.zones {
		if NormalizeArea(z.Area) == query {
			codes = append(codes, z.Code.String())
		}
	}

	return codes
}

func (idx *Index) Zones() []entity.PostalZone {
	return idx.zones
}

func (idx *Index) Len() int {
	return len(idx.zones)
}

// NormalizeArea приводит название района к нижнему регистру и убирает слово «район».
func NormalizeArea(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), districtWord, "")
	return strings.Join(strings.Fields(name), " ")
}

// DisplayArea убирает слово «район» из ввода, сохраняя регистр, для вывода пользователю.
func DisplayArea(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, districtWord, ""))
}
