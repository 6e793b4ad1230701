package marketsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var (
	ErrNoSheet  = errors.New("market sheet: workbook has no sheets")
	ErrNoHeader = errors.New("market sheet: missing header")
)

// goodsColumns столбцы-флаги товаров и их подписи.
var goodsColumns = map[string]string{ //nolint:gochecknoglobals
	"organic":       "Organic food",
	"bakedgoods":    "Baked goods",
	"cheese":        "Cheese",
	"crafts":        "Crafts",
	"flowers":       "Flowers",
	"eggs":          "Eggs",
	"seafood":       "Seafood",
	"herbs":         "Herbs",
	"vegetables":    "Vegetables",
	"honey":         "Honey",
	"jams":          "Jams",
	"maple":         "Maple",
	"meat":          "Meat",
	"nuts":          "Nuts",
	"plants":        "Plants",
	"poultry":       "Poultry",
	"prepared":      "Prepared food",
	"soap":          "Soap",
	"trees":         "Trees",
	"wine":          "Wine",
	"coffee":        "Coffee",
	"beans":         "Beans",
	"fruits":        "Fruits",
	"grains":        "Grains",
	"juices":        "Juices",
	"mushrooms":     "Mushrooms",
	"petfood":       "Pet food",
	"tofu":          "Tofu",
	"wildharvested": "Wild harvested food",
}

// Read читает рынки с первого листа книги.
func Read(ctx context.Context, r io.Reader) ([]entity.Market, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return read(ctx, f)
}

func ReadFile(ctx context.Context, path string) ([]entity.Market, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return read(ctx, f)
}

func read(ctx context.Context, f *excelize.File) ([]entity.Market, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNoHeader
	}

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := newHeader(header)
	if _, ok := h.index["fmid"]; !ok {
		return nil, ErrNoHeader
	}

	var (
		markets []entity.Market
		line    = 1
	)

	for rows.Next() {
		line++

		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(cells) == 0 {
			continue
		}

		m, err := h.market(cells)
		if err != nil {
			logger(ctx).Warn("market row skipped", "line", line, logx.Error(err))
			continue
		}

		markets = append(markets, m)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	logger(ctx).Debug("market sheet parsed", "markets", len(markets))

	return markets, nil
}

type header struct {
	index map[string]int
}

func newHeader(cells []string) header {
	index := make(map[string]int, len(cells))
	for i, c := range cells {
		index[strings.ToLower(strings.TrimSpace(c))] = i
	}
	return header{index: index}
}

func (h header) cell(cells []string, name string) string {
	i, ok := h.index[name]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func (h header) market(cells []string) (entity.Market, error) {
	id, err := cast.ToInt64E(h.cell(cells, "fmid"))
	if err != nil || id <= 0 {
		return entity.Market{}, fmt.Errorf("invalid FMID %q", h.cell(cells, "fmid"))
	}

	lat, err := cast.ToFloat64E(h.cell(cells, "y"))
	if err != nil {
		return entity.Market{}, fmt.Errorf("market %d: latitude: %w", id, err)
	}

	lon, err := cast.ToFloat64E(h.cell(cells, "x"))
	if err != nil {
		return entity.Market{}, fmt.Errorf("market %d: longitude: %w", id, err)
	}

	point, err := value.NewPoint(lat, lon)
	if err != nil {
		return entity.Market{}, fmt.Errorf("market %d: %w", id, err)
	}

	lower := func(name string) string { return strings.ToLower(h.cell(cells, name)) }

	return entity.Market{
		LocatedEntity: entity.LocatedEntity{
			ID:       id,
			Name:     lower("marketname"),
			Street:   lower("street"),
			City:     lower("city"),
			County:   lower("county"),
			State:    lower("state"),
			Location: point,
		},
		Zip:      h.cell(cells, "zip"),
		Website:  h.cell(cells, "website"),
		Facebook: h.cell(cells, "facebook"),
		OtherMedia: lo.CoalesceOrEmpty(
			h.cell(cells, "twitter"),
			h.cell(cells, "youtube"),
			h.cell(cells, "othermedia"),
		),
		Goods: h.goods(cells),
	}, nil
}

func (h header) goods(cells []string) []string {
	goods := make([]string, 0)
	for column, label := range goodsColumns {
		if isSet(h.cell(cells, column)) {
			goods = append(goods, label)
		}
	}
	slices.Sort(goods)
	return goods
}

func isSet(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}
