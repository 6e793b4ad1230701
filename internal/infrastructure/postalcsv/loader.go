package postalcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/charmap"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
)

const (
	separator = ';'

	latColumn = "Y_WGS84"
	lonColumn = "X_WGS84"
)

// Порядок столбцов справочника: индекс, округ, район, улица, X, Y.
const (
	codeIndex = iota
	countyIndex
	areaIndex
	streetIndex
	lonIndex
	latIndex
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var ErrNoHeader = errors.New("postal csv: missing header")

// Loader читает справочник индексов из CSV с разделителем «;»
// и десятичной запятой в координатах.
type Loader struct {
	path        string
	windows1251 bool
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// WithWindows1251 включает перекодировку файла из cp1251.
func (l *Loader) WithWindows1251() *Loader {
	l.windows1251 = true
	return l
}

func (l *Loader) Load(ctx context.Context) ([]entity.PostalZone, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if l.windows1251 {
		r = charmap.Windows1251.NewDecoder().Reader(f)
	}

	return Parse(ctx, r)
}

// Parse разбирает справочник. Строки с пустыми полями пропускаются,
// строки с неверным индексом или координатами пропускаются с предупреждением.
func Parse(ctx context.Context, r io.Reader) ([]entity.PostalZone, error) {
	reader := csv.NewReader(r)
	reader.Comma = separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	lat, lon := columns(header)

	var (
		zones   []entity.PostalZone
		skipped int
		line    = 1
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		if len(record) <= max(lat, lon, streetIndex) || hasEmpty(record) {
			skipped++
			continue
		}

		zone, err := parseZone(record, lat, lon)
		if err != nil {
			logger(ctx).Warn("postal zone skipped",
				"line", line,
				logx.Error(err),
			)
			skipped++
			continue
		}

		zones = append(zones, zone)
	}

	logger(ctx).Debug("postal csv parsed", "zones", len(zones), "skipped", skipped)

	return zones, nil
}

func columns(header []string) (lat, lon int) {
	lat, lon = latIndex, lonIndex

	for i, name := range header {
		// первая ячейка может начинаться с BOM
		switch strings.TrimPrefix(strings.TrimSpace(name), "\ufeff") {
		case latColumn:
			lat = i
		case lonColumn:
			lon = i
		}
	}

	return lat, lon
}

func hasEmpty(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func parseZone(record []string, lat, lon int) (entity.PostalZone, error) {
	code, err := value.ParsePostalCode(record[codeIndex])
	if err != nil {
		return entity.PostalZone{}, err
	}

	latValue, err := coordinate(record[lat])
	if err != nil {
		return entity.PostalZone{}, fmt.Errorf("latitude: %w", err)
	}

	lonValue, err := coordinate(record[lon])
	if err != nil {
		return entity.PostalZone{}, fmt.Errorf("longitude: %w", err)
	}

	point, err := value.NewPoint(latValue, lonValue)
	if err != nil {
		return entity.PostalZone{}, err
	}

	return entity.PostalZone{
		Code:     code,
		County:   strings.TrimSpace(record[countyIndex]),
		Area:     strings.TrimSpace(record[areaIndex]),
		Street:   strings.TrimSpace(record[streetIndex]),
		Location: point,
	}, nil
}

func coordinate(s string) (float64, error) {
	return cast.ToFloat64E(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}
