package handler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/domain/value"
	"geo_feedback/internal/transport/bot/handler"
	"geo_feedback/internal/transport/bot/view"
)

func zones() []entity.PostalZone {
	return []entity.PostalZone{
		{
			Code: "101000", County: "Центральный административный округ", Area: "Басманный район",
			Street: "Мясницкая улица. дом 26", Location: value.Point{Lat: 55.763861, Lon: 37.637167},
		},
		{
			Code: "109012", County: "Центральный административный округ", Area: "Тверской район",
			Street: "Никольская <улица>", Location: value.Point{Lat: 55.7552, Lon: 37.6226},
		},
		{
			Code: "105005", County: "Центральный административный округ", Area: "Басманный район",
			Street: "Бауманская улица", Location: value.Point{Lat: 55.7722, Lon: 37.6786},
		},
	}
}

func newHandler() *handler.Handler {
	return handler.New(postal.NewService(zones()))
}

func TestZipReply(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	h := newHandler()

	testCases := []struct {
		name  string
		args  []string
		text  string
		found bool
	}{
		{
			name: "Known code",
			args: []string{"101000"},
			text: "Почтовый индекс: 101000\n" +
				"Адрес: Центральный административный округ, Басманный район, Мясницкая улица. дом 26\n" +
				`Координаты: (055°45'49.90"N,037°38'13.80"E)`,
			found: true,
		},
		{name: "Code split by space", args: []string{"101", "000"}, found: true},
		{name: "No args", args: nil, text: view.ZipUsage},
		{name: "Short code", args: []string{"1010"}, text: view.InvalidCode},
		{name: "Unknown code", args: []string{"999999"}, text: view.AddressNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			text, found := h.ZipReply(ctx, tc.args)
			rq.Equal(tc.found, found)
			if tc.text != "" {
				rq.Equal(tc.text, text)
			}
		})
	}
}

func TestAreaReply(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	h := newHandler()

	rq.Equal(view.AreaUsage, h.AreaReply(ctx, nil))
	rq.Equal("Район: Басманный\nНайденные почтовые индексы: 101000, 105005", h.AreaReply(ctx, []string{"Басманный"}))
	rq.Equal("Район: Басманный\nНайденные почтовые индексы: 101000, 105005", h.AreaReply(ctx, []string{"Басманный", "район"}))
	rq.Equal("Район: Арбат\nПочтовые индексы не найдены", h.AreaReply(ctx, []string{"Арбат"}))
}

func TestDistanceReply(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	h := newHandler()

	rq.Equal(view.DistanceUsage, h.DistanceReply(ctx, []string{"101000"}))
	rq.Equal("Расстояние между 101000 и 109012 в километрах составляет: 1.33", h.DistanceReply(ctx, []string{"101000", "109012"}))
	rq.Equal("Расстояние между 101000 и 000000 невозможно рассчитать", h.DistanceReply(ctx, []string{"101000", "000000"}))
	rq.Equal("Расстояние между &lt;b&gt; и 109012 невозможно рассчитать", h.DistanceReply(ctx, []string{"<b>", "109012"}))
}

func TestNearbyReply(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	h := newHandler()

	text := h.NearbyReply(ctx, "101000")
	rq.Contains(text, "Индексы в радиусе 1 мили от 101000:\n")
	rq.Contains(text, "109012 Никольская &lt;улица&gt;, 1.33 км\n")
	rq.NotContains(text, "105005")

	rq.Equal(view.NearbyEmpty, h.NearbyReply(ctx, "105005"))
	rq.Equal(view.AddressNotFound, h.NearbyReply(ctx, "12"))
	rq.Equal(view.AddressNotFound, h.NearbyReply(ctx, "999999"))
}

type brokenPostal struct{}

func (brokenPostal) Lookup(string) (postal.Address, error) { return postal.Address{}, errors.New("boom") }
func (brokenPostal) ByArea(string) []string                { return nil }
func (brokenPostal) Distance(string, string) (float64, error) {
	return 0, errors.New("boom")
}

func (brokenPostal) Nearby(string, float64, value.SortKey) ([]entity.NearbyEntity, error) {
	return nil, errors.New("boom")
}

func TestRepliesOnInternalError(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	h := handler.New(brokenPostal{})

	text, found := h.ZipReply(ctx, []string{"101000"})
	rq.False(found)
	rq.Equal(view.InternalError, text)
	rq.Equal(view.InternalError, h.NearbyReply(ctx, "101000"))
	rq.Equal("Расстояние между 101000 и 109012 невозможно рассчитать", h.DistanceReply(ctx, []string{"101000", "109012"}))
}
