package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/domain/value"
	"geo_feedback/internal/transport/cli"
)

const menu = "1. Найти адрес\n2. Найти индекс\n3. Найти расстояние\n4. Выйти\nВыберите пункт: "

func newService() *postal.Service {
	return postal.NewService([]entity.PostalZone{
		{
			Code: "101000", County: "Центральный административный округ", Area: "Басманный район",
			Street: "Мясницкая улица. дом 26", Location: value.Point{Lat: 55.763861, Lon: 37.637167},
		},
		{
			Code: "109012", County: "Центральный административный округ", Area: "Тверской район",
			Street: "Никольская улица", Location: value.Point{Lat: 55.7552, Lon: 37.6226},
		},
		{
			Code: "105005", County: "Центральный административный округ", Area: "Басманный район",
			Street: "Бауманская улица", Location: value.Point{Lat: 55.7722, Lon: 37.6786},
		},
	})
}

func run(t *testing.T, input string) string {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, cli.NewMenu(strings.NewReader(input), &out, newService()).Run(context.Background()))

	return out.String()
}

func TestMenuSession(t *testing.T) {
	rq := require.New(t)

	out := run(t, "1\n101000\n2\nБасманный\n3\n101000\n109012\n4\n")

	expected := menu + "Введите почтовый индекс: " +
		"Почтовый индекс: 101000\n" +
		"Адрес: Центральный административный округ, Басманный район, Мясницкая улица. дом 26\n" +
		"Координаты: (055°45'49.90\"N,037°38'13.80\"E)\n\n" +
		menu + "Введите район: " +
		"Район: Басманный\nНайденные почтовые индексы: 101000, 105005\n\n" +
		menu + "Введите первый индекс: Введите второй индекс: " +
		"Расстояние между 101000 и 109012 в километрах составляет: 1.33\n\n" +
		menu + "\nВсего доброго!\n"

	rq.Equal(expected, out)
}

func TestMenuRepromptsWrongLengthCode(t *testing.T) {
	rq := require.New(t)

	out := run(t, "1\n1010\n101 000\n4\n")

	rq.Contains(out, "Введите почтовый индекс: Введите индекс, состоящий из 6 цифр: Почтовый индекс: 101000\n")
}

func TestMenuMisses(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		input  string
		output string
	}{
		{name: "Unknown code", input: "1\n999999\n4\n", output: "Почтовый индекс не найден\n"},
		{name: "Letters in code", input: "1\nabcdef\n4\n", output: "Почтовый индекс не найден\n"},
		{name: "Unknown area", input: "2\nАрбат\n4\n", output: "Район: Арбат\nПочтовые индексы не найдены\n"},
		{name: "Area with district word", input: "2\nБасманный район\n4\n", output: "Район: Басманный\n"},
		{name: "Distance to unknown code", input: "3\n101000\n000000\n4\n", output: "Расстояние между 101000 и 000000 невозможно рассчитать\n"},
		{name: "Unknown command", input: "7\n4\n", output: "Неизвестная команда\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Contains(run(t, tc.input), tc.output)
		})
	}
}

func TestMenuStopsOnEndOfInput(t *testing.T) {
	rq := require.New(t)

	out := run(t, "1\n")

	rq.True(strings.HasSuffix(out, "Всего доброго!\n"))
}
