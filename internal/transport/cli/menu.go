package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"geo_feedback/internal/domain/service/lookup"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/transport/bot/view"
	"geo_feedback/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	menuPrompt     = "1. Найти адрес\n2. Найти индекс\n3. Найти расстояние\n4. Выйти\nВыберите пункт: "
	codePrompt     = "Введите почтовый индекс: "
	areaPrompt     = "Введите район: "
	firstPrompt    = "Введите первый индекс: "
	secondPrompt   = "Введите второй индекс: "
	repeatPrompt   = "Введите индекс, состоящий из 6 цифр: "
	unknownCommand = "Неизвестная команда"
	goodbye        = "Всего доброго!"

	codeLength = 6
)

const (
	commandAddress  = "1"
	commandCodes    = "2"
	commandDistance = "3"
	commandExit     = "4"
)

type PostalService interface {
	Lookup(code string) (postal.Address, error)
	ByArea(name string) []string
	Distance(from, to string) (float64, error)
}

// Menu интерактивное меню справочника индексов поверх строкового ввода.
type Menu struct {
	in     *bufio.Scanner
	out    io.Writer
	postal PostalService
}

func NewMenu(in io.Reader, out io.Writer, postalService PostalService) *Menu {
	return &Menu{
		in:     bufio.NewScanner(in),
		out:    out,
		postal: postalService,
	}
}

// Run показывает меню до выбора «Выйти» или конца ввода.
func (m *Menu) Run(ctx context.Context) error {
	for {
		command, ok := m.ask(menuPrompt)
		if !ok {
			break
		}

		commandName := "Выйти"

		switch command {
		case commandAddress:
			commandName = "Найти адрес"
			m.address()
		case commandCodes:
			commandName = "Найти индекс"
			m.codes()
		case commandDistance:
			commandName = "Найти расстояние"
			m.distance(ctx)
		case commandExit:
		default:
			m.println(unknownCommand)
		}

		logger(ctx).Info("received command", "command", commandName)
		m.println("")

		if command == commandExit {
			break
		}
	}

	m.println(goodbye)

	return m.in.Err()
}

func (m *Menu) address() {
	code, ok := m.askCode(codePrompt)
	if !ok {
		return
	}

	address, err := m.postal.Lookup(code)
	if err != nil {
		m.println(view.AddressNotFound)
		return
	}

	m.println(fmt.Sprintf(view.AddressTemplate,
		code, address.Zone.County, address.Zone.Area, address.Zone.Street, address.Location,
	))
}

func (m *Menu) codes() {
	input, ok := m.ask(areaPrompt)
	if !ok {
		return
	}

	area := lookup.DisplayArea(input)

	codes := m.postal.ByArea(area)
	if len(codes) == 0 {
		m.println(fmt.Sprintf(view.AreaNotFoundTemplate, area))
		return
	}

	m.println(fmt.Sprintf(view.AreaCodesTemplate, area, strings.Join(codes, ", ")))
}

func (m *Menu) distance(ctx context.Context) {
	from, ok := m.askCode(firstPrompt)
	if !ok {
		return
	}
	logger(ctx).Info("received the first code", "code", from)

	to, ok := m.askCode(secondPrompt)
	if !ok {
		return
	}
	logger(ctx).Info("received the second code", "code", to)

	distance, err := m.postal.Distance(from, to)
	if err != nil {
		m.println(fmt.Sprintf(view.DistanceFailed, from, to))
		return
	}

	m.println(fmt.Sprintf(view.DistanceTemplate, from, to, distance))
}

// askCode спрашивает индекс, пока его длина не станет равной шести.
func (m *Menu) askCode(prompt string) (string, bool) {
	code, ok := m.ask(prompt)
	for ok && len([]rune(stripSpaces(code))) != codeLength {
		code, ok = m.ask(repeatPrompt)
	}

	return stripSpaces(code), ok
}

func (m *Menu) ask(prompt string) (string, bool) {
	_, _ = io.WriteString(m.out, prompt)

	if !m.in.Scan() {
		return "", false
	}

	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
