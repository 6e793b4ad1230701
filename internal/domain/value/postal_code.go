package value

import (
	"strings"

	"geo_feedback/internal/domain"
	"geo_feedback/pkg/errcodes"
)

// PostalCodeLength длина московского почтового индекса.
const PostalCodeLength = 6

type PostalCode string

// ParsePostalCode убирает пробелы и проверяет, что индекс состоит из 6 цифр.
// Повторный ввод при ошибке остаётся заботой вызывающего кода.
func ParsePostalCode(s string) (PostalCode, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	if len(s) != PostalCodeLength {
		return "", domain.Errorf(errcodes.InvalidCodeFormat, "postal code must have %d digits, got %q", PostalCodeLength, s)
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return "", domain.Errorf(errcodes.InvalidCodeFormat, "postal code %q contains non-digit", s)
		}
	}

	return PostalCode(s), nil
}

func (c PostalCode) String() string {
	return string(c)
}
