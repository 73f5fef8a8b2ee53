package formatter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
)

// NumberFormat is the display format declared by a commodity directive.
type NumberFormat struct {
	DecimalMark   rune
	ThousandsSep  string
	DecimalPlaces int
	HasDecimal    bool
}

func ParseNumberFormat(formatStr string) NumberFormat {
	nf := NumberFormat{DecimalMark: '.'}

	numberPart := extractNumberPart(formatStr)
	if numberPart == "" {
		return nf
	}

	lastDot := strings.LastIndex(numberPart, ".")
	lastComma := strings.LastIndex(numberPart, ",")

	// A lone separator followed by exactly three digits groups thousands:
	// "$1,000" has no decimal part.
	if (lastDot < 0) != (lastComma < 0) {
		sep, idx := ".", lastDot
		if lastComma >= 0 {
			sep, idx = ",", lastComma
		}
		if strings.Count(numberPart, sep) > 1 || len(numberPart)-idx-1 == 3 {
			nf.ThousandsSep = sep
			if sep == "." {
				nf.DecimalMark = ','
			}
			return nf
		}
	}

	switch {
	case lastDot > lastComma:
		nf.DecimalMark = '.'
		nf.HasDecimal = true
		nf.ThousandsSep = groupSeparator(numberPart[:lastDot], ",")
		nf.DecimalPlaces = len(numberPart) - lastDot - 1
	case lastComma > lastDot:
		nf.DecimalMark = ','
		nf.HasDecimal = true
		nf.ThousandsSep = groupSeparator(numberPart[:lastComma], ".")
		nf.DecimalPlaces = len(numberPart) - lastComma - 1
	default:
		if strings.Contains(numberPart, " ") {
			nf.ThousandsSep = " "
		}
	}

	return nf
}

func groupSeparator(intPart, candidate string) string {
	switch {
	case strings.Contains(intPart, candidate):
		return candidate
	case strings.Contains(intPart, " "):
		return " "
	}
	return ""
}

func extractNumberPart(formatStr string) string {
	var start, end int
	inNumber := false
	lastDigitPos := -1

	for i, r := range formatStr {
		isNumberChar := unicode.IsDigit(r) || r == '.' || r == ',' || r == ' '
		if isNumberChar {
			if !inNumber {
				start = i
				inNumber = true
			}
			if unicode.IsDigit(r) {
				lastDigitPos = i
			}
			end = i + utf8.RuneLen(r)
		} else if inNumber {
			break
		}
	}

	if !inNumber || lastDigitPos < 0 {
		return ""
	}

	return strings.TrimSpace(formatStr[start:end])
}

// Represents reports whether qty can be written in format without
// rounding.
func (f NumberFormat) Represents(qty decimal.Decimal) bool {
	places := int32(0)
	if f.HasDecimal {
		places = int32(f.DecimalPlaces)
	}
	return qty.Equal(qty.Round(places))
}

func FormatNumber(qty decimal.Decimal, format NumberFormat) string {
	places := int32(0)
	if format.HasDecimal {
		places = int32(format.DecimalPlaces)
	}
	return renderFixed(qty, places, format.DecimalMark, format.ThousandsSep)
}

// FormatStyle writes qty the way an amount with the given style was
// written in the journal: same precision, decimal mark and digit grouping.
func FormatStyle(qty decimal.Decimal, style ast.AmountStyle) string {
	mark := style.DecimalMark
	if mark == 0 {
		mark = '.'
	}
	places := style.Precision
	if exp := -qty.Exponent(); exp > places && !qty.Equal(qty.Round(places)) {
		places = exp
	}
	group := ""
	if style.DigitGroup != 0 {
		group = string(style.DigitGroup)
	}
	return renderFixed(qty, places, mark, group)
}

func renderFixed(qty decimal.Decimal, places int32, mark rune, thousands string) string {
	str := qty.StringFixed(places)

	intPart, decPart, _ := strings.Cut(str, ".")
	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	if thousands != "" && len(intPart) > 3 {
		var groups []string
		for len(intPart) > 3 {
			groups = append([]string{intPart[len(intPart)-3:]}, groups...)
			intPart = intPart[:len(intPart)-3]
		}
		if len(intPart) > 0 {
			groups = append([]string{intPart}, groups...)
		}
		intPart = strings.Join(groups, thousands)
	}

	var result strings.Builder
	if negative {
		result.WriteString("-")
	}
	result.WriteString(intPart)

	if places > 0 {
		result.WriteRune(mark)
		result.WriteString(decPart)
	}

	return result.String()
}
