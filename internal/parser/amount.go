package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
)

func (p *Parser) parseAmount(text string, lineIdx, col int) *ast.Amount {
	amount := &ast.Amount{}
	amount.Range.Start = p.src.pos(lineIdx, col)
	amount.Range.End = p.src.pos(lineIdx, col+len(text))

	s := text
	i := 0
	negate := false

	// -$100 and +$100: the sign comes before a left commodity
	if i < len(s) && (s[i] == '-' || s[i] == '+') && i+1 < len(s) && !isDigit(s[i+1]) && s[i+1] != '.' {
		negate = s[i] == '-'
		i++
	}

	if i < len(s) && !isNumberStart(s[i]) {
		symbol, next := scanCommodity(s, i)
		if symbol == "" {
			p.errorAt(lineIdx, col+i, "invalid amount: %s", text)
			return nil
		}
		amount.Commodity = ast.Commodity{
			Symbol:   symbol,
			Position: ast.CommodityLeft,
			Range:    ast.Range{Start: p.src.pos(lineIdx, col+i), End: p.src.pos(lineIdx, col+next)},
		}
		amount.Style.CommodityLeft = true
		i = next
		if j := scanWhile(s, i, isSpace); j > i {
			amount.Style.Spaced = true
			i = j
		}
	}

	numStart := i
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) {
		c := s[i]
		if isDigit(c) || c == '.' || c == ',' {
			i++
			continue
		}
		// digit groups separated by single spaces: 3 037 850,96
		if c == ' ' && i+1 < len(s) && isDigit(s[i+1]) && i > numStart && isDigit(s[i-1]) {
			i++
			continue
		}
		break
	}
	raw := s[numStart:i]
	if strings.IndexFunc(raw, unicode.IsDigit) < 0 {
		p.errorAt(lineIdx, col+numStart, "expected number")
		return nil
	}

	if rest := strings.TrimSpace(s[i:]); rest != "" {
		if amount.Commodity.Symbol != "" {
			p.errorAt(lineIdx, col+i, "unexpected text after amount: %s", rest)
			return nil
		}
		symbol, _ := scanCommodity(rest, 0)
		trailing := s[i:]
		restCol := col + i + len(trailing) - len(strings.TrimLeft(trailing, " \t"))
		amount.Commodity = ast.Commodity{
			Symbol:   symbol,
			Position: ast.CommodityRight,
			Range:    ast.Range{Start: p.src.pos(lineIdx, restCol), End: p.src.pos(lineIdx, col+len(s))},
		}
		amount.Style.Spaced = i < len(s) && isSpace(s[i])
	}

	mark := p.decimalMark
	if mark == 0 {
		mark = p.commodityMks[amount.Commodity.Symbol]
	}
	qty, precision, usedMark, group, ok := parseQuantity(raw, mark)
	if !ok {
		p.errorAt(lineIdx, col+numStart, "invalid number: %s", raw)
		return nil
	}
	if negate {
		qty = qty.Neg()
	}

	amount.Quantity = qty
	amount.RawQuantity = raw
	amount.Style.Precision = precision
	amount.Style.DecimalMark = usedMark
	amount.Style.DigitGroup = group
	return amount
}

// scanCommodity reads a quoted or bare commodity symbol starting at i.
func scanCommodity(s string, i int) (string, int) {
	if i < len(s) && s[i] == '"' {
		end := strings.IndexByte(s[i+1:], '"')
		if end < 0 {
			return s[i+1:], len(s)
		}
		return s[i+1 : i+1+end], i + end + 2
	}
	start := i
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '+' || r == '.' || r == ',' || r == '@' || r == '=' || r == ';' {
			break
		}
		i += size
	}
	return s[start:i], i
}

// parseQuantity normalises a written number into a decimal. With no known
// decimal mark, a separator that appears once is the decimal mark and a
// separator that repeats is digit grouping. The grouping rune found in
// raw is returned, or 0.
func parseQuantity(raw string, mark rune) (decimal.Decimal, int32, rune, rune, bool) {
	var group rune
	if strings.Contains(raw, " ") {
		group = ' '
	}
	s := strings.ReplaceAll(raw, " ", "")
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	if mark == 0 {
		switch {
		case dots > 0 && commas > 0:
			mark = '.'
			if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
				mark = ','
			}
		case dots > 1:
			mark = ','
		case commas > 1:
			mark = '.'
		case commas == 1:
			mark = ','
		default:
			mark = '.'
		}
	}

	groupSep := ','
	if mark == ',' {
		groupSep = '.'
	}
	if strings.ContainsRune(s, groupSep) {
		group = groupSep
	}
	s = strings.ReplaceAll(s, string(groupSep), "")
	if strings.Count(s, string(mark)) > 1 {
		return decimal.Decimal{}, 0, 0, 0, false
	}

	var precision int32
	if idx := strings.IndexRune(s, mark); idx >= 0 {
		precision = int32(len(s) - idx - 1)
		s = s[:idx] + "." + s[idx+1:]
	}

	qty, err := decimal.NewFromString(sign + s)
	if err != nil {
		return decimal.Decimal{}, 0, 0, 0, false
	}
	return qty, precision, mark, group, true
}

// formatDecimalMark returns the decimal mark implied by a commodity format
// such as "1,000.00 USD", or 0 when the format has no decimal part.
func formatDecimalMark(format string) rune {
	lastDot := strings.LastIndex(format, ".")
	lastComma := strings.LastIndex(format, ",")
	switch {
	case lastDot < 0 && lastComma < 0:
		return 0
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			return '.'
		}
		return ','
	}

	sep, other, idx := '.', ',', lastDot
	if lastComma >= 0 {
		sep, other, idx = ',', '.', lastComma
	}
	if strings.Count(format, string(sep)) > 1 {
		return other
	}
	digits := scanWhile(format, idx+1, isDigit) - idx - 1
	if digits == 3 {
		return other
	}
	return sep
}

func isNumberStart(b byte) bool {
	return isDigit(b) || b == '-' || b == '+' || b == '.'
}
