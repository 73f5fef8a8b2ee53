package formatter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/juev/hledger-autobudget/internal/ast"
)

const defaultIndent = "    "
const minSpaces = 2

type AlignmentInfo struct {
	Indent     string
	AccountCol int
}

// ExtractCommodityFormats collects the number formats declared by
// commodity directives. Later directives win.
func ExtractCommodityFormats(directives []ast.Directive) map[string]NumberFormat {
	formats := make(map[string]NumberFormat)
	for _, dir := range directives {
		if cd, ok := dir.(ast.CommodityDirective); ok && cd.Format != "" {
			formats[cd.Commodity.Symbol] = ParseNumberFormat(cd.Format)
		}
	}
	return formats
}

// FormatPostings renders postings to be appended to tx, aligned with the
// postings tx already has. indent is the leading whitespace of the
// existing posting lines, or empty for the default.
func FormatPostings(tx *ast.Transaction, indent string, added []ast.Posting, commodityFormats map[string]NumberFormat) []string {
	if indent == "" {
		indent = defaultIndent
	}
	all := make([]ast.Posting, 0, len(tx.Postings)+len(added))
	all = append(all, tx.Postings...)
	all = append(all, added...)

	alignment := AlignmentInfo{
		Indent:     indent,
		AccountCol: CalculateAlignmentColumn(indent, all),
	}

	lines := make([]string, 0, len(added))
	for i := range added {
		lines = append(lines, FormatPostingWithAlignment(&added[i], alignment, commodityFormats))
	}
	return lines
}

// CalculateAlignmentColumn returns the column amounts start at: the indent
// plus the longest account, counting brackets and status marks.
func CalculateAlignmentColumn(indent string, postings []ast.Posting) int {
	maxLen := 0
	for _, p := range postings {
		accountLen := utf8.RuneCountInString(p.Account.Name)
		switch p.Virtual {
		case ast.VirtualBalanced, ast.VirtualUnbalanced:
			accountLen += 2
		}
		if p.Status != ast.StatusNone {
			accountLen += 2
		}
		maxLen = max(maxLen, accountLen)
	}
	return utf8.RuneCountInString(indent) + maxLen + minSpaces
}

func FormatPostingWithAlignment(posting *ast.Posting, alignment AlignmentInfo, commodityFormats map[string]NumberFormat) string {
	var sb strings.Builder

	indent := alignment.Indent
	if indent == "" {
		indent = defaultIndent
	}
	sb.WriteString(indent)

	switch posting.Status {
	case ast.StatusCleared:
		sb.WriteString("* ")
	case ast.StatusPending:
		sb.WriteString("! ")
	}

	switch posting.Virtual {
	case ast.VirtualUnbalanced:
		sb.WriteString("(")
	case ast.VirtualBalanced:
		sb.WriteString("[")
	}

	sb.WriteString(posting.Account.Name)

	switch posting.Virtual {
	case ast.VirtualUnbalanced:
		sb.WriteString(")")
	case ast.VirtualBalanced:
		sb.WriteString("]")
	}

	if posting.Amount != nil {
		currentLen := utf8.RuneCountInString(sb.String())
		spaces := max(alignment.AccountCol-currentLen, minSpaces)
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(FormatAmount(posting.Amount, commodityFormats))
	}

	if posting.Comment != "" {
		sb.WriteString("  ; ")
		sb.WriteString(posting.Comment)
	}

	return sb.String()
}

// FormatAmount writes an amount with its commodity on the side and with
// the spacing recorded in its style.
func FormatAmount(amount *ast.Amount, commodityFormats map[string]NumberFormat) string {
	symbol := quoteCommodity(amount.Commodity.Symbol)
	quantity := formatAmountQuantity(amount, commodityFormats)
	if symbol == "" {
		return quantity
	}

	sep := ""
	if amount.Style.Spaced {
		sep = " "
	}
	if amount.Style.CommodityLeft {
		return symbol + sep + quantity
	}
	return quantity + sep + symbol
}

// formatAmountQuantity returns formatted quantity string.
// Priority: commodity directive format > amount style > raw text.
func formatAmountQuantity(amount *ast.Amount, commodityFormats map[string]NumberFormat) string {
	if format, ok := commodityFormats[amount.Commodity.Symbol]; ok && format.Represents(amount.Quantity) {
		return FormatNumber(amount.Quantity, format)
	}
	if amount.RawQuantity != "" {
		return amount.RawQuantity
	}
	return FormatStyle(amount.Quantity, amount.Style)
}

func quoteCommodity(symbol string) string {
	if symbol == "" {
		return ""
	}
	for _, r := range symbol {
		if unicode.IsSpace(r) || unicode.IsDigit(r) || strings.ContainsRune("-+.,;@=*\"", r) {
			return `"` + symbol + `"`
		}
	}
	return symbol
}
