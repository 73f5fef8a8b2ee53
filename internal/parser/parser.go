package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/juev/hledger-autobudget/internal/ast"
)

type ParseError struct {
	Message string
	Pos     Position
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type Position struct {
	Line   int
	Column int
	Offset int
}

// Parser reads a journal line by line. Transactions keep exact line ranges
// so that new postings can be inserted without rewriting the file.
type Parser struct {
	src          *source
	line         int
	errors       []ParseError
	defaultYear  int
	decimalMark  rune
	commodityMks map[string]rune
}

func Parse(input string) (*ast.Journal, []ParseError) {
	p := &Parser{
		src:          newSource(input),
		commodityMks: make(map[string]rune),
	}
	return p.parseJournal(), p.errors
}

func (p *Parser) parseJournal() *ast.Journal {
	journal := &ast.Journal{}

	for p.line < p.src.count() {
		text := p.src.text(p.line)
		trimmed := strings.TrimSpace(text)

		switch {
		case trimmed == "":
			p.line++
		case isCommentStart(text[0]):
			journal.Comments = append(journal.Comments, p.commentAt(p.line, 0, text[1:]))
			p.line++
		case isIndent(text[0]):
			if !strings.HasPrefix(trimmed, ";") && !strings.HasPrefix(trimmed, "#") {
				p.errorAt(p.line, 0, "unexpected indented line")
			}
			p.line++
		case isDigit(text[0]):
			if tx := p.parseTransaction(); tx != nil {
				journal.Transactions = append(journal.Transactions, *tx)
			}
		case text[0] == '~' || text[0] == '=':
			// periodic and auto-posting rules are not transactions
			p.line++
			p.skipIndented()
		default:
			p.parseDirective(journal)
		}
	}

	return journal
}

func (p *Parser) parseTransaction() *ast.Transaction {
	lineIdx := p.line
	text := p.src.text(lineIdx)
	p.line++

	body, comment, commentCol := splitComment(text)

	tx := &ast.Transaction{}
	tx.Range.Start = p.src.pos(lineIdx, 0)
	tx.Range.End = p.src.pos(lineIdx, len(text))

	col := 0
	dateEnd := scanWhile(body, 0, func(b byte) bool { return isDigit(b) || b == '-' || b == '/' || b == '.' })
	date, ok := p.parseDate(body[:dateEnd], lineIdx, 0)
	if !ok {
		p.skipIndented()
		return nil
	}
	tx.Date = date
	col = dateEnd

	if col < len(body) && body[col] == '=' {
		start := col + 1
		end := scanWhile(body, start, func(b byte) bool { return isDigit(b) || b == '-' || b == '/' || b == '.' })
		if date2, ok := p.parseDate(body[start:end], lineIdx, start); ok {
			tx.Date2 = &date2
		}
		col = end
	}

	rest := strings.TrimSpace(body[col:])
	if rest != "" && (rest[0] == '*' || rest[0] == '!') {
		tx.Status = parseStatus(rest[0])
		rest = strings.TrimSpace(rest[1:])
	}
	if strings.HasPrefix(rest, "(") {
		if end := strings.IndexByte(rest, ')'); end > 0 {
			tx.Code = rest[1:end]
			rest = strings.TrimSpace(rest[end+1:])
		}
	}

	if payee, note, found := strings.Cut(rest, "|"); found {
		tx.Payee = strings.TrimSpace(payee)
		tx.Note = strings.TrimSpace(note)
		tx.Description = tx.Payee
		if tx.Note != "" {
			tx.Description = tx.Payee + " | " + tx.Note
		}
	} else {
		tx.Description = rest
	}

	if commentCol >= 0 {
		c := p.commentAt(lineIdx, commentCol, comment)
		tx.Comments = append(tx.Comments, c)
		tx.Tags = append(tx.Tags, c.Tags...)
	}

	for p.line < p.src.count() {
		line := p.src.text(p.line)
		if line == "" || !isIndent(line[0]) {
			break
		}
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			break
		}
		indent := len(line) - len(trimmed)
		lineIdx := p.line
		p.line++
		tx.Range.End = p.src.pos(lineIdx, len(line))

		if trimmed[0] == ';' || trimmed[0] == '#' {
			c := p.commentAt(lineIdx, indent, trimmed[1:])
			if n := len(tx.Postings); n > 0 {
				last := &tx.Postings[n-1]
				last.Comment = joinComment(last.Comment, c.Text)
				last.Tags = append(last.Tags, c.Tags...)
			} else {
				tx.Comments = append(tx.Comments, c)
				tx.Tags = append(tx.Tags, c.Tags...)
			}
			continue
		}

		if posting := p.parsePosting(line, lineIdx, indent); posting != nil {
			tx.Postings = append(tx.Postings, *posting)
		}
	}

	return tx
}

func (p *Parser) parsePosting(line string, lineIdx, indent int) *ast.Posting {
	body, comment, commentCol := splitComment(line)

	posting := &ast.Posting{}
	posting.Range.Start = p.src.pos(lineIdx, indent)
	posting.Range.End = p.src.pos(lineIdx, len(line))

	col := indent
	if col < len(body) && (body[col] == '*' || body[col] == '!') {
		posting.Status = parseStatus(body[col])
		col++
		col = scanWhile(body, col, isSpace)
	}

	var closing byte
	switch {
	case col < len(body) && body[col] == '[':
		posting.Virtual = ast.VirtualBalanced
		closing = ']'
		col++
	case col < len(body) && body[col] == '(':
		posting.Virtual = ast.VirtualUnbalanced
		closing = ')'
		col++
	}

	accountStart := col
	accountEnd := accountNameEnd(body, col)
	name := strings.TrimRight(body[accountStart:accountEnd], " \t")
	if closing != 0 {
		name = strings.TrimSuffix(name, string(closing))
	}
	if name == "" {
		p.errorAt(lineIdx, indent, "expected account name")
		return nil
	}
	posting.Account = ast.Account{
		Name:  name,
		Parts: strings.Split(name, ":"),
		Range: ast.Range{
			Start: p.src.pos(lineIdx, accountStart),
			End:   p.src.pos(lineIdx, accountStart+len(name)),
		},
	}

	rest := body[accountEnd:]
	restCol := accountEnd

	if idx := strings.IndexByte(rest, '='); idx >= 0 {
		assertion := rest[idx:]
		rest = rest[:idx]
		posting.BalanceAssertion = p.parseBalanceAssertion(assertion, lineIdx, restCol+idx)
	}

	if idx := strings.IndexByte(rest, '@'); idx >= 0 {
		cost := rest[idx:]
		rest = rest[:idx]
		posting.Cost = p.parseCost(cost, lineIdx, restCol+idx)
	}

	if strings.TrimSpace(rest) != "" {
		lead := len(rest) - len(strings.TrimLeft(rest, " \t"))
		posting.Amount = p.parseAmount(strings.TrimSpace(rest), lineIdx, restCol+lead)
	}

	if commentCol >= 0 {
		posting.Comment = strings.TrimSpace(comment)
		posting.Tags = parseTags(comment)
	}

	return posting
}

func (p *Parser) parseCost(text string, lineIdx, col int) *ast.Cost {
	cost := &ast.Cost{}
	cost.Range.Start = p.src.pos(lineIdx, col)
	offset := 1
	if strings.HasPrefix(text, "@@") {
		cost.IsTotal = true
		offset = 2
	}
	body := text[offset:]
	lead := len(body) - len(strings.TrimLeft(body, " \t"))
	amount := p.parseAmount(strings.TrimSpace(body), lineIdx, col+offset+lead)
	if amount == nil {
		return nil
	}
	cost.Amount = *amount
	cost.Range.End = amount.Range.End
	return cost
}

func (p *Parser) parseBalanceAssertion(text string, lineIdx, col int) *ast.BalanceAssertion {
	ba := &ast.BalanceAssertion{}
	ba.Range.Start = p.src.pos(lineIdx, col)
	offset := 1
	if strings.HasPrefix(text, "==") {
		ba.IsStrict = true
		offset = 2
	}
	if offset < len(text) && text[offset] == '*' {
		ba.IsInclusive = true
		offset++
	}
	body := text[offset:]
	lead := len(body) - len(strings.TrimLeft(body, " \t"))
	amount := p.parseAmount(strings.TrimSpace(body), lineIdx, col+offset+lead)
	if amount == nil {
		return nil
	}
	ba.Amount = *amount
	ba.Range.End = amount.Range.End
	return ba
}

func (p *Parser) parseDirective(journal *ast.Journal) {
	lineIdx := p.line
	text := p.src.text(lineIdx)
	p.line++

	body, comment, commentCol := splitComment(text)
	word, rest := splitWord(body)

	// Y2026 is a valid year directive without a space.
	if strings.HasPrefix(word, "Y") && len(word) > 1 && isDigit(word[1]) {
		rest = word[1:]
		word = "Y"
	}

	switch word {
	case "account":
		dir := p.parseAccountDirective(rest, lineIdx, len(body)-len(rest))
		if dir == nil {
			return
		}
		if commentCol >= 0 {
			dir.Comment = strings.TrimSpace(comment)
			dir.Tags = parseTags(comment)
		}
		for _, c := range p.subdirectiveComments() {
			dir.Comment = joinComment(dir.Comment, c.Text)
			dir.Tags = append(dir.Tags, c.Tags...)
		}
		journal.Directives = append(journal.Directives, *dir)
	case "commodity":
		if dir := p.parseCommodityDirective(rest, lineIdx); dir != nil {
			journal.Directives = append(journal.Directives, *dir)
		}
	case "include":
		path := strings.TrimSpace(rest)
		if path == "" {
			p.errorAt(lineIdx, 0, "expected file path")
			return
		}
		journal.Includes = append(journal.Includes, ast.Include{
			Path:  path,
			Range: ast.Range{Start: p.src.pos(lineIdx, 0), End: p.src.pos(lineIdx, len(text))},
		})
	case "P":
		if dir := p.parsePriceDirective(rest, lineIdx, len(body)-len(rest)); dir != nil {
			journal.Directives = append(journal.Directives, *dir)
		}
	case "Y", "year":
		year, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || year < 1900 || year > 2200 {
			p.errorAt(lineIdx, 0, "invalid year: %s", strings.TrimSpace(rest))
			return
		}
		p.defaultYear = year
		journal.Directives = append(journal.Directives, ast.YearDirective{
			Year:  year,
			Range: ast.Range{Start: p.src.pos(lineIdx, 0), End: p.src.pos(lineIdx, len(text))},
		})
	case "decimal-mark":
		mark := strings.TrimSpace(rest)
		if mark != "." && mark != "," {
			p.errorAt(lineIdx, 0, "invalid decimal mark: %s", mark)
			return
		}
		p.decimalMark = rune(mark[0])
		journal.Directives = append(journal.Directives, ast.DecimalMarkDirective{
			Mark:  p.decimalMark,
			Range: ast.Range{Start: p.src.pos(lineIdx, 0), End: p.src.pos(lineIdx, len(text))},
		})
	case "comment":
		p.skipUntil("end comment")
	default:
		if !isDirective(word) {
			p.errorAt(lineIdx, 0, "unexpected line: %s", strings.TrimSpace(text))
		}
		p.skipIndented()
	}
}

func (p *Parser) parseAccountDirective(rest string, lineIdx, col int) *ast.AccountDirective {
	lead := len(rest) - len(strings.TrimLeft(rest, " \t"))
	rest = rest[lead:]
	end := accountNameEnd(rest, 0)
	name := strings.TrimRight(rest[:end], " \t")
	if name == "" {
		p.errorAt(lineIdx, col, "expected account name")
		p.skipIndented()
		return nil
	}
	start := col + lead
	return &ast.AccountDirective{
		Account: ast.Account{
			Name:  name,
			Parts: strings.Split(name, ":"),
			Range: ast.Range{Start: p.src.pos(lineIdx, start), End: p.src.pos(lineIdx, start+len(name))},
		},
		Range: ast.Range{Start: p.src.pos(lineIdx, 0), End: p.src.pos(lineIdx, len(p.src.text(lineIdx)))},
	}
}

func (p *Parser) parseCommodityDirective(rest string, lineIdx int) *ast.CommodityDirective {
	text := strings.TrimSpace(rest)
	dir := &ast.CommodityDirective{
		Range: ast.Range{Start: p.src.pos(lineIdx, 0), End: p.src.pos(lineIdx, len(p.src.text(lineIdx)))},
	}

	if strings.IndexFunc(text, unicode.IsDigit) >= 0 {
		dir.Format = text
		if amount := p.parseAmount(text, lineIdx, 0); amount != nil {
			dir.Commodity = amount.Commodity
		}
	} else {
		dir.Commodity = ast.Commodity{Symbol: strings.Trim(text, `"`)}
	}

	for p.line < p.src.count() {
		line := p.src.text(p.line)
		if line == "" || !isIndent(line[0]) || strings.TrimSpace(line) == "" {
			break
		}
		p.line++
		name, value := splitWord(strings.TrimSpace(line))
		if name == "format" {
			dir.Format = strings.TrimSpace(value)
		}
	}

	if dir.Format != "" && dir.Commodity.Symbol != "" {
		if mark := formatDecimalMark(dir.Format); mark != 0 {
			p.commodityMks[dir.Commodity.Symbol] = mark
		}
	}

	return dir
}

func (p *Parser) parsePriceDirective(rest string, lineIdx, col int) *ast.PriceDirective {
	lead := len(rest) - len(strings.TrimLeft(rest, " \t"))
	rest = rest[lead:]
	col += lead

	dateText, afterDate := splitWord(rest)
	date, ok := p.parseDate(dateText, lineIdx, col)
	if !ok {
		return nil
	}

	symbol, priceText := splitWord(strings.TrimSpace(afterDate))
	if symbol == "" {
		p.errorAt(lineIdx, col, "expected commodity")
		return nil
	}
	price := p.parseAmount(strings.TrimSpace(priceText), lineIdx, col)
	if price == nil {
		return nil
	}

	return &ast.PriceDirective{
		Date:      date,
		Commodity: ast.Commodity{Symbol: strings.Trim(symbol, `"`)},
		Price:     *price,
		Range:     ast.Range{Start: p.src.pos(lineIdx, 0), End: p.src.pos(lineIdx, len(p.src.text(lineIdx)))},
	}
}

func (p *Parser) parseDate(value string, lineIdx, col int) (ast.Date, bool) {
	var sep byte
	for i := 0; i < len(value); i++ {
		if value[i] == '-' || value[i] == '/' || value[i] == '.' {
			sep = value[i]
			break
		}
	}
	if sep == 0 {
		p.errorAt(lineIdx, col, "invalid date format: %s", value)
		return ast.Date{}, false
	}

	parts := strings.Split(value, string(sep))
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			p.errorAt(lineIdx, col, "invalid date: %s", value)
			return ast.Date{}, false
		}
		nums[i] = n
	}

	date := ast.Date{Range: ast.Range{Start: p.src.pos(lineIdx, col), End: p.src.pos(lineIdx, col+len(value))}}
	switch len(nums) {
	case 2:
		if p.defaultYear == 0 {
			p.errorAt(lineIdx, col, "partial date requires Y directive: %s", value)
			return ast.Date{}, false
		}
		date.Year, date.Month, date.Day = p.defaultYear, nums[0], nums[1]
	case 3:
		date.Year, date.Month, date.Day = nums[0], nums[1], nums[2]
	default:
		p.errorAt(lineIdx, col, "invalid date format: %s", value)
		return ast.Date{}, false
	}

	if date.Month < 1 || date.Month > 12 || date.Day < 1 || date.Day > 31 {
		p.errorAt(lineIdx, col, "invalid date: %s", value)
		return ast.Date{}, false
	}
	return date, true
}

func (p *Parser) commentAt(lineIdx, col int, text string) ast.Comment {
	return ast.Comment{
		Text: strings.TrimSpace(text),
		Tags: parseTags(text),
		Range: ast.Range{
			Start: p.src.pos(lineIdx, col),
			End:   p.src.pos(lineIdx, len(p.src.text(lineIdx))),
		},
	}
}

// subdirectiveComments consumes indented lines after a directive and
// returns the comments among them.
func (p *Parser) subdirectiveComments() []ast.Comment {
	var comments []ast.Comment
	for p.line < p.src.count() {
		line := p.src.text(p.line)
		if line == "" || !isIndent(line[0]) || strings.TrimSpace(line) == "" {
			break
		}
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed[0] == ';' || trimmed[0] == '#' {
			comments = append(comments, p.commentAt(p.line, len(line)-len(trimmed), trimmed[1:]))
		}
		p.line++
	}
	return comments
}

func (p *Parser) skipIndented() {
	for p.line < p.src.count() {
		line := p.src.text(p.line)
		if line == "" || !isIndent(line[0]) {
			return
		}
		p.line++
	}
}

func (p *Parser) skipUntil(marker string) {
	for p.line < p.src.count() {
		line := strings.TrimSpace(p.src.text(p.line))
		p.line++
		if line == marker {
			return
		}
	}
}

func (p *Parser) errorAt(lineIdx, col int, format string, args ...any) {
	pos := p.src.pos(lineIdx, col)
	p.errors = append(p.errors, ParseError{
		Message: fmt.Sprintf(format, args...),
		Pos:     Position{Line: pos.Line, Column: pos.Column, Offset: pos.Offset},
	})
}

func parseStatus(b byte) ast.Status {
	switch b {
	case '*':
		return ast.StatusCleared
	case '!':
		return ast.StatusPending
	}
	return ast.StatusNone
}

func parseTags(text string) []ast.Tag {
	var tags []ast.Tag

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		colonIdx := strings.Index(part, ":")
		if colonIdx == -1 {
			continue
		}

		name := strings.TrimSpace(part[:colonIdx])
		// "some words tag:value" - the tag name is the last word
		if sp := strings.LastIndexAny(name, " \t"); sp >= 0 {
			name = name[sp+1:]
		}
		if name == "" || !isValidTagName(name) {
			continue
		}

		tags = append(tags, ast.Tag{
			Name:  name,
			Value: strings.TrimSpace(part[colonIdx+1:]),
		})
	}

	return tags
}

func isValidTagName(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func isDirective(word string) bool {
	switch word {
	case "account", "alias", "apply", "assert", "bucket", "capture",
		"check", "comment", "commodity", "D", "decimal-mark", "def",
		"define", "end", "eval", "expr", "include", "payee", "P",
		"tag", "test", "Y", "year":
		return true
	}
	return false
}
