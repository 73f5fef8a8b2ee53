package parser

import (
	"strings"

	"github.com/juev/hledger-autobudget/internal/ast"
)

type source struct {
	lines      []string
	lineStarts []int
}

func newSource(input string) *source {
	s := &source{lines: strings.Split(input, "\n")}
	s.lineStarts = make([]int, len(s.lines))

	offset := 0
	for i, line := range s.lines {
		s.lineStarts[i] = offset
		offset += len(line) + 1
		s.lines[i] = strings.TrimSuffix(line, "\r")
	}
	return s
}

func (s *source) count() int {
	return len(s.lines)
}

func (s *source) text(line int) string {
	return s.lines[line]
}

func (s *source) pos(line, col int) ast.Position {
	return ast.Position{
		Line:   line + 1,
		Column: col + 1,
		Offset: s.lineStarts[line] + col,
	}
}

// splitComment separates a line at its first ';'. commentCol is -1 when
// the line has no comment.
func splitComment(line string) (body, comment string, commentCol int) {
	idx := strings.IndexByte(line, ';')
	if idx < 0 {
		return line, "", -1
	}
	return line[:idx], line[idx+1:], idx
}

// splitWord returns the first space-delimited word of s and the remainder,
// which is always a suffix of s.
func splitWord(s string) (word, rest string) {
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

// accountNameEnd returns the index where an account name starting at i
// ends: at two spaces, a tab, or the end of the string.
func accountNameEnd(s string, i int) int {
	for ; i < len(s); i++ {
		if s[i] == '\t' {
			break
		}
		if s[i] == ' ' && i+1 < len(s) && s[i+1] == ' ' {
			break
		}
	}
	return i
}

func scanWhile(s string, i int, pred func(byte) bool) int {
	for i < len(s) && pred(s[i]) {
		i++
	}
	return i
}

func joinComment(existing, text string) string {
	if existing == "" {
		return text
	}
	return existing + "\n" + text
}

func isCommentStart(b byte) bool {
	return b == ';' || b == '#' || b == '*' || b == '%'
}

func isIndent(b byte) bool {
	return b == ' ' || b == '\t'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
