package lsputil

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

var ErrOverlappingEdits = errors.New("overlapping edits")

// LineEnding returns the terminator of the zero-based line. A last line
// without one takes the terminator of the line above it, and content
// without any line break uses "\n".
func (m *PositionMapper) LineEnding(line int) string {
	last := len(m.lines) - 1
	if line >= last {
		line = last - 1
	}
	if line < 0 {
		return "\n"
	}
	if strings.HasSuffix(m.lines[line], "\r") {
		return "\r\n"
	}
	return "\n"
}

// InsertLinesAfter returns an edit that inserts lines directly below the
// zero-based line, leaving every existing byte in place.
func InsertLinesAfter(m *PositionMapper, line int, lines []string) protocol.TextEdit {
	eol := m.LineEnding(line)

	if line+1 < m.LineCount() {
		pos := protocol.Position{Line: uint32(line + 1)}
		return protocol.TextEdit{
			Range:   protocol.Range{Start: pos, End: pos},
			NewText: strings.Join(lines, eol) + eol,
		}
	}

	// last line without a terminator
	pos := m.LineEnd(line)
	return protocol.TextEdit{
		Range:   protocol.Range{Start: pos, End: pos},
		NewText: eol + strings.Join(lines, eol),
	}
}

type byteEdit struct {
	start, end int
	text       string
	order      int
}

// ApplyEdits applies edits expressed against content. Edits at the same
// position are applied in the order given.
func ApplyEdits(content string, edits []protocol.TextEdit) (string, error) {
	if len(edits) == 0 {
		return content, nil
	}

	m := NewPositionMapper(content)
	resolved := make([]byteEdit, 0, len(edits))
	for i, e := range edits {
		start, end := m.LSPToByte(e.Range.Start), m.LSPToByte(e.Range.End)
		if start > end {
			start, end = end, start
		}
		resolved = append(resolved, byteEdit{start: start, end: end, text: e.NewText, order: i})
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].start != resolved[j].start {
			return resolved[i].start < resolved[j].start
		}
		return resolved[i].order < resolved[j].order
	})

	var sb strings.Builder
	sb.Grow(len(content))
	last := 0
	for _, e := range resolved {
		if e.start < last {
			return "", fmt.Errorf("%w at byte %d", ErrOverlappingEdits, e.start)
		}
		sb.WriteString(content[last:e.start])
		sb.WriteString(e.text)
		last = e.end
	}
	sb.WriteString(content[last:])
	return sb.String(), nil
}

// NewWorkspaceEdit keys per-file edits by file URI.
func NewWorkspaceEdit(edits map[string][]protocol.TextEdit) *protocol.WorkspaceEdit {
	changes := make(map[protocol.DocumentURI][]protocol.TextEdit, len(edits))
	for path, list := range edits {
		if len(list) == 0 {
			continue
		}
		changes[protocol.DocumentURI(uri.File(path))] = list
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}
