// Package lsputil builds and applies text edits in the LSP wire format.
//
// Positions are LSP positions: zero-based lines and UTF-16 code unit
// columns. The mapper converts them to byte offsets into Go strings.
package lsputil

import (
	"sort"
	"strings"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

type PositionMapper struct {
	content    string
	lines      []string
	lineStarts []int
}

func NewPositionMapper(content string) *PositionMapper {
	m := &PositionMapper{content: content}
	m.lines = strings.Split(content, "\n")
	m.lineStarts = make([]int, len(m.lines))

	offset := 0
	for i, line := range m.lines {
		m.lineStarts[i] = offset
		offset += len(line) + 1
	}
	return m
}

func (m *PositionMapper) LineCount() int {
	return len(m.lines)
}

// LSPToByte clamps positions past the end of a line or of the content.
func (m *PositionMapper) LSPToByte(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(m.lines) {
		return len(m.content)
	}
	return m.lineStarts[line] + UTF16OffsetToByteOffset(m.lines[line], int(pos.Character))
}

func (m *PositionMapper) ByteToLSP(byteOffset int) protocol.Position {
	if byteOffset <= 0 {
		return protocol.Position{}
	}
	if byteOffset >= len(m.content) {
		last := len(m.lines) - 1
		return protocol.Position{Line: uint32(last), Character: uint32(UTF16Len(m.lines[last]))}
	}

	line := sort.Search(len(m.lineStarts), func(i int) bool {
		return m.lineStarts[i] > byteOffset
	}) - 1
	line = max(line, 0)

	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(ByteOffsetToUTF16(m.lines[line], byteOffset-m.lineStarts[line])),
	}
}

// LineEnd is the position just after the last character of line, before
// any line terminator.
func (m *PositionMapper) LineEnd(line int) protocol.Position {
	if line < 0 || line >= len(m.lines) {
		return m.ByteToLSP(len(m.content))
	}
	text := strings.TrimSuffix(m.lines[line], "\r")
	return protocol.Position{Line: uint32(line), Character: uint32(UTF16Len(text))}
}

func UTF16Len(s string) int {
	count := 0
	for _, r := range s {
		count += utf16Units(r)
	}
	return count
}

func UTF16OffsetToByteOffset(s string, utf16Offset int) int {
	byteOffset, units := 0, 0
	for _, r := range s {
		if units >= utf16Offset {
			break
		}
		byteOffset += utf8.RuneLen(r)
		units += utf16Units(r)
	}
	return byteOffset
}

func ByteOffsetToUTF16(s string, byteOffset int) int {
	units, current := 0, 0
	for _, r := range s {
		if current >= byteOffset {
			break
		}
		current += utf8.RuneLen(r)
		units += utf16Units(r)
	}
	return units
}

func utf16Units(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
