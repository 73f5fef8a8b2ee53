package lsputil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func TestPositionMapper_LineEnding(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		line     int
		expected string
	}{
		{"lf", "a\nb", 0, "\n"},
		{"crlf", "a\r\nb", 0, "\r\n"},
		{"single line", "single line", 0, "\n"},
		{"empty", "", 0, "\n"},
		{"last line takes the one above", "a\r\nb", 1, "\r\n"},
		{"mixed lf header", "; header\n2024-01-01 a\r\n    x\r\n", 2, "\r\n"},
		{"mixed crlf header", "; header\r\n2024-01-01 a\n    x\n", 2, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewPositionMapper(tt.content).LineEnding(tt.line))
		})
	}
}

func TestInsertLinesAfter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		line     int
		expected string
	}{
		{
			name:     "middle of file",
			content:  "2024-01-01 a\n    x  $1\n    y\n\n2024-01-02 b\n",
			line:     2,
			expected: "2024-01-01 a\n    x  $1\n    y\n    new1\n    new2\n\n2024-01-02 b\n",
		},
		{
			name:     "last line with newline",
			content:  "2024-01-01 a\n    x  $1\n    y\n",
			line:     2,
			expected: "2024-01-01 a\n    x  $1\n    y\n    new1\n    new2\n",
		},
		{
			name:     "last line without newline",
			content:  "2024-01-01 a\n    x  $1\n    y",
			line:     2,
			expected: "2024-01-01 a\n    x  $1\n    y\n    new1\n    new2",
		},
		{
			name:     "crlf",
			content:  "2024-01-01 a\r\n    x  $1\r\n    y\r\n",
			line:     2,
			expected: "2024-01-01 a\r\n    x  $1\r\n    y\r\n    new1\r\n    new2\r\n",
		},
		{
			name:     "lf header with crlf transaction",
			content:  "; budget\n2024-01-01 a\r\n    x  $1\r\n    y\r\n",
			line:     3,
			expected: "; budget\n2024-01-01 a\r\n    x  $1\r\n    y\r\n    new1\r\n    new2\r\n",
		},
		{
			name:     "unicode last line",
			content:  "2024-01-01 a\n    Расходы:Еда  50 ₽\n    Активы",
			line:     2,
			expected: "2024-01-01 a\n    Расходы:Еда  50 ₽\n    Активы\n    new1\n    new2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPositionMapper(tt.content)
			edit := InsertLinesAfter(m, tt.line, []string{"    new1", "    new2"})

			got, err := ApplyEdits(tt.content, []protocol.TextEdit{edit})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApplyEdits_Multiple(t *testing.T) {
	content := "a\nb\nc\n"
	m := NewPositionMapper(content)

	edits := []protocol.TextEdit{
		InsertLinesAfter(m, 2, []string{"after c"}),
		InsertLinesAfter(m, 0, []string{"after a"}),
	}

	got, err := ApplyEdits(content, edits)
	require.NoError(t, err)
	assert.Equal(t, "a\nafter a\nb\nc\nafter c\n", got)
}

func TestApplyEdits_Replace(t *testing.T) {
	content := "Активы:Кошелек  100 RUB\nРасходы:Еда  50 RUB"
	edit := protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 7},
			End:   protocol.Position{Line: 0, Character: 14},
		},
		NewText: "Банк",
	}

	got, err := ApplyEdits(content, []protocol.TextEdit{edit})
	require.NoError(t, err)
	assert.Equal(t, "Активы:Банк  100 RUB\nРасходы:Еда  50 RUB", got)
}

func TestApplyEdits_Overlapping(t *testing.T) {
	content := "hello world"
	edits := []protocol.TextEdit{
		{Range: protocol.Range{Start: protocol.Position{Character: 0}, End: protocol.Position{Character: 5}}, NewText: "x"},
		{Range: protocol.Range{Start: protocol.Position{Character: 3}, End: protocol.Position{Character: 8}}, NewText: "y"},
	}

	_, err := ApplyEdits(content, edits)
	assert.ErrorIs(t, err, ErrOverlappingEdits)
}

func TestApplyEdits_Empty(t *testing.T) {
	got, err := ApplyEdits("unchanged", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", got)
}

func TestNewWorkspaceEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.journal")
	edit := protocol.TextEdit{NewText: "x"}

	we := NewWorkspaceEdit(map[string][]protocol.TextEdit{
		path:         {edit},
		"/empty.txt": nil,
	})

	require.Len(t, we.Changes, 1)
	for docURI, edits := range we.Changes {
		assert.Equal(t, protocol.DocumentURI(uri.File(path)), docURI)
		assert.Equal(t, path, uri.URI(docURI).Filename())
		assert.Equal(t, []protocol.TextEdit{edit}, edits)
	}
}
