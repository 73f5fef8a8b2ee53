package include

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name        string
		basePath    string
		includePath string
		want        string
	}{
		{
			name:        "simple relative path",
			basePath:    "/home/user/finances/main.journal",
			includePath: "accounts.journal",
			want:        "/home/user/finances/accounts.journal",
		},
		{
			name:        "relative path with subdirectory",
			basePath:    "/home/user/finances/main.journal",
			includePath: "2024/january.journal",
			want:        "/home/user/finances/2024/january.journal",
		},
		{
			name:        "relative path with parent directory",
			basePath:    "/home/user/finances/2024/main.journal",
			includePath: "../accounts.journal",
			want:        "/home/user/finances/accounts.journal",
		},
		{
			name:        "absolute path",
			basePath:    "/home/user/finances/main.journal",
			includePath: "/etc/hledger/accounts.journal",
			want:        "/etc/hledger/accounts.journal",
		},
		{
			name:        "mixed . and ..",
			basePath:    "/home/user/finances/main.journal",
			includePath: "./2024/../accounts.journal",
			want:        "/home/user/finances/accounts.journal",
		},
		{
			name:        "double slashes normalized",
			basePath:    "/home/user//finances/main.journal",
			includePath: "accounts.journal",
			want:        "/home/user/finances/accounts.journal",
		},
		{
			name:        "wildcard pattern preserved",
			basePath:    "/home/user/finances/main.journal",
			includePath: "2024/*.journal",
			want:        "/home/user/finances/2024/*.journal",
		},
		{
			name:        "recursive glob pattern",
			basePath:    "/home/user/finances/main.journal",
			includePath: "**/*.journal",
			want:        "/home/user/finances/**/*.journal",
		},
		{
			name:        "reader prefix stripped",
			basePath:    "/home/user/finances/main.journal",
			includePath: "journal:budget.journal",
			want:        "/home/user/finances/budget.journal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.basePath, tt.includePath))
		})
	}
}

func TestResolvePath_HomeDirectory(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot get home directory")
	}

	assert.Equal(t, filepath.Join(home, "finances/accounts.journal"),
		ResolvePath("/some/other/path/main.journal", "~/finances/accounts.journal"))
	assert.Equal(t, home, ResolvePath("/some/path/main.journal", "~"))
}

func TestIsGlobPattern(t *testing.T) {
	assert.True(t, IsGlobPattern("*.journal"))
	assert.True(t, IsGlobPattern("2024/**/*.journal"))
	assert.True(t, IsGlobPattern("month-?.journal"))
	assert.True(t, IsGlobPattern("{a,b}.journal"))
	assert.False(t, IsGlobPattern("accounts.journal"))
	assert.False(t, IsGlobPattern("~/finances/main.journal"))
}

func TestConvertHledgerGlob(t *testing.T) {
	assert.Equal(t, "2024/*.journal", ConvertHledgerGlob("journal:2024/*.journal"))
	assert.Equal(t, "main.ledger", ConvertHledgerGlob("ledger:main.ledger"))
	assert.Equal(t, "csv:bank.csv", ConvertHledgerGlob("csv:bank.csv"))
	assert.Equal(t, "plain.journal", ConvertHledgerGlob("plain.journal"))
}
