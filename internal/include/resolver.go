package include

import (
	"os"
	"path/filepath"
	"strings"
)

func ResolvePath(basePath, includePath string) string {
	includePath = ConvertHledgerGlob(includePath)

	if strings.HasPrefix(includePath, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			if includePath == "~" {
				return home
			}
			includePath = filepath.Join(home, includePath[2:])
		}
	}

	if filepath.IsAbs(includePath) {
		return filepath.Clean(includePath)
	}

	baseDir := filepath.Dir(basePath)
	resolved := filepath.Join(baseDir, includePath)
	return filepath.Clean(resolved)
}

func IsGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// ConvertHledgerGlob strips an hledger reader prefix such as "journal:"
// so the remaining path can be handed to the glob matcher.
func ConvertHledgerGlob(path string) string {
	if prefix, rest, found := strings.Cut(path, ":"); found && isReaderPrefix(prefix) {
		return rest
	}
	return path
}

func isReaderPrefix(s string) bool {
	switch s {
	case "journal", "j", "hledger", "ledger":
		return true
	}
	return false
}
