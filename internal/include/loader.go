package include

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/parser"
)

const DefaultMaxFileSize = 32 << 20

type Loader struct {
	maxFileSize int64
	logger      *zap.Logger
}

type Option func(*Loader)

func WithMaxFileSize(n int64) Option {
	return func(l *Loader) { l.maxFileSize = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		maxFileSize: DefaultMaxFileSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the journal at path and every file it includes. Errors are
// collected rather than returned early, so a caller sees all of them.
func (l *Loader) Load(path string) (*ResolvedJournal, []LoadError) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	content, loadErr := l.read(abs, ast.Range{})
	if loadErr != nil {
		return nil, []LoadError{*loadErr}
	}
	return l.LoadFromContent(abs, content)
}

func (l *Loader) LoadFromContent(path, content string) (*ResolvedJournal, []LoadError) {
	result := newResolvedJournal()
	var errs []LoadError
	l.load(path, content, result, map[string]bool{}, &errs)
	return result, errs
}

func (l *Loader) load(path, content string, result *ResolvedJournal, stack map[string]bool, errs *[]LoadError) {
	journal, parseErrs := parser.Parse(content)
	for _, e := range parseErrs {
		pos := ast.Position{Line: e.Pos.Line, Column: e.Pos.Column, Offset: e.Pos.Offset}
		*errs = append(*errs, LoadError{
			Kind:    ErrorParseError,
			Path:    path,
			Message: e.Message,
			Range:   ast.Range{Start: pos, End: pos},
		})
	}

	result.add(&File{Path: path, Content: content, Journal: journal})
	l.logger.Debug("journal loaded",
		zap.String("path", path),
		zap.Int("transactions", len(journal.Transactions)))

	stack[path] = true
	defer delete(stack, path)

	for _, inc := range journal.Includes {
		targets, err := l.expand(path, inc)
		if err != nil {
			*errs = append(*errs, *err)
			continue
		}

		for _, target := range targets {
			if stack[target] {
				*errs = append(*errs, LoadError{
					Kind:    ErrorCycleDetected,
					Path:    target,
					Message: fmt.Sprintf("cycle detected: %s includes %s", path, target),
					Range:   inc.Range,
				})
				continue
			}
			if _, seen := result.File(target); seen {
				continue
			}

			incContent, readErr := l.read(target, inc.Range)
			if readErr != nil {
				*errs = append(*errs, *readErr)
				continue
			}
			l.load(target, incContent, result, stack, errs)
		}
	}
}

func (l *Loader) expand(basePath string, inc ast.Include) ([]string, *LoadError) {
	if !IsGlobPattern(inc.Path) {
		return []string{ResolvePath(basePath, inc.Path)}, nil
	}

	pattern := ResolvePath(basePath, inc.Path)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &LoadError{
			Kind:    ErrorBadPattern,
			Path:    basePath,
			Message: fmt.Sprintf("invalid include pattern %q: %v", inc.Path, err),
			Range:   inc.Range,
		}
	}
	sort.Strings(matches)

	targets := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == basePath {
			continue
		}
		targets = append(targets, m)
	}
	return targets, nil
}

func (l *Loader) read(path string, at ast.Range) (string, *LoadError) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &LoadError{
			Kind:    ErrorFileNotFound,
			Path:    path,
			Message: fmt.Sprintf("cannot read file: %v", err),
			Range:   at,
		}
	}
	if info.Size() > l.maxFileSize {
		return "", &LoadError{
			Kind:    ErrorFileTooLarge,
			Path:    path,
			Message: fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), l.maxFileSize),
			Range:   at,
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &LoadError{
			Kind:    ErrorReadError,
			Path:    path,
			Message: fmt.Sprintf("cannot read file: %v", err),
			Range:   at,
		}
	}
	return string(content), nil
}
