// Package workspace decides which journal file is the root of a ledger and
// loads it together with its includes.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/include"
	"github.com/juev/hledger-autobudget/internal/parser"
)

var ErrNoJournal = errors.New("no journal file found")

const journalPattern = "**/*.{journal,j,hledger,ledger}"

type Workspace struct {
	dir             string
	journal         string
	rootJournalPath string
	resolved        *include.ResolvedJournal
	includeGraph    map[string][]string
	reverseGraph    map[string][]string
	loader          *include.Loader
	logger          *zap.Logger
}

type Option func(*Workspace)

// WithJournal names the root journal explicitly, skipping discovery.
func WithJournal(path string) Option {
	return func(w *Workspace) { w.journal = path }
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

func New(dir string, loader *include.Loader, opts ...Option) *Workspace {
	w := &Workspace{
		dir:          dir,
		loader:       loader,
		logger:       zap.NewNop(),
		includeGraph: make(map[string][]string),
		reverseGraph: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load finds the root journal and loads it with every included file. Any
// include or parse problem is returned as an error.
func (w *Workspace) Load() (*include.ResolvedJournal, error) {
	rootPath, err := w.findRootJournal()
	if err != nil {
		return nil, err
	}
	w.rootJournalPath = rootPath
	w.logger.Debug("root journal", zap.String("path", rootPath))

	resolved, loadErrs := w.loader.Load(rootPath)
	if len(loadErrs) > 0 {
		errs := make([]error, 0, len(loadErrs))
		for _, e := range loadErrs {
			errs = append(errs, e)
		}
		return nil, fmt.Errorf("load %s: %w", rootPath, errors.Join(errs...))
	}
	w.resolved = resolved
	return resolved, nil
}

func (w *Workspace) RootJournalPath() string {
	return w.rootJournalPath
}

func (w *Workspace) Resolved() *include.ResolvedJournal {
	return w.resolved
}

func (w *Workspace) findRootJournal() (string, error) {
	if w.journal != "" {
		if _, err := os.Stat(w.journal); err != nil {
			return "", fmt.Errorf("journal %s: %w", w.journal, err)
		}
		return w.journal, nil
	}

	for _, env := range []string{"LEDGER_FILE", "HLEDGER_JOURNAL"} {
		if envPath := os.Getenv(env); envPath != "" {
			if _, err := os.Stat(envPath); err == nil {
				return envPath, nil
			}
			w.logger.Warn("journal from environment not found", zap.String("env", env), zap.String("path", envPath))
		}
	}

	for _, name := range []string{"main.journal", ".hledger.journal"} {
		path := filepath.Join(w.dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return w.findRootByIncludeGraph()
}

// findRootByIncludeGraph picks the first journal, by path, that no other
// journal in the directory includes.
func (w *Workspace) findRootByIncludeGraph() (string, error) {
	journalFiles, err := doublestar.FilepathGlob(filepath.Join(w.dir, journalPattern))
	if err != nil {
		return "", fmt.Errorf("search journals in %s: %w", w.dir, err)
	}
	if len(journalFiles) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoJournal, w.dir)
	}
	sort.Strings(journalFiles)

	w.buildIncludeGraph(journalFiles)

	for _, file := range journalFiles {
		if len(w.reverseGraph[file]) == 0 {
			return file, nil
		}
	}
	return journalFiles[0], nil
}

func (w *Workspace) buildIncludeGraph(files []string) {
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		journal, _ := parser.Parse(string(content))
		if journal == nil {
			continue
		}

		for _, inc := range journal.Includes {
			for _, target := range w.includeTargets(file, inc.Path) {
				w.includeGraph[file] = append(w.includeGraph[file], target)
				w.reverseGraph[target] = append(w.reverseGraph[target], file)
			}
		}
	}
}

func (w *Workspace) includeTargets(file, includePath string) []string {
	resolved := include.ResolvePath(file, includePath)
	if !include.IsGlobPattern(resolved) {
		return []string{filepath.Clean(resolved)}
	}
	matches, err := doublestar.FilepathGlob(resolved)
	if err != nil {
		w.logger.Debug("bad include pattern", zap.String("file", file), zap.String("pattern", includePath))
		return nil
	}
	targets := matches[:0]
	for _, m := range matches {
		if m != file {
			targets = append(targets, filepath.Clean(m))
		}
	}
	return targets
}

// Includes returns the files that path includes directly. It is populated
// only when the root was found through the include graph.
func (w *Workspace) Includes(path string) []string {
	return w.includeGraph[path]
}
