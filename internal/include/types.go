package include

import (
	"fmt"

	"github.com/juev/hledger-autobudget/internal/ast"
)

type ErrorKind int

const (
	ErrorFileNotFound ErrorKind = iota
	ErrorCycleDetected
	ErrorParseError
	ErrorReadError
	ErrorFileTooLarge
	ErrorBadPattern
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorFileNotFound:
		return "file not found"
	case ErrorCycleDetected:
		return "include cycle"
	case ErrorParseError:
		return "parse error"
	case ErrorReadError:
		return "read error"
	case ErrorFileTooLarge:
		return "file too large"
	case ErrorBadPattern:
		return "bad include pattern"
	}
	return "unknown"
}

type LoadError struct {
	Kind    ErrorKind
	Path    string
	Message string
	Range   ast.Range
}

func (e LoadError) Error() string {
	if e.Range.Start.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Range.Start.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

// File is one journal file with the exact text it was parsed from. The
// content is kept so that edits can be applied without reformatting.
type File struct {
	Path    string
	Content string
	Journal *ast.Journal
}

// ResolvedJournal holds a root journal and every file reachable through
// include directives, in load order. The root is always Files[0].
type ResolvedJournal struct {
	Files  []*File
	byPath map[string]*File
}

func newResolvedJournal() *ResolvedJournal {
	return &ResolvedJournal{byPath: make(map[string]*File)}
}

func (r *ResolvedJournal) add(f *File) {
	r.Files = append(r.Files, f)
	r.byPath[f.Path] = f
}

func (r *ResolvedJournal) Root() *File {
	if len(r.Files) == 0 {
		return nil
	}
	return r.Files[0]
}

func (r *ResolvedJournal) File(path string) (*File, bool) {
	f, ok := r.byPath[path]
	return f, ok
}

func (r *ResolvedJournal) AllDirectives() []ast.Directive {
	var result []ast.Directive
	for _, f := range r.Files {
		result = append(result, f.Journal.Directives...)
	}
	return result
}

func (r *ResolvedJournal) TransactionCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Journal.Transactions)
	}
	return n
}
