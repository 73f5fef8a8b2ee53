package book

import (
	"context"
	"fmt"
	"sort"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/formatter"
	"github.com/juev/hledger-autobudget/internal/lsputil"
)

// Edits returns, per file, the insertions that write every pending split
// below its transaction. Nothing else in the file changes.
func (b *Book) Edits() map[string][]protocol.TextEdit {
	byFile := make(map[string][]protocol.TextEdit)
	mappers := make(map[string]*lsputil.PositionMapper)

	for _, tx := range b.txs {
		if !tx.Dirty {
			continue
		}
		lines := b.renderAdded(tx)
		if len(lines) == 0 {
			continue
		}

		path := tx.Source.Path
		m, ok := mappers[path]
		if !ok {
			m = lsputil.NewPositionMapper(b.fileContent(path))
			mappers[path] = m
		}
		byFile[path] = append(byFile[path], lsputil.InsertLinesAfter(m, tx.Source.EndLine-1, lines))
	}
	return byFile
}

func (b *Book) WorkspaceEdit() *protocol.WorkspaceEdit {
	return lsputil.NewWorkspaceEdit(b.Edits())
}

// Commit writes all pending splits through the store, one Save per
// modified file. On success the book reflects the new file contents and
// a second Commit writes nothing.
func (b *Book) Commit(ctx context.Context) error {
	edits := b.Edits()
	if len(edits) == 0 {
		b.logger.Debug("nothing to commit")
		return nil
	}

	paths := make([]string, 0, len(edits))
	for path := range edits {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updated := make(map[string]string, len(paths))
	for _, path := range paths {
		content, err := lsputil.ApplyEdits(b.fileContent(path), edits[path])
		if err != nil {
			return fmt.Errorf("apply edits to %s: %w", path, err)
		}
		updated[path] = content
	}

	// Files saved before a failure are marked written so a retry does not
	// insert their postings twice.
	saved := make(map[string]string, len(paths))
	for _, path := range paths {
		if err := b.store.Save(ctx, path, updated[path]); err != nil {
			b.markWritten(saved)
			return fmt.Errorf("save %s: %w", path, err)
		}
		saved[path] = updated[path]
		b.logger.Info("journal written",
			zap.String("path", path),
			zap.Int("transactions", len(edits[path])))
	}

	b.markWritten(saved)
	return nil
}

func (b *Book) markWritten(updated map[string]string) {
	for _, f := range b.files {
		if content, ok := updated[f.Path]; ok {
			f.Content = content
		}
	}

	shift := make(map[string]int)
	for _, tx := range b.txs {
		path := tx.Source.Path
		if _, ok := updated[path]; !ok {
			continue
		}
		tx.Source.StartLine += shift[path]
		tx.Source.EndLine += shift[path]

		if !tx.Dirty {
			continue
		}
		written := 0
		for i := range tx.Splits {
			if tx.Splits[i].Added {
				tx.Splits[i].Added = false
				written++
			}
		}
		tx.Source.EndLine += written
		shift[path] += written
		tx.Dirty = false
	}
}

func (b *Book) renderAdded(tx *Transaction) []string {
	added := tx.AddedSplits()
	if len(added) == 0 {
		return nil
	}

	postings := make([]ast.Posting, 0, len(added))
	for _, s := range added {
		postings = append(postings, ast.Posting{
			Account: ast.Account{Name: b.accounts[s.Account].Path},
			Amount: &ast.Amount{
				Quantity:  s.Amount,
				Commodity: ast.Commodity{Symbol: s.Commodity},
				Style:     s.Style,
			},
		})
	}
	return formatter.FormatPostings(tx.node, tx.Source.Indent, postings, b.formats)
}

func (b *Book) fileContent(path string) string {
	for _, f := range b.files {
		if f.Path == path {
			return f.Content
		}
	}
	return ""
}
