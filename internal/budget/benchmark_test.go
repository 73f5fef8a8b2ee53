package budget

import (
	"context"
	"testing"

	"github.com/juev/hledger-autobudget/internal/book"
	"github.com/juev/hledger-autobudget/internal/include"
	"github.com/juev/hledger-autobudget/internal/testutil"
)

func loadBook(b *testing.B, n int) *book.Book {
	b.Helper()
	resolved, errs := include.NewLoader().LoadFromContent("bench.journal", testutil.GenerateBudgetJournal(n))
	if len(errs) > 0 {
		b.Fatal(errs)
	}
	return book.New(resolved)
}

func BenchmarkAugment_Large(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		b.StopTimer()
		ledger := loadBook(b, 1000)
		b.StartTimer()

		if _, err := Augment(context.Background(), ledger, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSynthesize(b *testing.B) {
	ledger := loadBook(b, 1000)
	corr, err := BuildCorrespondence(ledger, DefaultRoots(), nil)
	if err != nil {
		b.Fatal(err)
	}
	txs := ledger.Transactions()

	b.ResetTimer()
	for b.Loop() {
		for _, tx := range txs {
			Synthesize(tx, corr)
		}
	}
}
