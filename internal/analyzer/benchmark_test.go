package analyzer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/include"
	"github.com/juev/hledger-autobudget/internal/testutil"
)

func loadGenerated(n int) *include.ResolvedJournal {
	resolved, _ := include.NewLoader().LoadFromContent("bench.journal", testutil.GenerateJournal(n))
	return resolved
}

var (
	smallJournal = loadGenerated(10)
	largeJournal = loadGenerated(1000)
)

func BenchmarkAnalyze_Small(b *testing.B) {
	analyzer := New()
	for b.Loop() {
		analyzer.Analyze(smallJournal)
	}
}

func BenchmarkAnalyze_Large(b *testing.B) {
	analyzer := New()
	b.ReportAllocs()
	for b.Loop() {
		analyzer.Analyze(largeJournal)
	}
}

func BenchmarkCheckBalance(b *testing.B) {
	tx := &ast.Transaction{
		Postings: []ast.Posting{
			{
				Account: ast.Account{Name: "expenses:food"},
				Amount:  &ast.Amount{Quantity: decimal.RequireFromString("50.00"), Commodity: ast.Commodity{Symbol: "$"}},
			},
			{
				Account: ast.Account{Name: "assets:bank"},
				Amount:  &ast.Amount{Quantity: decimal.RequireFromString("-50.00"), Commodity: ast.Commodity{Symbol: "$"}},
			},
		},
	}

	for b.Loop() {
		CheckBalance(tx)
	}
}

func BenchmarkCheckBalance_Inferred(b *testing.B) {
	tx := &ast.Transaction{
		Postings: []ast.Posting{
			{
				Account: ast.Account{Name: "assets:stocks"},
				Amount:  &ast.Amount{Quantity: decimal.NewFromInt(10), Commodity: ast.Commodity{Symbol: "AAPL"}},
				Cost:    &ast.Cost{Amount: ast.Amount{Quantity: decimal.NewFromInt(150), Commodity: ast.Commodity{Symbol: "$"}}},
			},
			{
				Account: ast.Account{Name: "assets:bank"},
			},
		},
	}

	for b.Loop() {
		CheckBalance(tx)
	}
}
