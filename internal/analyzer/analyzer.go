package analyzer

import (
	"fmt"
	"strings"

	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/include"
)

type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze checks every transaction of the resolved journal. Declarations
// are collected across all files, so an account declared in an included
// file counts as declared everywhere.
func (a *Analyzer) Analyze(resolved *include.ResolvedJournal) *AnalysisResult {
	result := &AnalysisResult{
		Diagnostics: make([]Diagnostic, 0),
	}
	if resolved == nil {
		return result
	}

	declaredAccounts := collectDeclaredAccounts(resolved)
	declaredCommodities := collectDeclaredCommodities(resolved)

	for _, f := range resolved.Files {
		for i := range f.Journal.Transactions {
			tx := &f.Journal.Transactions[i]
			if br := CheckBalance(tx); !br.Balanced {
				result.Diagnostics = append(result.Diagnostics, a.createBalanceDiagnostic(f.Path, tx, br))
			}

			if len(declaredAccounts) > 0 {
				result.Diagnostics = append(result.Diagnostics, checkUndeclaredAccounts(f.Path, tx, declaredAccounts)...)
			}
			if len(declaredCommodities) > 0 {
				result.Diagnostics = append(result.Diagnostics, checkUndeclaredCommodities(f.Path, tx, declaredCommodities)...)
			}
		}
	}

	return result
}

func (a *Analyzer) createBalanceDiagnostic(path string, tx *ast.Transaction, br *BalanceResult) Diagnostic {
	if br.InferredIdx == -1 && len(br.Differences) == 0 {
		return Diagnostic{
			Path:     path,
			Range:    tx.Range,
			Severity: SeverityError,
			Code:     "MULTIPLE_INFERRED",
			Message:  "transaction has multiple postings without amounts",
		}
	}

	parts := make([]string, 0, len(br.Differences))
	reported := make(map[string]bool)
	for _, p := range tx.Postings {
		if p.Amount == nil {
			continue
		}
		commodity := p.Amount.Commodity.Symbol
		if p.Cost != nil {
			commodity = p.Cost.Amount.Commodity.Symbol
		}
		if diff, ok := br.Differences[commodity]; ok && !reported[commodity] {
			reported[commodity] = true
			parts = append(parts, fmt.Sprintf("%s off by %s", displayCommodity(commodity), diff.String()))
		}
	}

	return Diagnostic{
		Path:     path,
		Range:    tx.Range,
		Severity: SeverityError,
		Code:     "UNBALANCED",
		Message:  fmt.Sprintf("transaction does not balance: %s", strings.Join(parts, "; ")),
	}
}

func displayCommodity(symbol string) string {
	if symbol == "" {
		return "amount"
	}
	return symbol
}

func collectDeclaredAccounts(resolved *include.ResolvedJournal) map[string]bool {
	declared := make(map[string]bool)
	for _, dir := range resolved.AllDirectives() {
		if ad, ok := dir.(ast.AccountDirective); ok {
			declared[ad.Account.Name] = true
		}
	}
	return declared
}

func collectDeclaredCommodities(resolved *include.ResolvedJournal) map[string]bool {
	declared := make(map[string]bool)
	for _, dir := range resolved.AllDirectives() {
		if cd, ok := dir.(ast.CommodityDirective); ok {
			declared[cd.Commodity.Symbol] = true
		}
	}
	return declared
}

func checkUndeclaredAccounts(path string, tx *ast.Transaction, declared map[string]bool) []Diagnostic {
	var diags []Diagnostic
	for _, posting := range tx.Postings {
		if !declared[posting.Account.Name] {
			diags = append(diags, Diagnostic{
				Path:     path,
				Range:    posting.Range,
				Severity: SeverityWarning,
				Code:     "UNDECLARED_ACCOUNT",
				Message:  fmt.Sprintf("account '%s' is not declared", posting.Account.Name),
			})
		}
	}
	return diags
}

func checkUndeclaredCommodities(path string, tx *ast.Transaction, declared map[string]bool) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool)

	checkCommodity := func(symbol string, r ast.Range) {
		if symbol != "" && !declared[symbol] && !seen[symbol] {
			seen[symbol] = true
			diags = append(diags, Diagnostic{
				Path:     path,
				Range:    r,
				Severity: SeverityWarning,
				Code:     "UNDECLARED_COMMODITY",
				Message:  fmt.Sprintf("commodity '%s' has no directive", symbol),
			})
		}
	}

	for _, posting := range tx.Postings {
		if posting.Amount != nil {
			checkCommodity(posting.Amount.Commodity.Symbol, posting.Amount.Commodity.Range)
		}
		if posting.Cost != nil {
			checkCommodity(posting.Cost.Amount.Commodity.Symbol, posting.Cost.Amount.Commodity.Range)
		}
	}
	return diags
}
