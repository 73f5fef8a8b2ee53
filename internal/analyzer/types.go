package analyzer

import (
	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
)

type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota
	SeverityWarning
	SeverityInfo
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "info"
}

type Diagnostic struct {
	Path     string
	Range    ast.Range
	Severity DiagnosticSeverity
	Message  string
	Code     string
}

type AnalysisResult struct {
	Diagnostics []Diagnostic
}

func (r *AnalysisResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// InferredAmount is one commodity of the amount hledger would give an
// elided posting.
type InferredAmount struct {
	Commodity string
	Quantity  decimal.Decimal
	Style     ast.AmountStyle
}

type BalanceResult struct {
	Balanced    bool
	Differences map[string]decimal.Decimal
	InferredIdx int
	Inferred    []InferredAmount
}

func NewBalanceResult() *BalanceResult {
	return &BalanceResult{
		Balanced:    true,
		Differences: make(map[string]decimal.Decimal),
		InferredIdx: -1,
	}
}
