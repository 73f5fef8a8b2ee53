package analyzer

import (
	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
)

// CheckBalance verifies that the real and balanced-virtual postings of tx
// sum to zero per commodity. With exactly one posting lacking an amount,
// that posting absorbs the remainder of every commodity.
func CheckBalance(tx *ast.Transaction) *BalanceResult {
	result := NewBalanceResult()

	realIdx := balancingPostings(tx.Postings)
	inferredCount, inferredIdx := countInferredPostings(tx.Postings, realIdx)

	if inferredCount > 1 {
		result.Balanced = false
		return result
	}

	result.InferredIdx = inferredIdx
	sums := sumByCommodity(tx.Postings, realIdx)

	if inferredCount == 1 {
		for _, s := range sums.order {
			sum := sums.totals[s]
			if sum.IsZero() {
				continue
			}
			result.Inferred = append(result.Inferred, InferredAmount{
				Commodity: s,
				Quantity:  sum.Neg(),
				Style:     sums.styles[s],
			})
		}
		return result
	}

	for _, s := range sums.order {
		if sum := sums.totals[s]; !sum.IsZero() {
			result.Balanced = false
			result.Differences[s] = sum.Abs()
		}
	}

	return result
}

func balancingPostings(postings []ast.Posting) []int {
	idx := make([]int, 0, len(postings))
	for i, p := range postings {
		if p.Virtual == ast.VirtualNone || p.Virtual == ast.VirtualBalanced {
			idx = append(idx, i)
		}
	}
	return idx
}

func countInferredPostings(postings []ast.Posting, idx []int) (count int, last int) {
	last = -1
	for _, i := range idx {
		if postings[i].Amount == nil {
			count++
			last = i
		}
	}
	return
}

type commoditySums struct {
	order  []string
	totals map[string]decimal.Decimal
	styles map[string]ast.AmountStyle
}

func (s *commoditySums) add(commodity string, q decimal.Decimal, style ast.AmountStyle) {
	if _, ok := s.totals[commodity]; !ok {
		s.order = append(s.order, commodity)
		s.styles[commodity] = style
	} else if prev := s.styles[commodity]; style.Precision > prev.Precision {
		prev.Precision = style.Precision
		s.styles[commodity] = prev
	}
	s.totals[commodity] = s.totals[commodity].Add(q)
}

func sumByCommodity(postings []ast.Posting, idx []int) *commoditySums {
	sums := &commoditySums{
		totals: make(map[string]decimal.Decimal),
		styles: make(map[string]ast.AmountStyle),
	}

	for _, i := range idx {
		p := postings[i]
		if p.Amount == nil {
			continue
		}

		if p.Cost != nil {
			var quantity decimal.Decimal
			if p.Cost.IsTotal {
				quantity = p.Cost.Amount.Quantity
			} else {
				quantity = p.Cost.Amount.Quantity.Mul(p.Amount.Quantity.Abs())
			}
			if p.Amount.Quantity.IsNegative() {
				quantity = quantity.Neg()
			}
			sums.add(p.Cost.Amount.Commodity.Symbol, quantity, p.Cost.Amount.Style)
		} else {
			sums.add(p.Amount.Commodity.Symbol, p.Amount.Quantity, p.Amount.Style)
		}
	}

	return sums
}
