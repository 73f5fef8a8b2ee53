package budget

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juev/hledger-autobudget/internal/book"
	"github.com/juev/hledger-autobudget/internal/include"
	"github.com/juev/hledger-autobudget/internal/testutil"
)

func TestAugment_GeneratedIncludeTree(t *testing.T) {
	mainPath, err := testutil.GenerateIncludeTree(t.TempDir(), 3, 40)
	require.NoError(t, err)

	resolved, errs := include.NewLoader().Load(mainPath)
	require.Empty(t, errs)
	store := book.NewMemoryStore()
	ledger := book.New(resolved, book.WithStore(store))

	report, err := Augment(context.Background(), ledger, Options{})
	require.NoError(t, err)

	assert.Equal(t, 120, report.Scanned)
	// i = 0, 22, 33 per file; i = 11 spends on Gifts and stays unbudgeted
	assert.Equal(t, 3*3, report.AlreadyBudgeted)
	assert.Positive(t, report.NoQualifying)
	assert.Equal(t, report.Scanned, report.AlreadyBudgeted+report.NoQualifying+report.Augmented)
	assert.Equal(t, 3, store.Saves())
	_, touched := store.Content(mainPath)
	assert.False(t, touched)

	gifts, ok := ledger.AccountByPath("Expenses:Gifts")
	require.True(t, ok)
	_, paired := report.Correspondence.Lookup(gifts)
	assert.False(t, paired)
	_, exists := ledger.AccountByPath("Budget:Gifts")
	assert.False(t, exists)

	for _, tx := range ledger.Transactions() {
		sums := make(map[string]decimal.Decimal)
		for _, s := range tx.Splits {
			sums[s.Commodity] = sums[s.Commodity].Add(s.Amount)
		}
		for commodity, sum := range sums {
			assert.True(t, sum.IsZero(), "%s:%d %s off by %s", tx.Source.Path, tx.Source.StartLine, commodity, sum)
		}
	}

	// a second pass over the written files changes nothing
	for _, f := range resolved.Files[1:] {
		written, ok := store.Content(f.Path)
		require.True(t, ok)
		assert.Equal(t, written, f.Content)
	}
	again, err := Augment(context.Background(), ledger, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Augmented)
}
