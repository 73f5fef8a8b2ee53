package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var expenseAccounts = []string{
	"Everyday:Groceries",
	"Everyday:Restaurants",
	"Transport:Fuel",
	"Utilities:Electricity",
	"Utilities:Water",
	"Gifts",
}

// unbudgeted has no envelope under Budget.
const unbudgeted = "Gifts"

var fundingAccounts = []string{
	"Assets:Bank:Checking",
	"Assets:Cash",
	"Liabilities:Credit:Visa",
}

var commodities = []string{"$", "EUR", "RUB"}

// AccountsHeader declares the budget structure every generated journal
// relies on. Gifts has no budget envelope.
func AccountsHeader() string {
	var sb strings.Builder
	sb.WriteString("account Expenses  ; type: X\n")
	for _, acc := range expenseAccounts {
		fmt.Fprintf(&sb, "account Expenses:%s\n", acc)
	}
	sb.WriteString("account Budget  ; type: A\n")
	sb.WriteString("account Budget:Budgeted Funds  ; type: L\n")
	sb.WriteString("account Budget:Available to Budget\n")
	for _, acc := range expenseAccounts {
		if acc != unbudgeted {
			fmt.Fprintf(&sb, "account Budget:%s\n", acc)
		}
	}
	for _, acc := range fundingAccounts {
		fmt.Fprintf(&sb, "account %s\n", acc)
	}
	sb.WriteString("\n")
	return sb.String()
}

// GenerateJournal writes numTransactions expense transactions. Every
// fourth spends on two envelopes, every ninth is a refund and every
// eleventh already carries its budget postings, unless it spends on
// Gifts.
func GenerateJournal(numTransactions int) string {
	var sb strings.Builder

	for i := range numTransactions {
		year := 2020 + (i / 365)
		month := (i/30)%12 + 1
		day := i%28 + 1

		expense := expenseAccounts[i%len(expenseAccounts)]
		funding := fundingAccounts[i%len(fundingAccounts)]
		commodity := commodities[i%len(commodities)]
		amount := (i%1000 + 1) * 10
		if i%9 == 0 {
			amount = -amount
		}

		fmt.Fprintf(&sb, "%04d-%02d-%02d * Payee %d | Transaction note\n", year, month, day, i)
		fmt.Fprintf(&sb, "    Expenses:%s  %s\n", expense, money(commodity, amount))

		if i%4 == 0 {
			second := expenseAccounts[(i+1)%len(expenseAccounts)]
			fmt.Fprintf(&sb, "    Expenses:%s  %s\n", second, money(commodity, 150))
		}
		if i%11 == 0 && expense != unbudgeted {
			fmt.Fprintf(&sb, "    Budget:%s  %s\n", expense, money(commodity, -amount))
			fmt.Fprintf(&sb, "    Budget:Budgeted Funds  %s\n", money(commodity, amount))
		}

		fmt.Fprintf(&sb, "    %s\n", funding)

		if i%10 == 0 {
			fmt.Fprintf(&sb, "    ; tag:value%d\n", i)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// GenerateBudgetJournal is GenerateJournal with the account declarations
// in front.
func GenerateBudgetJournal(numTransactions int) string {
	return AccountsHeader() + GenerateJournal(numTransactions)
}

func money(commodity string, cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", commodity, sign, cents/100, cents%100)
}

// GenerateIncludeTree writes a main.journal holding the account
// declarations and including numFiles files of txPerFile transactions.
func GenerateIncludeTree(tmpDir string, numFiles, txPerFile int) (string, error) {
	var mainContent strings.Builder
	mainContent.WriteString(AccountsHeader())

	for i := range numFiles {
		filename := fmt.Sprintf("file%d.journal", i)
		fmt.Fprintf(&mainContent, "include %s\n", filename)

		content := GenerateJournal(txPerFile)
		filePath := filepath.Join(tmpDir, filename)
		if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
			return "", err
		}
	}

	mainPath := filepath.Join(tmpDir, "main.journal")
	if err := os.WriteFile(mainPath, []byte(mainContent.String()), 0o644); err != nil {
		return "", err
	}

	return mainPath, nil
}
