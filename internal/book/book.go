package book

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/analyzer"
	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/formatter"
	"github.com/juev/hledger-autobudget/internal/include"
)

// Book is an in-memory ledger built from a resolved journal. Accounts and
// transactions live in arenas and refer to each other by index.
type Book struct {
	accounts []*Account
	byPath   map[string]AccountID
	txs      []*Transaction

	files   []*include.File
	formats map[string]formatter.NumberFormat
	store   Store
	logger  *zap.Logger
}

type Option func(*Book)

func WithStore(store Store) Option {
	return func(b *Book) { b.store = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Book) { b.logger = logger }
}

func New(resolved *include.ResolvedJournal, opts ...Option) *Book {
	b := &Book{
		byPath:  make(map[string]AccountID),
		formats: make(map[string]formatter.NumberFormat),
		store:   NewMemoryStore(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if resolved == nil {
		return b
	}

	b.files = resolved.Files
	b.formats = formatter.ExtractCommodityFormats(resolved.AllDirectives())

	for _, f := range resolved.Files {
		for _, dir := range f.Journal.Directives {
			if ad, ok := dir.(ast.AccountDirective); ok {
				b.declare(ad)
			}
		}
	}
	for _, f := range resolved.Files {
		for i := range f.Journal.Transactions {
			b.addTransaction(f, &f.Journal.Transactions[i])
		}
	}
	b.resolveTypes()

	b.logger.Debug("book built",
		zap.Int("accounts", len(b.accounts)),
		zap.Int("transactions", len(b.txs)))
	return b
}

func (b *Book) declare(ad ast.AccountDirective) {
	id := b.ensureAccount(ad.Account.Name)
	acc := b.accounts[id]
	acc.Declared = true
	if value, ok := ad.Tag("type"); ok {
		if t, known := ParseAccountType(value); known {
			acc.explicitType = t
		} else {
			b.logger.Warn("unknown account type",
				zap.String("account", acc.Path),
				zap.String("type", value))
		}
	}
	if _, ok := ad.Tag("placeholder"); ok {
		acc.Placeholder = true
	}
}

// ensureAccount returns the account at path, creating it and any missing
// ancestors.
func (b *Book) ensureAccount(path string) AccountID {
	if id, ok := b.byPath[path]; ok {
		return id
	}

	parent := NoAccount
	name := path
	if idx := strings.LastIndex(path, ":"); idx >= 0 {
		parent = b.ensureAccount(path[:idx])
		name = path[idx+1:]
	}

	id := AccountID(len(b.accounts))
	b.accounts = append(b.accounts, &Account{
		ID:     id,
		Name:   name,
		Path:   path,
		Parent: parent,
	})
	b.byPath[path] = id
	if parent != NoAccount {
		b.accounts[parent].Children = append(b.accounts[parent].Children, id)
	}
	return id
}

func (b *Book) resolveTypes() {
	for _, acc := range b.accounts {
		acc.Type = b.effectiveType(acc)
	}
}

func (b *Book) effectiveType(acc *Account) AccountType {
	top := acc
	for cur := acc; cur != nil; {
		if cur.explicitType != TypeUnknown {
			return cur.explicitType
		}
		top = cur
		if cur.Parent == NoAccount {
			break
		}
		cur = b.accounts[cur.Parent]
	}
	return inferAccountType(top.Name)
}

func (b *Book) addTransaction(f *include.File, node *ast.Transaction) {
	id := TxID(len(b.txs))
	tx := &Transaction{
		ID:          id,
		Date:        time.Date(node.Date.Year, time.Month(node.Date.Month), node.Date.Day, 0, 0, 0, 0, time.UTC),
		Description: node.Description,
		Source: Source{
			Path:      f.Path,
			StartLine: node.Range.Start.Line,
			EndLine:   node.Range.End.Line,
			Indent:    postingIndent(f.Content, node),
		},
		node: node,
	}

	balance := analyzer.CheckBalance(node)
	for i, p := range node.Postings {
		account := b.ensureAccount(p.Account.Name)
		if p.Amount != nil {
			tx.Splits = append(tx.Splits, Split{
				Tx:        id,
				Account:   account,
				Amount:    p.Amount.Quantity,
				Commodity: p.Amount.Commodity.Symbol,
				Style:     p.Amount.Style,
				Virtual:   p.Virtual,
			})
			continue
		}
		if i != balance.InferredIdx || !balance.Balanced {
			continue
		}
		for _, inferred := range balance.Inferred {
			tx.Splits = append(tx.Splits, Split{
				Tx:        id,
				Account:   account,
				Amount:    inferred.Quantity,
				Commodity: inferred.Commodity,
				Style:     inferred.Style,
				Virtual:   p.Virtual,
				Inferred:  true,
			})
		}
	}

	b.txs = append(b.txs, tx)
}

func postingIndent(content string, node *ast.Transaction) string {
	if len(node.Postings) == 0 {
		return ""
	}
	start := node.Postings[0].Range.Start
	lineStart := start.Offset - (start.Column - 1)
	if lineStart < 0 || start.Offset > len(content) {
		return ""
	}
	indent := content[lineStart:start.Offset]
	if strings.Trim(indent, " \t") != "" {
		return ""
	}
	return indent
}

func (b *Book) AccountByPath(path string) (AccountID, bool) {
	id, ok := b.byPath[path]
	return id, ok
}

func (b *Book) Account(id AccountID) *Account {
	if id < 0 || int(id) >= len(b.accounts) {
		return nil
	}
	return b.accounts[id]
}

// Accounts returns every account ordered by path.
func (b *Book) Accounts() []*Account {
	result := make([]*Account, len(b.accounts))
	copy(result, b.accounts)
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// Descendants returns every account below id, depth first, children in
// path order.
func (b *Book) Descendants(id AccountID) []AccountID {
	acc := b.Account(id)
	if acc == nil {
		return nil
	}
	var result []AccountID
	children := append([]AccountID(nil), acc.Children...)
	sort.Slice(children, func(i, j int) bool {
		return b.accounts[children[i]].Name < b.accounts[children[j]].Name
	})
	for _, child := range children {
		result = append(result, child)
		result = append(result, b.Descendants(child)...)
	}
	return result
}

func (b *Book) Transactions() []*Transaction {
	return b.txs
}

func (b *Book) Transaction(id TxID) *Transaction {
	if id < 0 || int(id) >= len(b.txs) {
		return nil
	}
	return b.txs[id]
}

// AddSplit appends a split to a transaction and marks it dirty. Existing
// splits are never touched.
func (b *Book) AddSplit(tx TxID, account AccountID, amount decimal.Decimal, commodity string, style ast.AmountStyle) error {
	t := b.Transaction(tx)
	if t == nil {
		return fmt.Errorf("unknown transaction %d", tx)
	}
	if b.Account(account) == nil {
		return fmt.Errorf("unknown account %d", account)
	}
	t.Splits = append(t.Splits, Split{
		Tx:        tx,
		Account:   account,
		Amount:    amount,
		Commodity: commodity,
		Style:     style,
		Added:     true,
	})
	t.Dirty = true
	return nil
}

// Balance sums the splits of the account and all its descendants per
// commodity. Unbalanced virtual postings are included, as in hledger.
func (b *Book) Balance(id AccountID) map[string]decimal.Decimal {
	members := map[AccountID]bool{id: true}
	for _, d := range b.Descendants(id) {
		members[d] = true
	}

	balances := make(map[string]decimal.Decimal)
	for _, tx := range b.txs {
		for _, s := range tx.Splits {
			if members[s.Account] {
				balances[s.Commodity] = balances[s.Commodity].Add(s.Amount)
			}
		}
	}
	return balances
}
