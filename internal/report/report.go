// Package report computes the dashboard aggregates from wallets, transactions
// and savings pockets. All functions are pure and assume their inputs are
// already consistent.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"danaku/internal/models"
)

// NoExpenseCategory is reported as the largest expense category when there
// are no expenses at all.
const NoExpenseCategory = "Belum Ada"

// OtherCategory collects expenses whose category is not one of the buckets.
const OtherCategory = "Lainnya"

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 5

// DefaultBuckets are the expense categories charted on the dashboard.
var DefaultBuckets = []string{"Jajan", "Kebutuhan", "Gaya Hidup", "Hutang"}

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// PocketStatus is a savings pocket with its progress towards the target.
type PocketStatus struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Target        decimal.Decimal `json:"target"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Percent       int64           `json:"percent"`
}

// Summary is everything the dashboard shows.
type Summary struct {
	TotalBalance        decimal.Decimal            `json:"total_balance"`
	BalanceByCurrency   map[string]decimal.Decimal `json:"balance_by_currency"`
	WalletCount         int                        `json:"wallet_count"`
	TransactionCount    int                        `json:"transaction_count"`
	LargestExpense      CategoryTotal              `json:"largest_expense"`
	ExpenseDistribution []CategoryTotal            `json:"expense_distribution"`
	Pockets             []PocketStatus             `json:"pockets"`
	RecentTransactions  []models.Transaction       `json:"recent_transactions"`
}

// TotalBalance sums wallet balances. Archived wallets are left out unless
// includeArchived is set. Currencies are not converted.
func TotalBalance(wallets []models.Wallet, includeArchived bool) decimal.Decimal {
	total := decimal.Zero
	for i := range wallets {
		if wallets[i].IsArchived && !includeArchived {
			continue
		}
		total = total.Add(wallets[i].Balance)
	}
	return total
}

// BalanceByCurrency sums the balances of active wallets per currency.
func BalanceByCurrency(wallets []models.Wallet) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for i := range wallets {
		if wallets[i].IsArchived {
			continue
		}
		out[wallets[i].Currency] = out[wallets[i].Currency].Add(wallets[i].Balance)
	}
	return out
}

// SignedSum is the balance implied by a set of transactions.
func SignedSum(txs []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].Delta())
	}
	return sum
}

func expenseTotals(txs []models.Transaction, bucket func(string) string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range txs {
		if txs[i].Type != models.TransactionTypeExpense {
			continue
		}
		key := bucket(txs[i].Category)
		totals[key] = totals[key].Add(txs[i].Amount)
	}
	return totals
}

// sortedTotals orders totals by amount descending, then by category name.
func sortedTotals(totals map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for category, amount := range totals {
		out = append(out, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// LargestExpenseCategory returns the category with the highest expense total.
// With no expenses it returns NoExpenseCategory and zero.
func LargestExpenseCategory(txs []models.Transaction) CategoryTotal {
	totals := sortedTotals(expenseTotals(txs, func(c string) string { return c }))
	if len(totals) == 0 {
		return CategoryTotal{Category: NoExpenseCategory, Amount: decimal.Zero}
	}
	return totals[0]
}

// ExpenseDistribution totals expenses per bucket, rolling every category that
// is not a bucket into OtherCategory. Empty buckets are omitted.
func ExpenseDistribution(txs []models.Transaction, buckets []string) []CategoryTotal {
	known := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		known[b] = struct{}{}
	}

	totals := expenseTotals(txs, func(c string) string {
		if _, ok := known[c]; ok {
			return c
		}
		return OtherCategory
	})
	for category, amount := range totals {
		if !amount.IsPositive() {
			delete(totals, category)
		}
	}
	return sortedTotals(totals)
}

var hundred = decimal.NewFromInt(100)

// PocketProgress is the rounded percentage of the target reached, never
// negative. A pocket without a positive target has no progress.
func PocketProgress(p *models.SavingsPocket) int64 {
	if !p.Target.IsPositive() {
		return 0
	}
	pct := p.CurrentAmount.Mul(hundred).Div(p.Target).Round(0).IntPart()
	if pct < 0 {
		return 0
	}
	return pct
}

// PocketStatuses pairs each pocket with its progress.
func PocketStatuses(pockets []models.SavingsPocket) []PocketStatus {
	out := make([]PocketStatus, 0, len(pockets))
	for _, p := range pockets {
		out = append(out, PocketStatusOf(p))
	}
	return out
}

// PocketStatusOf summarizes one pocket with its progress.
func PocketStatusOf(p models.SavingsPocket) PocketStatus {
	return PocketStatus{
		ID:            p.ID,
		Name:          p.Name,
		Target:        p.Target,
		CurrentAmount: p.CurrentAmount,
		Percent:       PocketProgress(&p),
	}
}

// RecentTransactions returns up to n transactions, newest date first and
// newest creation time first within a date. The input is not modified.
func RecentTransactions(txs []models.Transaction, n int) []models.Transaction {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Build assembles a Summary.
func Build(wallets []models.Wallet, txs []models.Transaction, pockets []models.SavingsPocket) *Summary {
	return &Summary{
		TotalBalance:        TotalBalance(wallets, false),
		BalanceByCurrency:   BalanceByCurrency(wallets),
		WalletCount:         len(wallets),
		TransactionCount:    len(txs),
		LargestExpense:      LargestExpenseCategory(txs),
		ExpenseDistribution: ExpenseDistribution(txs, DefaultBuckets),
		Pockets:             PocketStatuses(pockets),
		RecentTransactions:  RecentTransactions(txs, RecentLimit),
	}
}
