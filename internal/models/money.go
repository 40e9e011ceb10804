package models

import "github.com/shopspring/decimal"

// Money columns are NUMERIC(20,4) on Postgres (see migrations/). The GORM
// tags declare them as text so that SQLite, which would otherwise give them
// REAL affinity, keeps every digit.
const (
	MoneyScale         = 4
	MoneyIntegerDigits = 16
)

var moneyLimit = decimal.New(1, MoneyIntegerDigits)

// FitsMoney reports whether d can be stored in a money column without
// rounding or overflow.
func FitsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale)) && d.Abs().LessThan(moneyLimit)
}
