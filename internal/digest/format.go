package digest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatRupiah renders an amount the way Indonesian currency is written,
// rounded to whole rupiah: "Rp 1.234.567", "-Rp 50.000".
func FormatRupiah(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "Rp " + message.NewPrinter(language.Indonesian).Sprintf("%d", rounded.IntPart())
}

// FormatDate renders t's calendar date as day/month/year without padding,
// for example "7/1/2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}
