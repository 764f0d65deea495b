package pdf

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ")

// FormatCurrency renders an amount as "1 234,50 €" with plain spaces as group separators.
func FormatCurrency(v decimal.Decimal) string {
	s := frPrinter.Sprintf("%.2f", v.Round(2).InexactFloat64())
	return spaceReplacer.Replace(s) + " €"
}

// FormatPercent prints a percentage without trailing zeros ("10", "12,5").
func FormatPercent(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).String(), ".", ",", 1)
}
