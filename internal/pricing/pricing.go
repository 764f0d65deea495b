package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the fixed VAT percentage applied after discount.
const TaxRate = 10

var hundred = decimal.NewFromInt(100)

// Price returns the quote amount rounded half-up to the whole currency unit:
// base = service + materials + hours*rate, amount = base - base*discount/100.
func Price(servicePrice, materialsTotal, hours, laborRate, discountPercent float64) float64 {
	base := decimal.NewFromFloat(servicePrice).
		Add(decimal.NewFromFloat(materialsTotal)).
		Add(decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(laborRate)))
	off := base.Mul(decimal.NewFromFloat(discountPercent)).Div(hundred)
	return base.Sub(off).Round(0).InexactFloat64()
}

// Totals is the summary printed under the item table.
type Totals struct {
	Subtotal        decimal.Decimal
	DiscountPercent float64
	DiscountAmount  decimal.Decimal
	TaxRate         float64
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Date            time.Time
}

// ComputeTotals sums priced rows, then applies discount and tax without intermediate rounding.
func ComputeTotals(items []LineItem, discountPercent float64, date time.Time) Totals {
	sub := decimal.Zero
	for _, it := range items {
		if it.Section {
			continue
		}
		sub = sub.Add(it.Total)
	}
	disc := sub.Mul(decimal.NewFromFloat(discountPercent)).Div(hundred)
	after := sub.Sub(disc)
	tax := after.Mul(decimal.NewFromInt(TaxRate)).Div(hundred)
	return Totals{
		Subtotal:        sub,
		DiscountPercent: discountPercent,
		DiscountAmount:  disc,
		TaxRate:         TaxRate,
		Tax:             tax,
		Total:           after.Add(tax),
		Date:            date,
	}
}
