package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name                                   string
		service, materials, hours, rate, disc float64
		want                                   float64
	}{
		{"discounted", 100, 20, 2, 50, 10, 198},
		{"no discount", 80, 0, 1.5, 65, 0, 178},
		{"half rounds up", 0, 0.5, 0, 0, 0, 1},
		{"full discount", 100, 0, 1, 65, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Price(tt.service, tt.materials, tt.hours, tt.rate, tt.disc); got != tt.want {
				t.Errorf("Price() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	items := BuildItems(ItemsInput{
		ServiceName:  "Débouchage",
		ServicePrice: 100,
		Hours:        2,
		LaborRate:    50,
		Materials:    []MaterialLine{{Name: "Pipe", Price: 30}, {Name: "Valve", Price: 20}},
	})
	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	tot := ComputeTotals(items, 10, date)
	check := func(name string, got decimal.Decimal, want string) {
		t.Helper()
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
	check("subtotal", tot.Subtotal, "250")
	check("discount", tot.DiscountAmount, "25")
	check("tax", tot.Tax, "22.5")
	check("total", tot.Total, "247.5")
	if tot.TaxRate != TaxRate || !tot.Date.Equal(date) {
		t.Fatalf("unexpected rate/date %+v", tot)
	}
}
