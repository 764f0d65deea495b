package pricing

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	SectionService   = "Prestation"
	SectionMaterials = "Matériaux"
	SectionLabor     = "Main-d'œuvre"

	defaultMaterialLabel = "Matériau"
)

// LineItem is either a section header (Section true, zero amounts) or a priced row.
type LineItem struct {
	Label     string
	Quantity  string
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Section   bool
}

// MaterialLine is a named material entered on a quote.
type MaterialLine struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Label falls back to a generic name when the entry was left blank.
func (m MaterialLine) Label() string {
	if m.Name == "" {
		return defaultMaterialLabel
	}
	return m.Name
}

// SumMaterials adds up named material prices.
func SumMaterials(lines []MaterialLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price))
	}
	return sum.InexactFloat64()
}

// ItemsInput carries what BuildItems needs. When Materials is non-empty it is
// listed row by row; otherwise MaterialsTotal becomes one aggregate row.
type ItemsInput struct {
	ServiceName    string
	ServicePrice   float64
	Hours          float64
	LaborRate      float64
	Materials      []MaterialLine
	MaterialsTotal float64
}

// BuildItems expands a quote into rows in a fixed order: service, materials, labor.
// The materials section is left out when it adds up to zero.
func BuildItems(in ItemsInput) []LineItem {
	items := []LineItem{
		section(SectionService),
		row(in.ServiceName, "1", decimal.NewFromFloat(in.ServicePrice), decimal.NewFromFloat(in.ServicePrice)),
	}

	materials := in.MaterialsTotal
	if len(in.Materials) > 0 {
		materials = SumMaterials(in.Materials)
	}
	if materials != 0 {
		items = append(items, section(SectionMaterials))
		if len(in.Materials) > 0 {
			for _, m := range in.Materials {
				p := decimal.NewFromFloat(m.Price)
				items = append(items, row(m.Label(), "1", p, p))
			}
		} else {
			p := decimal.NewFromFloat(materials)
			items = append(items, row(SectionMaterials, "1", p, p))
		}
	}

	rate := decimal.NewFromFloat(in.LaborRate)
	hours := decimal.NewFromFloat(in.Hours)
	items = append(items,
		section(SectionLabor),
		row(SectionLabor+" ("+strconv.FormatFloat(in.Hours, 'f', -1, 64)+"h)",
			strconv.FormatFloat(in.Hours, 'f', 2, 64), rate, rate.Mul(hours)),
	)
	return items
}

func section(label string) LineItem { return LineItem{Label: label, Section: true} }

func row(label, qty string, unit, total decimal.Decimal) LineItem {
	return LineItem{Label: label, Quantity: qty, UnitPrice: unit, Total: total}
}
