package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func labels(items []LineItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildItemsNamedMaterials(t *testing.T) {
	items := BuildItems(ItemsInput{
		ServiceName:  "Remplacement chauffe-eau",
		ServicePrice: 100,
		Hours:        1.5,
		LaborRate:    65,
		Materials:    []MaterialLine{{Name: "Pipe", Price: 30}, {Name: "Valve", Price: 20}},
	})
	want := []string{
		SectionService, "Remplacement chauffe-eau",
		SectionMaterials, "Pipe", "Valve",
		SectionLabor, "Main-d'œuvre (1.5h)",
	}
	if got := labels(items); !equalStrings(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	materials := decimal.Zero
	for _, it := range items[3:5] {
		materials = materials.Add(it.Total)
	}
	if !materials.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("materials subtotal = %s, want 50", materials)
	}
	labor := items[6]
	if labor.Quantity != "1.50" || !labor.UnitPrice.Equal(decimal.NewFromInt(65)) || !labor.Total.Equal(decimal.RequireFromString("97.5")) {
		t.Fatalf("unexpected labor row %+v", labor)
	}
	if items[1].Quantity != "1" {
		t.Fatalf("service quantity = %q", items[1].Quantity)
	}
	for _, i := range []int{0, 2, 5} {
		if !items[i].Section || !items[i].Total.IsZero() {
			t.Fatalf("row %d should be a zero section header", i)
		}
	}
}

func TestBuildItemsAggregate(t *testing.T) {
	items := BuildItems(ItemsInput{ServiceName: "Fuite", ServicePrice: 80, Hours: 1, LaborRate: 65, MaterialsTotal: 42})
	want := []string{SectionService, "Fuite", SectionMaterials, SectionMaterials, SectionLabor, "Main-d'œuvre (1h)"}
	if got := labels(items); !equalStrings(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	if !items[3].Total.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("aggregate row total = %s", items[3].Total)
	}
}

func TestBuildItemsWithoutMaterials(t *testing.T) {
	items := BuildItems(ItemsInput{ServiceName: "Diagnostic", ServicePrice: 50, Hours: 0.5, LaborRate: 60})
	want := []string{SectionService, "Diagnostic", SectionLabor, "Main-d'œuvre (0.5h)"}
	if got := labels(items); !equalStrings(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
}

func TestMaterialLineLabel(t *testing.T) {
	if (MaterialLine{}).Label() != "Matériau" {
		t.Fatalf("expected default label")
	}
}
