package validation

import (
	"math"
	"testing"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	RequiredID("clientId", 0, v)
	PositiveFloat("hours", 0, v)
	RangeFloat("discount", 120, 0, 100, v)
	Finite("basePrice", math.Inf(1), v)
	Date("dueDate", "2026-13-01", v)
	OneOf("status", "archived", []string{"pending", "sent"}, v)
	want := map[string]string{
		"name":      "required",
		"clientId":  "required",
		"hours":     "must_be_positive",
		"discount":  "out_of_range",
		"basePrice": "out_of_range",
		"dueDate":   "invalid_choice",
		"status":    "invalid_choice",
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: got %q want %q", field, v[field], code)
		}
	}
}

func TestValidatorsAccept(t *testing.T) {
	v := Violations{}
	Required("name", "Dupont", v)
	RequiredID("clientId", 3, v)
	PositiveFloat("hours", 1.5, v)
	RangeFloat("discount", 0, 0, 100, v)
	Finite("basePrice", 80, v)
	Date("dueDate", "2026-05-01", v)
	OneOf("status", "sent", []string{"pending", "sent"}, v)
	if !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
}
