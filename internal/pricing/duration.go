package pricing

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	minutesOnly  = regexp.MustCompile(`(?i)^(\d+)\s*(min|m)$`)
	plainDecimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

// ParseHours converts free-form hour entries ("1h30", "45min", "1:30", "1,30", "2.5")
// into fractional hours. Unparseable or empty input yields 0.
func ParseHours(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if m := minutesOnly.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return nonNegative(float64(n) / 60)
		}
	}
	if strings.ContainsAny(s, "hH") {
		if v, ok := hoursAndMinutes(strings.ToLower(s), "h"); ok {
			return nonNegative(v)
		}
	}
	if strings.Contains(s, ":") {
		if v, ok := hoursAndMinutes(s, ":"); ok {
			return nonNegative(v)
		}
	}
	if strings.Contains(s, ",") {
		if v, ok := hoursAndMinutes(s, ","); ok {
			return nonNegative(v)
		}
	}
	if v, ok := number(strings.Replace(s, ",", ".", 1)); ok {
		return nonNegative(v)
	}
	return 0
}

// hoursAndMinutes reads the first two sep-separated fields ("1:30:00" is 1h30); minutes must fall in [0,59].
func hoursAndMinutes(s, sep string) (float64, bool) {
	parts := strings.SplitN(s, sep, 3)
	if len(parts) < 2 {
		return 0, false
	}
	hp, mp := parts[0], parts[1]
	h, ok := number(hp)
	if !ok {
		return 0, false
	}
	m, ok := number(mp)
	if !ok || m < 0 || m > 59 {
		return 0, false
	}
	return h + m/60, true
}

// number parses a plain decimal (digits and one dot). A blank part counts as zero so "2h" reads as two hours.
func number(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if !plainDecimal.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// Hours decodes either a JSON number or a free-form string run through ParseHours.
type Hours float64

func (h *Hours) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*h = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*h = Hours(nonNegative(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*h = Hours(ParseHours(s))
	return nil
}

func (h Hours) Float() float64 { return float64(h) }
