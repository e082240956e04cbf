package util

import (
	"regexp"
	"strconv"
	"strings"
)

var reAmountNoise = regexp.MustCompile(`[^0-9.,\-]`)

// ParseAmount reads a user- or menu-supplied money/quantity token. Currency
// symbols and spaces are dropped, a lone decimal comma becomes a dot.
// Anything unparseable is 0.
func ParseAmount(input string) float64 {
	s := reAmountNoise.ReplaceAllString(strings.TrimSpace(input), "")
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func FloatPtr(v float64) *float64 { return &v }

func Deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
