package menu

import "encoding/json"

// CorrectPrice fixes the most common extraction mistake: the model returning
// minor units (cents) instead of currency. Anything above 1000 is assumed to
// be cents and divided by 100.
func CorrectPrice(price float64) float64 {
	if price > 1000 {
		return price / 100
	}
	return price
}

// CorrectRawPrice applies CorrectPrice to an untrusted JSON value. Strings,
// nulls, objects and missing values all fail closed to 0.
func CorrectRawPrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return CorrectPrice(v)
}
