package menu

import (
	"encoding/json"
	"testing"
)

func TestCorrectPrice(t *testing.T) {
	cases := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "passes through", input: 46, want: 46},
		{name: "boundary stays", input: 1000, want: 1000},
		{name: "cents divided", input: 4600, want: 46},
		{name: "large cents", input: 13990, want: 139.90},
		{name: "zero", input: 0, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CorrectPrice(tc.input); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestCorrectRawPrice(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "number", input: `42.9`, want: 42.9},
		{name: "cents", input: `4600`, want: 46},
		{name: "string fails closed", input: `"46"`, want: 0},
		{name: "null fails closed", input: `null`, want: 0},
		{name: "object fails closed", input: `{"amount": 46}`, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CorrectRawPrice(json.RawMessage(tc.input)); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}

	if got := CorrectRawPrice(nil); got != 0 {
		t.Fatalf("missing value: got %v want 0", got)
	}
}
