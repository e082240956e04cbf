package vision

import (
	"strings"
	"testing"
)

func TestExtractItemsJSONStripsFences(t *testing.T) {
	text := "```json\n[{\"name\": \"Flat White\", \"category\": \"Coffee\", \"price\": 32}]\n```"

	items, err := ExtractItemsJSON(text)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Flat White" {
		t.Fatalf("items: %+v", items)
	}
}

func TestExtractItemsJSONStripsCommentsAndTrailingCommas(t *testing.T) {
	text := `Here is the menu data you asked for:
[
  // the first section
  {"name": "Americano", "category": "Coffee", "price": 28,},
  /* second
     section */
  {"name": "Cortado", "category": "Coffee", "price": 30},
]
Let me know if you need anything else.`

	items, err := ExtractItemsJSON(text)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items: %+v", items)
	}
	if items[1].Name != "Cortado" {
		t.Fatalf("second item: %+v", items[1])
	}
}

func TestExtractItemsJSONUsesOutermostBrackets(t *testing.T) {
	text := `noise [{"name": "Burger", "category": "Mains", "price": 85, "variantGroups": [{"name": "Size", "options": ["Single", "Double"]}]}] noise`

	items, err := ExtractItemsJSON(text)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 1 || len(items[0].VariantGroups) != 1 {
		t.Fatalf("items: %+v", items)
	}
	opts := items[0].VariantGroups[0].Options
	if len(opts) != 2 || !opts[0].IsText || opts[0].Text != "Single" {
		t.Fatalf("options: %+v", opts)
	}
}

func TestExtractItemsJSONNoArrayIsEmpty(t *testing.T) {
	items, err := ExtractItemsJSON("I could not find any menu items on this page.")
	if err != nil {
		t.Fatalf("no array must not be an error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items: %+v", items)
	}
}

func TestExtractItemsJSONMalformedArrayFails(t *testing.T) {
	_, err := ExtractItemsJSON(`[{"name": "Burger", "price": }]`)
	if err == nil {
		t.Fatal("malformed array must fail")
	}
	if !strings.Contains(err.Error(), "parse extracted items") {
		t.Fatalf("error: %v", err)
	}
}
