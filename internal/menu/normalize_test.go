package menu

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/TableAdmin-lab/productloaderV2/internal"
)

func TestNormalizeSimpleItem(t *testing.T) {
	items := []internal.RawMenuItem{
		{Name: "Flat White", Category: "Coffee", Price: raw(`3200`)},
		{Name: "Americano", Category: "Coffee", Price: raw(`28`)},
	}

	out := Normalize(items)
	if len(out) != 2 {
		t.Fatalf("items: %d", len(out))
	}
	if out[0].ID != 1 || out[1].ID != 2 {
		t.Fatalf("ids: %d %d", out[0].ID, out[1].ID)
	}
	if out[0].Price != 32 {
		t.Fatalf("cents price not corrected: %v", out[0].Price)
	}
	if out[1].Price != 28 {
		t.Fatalf("price changed: %v", out[1].Price)
	}
	if out[0].VariantGroups == nil || len(out[0].VariantGroups) != 0 {
		t.Fatalf("variant groups must be empty, not nil")
	}
	if out[0].VariantPricing == nil || len(out[0].VariantPricing) != 0 {
		t.Fatalf("variant pricing must be empty, not nil")
	}
}

func TestNormalizeExpandsCombinations(t *testing.T) {
	items := []internal.RawMenuItem{{
		Name:     "Pepperoni Deluxe",
		Category: "Pizza",
		Price:    raw(`4600`),
		VariantPricing: []internal.RawVariantPrice{
			{"Size": raw(`"Small"`), "price": raw(`0`)},
			{"Size": raw(`"Large"`), "price": raw(`44`)},
		},
		VariantGroups: []internal.RawVariantGroup{
			{Name: "Size", Options: []internal.RawOption{textOpt("Small"), textOpt("Large")}},
			{Name: "Base", Options: []internal.RawOption{
				textOpt("Standard"),
				fieldOpt(map[string]string{"name": `"Gluten-free"`, "price": `49.5`}),
			}},
		},
	}}

	out := Normalize(items)
	item := out[0]
	if item.Price != 46 {
		t.Fatalf("base price: %v", item.Price)
	}
	if len(item.VariantGroups) != 2 {
		t.Fatalf("groups: %v", item.VariantGroups)
	}
	if item.VariantGroups[0].GroupName != "Size" || item.VariantGroups[1].GroupName != "Base" {
		t.Fatalf("group order: %v", item.VariantGroups)
	}
	if item.VariantGroups[1].Options[1].Type != "Gluten-free" {
		t.Fatalf("option shape: %v", item.VariantGroups[1].Options)
	}

	want := []internal.VariantPriceEntry{
		{Combination: "Size:Small;Base:Standard", Price: 46},
		{Combination: "Size:Small;Base:Gluten-free", Price: 95.5},
		{Combination: "Size:Large;Base:Standard", Price: 90},
		{Combination: "Size:Large;Base:Gluten-free", Price: 139.5},
	}
	if !reflect.DeepEqual(item.VariantPricing, want) {
		t.Fatalf("pricing:\n got %v\nwant %v", item.VariantPricing, want)
	}
}

func TestNormalizeStandardizesModifiers(t *testing.T) {
	items := []internal.RawMenuItem{{
		Name:  "Burger",
		Price: raw(`85`),
		ModifierGroups: []internal.RawModifierGroup{
			{GroupName: "Extras", Modifiers: []internal.RawModifierOption{
				{Name: "Bacon", Price: raw(`1500`)},
				{Name: "Cheese", Price: raw(`"free"`)},
			}},
			{Name: "Sauces", Options: []internal.RawModifierOption{
				{Name: "BBQ", Price: raw(`5`)},
			}},
		},
	}}

	out := Normalize(items)
	groups := out[0].ModifierGroups
	if len(groups) != 2 {
		t.Fatalf("groups: %v", groups)
	}
	if groups[0].GroupName != "Extras" || groups[1].GroupName != "Sauces" {
		t.Fatalf("names: %q %q", groups[0].GroupName, groups[1].GroupName)
	}
	if groups[0].Options[0].Price != 15 {
		t.Fatalf("cents modifier price: %v", groups[0].Options[0].Price)
	}
	if groups[0].Options[1].Price != 0 {
		t.Fatalf("unparseable modifier price: %v", groups[0].Options[1].Price)
	}
	if groups[1].Options[0].Name != "BBQ" || groups[1].Options[0].Price != 5 {
		t.Fatalf("options field: %v", groups[1].Options)
	}
}

// Canonical output fed back through the normalizer must come out unchanged:
// combination entries carry absolute prices, so base plus upcharge math must
// not reapply.
func TestNormalizeIdempotent(t *testing.T) {
	items := []internal.RawMenuItem{{
		Name:  "Pepperoni Deluxe",
		Price: raw(`4600`),
		VariantPricing: []internal.RawVariantPrice{
			{"Size": raw(`"Large"`), "price": raw(`44`)},
		},
		VariantGroups: []internal.RawVariantGroup{
			{Name: "Size", Options: []internal.RawOption{textOpt("Small"), textOpt("Large")}},
		},
		ModifierGroups: []internal.RawModifierGroup{
			{GroupName: "Extras", Modifiers: []internal.RawModifierOption{{Name: "Bacon", Price: raw(`15`)}}},
		},
	}}

	first := Normalize(items)

	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTrip []internal.RawMenuItem
	if err := json.Unmarshal(encoded, &roundTrip); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := Normalize(roundTrip)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\n first %+v\nsecond %+v", first, second)
	}
}
