package catalog

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
	"github.com/TableAdmin-lab/productloaderV2/internal/util"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s, err := Load(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func simpleSubmission(name string) internal.ProductSubmission {
	return internal.ProductSubmission{
		ProductName:   name,
		UOM:           "ea",
		PrepLocation:  "Kitchen",
		MenuCategory:  "Mains",
		ProductType:   internal.TypeFinishedGood,
		TaxApplicable: "true",
		DefaultPrice:  util.FloatPtr(85),
	}
}

func TestAddProductRequiresDefaults(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.AddProduct(simpleSubmission("Burger"), false); err == nil {
		t.Fatal("add before defaults must fail")
	}
}

func TestAddProductAllocatesCounter(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetDefaults("Demo Cafe", "no"); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	rows, err := s.AddProduct(simpleSubmission("Burger"), false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(rows) != 1 || rows[0].ProductGroupID != "1001" {
		t.Fatalf("first group id: %+v", rows)
	}
	if rows[0].Site != "Demo Cafe" {
		t.Fatalf("site: %q", rows[0].Site)
	}

	rows, err = s.AddProduct(simpleSubmission("Toastie"), false)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if rows[0].ProductGroupID != "1002" {
		t.Fatalf("second group id: %q", rows[0].ProductGroupID)
	}
}

func TestAddProductCustomPLU(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetDefaults("Demo Cafe", "yes"); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	data := simpleSubmission("Burger")
	data.CustomPLU = "BURG01"
	rows, err := s.AddProduct(data, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rows[0].ProductGroupID != "BURG01" || rows[0].ProductPLU != "PLU-BURG01" {
		t.Fatalf("rows: %+v", rows)
	}

	dup := simpleSubmission("Other Burger")
	dup.CustomPLU = "BURG01"
	if _, err := s.AddProduct(dup, false); err == nil || !strings.Contains(err.Error(), "BURG01") {
		t.Fatalf("duplicate PLU must name the clash, got %v", err)
	}

	missing := simpleSubmission("Third")
	if _, err := s.AddProduct(missing, false); err == nil {
		t.Fatal("custom PLU is required in yes mode")
	}
}

func TestAddProductZeroPriceVariant(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetDefaults("Demo Cafe", "no"); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	data := simpleSubmission("Margherita")
	data.VariantGroups = []internal.SubmissionVariantGroup{{GroupName: "Size", Options: []internal.SubmissionOption{{Name: "Small"}, {Name: "Large"}}}}
	data.VariantPricing = []internal.SubmissionPrice{
		{Combination: "Size:Small", SellingPrice: util.FloatPtr(0)},
		{Combination: "Size:Large", SellingPrice: util.FloatPtr(120)},
	}

	if _, err := s.AddProduct(data, false); !errors.Is(err, ErrZeroPriceVariant) {
		t.Fatalf("want ErrZeroPriceVariant, got %v", err)
	}

	rows, err := s.AddProduct(data, true)
	if err != nil {
		t.Fatalf("allow zero: %v", err)
	}
	if len(rows) != 2 || rows[0].SellingPrice != 0 {
		t.Fatalf("rows: %+v", rows)
	}
}

func TestUpdateProductReplacesGroup(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetDefaults("Demo Cafe", "no"); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	first, err := s.AddProduct(simpleSubmission("Burger"), false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddProduct(simpleSubmission("Toastie"), false); err != nil {
		t.Fatalf("second add: %v", err)
	}

	groupID := first[0].ProductGroupID
	updated := simpleSubmission("Cheese Burger")
	updated.DefaultPrice = util.FloatPtr(95)

	rows, err := s.UpdateProduct(groupID, updated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rows[0].NameAndVariant != "Cheese Burger" || rows[0].SellingPrice != 95 {
		t.Fatalf("rows: %+v", rows)
	}

	if len(s.Products()) != 2 {
		t.Fatalf("products: %+v", s.Products())
	}
	if s.RelatedCount(groupID) != 1 {
		t.Fatalf("group rows: %d", s.RelatedCount(groupID))
	}

	if _, err := s.UpdateProduct("9999", updated); err == nil {
		t.Fatal("updating a missing group must fail")
	}
}

func TestRemoveGroupKeepsCounter(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetDefaults("Demo Cafe", "no"); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	data := internal.ProductSubmission{
		ProductName:      "House Beef Patty",
		UOM:              "kg",
		PrepLocation:     "Kitchen",
		MenuCategory:     "Burgers",
		ProductType:      internal.TypeFinishedAndRaw,
		InvCategory:      "Meat",
		SuppliedQuantity: "5",
		DefaultCost:      util.FloatPtr(50),
		DefaultPrice:     util.FloatPtr(40),
		TaxApplicable:    "true",
	}
	rows, err := s.AddProduct(data, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: %+v", rows)
	}

	removed, err := s.RemoveGroup(rows[0].ProductGroupID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed: %d", removed)
	}
	if len(s.Products()) != 0 {
		t.Fatalf("products: %+v", s.Products())
	}

	next, err := s.AddProduct(simpleSubmission("Burger"), false)
	if err != nil {
		t.Fatalf("add after remove: %v", err)
	}
	if next[0].ProductGroupID != "1002" {
		t.Fatalf("counter must not rewind: %q", next[0].ProductGroupID)
	}

	if _, err := s.RemoveGroup("nope"); err == nil {
		t.Fatal("removing a missing group must fail")
	}
}

func TestModifierGroupLifecycle(t *testing.T) {
	s := newTestSession(t)

	opts := []internal.ModifierOption{{Name: "Bacon", Price: 15}}
	if err := s.AddModifierGroup("Extras", opts); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddModifierGroup("extras", opts); err == nil {
		t.Fatal("duplicate name must fail case-insensitively")
	}
	if err := s.AddModifierGroup("", opts); err == nil {
		t.Fatal("empty name must fail")
	}
	if err := s.AddModifierGroup("Sauces", nil); err == nil {
		t.Fatal("empty options must fail")
	}

	if err := s.RemoveModifierGroup("EXTRAS"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(s.ModifierGroups()) != 0 {
		t.Fatalf("groups: %+v", s.ModifierGroups())
	}
	if err := s.RemoveModifierGroup("Extras"); err == nil {
		t.Fatal("removing a missing group must fail")
	}
}

func TestRememberCategories(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetDefaults("Demo Cafe", "no"); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	if _, err := s.AddProduct(simpleSubmission("Burger"), false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.State().LastUsedCategories.Prep != "Kitchen" || s.State().LastUsedCategories.Menu != "Mains" {
		t.Fatalf("categories: %+v", s.State().LastUsedCategories)
	}

	if err := s.SetRememberCategories(false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	other := simpleSubmission("Toastie")
	other.MenuCategory = "Breakfast"
	if _, err := s.AddProduct(other, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.State().LastUsedCategories.Menu != "Mains" {
		t.Fatalf("categories must freeze when remembering is off: %+v", s.State().LastUsedCategories)
	}
}
