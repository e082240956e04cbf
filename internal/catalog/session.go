package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
	"github.com/TableAdmin-lab/productloaderV2/internal/util"
)

// ErrZeroPriceVariant flags a submission with at least one variant priced
// at 0. Callers decide whether that is a mistake or intentional.
var ErrZeroPriceVariant = errors.New("some variants have a 0.00 selling price")

// Session is the working catalog: the product rows built so far, the PLU
// counter, the session defaults and the shared modifier groups. Every
// mutation persists the whole state before returning.
type Session struct {
	db    *storage.DB
	state internal.SessionState
}

func Load(db *storage.DB) (*Session, error) {
	state, err := db.LoadSession()
	if err != nil {
		return nil, err
	}
	return &Session{db: db, state: state}, nil
}

func (s *Session) State() internal.SessionState {
	return s.state
}

func (s *Session) Products() []internal.CatalogRow {
	return s.state.Products
}

func (s *Session) ModifierGroups() []internal.ModifierGroup {
	return s.state.CurrentModifierGroups
}

func (s *Session) save() error {
	return s.db.SaveSession(s.state)
}

// SetDefaults records the site and the PLU mode for the session. Products
// cannot be added until this has happened once.
func (s *Session) SetDefaults(site, definePLU string) error {
	site = util.Sanitize(strings.TrimSpace(site))
	if site == "" {
		return errors.New("site is required")
	}
	if definePLU != "yes" && definePLU != "no" {
		return fmt.Errorf("define plu must be yes or no, got %q", definePLU)
	}

	s.state.SessionSite = site
	s.state.SessionDefinePLU = definePLU
	s.state.DefaultsSet = true
	return s.save()
}

func (s *Session) SetRememberCategories(on bool) error {
	s.state.RememberCategoriesChecked = on
	return s.save()
}

// AddProduct validates the form, expands it and appends the resulting rows.
// When the submission has zero-priced variants and allowZeroPrice is off it
// returns ErrZeroPriceVariant without touching the state.
func (s *Session) AddProduct(data internal.ProductSubmission, allowZeroPrice bool) ([]internal.CatalogRow, error) {
	if !s.state.DefaultsSet {
		return nil, errors.New("set session defaults first")
	}

	data = sanitizeSubmission(data)
	if errs := s.validate(data, ""); len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "; "))
	}
	if !allowZeroPrice && hasZeroPriceVariant(data) {
		return nil, ErrZeroPriceVariant
	}

	groupID := s.allocateGroupID(data)
	rows := s.materialize(data, groupID)

	s.state.Products = append(s.state.Products, rows...)
	if err := s.save(); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateProduct replaces every row of the group with a fresh expansion of
// the submission under the same group id.
func (s *Session) UpdateProduct(groupID string, data internal.ProductSubmission) ([]internal.CatalogRow, error) {
	if s.RelatedCount(groupID) == 0 {
		return nil, fmt.Errorf("no product with group id %q", groupID)
	}

	data = sanitizeSubmission(data)
	if errs := s.validate(data, groupID); len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "; "))
	}

	kept := make([]internal.CatalogRow, 0, len(s.state.Products))
	for _, row := range s.state.Products {
		if row.ProductGroupID != groupID {
			kept = append(kept, row)
		}
	}
	rows := s.materialize(data, groupID)
	s.state.Products = append(kept, rows...)

	if err := s.save(); err != nil {
		return nil, err
	}
	return rows, nil
}

// RemoveGroup deletes the whole group and reports how many rows went with
// it. The PLU counter never rewinds.
func (s *Session) RemoveGroup(groupID string) (int, error) {
	kept := make([]internal.CatalogRow, 0, len(s.state.Products))
	removed := 0
	for _, row := range s.state.Products {
		if row.ProductGroupID == groupID {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if removed == 0 {
		return 0, fmt.Errorf("no product with group id %q", groupID)
	}

	s.state.Products = kept
	if err := s.save(); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Session) RelatedCount(groupID string) int {
	count := 0
	for _, row := range s.state.Products {
		if row.ProductGroupID == groupID {
			count++
		}
	}
	return count
}

// GroupSource returns the submission a group was built from, for editing.
func (s *Session) GroupSource(groupID string) (*internal.ProductSubmission, error) {
	for _, row := range s.state.Products {
		if row.ProductGroupID == groupID {
			if row.Source == nil {
				return nil, fmt.Errorf("group %q has no stored source and cannot be edited", groupID)
			}
			return row.Source, nil
		}
	}
	return nil, fmt.Errorf("no product with group id %q", groupID)
}

// AddModifierGroup appends a session-wide modifier group. Names are unique
// case-insensitively.
func (s *Session) AddModifierGroup(name string, options []internal.ModifierOption) error {
	name = util.Sanitize(strings.TrimSpace(name))
	if name == "" {
		return errors.New("modifier group name is required")
	}
	if len(options) == 0 {
		return errors.New("modifier group needs at least one option")
	}
	for _, group := range s.state.CurrentModifierGroups {
		if strings.EqualFold(group.GroupName, name) {
			return fmt.Errorf("a modifier group named %q already exists", group.GroupName)
		}
	}

	clean := make([]internal.ModifierOption, 0, len(options))
	for _, opt := range options {
		optName := util.Sanitize(strings.TrimSpace(opt.Name))
		if optName == "" {
			continue
		}
		clean = append(clean, internal.ModifierOption{Name: optName, Price: opt.Price})
	}
	if len(clean) == 0 {
		return errors.New("modifier group needs at least one option")
	}

	s.state.CurrentModifierGroups = append(s.state.CurrentModifierGroups, internal.ModifierGroup{GroupName: name, Options: clean})
	return s.save()
}

func (s *Session) RemoveModifierGroup(name string) error {
	kept := make([]internal.ModifierGroup, 0, len(s.state.CurrentModifierGroups))
	found := false
	for _, group := range s.state.CurrentModifierGroups {
		if strings.EqualFold(group.GroupName, name) {
			found = true
			continue
		}
		kept = append(kept, group)
	}
	if !found {
		return fmt.Errorf("no modifier group named %q", name)
	}
	s.state.CurrentModifierGroups = kept
	return s.save()
}

// ReplaceModifierGroups swaps the whole set at once, as the edit dialog
// does. Duplicate names reject the whole replacement.
func (s *Session) ReplaceModifierGroups(groups []internal.ModifierGroup) error {
	seen := map[string]bool{}
	clean := make([]internal.ModifierGroup, 0, len(groups))
	for _, group := range groups {
		name := util.Sanitize(strings.TrimSpace(group.GroupName))
		if name == "" {
			return errors.New("modifier group name is required")
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("duplicate modifier group name: %q", name)
		}
		seen[strings.ToLower(name)] = true
		clean = append(clean, internal.ModifierGroup{GroupName: name, Options: group.Options})
	}
	s.state.CurrentModifierGroups = clean
	return s.save()
}

func (s *Session) Clear() error {
	if err := s.db.ClearSession(); err != nil {
		return err
	}
	state, err := s.db.LoadSession()
	if err != nil {
		return err
	}
	s.state = state
	return nil
}

func (s *Session) materialize(data internal.ProductSubmission, groupID string) []internal.CatalogRow {
	if s.state.RememberCategoriesChecked {
		s.state.LastUsedCategories = internal.LastUsedCategories{
			Prep: data.PrepLocation,
			Menu: data.MenuCategory,
			Inv:  data.InvCategory,
		}
	}
	return Expand(data, groupID, s.state.SessionSite, s.state.CurrentModifierGroups)
}

func (s *Session) allocateGroupID(data internal.ProductSubmission) string {
	if s.state.SessionDefinePLU == "yes" && data.CustomPLU != "" {
		return data.CustomPLU
	}
	s.state.PLUCounter++
	return strconv.Itoa(s.state.PLUCounter)
}

// validate mirrors the form checks: which fields a product needs depends on
// its type. editingGroupID exempts that group from the custom PLU clash
// check.
func (s *Session) validate(data internal.ProductSubmission, editingGroupID string) []string {
	var errs []string
	check := func(cond bool, message string) {
		if cond {
			errs = append(errs, message)
		}
	}

	check(data.ProductName == "", "product name is required")
	check(data.UOM == "", "selling UOM is required")
	check(data.ProductType == "", "product type is required")
	check(data.TaxApplicable == "", "tax applicable is required")

	finished := data.ProductType == internal.TypeFinishedGood || data.ProductType == internal.TypeFinishedAndRaw
	raw := data.ProductType == internal.TypeRawMaterial || data.ProductType == internal.TypeFinishedAndRaw

	if finished {
		check(data.PrepLocation == "", "preparation location is required")
		check(data.MenuCategory == "", "menu category is required")
	}
	if raw {
		check(data.InvCategory == "", "inventory category is required")
		check(data.SuppliedQuantity == "", "supplied quantity is required")
		check(data.DefaultCost == nil, "total cost price is required")
	}
	if data.ProductType == internal.TypeManufactured {
		check(data.InvCategory == "", "inventory category is required")
		check(data.YieldQuantity == "", "yield quantity is required")
	}
	if finished && len(data.VariantGroups) == 0 {
		check(data.DefaultPrice == nil, "a default selling price is required if no variants are added")
	}

	check(data.HasBarcode == "yes" && data.Barcode == "", "barcode is required")
	check(s.state.SessionDefinePLU == "yes" && data.CustomPLU == "", "custom base PLU/SKU is required")

	if s.state.SessionDefinePLU == "yes" && data.CustomPLU != "" {
		for _, row := range s.state.Products {
			if row.ProductGroupID == data.CustomPLU && row.ProductGroupID != editingGroupID {
				errs = append(errs, fmt.Sprintf("base PLU/SKU %q already exists", data.CustomPLU))
				break
			}
		}
	}

	return errs
}

func sanitizeSubmission(data internal.ProductSubmission) internal.ProductSubmission {
	data.ProductName = util.Sanitize(strings.TrimSpace(data.ProductName))
	data.PrepLocation = util.Sanitize(strings.TrimSpace(data.PrepLocation))
	data.MenuCategory = util.Sanitize(strings.TrimSpace(data.MenuCategory))
	data.InvCategory = util.Sanitize(strings.TrimSpace(data.InvCategory))
	data.InvSubCategory = util.Sanitize(strings.TrimSpace(data.InvSubCategory))
	data.CustomPLU = util.Sanitize(strings.TrimSpace(data.CustomPLU))
	data.SuppliedQuantity = strings.TrimSpace(data.SuppliedQuantity)
	data.YieldQuantity = strings.TrimSpace(data.YieldQuantity)
	if data.HasBarcode == "yes" {
		data.Barcode = util.Sanitize(strings.TrimSpace(data.Barcode))
	} else {
		data.Barcode = ""
	}
	return data
}

func hasZeroPriceVariant(data internal.ProductSubmission) bool {
	if len(data.VariantPricing) == 0 {
		return false
	}
	for _, combo := range data.VariantPricing {
		if util.Deref(combo.SellingPrice) == 0 {
			return true
		}
	}
	return false
}
