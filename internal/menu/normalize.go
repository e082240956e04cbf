package menu

import (
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
)

// Normalize turns the merged raw item list (all pages concatenated, page
// order preserved) into canonical menu items: corrected prices, reconciled
// variant groups, exhaustively priced combinations and standardized modifier
// groups. Ids are assigned 1-based by final position. Two runs over
// identical input produce identical output.
func Normalize(items []internal.RawMenuItem) []internal.CanonicalMenuItem {
	out := make([]internal.CanonicalMenuItem, 0, len(items))
	for i, item := range items {
		canonical := internal.CanonicalMenuItem{
			ID:             i + 1,
			Name:           item.Name,
			Category:       item.Category,
			Price:          CorrectRawPrice(item.Price),
			VariantGroups:  []internal.CanonicalVariantGroup{},
			VariantPricing: []internal.VariantPriceEntry{},
			ModifierGroups: standardizeModifiers(item.ModifierGroups),
		}

		if len(item.VariantGroups) > 0 {
			vs := DiscoverVariants(item)
			canonical.VariantGroups = rebuildGroups(vs)
			canonical.VariantPricing = expandPricing(vs, canonical.Price)
		}

		out = append(out, canonical)
	}
	return out
}

func rebuildGroups(vs VariantSet) []internal.CanonicalVariantGroup {
	out := make([]internal.CanonicalVariantGroup, 0, len(vs.Groups))
	for _, groupName := range vs.Groups {
		options := make([]internal.VariantOption, 0, len(vs.Options[groupName]))
		for _, opt := range vs.Options[groupName] {
			options = append(options, internal.VariantOption{Type: opt})
		}
		out = append(out, internal.CanonicalVariantGroup{GroupName: groupName, Options: options})
	}
	return out
}

// expandPricing prices every combination as base plus the sum of the
// selected upcharges. Combinations the input already priced absolutely
// (canonical re-normalization) keep their absolute price.
func expandPricing(vs VariantSet, basePrice float64) []internal.VariantPriceEntry {
	groups := make([][]ComboOption, 0, len(vs.Groups))
	for _, groupName := range vs.Groups {
		options := make([]ComboOption, 0, len(vs.Options[groupName]))
		for _, opt := range vs.Options[groupName] {
			options = append(options, ComboOption{GroupName: groupName, Name: opt})
		}
		groups = append(groups, options)
	}

	out := []internal.VariantPriceEntry{}
	for _, combo := range Combine(groups) {
		key := ComboKey(combo)
		if key == "" {
			continue
		}

		price := basePrice
		for _, opt := range combo {
			price += vs.Upcharge(opt.GroupName, opt.Name)
		}
		if absolute, ok := vs.ComboPrices[key]; ok {
			price = absolute
		}
		out = append(out, internal.VariantPriceEntry{Combination: key, Price: price})
	}
	return out
}

// ComboKey serializes a combination as "Group:Option;Group:Option".
func ComboKey(combo []ComboOption) string {
	parts := make([]string, 0, len(combo))
	for _, opt := range combo {
		parts = append(parts, opt.GroupName+":"+opt.Name)
	}
	return strings.Join(parts, ";")
}

// standardizeModifiers renames the AI's field variants (name → groupName,
// modifiers → options) and corrects every option price. Groups are kept as
// given, no cross-group deduplication.
func standardizeModifiers(groups []internal.RawModifierGroup) []internal.ModifierGroup {
	out := make([]internal.ModifierGroup, 0, len(groups))
	for _, group := range groups {
		groupName := group.Name
		if groupName == "" {
			groupName = group.GroupName
		}

		rawOptions := group.Options
		if group.Modifiers != nil {
			rawOptions = group.Modifiers
		}

		options := make([]internal.ModifierOption, 0, len(rawOptions))
		for _, opt := range rawOptions {
			options = append(options, internal.ModifierOption{
				Name:  opt.Name,
				Price: CorrectRawPrice(opt.Price),
			})
		}
		out = append(out, internal.ModifierGroup{GroupName: groupName, Options: options})
	}
	return out
}
