package menu

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
)

// VariantSet is the reconciled view of an item's variant data: group and
// option order follow first discovery, upcharges are per (group, option).
// ComboPrices holds absolute prices keyed by full combination string when
// the input already carried canonical pricing entries.
type VariantSet struct {
	Groups      []string
	Options     map[string][]string
	Upcharges   map[string]map[string]float64
	ComboPrices map[string]float64
}

// DiscoverVariants scans the item's two variant data sources in fixed
// priority order. Source A (variantPricing) is authoritative for upcharges;
// source B (variantGroups) fills options and names A missed, and its prices
// only land on pairs A left unpriced. Options dedupe by exact string,
// entries with no resolvable name are skipped.
func DiscoverVariants(item internal.RawMenuItem) VariantSet {
	vs := VariantSet{
		Options:     map[string][]string{},
		Upcharges:   map[string]map[string]float64{},
		ComboPrices: map[string]float64{},
	}

	for _, entry := range item.VariantPricing {
		groupName, optName, ok := splitPriceEntry(entry)
		if !ok {
			continue
		}
		price := CorrectRawPrice(entry["price"])
		if strings.EqualFold(groupName, "combination") {
			vs.ComboPrices[optName] = price
			continue
		}
		vs.ensureGroup(groupName)
		vs.addOption(groupName, optName)
		vs.Upcharges[groupName][optName] = price
	}

	for _, group := range item.VariantGroups {
		groupName := group.Name
		if groupName == "" {
			groupName = group.GroupName
		}
		if groupName == "" {
			continue
		}
		vs.ensureGroup(groupName)
		for _, opt := range group.Options {
			optName, hasPrice, price := resolveOption(opt)
			if optName == "" {
				continue
			}
			vs.addOption(groupName, optName)
			if _, priced := vs.Upcharges[groupName][optName]; !priced {
				if hasPrice {
					vs.Upcharges[groupName][optName] = price
				} else {
					vs.Upcharges[groupName][optName] = 0
				}
			}
		}
	}

	return vs
}

// Upcharge returns the additional cost for (group, option); unknown pairs
// cost nothing.
func (vs VariantSet) Upcharge(group, option string) float64 {
	return vs.Upcharges[group][option]
}

func (vs *VariantSet) ensureGroup(name string) {
	if _, ok := vs.Options[name]; ok {
		return
	}
	vs.Groups = append(vs.Groups, name)
	vs.Options[name] = nil
	vs.Upcharges[name] = map[string]float64{}
}

func (vs *VariantSet) addOption(group, option string) {
	for _, existing := range vs.Options[group] {
		if existing == option {
			return
		}
	}
	vs.Options[group] = append(vs.Options[group], option)
}

// splitPriceEntry picks the single non-"price" key of a variantPricing
// entry. Keys are walked in sorted order so malformed multi-key entries
// still resolve deterministically.
func splitPriceEntry(entry internal.RawVariantPrice) (group, option string, ok bool) {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.EqualFold(k, "price") {
			continue
		}
		var value string
		if err := json.Unmarshal(entry[k], &value); err != nil {
			continue
		}
		return k, value, true
	}
	return "", "", false
}

// resolveOption maps every recognized option shape to its name, and pulls
// an inline price when the object form carries one.
func resolveOption(opt internal.RawOption) (name string, hasPrice bool, price float64) {
	if opt.IsText {
		return opt.Text, false, 0
	}
	if opt.Fields == nil {
		return "", false, 0
	}

	if raw, ok := opt.Fields["price"]; ok {
		hasPrice = true
		price = CorrectRawPrice(raw)
	}

	if v := stringField(opt.Fields, "type"); v != "" {
		return v, hasPrice, price
	}
	if v := stringField(opt.Fields, "name"); v != "" {
		return v, hasPrice, price
	}

	keys := make([]string, 0, len(opt.Fields))
	for k := range opt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, "price") {
			continue
		}
		var value string
		if err := json.Unmarshal(opt.Fields[k], &value); err != nil || value == "" {
			continue
		}
		return value, hasPrice, price
	}
	return "", hasPrice, price
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}
