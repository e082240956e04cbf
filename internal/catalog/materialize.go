package catalog

import (
	"fmt"
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/util"
)

// Expand turns one confirmed product form into its catalog rows. A product
// priced as both finished good and raw material becomes one RAW stock row
// holding the total purchase cost plus one selling row per combination at
// unit cost. Every other type becomes one row per combination.
func Expand(data internal.ProductSubmission, groupID, site string, sessionModifiers []internal.ModifierGroup) []internal.CatalogRow {
	if data.ProductType == internal.TypeFinishedAndRaw {
		return expandFinishedAndRaw(data, groupID, site, sessionModifiers)
	}
	return expandSingle(data, groupID, site, sessionModifiers)
}

func expandFinishedAndRaw(data internal.ProductSubmission, groupID, site string, sessionModifiers []internal.ModifierGroup) []internal.CatalogRow {
	src := data
	rawPluBase := "RAW-" + groupID

	rows := []internal.CatalogRow{{
		ProductGroupID: groupID,
		PLUBase:        rawPluBase,
		Source:         &src,
		ProductPLU:     rawPluBase,
		NameAndVariant: "(Raw) " + data.ProductName,
		BaseName:       "(Raw) " + data.ProductName,
		OriginalType:   internal.TypeRawMaterial,
		Site:           site,
		SellingUOM:     data.UOM,
		InvCategory:    data.InvCategory,
		InvSubCategory: data.InvSubCategory,
		ProductType:    "single",
		SuppliedQty:    data.SuppliedQuantity,
		Enabled:        true,
		CostPrice:      util.Deref(data.DefaultCost),
	}}

	// The selling rows carry cost per unit; the stock row keeps the total.
	unitCost := 0.0
	if qty := util.ParseAmount(data.SuppliedQuantity); util.Deref(data.DefaultCost) != 0 && qty > 0 {
		unitCost = util.Deref(data.DefaultCost) / qty
	}

	finishedPluBase := "PLU-" + groupID
	combos := combinationsToProcess(data)
	for i, combo := range combos {
		finalName := data.ProductName
		if combo.Combination != "" {
			finalName = data.ProductName + " - " + combo.Combination
		}
		finalPrice := util.Deref(combo.SellingPrice)

		rows = append(rows, internal.CatalogRow{
			ProductGroupID: groupID,
			PLUBase:        finishedPluBase,
			Source:         &src,
			ProductPLU:     comboPLU(finishedPluBase, i, len(combos)),
			NameAndVariant: finalName,
			BaseName:       data.ProductName,
			VariantName:    combo.Combination,
			OriginalType:   internal.TypeFinishedGood,
			Site:           site,
			GP:             grossProfit(finalPrice, unitCost),
			SellingUOM:     "ea",
			PrepLocation:   data.PrepLocation,
			MenuCategory:   data.MenuCategory,
			ProductType:    "single",
			Enabled:        true,
			CostPrice:      unitCost,
			SellingPrice:   finalPrice,
			TaxApplicable:  data.TaxApplicable == "true",
			Modifier:       modifierString(data.ModifierLinks[combo.Combination], sessionModifiers),
			Barcode:        data.Barcode,
		})
	}
	return rows
}

func expandSingle(data internal.ProductSubmission, groupID, site string, sessionModifiers []internal.ModifierGroup) []internal.CatalogRow {
	src := data
	pluBase := "PLU-" + groupID

	baseName := data.ProductName
	switch data.ProductType {
	case internal.TypeRawMaterial:
		baseName = "(Raw) " + data.ProductName
	case internal.TypeManufactured:
		baseName = "(MAN) " + data.ProductName
	}

	productType := "single"
	if data.ProductType == internal.TypeManufactured {
		productType = "preparation"
	}

	suppliedQty := ""
	if data.ProductType == internal.TypeRawMaterial {
		suppliedQty = data.SuppliedQuantity
	}
	manufYield := ""
	if data.ProductType == internal.TypeManufactured {
		manufYield = data.YieldQuantity
	}

	combos := combinationsToProcess(data)
	rows := make([]internal.CatalogRow, 0, len(combos))
	for i, combo := range combos {
		finalName := baseName
		if combo.Combination != "" {
			finalName = baseName + " - " + combo.Combination
		}
		finalPrice := util.Deref(combo.SellingPrice)
		finalCost := util.Deref(combo.CostPrice)

		rows = append(rows, internal.CatalogRow{
			ProductGroupID: groupID,
			PLUBase:        pluBase,
			Source:         &src,
			ProductPLU:     comboPLU(pluBase, i, len(combos)),
			NameAndVariant: finalName,
			BaseName:       baseName,
			VariantName:    combo.Combination,
			OriginalType:   data.ProductType,
			Site:           site,
			GP:             grossProfit(finalPrice, finalCost),
			SellingUOM:     data.UOM,
			PrepLocation:   data.PrepLocation,
			MenuCategory:   data.MenuCategory,
			InvCategory:    data.InvCategory,
			InvSubCategory: data.InvSubCategory,
			ProductType:    productType,
			SuppliedQty:    suppliedQty,
			ManufYield:     manufYield,
			Enabled:        true,
			CostPrice:      finalCost,
			SellingPrice:   finalPrice,
			TaxApplicable:  data.TaxApplicable == "true",
			Modifier:       modifierString(data.ModifierLinks[combo.Combination], sessionModifiers),
			Barcode:        data.Barcode,
		})
	}
	return rows
}

// combinationsToProcess falls back to a single unnamed combination priced
// from the form defaults when no variants were defined.
func combinationsToProcess(data internal.ProductSubmission) []internal.SubmissionPrice {
	if len(data.VariantPricing) > 0 {
		return data.VariantPricing
	}
	return []internal.SubmissionPrice{{Combination: "", SellingPrice: data.DefaultPrice, CostPrice: data.DefaultCost}}
}

// comboPLU suffixes the base with a 1-based index only when a product
// expands to more than one row.
func comboPLU(base string, index, total int) string {
	if total > 1 {
		return fmt.Sprintf("%s-%d", base, index+1)
	}
	return base
}

func grossProfit(sell, cost float64) float64 {
	if sell > 0 && sell > cost {
		return (sell - cost) / sell * 100
	}
	return 0
}

// modifierString renders the linked modifier groups for one combination as
// "Group: Option (price)" pairs. Links naming a group that no longer exists
// contribute nothing.
func modifierString(linkedNames []string, sessionModifiers []internal.ModifierGroup) string {
	if len(linkedNames) == 0 {
		return ""
	}
	linked := map[string]bool{}
	for _, name := range linkedNames {
		linked[name] = true
	}

	parts := []string{}
	for _, group := range sessionModifiers {
		if !linked[group.GroupName] {
			continue
		}
		for _, opt := range group.Options {
			parts = append(parts, fmt.Sprintf("%s: %s (%.2f)", group.GroupName, opt.Name, opt.Price))
		}
	}
	return strings.Join(parts, ", ")
}
