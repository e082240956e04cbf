package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/util"
)

const (
	SheetSiteStructure   = "Site Product Structure"
	SheetCreateStructure = "Create Product structure"
	SheetModifierGroups  = "Modifier Groups"
)

var siteSheetHeaders = []string{
	"Product PLU", "Product Name & Variant", "Site", "GP", "Selling UOM",
	"Preparation Location", "Menu Category", "Inventory Category", "Inventory Sub-Category",
	"Product Type", "Enabled", "Cost Price", "Selling Price",
	"Dynamic Price", "Visible on App", "Default Selling Location", "Default Storage Location",
	"Tax Applicable", "Barcode", "Supplied Quantity", "Supplied Quantity Cost Price",
	"Manufactured Yield", "Product PLU (End)", "Product Name", "Variant", "Listed Product Type",
}

var createSheetHeaders = []string{
	"Product PLU", "Name", "Variants", "Modifiers", "Menu Categories",
	"Inventory Type", "Tags", "Selling UOM", "Tax Applicable", "Show on Royalty",
	"Inventory Category", "Inventory Sub-Category", "Barcodes", "Product SKU", "Description",
}

// Filename derives the workbook name from the session site.
func Filename(site string) string {
	return util.SanitizeSiteName(site) + "_Table_by_Yoco.xlsx"
}

// BuildWorkbook renders the session into the three-sheet import workbook.
// Sheet column names are a contract with the importing POS and must stay
// byte for byte as they are.
func BuildWorkbook(state internal.SessionState) (*excelize.File, error) {
	if len(state.Products) == 0 {
		return nil, errors.New("no products to export")
	}
	if strings.TrimSpace(state.SessionSite) == "" {
		return nil, errors.New("session site must be set before exporting")
	}

	f := excelize.NewFile()
	sheet1 := f.GetSheetName(0)
	if err := f.SetSheetName(sheet1, SheetSiteStructure); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetCreateStructure); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetModifierGroups); err != nil {
		return nil, err
	}

	writeSiteSheet(f, state)
	writeCreateSheet(f, state)
	writeModifierSheet(f, state)

	return f, nil
}

// WriteFile builds the workbook and saves it under dir using the
// site-derived filename.
func WriteFile(state internal.SessionState, dir string) (string, error) {
	f, err := BuildWorkbook(state)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(state.SessionSite))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeSiteSheet(f *excelize.File, state internal.SessionState) {
	writeHeaders(f, SheetSiteStructure, siteSheetHeaders)

	for i, p := range state.Products {
		r := i + 2
		set := cellSetter(f, SheetSiteStructure, r)

		invCategory := p.InvCategory
		if invCategory != "" {
			switch p.OriginalType {
			case internal.TypeFinishedGood:
				invCategory += " - FINISHED GOOD"
			case internal.TypeRawMaterial, internal.TypeFinishedAndRaw:
				invCategory += " - RAW MATERIALS"
			case internal.TypeManufactured:
				invCategory += " - MANUFACTURED"
			}
		}

		// Raw stock rows store the total purchase cost; the import sheet
		// wants cost per unit, with the total moved to its own column.
		costPrice := p.CostPrice
		if p.OriginalType == internal.TypeRawMaterial {
			if qty := util.ParseAmount(p.SuppliedQty); p.SuppliedQty != "" && qty > 0 {
				costPrice = p.CostPrice / qty
			}
		}

		suppliedQty := ""
		suppliedQtyCost := any("")
		if p.SuppliedQty != "" {
			suppliedQty = p.SuppliedQty + " " + p.SellingUOM
			suppliedQtyCost = p.CostPrice
		}

		set(1, p.ProductPLU)
		set(2, p.NameAndVariant)
		set(3, p.Site)
		set(4, p.GP)
		set(5, p.SellingUOM)
		set(6, p.PrepLocation)
		set(7, p.MenuCategory)
		set(8, invCategory)
		set(9, p.InvSubCategory)
		set(10, p.ProductType)
		set(11, p.Enabled)
		set(12, costPrice)
		set(13, p.SellingPrice)
		set(14, false)
		set(15, false)
		set(16, "Default Selling Location")
		set(17, "Default Storage Location")
		set(18, p.TaxApplicable)
		set(19, p.Barcode)
		set(20, suppliedQty)
		set(21, suppliedQtyCost)
		set(22, p.ManufYield)
		set(23, p.ProductPLU)
		set(24, p.BaseName)
		set(25, p.VariantName)
		set(26, p.OriginalType)
	}
}

func writeCreateSheet(f *excelize.File, state internal.SessionState) {
	writeHeaders(f, SheetCreateStructure, createSheetHeaders)

	for i, p := range state.Products {
		r := i + 2
		set := cellSetter(f, SheetCreateStructure, r)

		set(1, p.ProductPLU)
		set(2, p.BaseName)
		set(3, p.VariantName)
		set(4, strings.Join(linkedGroupNames(p), ", "))
		set(5, p.MenuCategory)
		set(6, p.OriginalType)
		set(7, "")
		set(8, p.SellingUOM)
		set(9, p.TaxApplicable)
		set(10, false)
		set(11, p.InvCategory)
		set(12, p.InvSubCategory)
		set(13, p.Barcode)
		set(14, p.ProductPLU)
		set(15, "")
	}
}

// writeModifierSheet lays each group out as a block: its options and
// prices, then the selling products it is linked to.
func writeModifierSheet(f *excelize.File, state internal.SessionState) {
	type line struct {
		item    string
		details string
	}

	lines := []line{{"Line Item", "Details"}}
	if len(state.CurrentModifierGroups) > 0 {
		for _, group := range state.CurrentModifierGroups {
			linkedProducts := []string{}
			for _, p := range state.Products {
				for _, name := range linkedGroupNames(p) {
					if name == group.GroupName {
						linkedProducts = append(linkedProducts, p.NameAndVariant)
						break
					}
				}
			}

			lines = append(lines,
				line{"MODIFIER GROUP: " + group.GroupName, ""},
				line{"Options", "Price"},
			)
			if len(group.Options) > 0 {
				for _, opt := range group.Options {
					lines = append(lines, line{opt.Name, fmt.Sprintf("%.2f", opt.Price)})
				}
			} else {
				lines = append(lines, line{"(No options defined)", ""})
			}

			lines = append(lines,
				line{"", ""},
				line{"Linked Selling Products", fmt.Sprintf("(%d item/s)", len(linkedProducts))},
			)
			if len(linkedProducts) > 0 {
				for _, name := range linkedProducts {
					lines = append(lines, line{name, ""})
				}
			} else {
				lines = append(lines, line{"(Not linked to any products on the list)", ""})
			}

			lines = append(lines, line{"", ""}, line{"", ""})
		}
	} else {
		lines = append(lines, line{"No modifier groups have been created.", ""})
	}

	for i, l := range lines {
		set := cellSetter(f, SheetModifierGroups, i+1)
		set(1, l.item)
		set(2, l.details)
	}

	_ = f.SetColWidth(SheetModifierGroups, "A", "A", 60)
	_ = f.SetColWidth(SheetModifierGroups, "B", "B", 20)
}

// linkedGroupNames resolves the modifier groups linked to a row's variant
// through its stored source.
func linkedGroupNames(p internal.CatalogRow) []string {
	if p.Source == nil || p.Source.ModifierLinks == nil {
		return nil
	}
	return p.Source.ModifierLinks[p.VariantName]
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellSetter(f *excelize.File, sheet string, row int) func(col int, value any) {
	return func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}
}
