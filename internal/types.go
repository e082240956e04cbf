package internal

import (
	"encoding/json"
	"fmt"
)

// Product types accepted on a submission. TypeFinishedAndRaw carries the
// exact value the import template expects, spaces included.
const (
	TypeFinishedGood   = "finishedGood"
	TypeRawMaterial    = "rawMaterial"
	TypeFinishedAndRaw = "finishedGood & rawMaterial"
	TypeManufactured   = "Manufactured"
)

// RawMenuItem is one item as returned by the vision service. Nothing about
// its shape is guaranteed: prices may come back as strings or cents, variant
// data may live in either variantPricing or variantGroups or both, and any
// field may be missing.
type RawMenuItem struct {
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	Price          json.RawMessage    `json:"price,omitempty"`
	VariantGroups  []RawVariantGroup  `json:"variantGroups,omitempty"`
	VariantPricing []RawVariantPrice  `json:"variantPricing,omitempty"`
	ModifierGroups []RawModifierGroup `json:"modifierGroups,omitempty"`
}

// RawVariantPrice is a single-key-plus-price object: the non-"price" key
// names the group, its value names the option.
type RawVariantPrice map[string]json.RawMessage

type RawVariantGroup struct {
	Name      string      `json:"name"`
	GroupName string      `json:"groupName"`
	Options   []RawOption `json:"options"`
}

// RawOption is the tagged union of the option shapes the AI produces:
// a bare string, {"type": "..."}, {"name": "..."}, or {"Group": "Option"}.
type RawOption struct {
	Text   string
	IsText bool
	Fields map[string]json.RawMessage
}

func (o *RawOption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Text = s
		o.IsText = true
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err == nil {
		o.Fields = fields
		return nil
	}
	return fmt.Errorf("unrecognized variant option shape: %s", string(data))
}

func (o RawOption) MarshalJSON() ([]byte, error) {
	if o.IsText {
		return json.Marshal(o.Text)
	}
	return json.Marshal(o.Fields)
}

type RawModifierOption struct {
	Name  string          `json:"name"`
	Price json.RawMessage `json:"price,omitempty"`
}

type RawModifierGroup struct {
	Name      string              `json:"name"`
	GroupName string              `json:"groupName"`
	Modifiers []RawModifierOption `json:"modifiers,omitempty"`
	Options   []RawModifierOption `json:"options,omitempty"`
}

// VariantOption keeps the {"type": ...} wire shape the form layer consumes.
type VariantOption struct {
	Type string `json:"type"`
}

type CanonicalVariantGroup struct {
	GroupName string          `json:"groupName"`
	Options   []VariantOption `json:"options"`
}

// VariantPriceEntry is one priced combination. In normalizer output the
// price is absolute (base plus all upcharges), keyed "Group:Option;...".
type VariantPriceEntry struct {
	Combination string  `json:"combination"`
	Price       float64 `json:"price"`
}

type ModifierOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ModifierGroup struct {
	GroupName string           `json:"groupName"`
	Options   []ModifierOption `json:"options"`
}

// CanonicalMenuItem is the normalizer's output, used to seed the product
// form after extraction. Transient: it is never persisted as-is.
type CanonicalMenuItem struct {
	ID             int                     `json:"id"`
	Name           string                  `json:"name"`
	Category       string                  `json:"category"`
	Price          float64                 `json:"price"`
	VariantGroups  []CanonicalVariantGroup `json:"variantGroups"`
	VariantPricing []VariantPriceEntry     `json:"variantPricing"`
	ModifierGroups []ModifierGroup         `json:"modifierGroups"`
}

type SubmissionOption struct {
	Name string `json:"name"`
}

type SubmissionVariantGroup struct {
	GroupName string             `json:"groupName"`
	Options   []SubmissionOption `json:"options"`
}

// SubmissionPrice carries the user-entered selling price for one
// combination. Nil means the field was left blank and resolves to 0.
type SubmissionPrice struct {
	Combination  string   `json:"combination"`
	SellingPrice *float64 `json:"sellingPrice"`
	CostPrice    *float64 `json:"costPrice,omitempty"`
}

// ProductSubmission is one confirmed product form. The form layer owns all
// validation; the materializer only applies the numeric coercions of the
// expansion rules.
type ProductSubmission struct {
	ProductName      string                   `json:"productName"`
	UOM              string                   `json:"uom"`
	PrepLocation     string                   `json:"prepLocation"`
	MenuCategory     string                   `json:"menuCategory"`
	ProductType      string                   `json:"productType"`
	InvCategory      string                   `json:"invCategory"`
	InvSubCategory   string                   `json:"invSubCategory"`
	SuppliedQuantity string                   `json:"suppliedQuantity"`
	YieldQuantity    string                   `json:"yieldQuantity"`
	DefaultCost      *float64                 `json:"defaultCost"`
	DefaultPrice     *float64                 `json:"defaultPrice"`
	TaxApplicable    string                   `json:"taxApplicable"`
	HasBarcode       string                   `json:"hasBarcode"`
	Barcode          string                   `json:"barcode"`
	CustomPLU        string                   `json:"customPlu"`
	VariantGroups    []SubmissionVariantGroup `json:"variantGroups"`
	VariantPricing   []SubmissionPrice        `json:"variantPricing"`
	ModifierGroups   []ModifierGroup          `json:"modifierGroups"`
	ModifierLinks    map[string][]string      `json:"modifierLinks"`
}

// CatalogRow is the durable catalog unit. The capitalized JSON names are
// the contract with the spreadsheet export layer and must not change.
type CatalogRow struct {
	ProductGroupID string             `json:"productGroupId"`
	PLUBase        string             `json:"pluBase"`
	Source         *ProductSubmission `json:"_source,omitempty"`

	ProductPLU     string  `json:"Product PLU"`
	NameAndVariant string  `json:"Product Name & Variant"`
	BaseName       string  `json:"Base Name"`
	VariantName    string  `json:"Variant Name"`
	OriginalType   string  `json:"Original Product Type"`
	Site           string  `json:"Site"`
	GP             float64 `json:"GP"`
	SellingUOM     string  `json:"Selling UOM"`
	PrepLocation   string  `json:"Preparation Location"`
	MenuCategory   string  `json:"Menu Category"`
	InvCategory    string  `json:"Inventory Category"`
	InvSubCategory string  `json:"Inventory Sub-Category"`
	ProductType    string  `json:"Product Type"`
	SuppliedQty    string  `json:"Supplied Quantity"`
	ManufYield     string  `json:"Manufactured Yield"`
	Enabled        bool    `json:"Enabled"`
	CostPrice      float64 `json:"Cost Price"`
	SellingPrice   float64 `json:"Selling Price"`
	TaxApplicable  bool    `json:"Tax Applicable"`
	Modifier       string  `json:"Modifier"`
	Barcode        string  `json:"Barcode"`
}

type LastUsedCategories struct {
	Prep string `json:"prep"`
	Menu string `json:"menu"`
	Inv  string `json:"inv"`
}

// SessionState is the persisted shape. It round-trips losslessly through
// storage: every field read back reconstructs the in-memory state.
type SessionState struct {
	Products                  []CatalogRow       `json:"products"`
	PLUCounter                int                `json:"pluCounter"`
	SessionSite               string             `json:"sessionSite"`
	SessionDefinePLU          string             `json:"sessionDefinePlu"`
	DefaultsSet               bool               `json:"defaultsSet"`
	CurrentModifierGroups     []ModifierGroup    `json:"currentModifierGroups"`
	RememberCategoriesChecked bool               `json:"rememberCategoriesChecked"`
	LastUsedCategories        LastUsedCategories `json:"lastUsedCategories"`
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

// MenuRow is one extracted menu stored for later loading into the form.
type MenuRow struct {
	ID        int
	EmailID   *int
	SourceRef string
	Origin    string
	ItemCount int
	ItemsJSON string
	CreatedAt string
}
