package prestashop

import (
	"encoding/json"
	"strconv"
)

// FlexString unmarshals the three shapes the webservice uses for localized
// fields: a plain string, a {"value": "..."} wrapper, or a per-language
// array of wrappers (first entry wins).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		*f = FlexString(wrapped.Value)
		return nil
	}

	var list []struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			*f = FlexString(list[0].Value)
		}
		return nil
	}

	// Unknown shape, keep the zero value rather than failing the record.
	*f = ""
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// FlexInt unmarshals numeric ids and quantities that arrive either as JSON
// numbers or as numeric strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(parsed)
	return nil
}

func (f FlexInt) Int() int {
	return int(f)
}

// Category is a PrestaShop category record.
type Category struct {
	ID          FlexInt    `json:"id"`
	IDParent    FlexInt    `json:"id_parent"`
	Active      string     `json:"active"`
	Position    string     `json:"position"`
	DateAdd     string     `json:"date_add"`
	DateUpd     string     `json:"date_upd"`
	Name        FlexString `json:"name"`
	LinkRewrite FlexString `json:"link_rewrite"`
	Description FlexString `json:"description"`
}

// StockRef links a product to a stock_available record; a non-zero
// IDProductAttribute means the stock belongs to one combination.
type StockRef struct {
	ID                 FlexInt `json:"id"`
	IDProductAttribute FlexInt `json:"id_product_attribute"`
}

type IDRef struct {
	ID FlexInt `json:"id"`
}

type ProductAssociations struct {
	Categories          []IDRef    `json:"categories"`
	StockAvailables     []StockRef `json:"stock_availables"`
	ProductOptionValues []IDRef    `json:"product_option_values"`
	Combinations        []IDRef    `json:"combinations"`
}

// Product is a PrestaShop product record. Dimension and price fields are
// numeric-as-string, booleans are "0"/"1".
type Product struct {
	ID               FlexInt             `json:"id"`
	Name             FlexString          `json:"name"`
	Description      FlexString          `json:"description"`
	DescriptionShort FlexString          `json:"description_short"`
	LinkRewrite      FlexString          `json:"link_rewrite"`
	Reference        string              `json:"reference"`
	EAN13            string              `json:"ean13"`
	ISBN             string              `json:"isbn"`
	UPC              string              `json:"upc"`
	MPN              string              `json:"mpn"`
	Price            string              `json:"price"`
	WholesalePrice   string              `json:"wholesale_price"`
	Weight           string              `json:"weight"`
	Width            string              `json:"width"`
	Height           string              `json:"height"`
	Depth            string              `json:"depth"`
	Active           string              `json:"active"`
	ManufacturerName FlexString          `json:"manufacturer_name"`
	Location         string              `json:"location"`
	DateAdd          string              `json:"date_add"`
	DateUpd          string              `json:"date_upd"`
	MetaKeywords     FlexString          `json:"meta_keywords"`
	Associations     ProductAssociations `json:"associations"`

	// Image URLs resolved via the XML image-listing endpoint, attached by
	// the caller before reconciliation. Not part of the product JSON.
	Images []string `json:"-"`
}

// IsConfigurable reports whether the product has combinations and therefore
// maps to a multi-variant target product.
func (p *Product) IsConfigurable() bool {
	return len(p.Associations.Combinations) > 0
}

// StockAvailable is a stock record. OutOfStock is the backorder policy
// code: 0 deny, 1 allow, 2 defer to shop default.
type StockAvailable struct {
	ID                 FlexInt `json:"id"`
	IDProduct          FlexInt `json:"id_product"`
	IDProductAttribute FlexInt `json:"id_product_attribute"`
	Quantity           FlexInt `json:"quantity"`
	DependsOnStock     string  `json:"depends_on_stock"`
	OutOfStock         FlexInt `json:"out_of_stock"`
	Location           string  `json:"location"`
}

const (
	// OutOfStockDeny blocks orders once quantity reaches zero.
	OutOfStockDeny = 0
	// OutOfStockAllow permits backorders.
	OutOfStockAllow = 1
	// OutOfStockDefault defers to the shop-wide setting.
	OutOfStockDefault = 2
)

// AllowsBackorder collapses the tri-state policy to a boolean: only an
// explicit deny turns backorders off.
func (s *StockAvailable) AllowsBackorder() bool {
	return s.OutOfStock.Int() != OutOfStockDeny
}

// ProductOptionValue is one attribute value; its parent option (attribute
// group) is reachable through IDAttributeGroup.
type ProductOptionValue struct {
	ID               FlexInt    `json:"id"`
	IDAttributeGroup FlexInt    `json:"id_attribute_group"`
	Color            string     `json:"color"`
	Position         string     `json:"position"`
	Name             FlexString `json:"name"`
}

// ProductOption is an attribute group such as "Color".
type ProductOption struct {
	ID           FlexInt    `json:"id"`
	IsColorGroup string     `json:"is_color_group"`
	GroupType    string     `json:"group_type"`
	Position     string     `json:"position"`
	Name         FlexString `json:"name"`
	PublicName   FlexString `json:"public_name"`
	Associations struct {
		ProductOptionValues []IDRef `json:"product_option_values"`
	} `json:"associations"`
}

// Combination is one concrete variant of a configurable product. Price is
// a delta on top of the product's base price.
type Combination struct {
	ID                FlexInt `json:"id"`
	IDProduct         FlexInt `json:"id_product"`
	Reference         string  `json:"reference"`
	SupplierReference string  `json:"supplier_reference"`
	Location          string  `json:"location"`
	EAN13             string  `json:"ean13"`
	ISBN              string  `json:"isbn"`
	UPC               string  `json:"upc"`
	MPN               string  `json:"mpn"`
	Price             string  `json:"price"`
	Weight            string  `json:"weight"`
	MinimalQuantity   FlexInt `json:"minimal_quantity"`
	DefaultOn         string  `json:"default_on"`
	Associations      struct {
		ProductOptionValues []IDRef `json:"product_option_values"`
	} `json:"associations"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

type categoriesResponse struct {
	Categories []Category `json:"categories"`
}

type stockAvailablesResponse struct {
	StockAvailables []StockAvailable `json:"stock_availables"`
}

type productOptionsResponse struct {
	ProductOptions []ProductOption `json:"product_options"`
}

type productOptionValuesResponse struct {
	ProductOptionValues []ProductOptionValue `json:"product_option_values"`
}

type combinationsResponse struct {
	Combinations []Combination `json:"combinations"`
}
