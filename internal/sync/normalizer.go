package sync

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"prestasync/internal/models"
	"prestasync/internal/services/prestashop"
)

var htmlTagPattern = regexp.MustCompile(`(<([^>]+)>)`)

// Normalizer maps PrestaShop records into target catalog shapes. It is
// pure: all remote lookups happen in the reconcilers.
type Normalizer struct {
	currencies         []string
	generateNewHandles bool
}

func NewNormalizer(currencies []string, generateNewHandles bool) *Normalizer {
	return &Normalizer{
		currencies:         currencies,
		generateNewHandles: generateNewHandles,
	}
}

// Handle picks the product/collection slug: the source link_rewrite when
// present, or a freshly generated slug from the name.
func (n *Normalizer) Handle(name, linkRewrite string) string {
	if n.generateNewHandles || linkRewrite == "" {
		return slug.Make(name)
	}
	return linkRewrite
}

// NormalizeCollection maps a category onto a collection. The source
// category id rides along in metadata as the cross-system identity.
func (n *Normalizer) NormalizeCollection(category *prestashop.Category) *models.Collection {
	return &models.Collection{
		Title:  category.Name.String(),
		Handle: category.LinkRewrite.String(),
		Metadata: map[string]interface{}{
			"prestashop_id": category.ID.Int(),
		},
	}
}

// NormalizeProduct maps a product record onto the target product shape.
// Options and images are attached by the reconciler afterwards.
func (n *Normalizer) NormalizeProduct(product *prestashop.Product) *models.Product {
	status := models.ProductStatusDraft
	if product.Active == "1" {
		status = models.ProductStatusPublished
	}

	return &models.Product{
		ExternalID:   strconv.Itoa(product.ID.Int()),
		Title:        product.Name.String(),
		Subtitle:     optionalString(StripHTML(product.DescriptionShort.String())),
		Description:  optionalString(StripHTML(product.Description.String())),
		Handle:       n.Handle(product.Name.String(), product.LinkRewrite.String()),
		Status:       status,
		IsGiftcard:   false,
		Discountable: true,
		// Weight is stored in scaled integer units, the remaining
		// dimensions unscaled. Source convention, kept for compatibility.
		Weight: parseDimension(product.Weight, 100),
		Height: parseDimension(product.Height, 1),
		Length: parseDimension(product.Depth, 1),
		Width:  parseDimension(product.Width, 1),
		Images: product.Images,
		Metadata: map[string]interface{}{
			"prestashop_id":     product.ID.Int(),
			"reference":         product.Reference,
			"manufacturer_name": product.ManufacturerName.String(),
			"date_upd":          product.DateUpd,
			"meta_keywords":     splitMetaKeywords(product.MetaKeywords.String()),
		},
	}
}

// NormalizeOption maps an attribute group onto a product option. Value
// entries carry the raw source value id; the display name is attached
// during combination fan-out, when the value record has been fetched.
func (n *Normalizer) NormalizeOption(option *prestashop.ProductOption) *models.ProductOption {
	values := make([]models.OptionValue, 0, len(option.Associations.ProductOptionValues))
	for _, ref := range option.Associations.ProductOptionValues {
		values = append(values, models.OptionValue{
			Value: strconv.Itoa(ref.ID.Int()),
			Metadata: map[string]interface{}{
				"prestashop_value": ref.ID.Int(),
			},
		})
	}

	return &models.ProductOption{
		Title:  option.Name.String(),
		Values: values,
		Metadata: map[string]interface{}{
			"prestashop_id": option.ID.Int(),
		},
	}
}

// NormalizeOptionValue maps a fetched attribute value onto an option
// value entry with its display name resolved.
func (n *Normalizer) NormalizeOptionValue(value *prestashop.ProductOptionValue) models.OptionValue {
	return models.OptionValue{
		Value: value.Name.String(),
		Metadata: map[string]interface{}{
			"prestashop_value": value.ID.Int(),
		},
	}
}

// NormalizeCombinationVariant maps a combination onto a variant. The
// combination price is a delta on the product's base price; the variant
// title is synthesized from the resolved option selections.
func (n *Normalizer) NormalizeCombinationVariant(
	combination *prestashop.Combination,
	basePrice string,
	selections []models.VariantOption,
	stock *prestashop.StockAvailable,
) *models.Variant {
	total := parseFloat(basePrice) + parseFloat(combination.Price)
	quantity := stock.Quantity.Int()

	return &models.Variant{
		Title:             variantTitle(selections, combination.ID.Int()),
		SKU:               optionalString(combination.Reference),
		Barcode:           optionalString(combination.EAN13),
		EAN:               optionalString(combination.EAN13),
		UPC:               optionalString(combination.UPC),
		Prices:            n.prices(MinorUnits(total)),
		InventoryQuantity: quantity,
		AllowBackorder:    stock.AllowsBackorder(),
		ManageInventory:   quantity > 0,
		Weight:            parseDimension(combination.Weight, 100),
		Options:           selections,
		Metadata: map[string]interface{}{
			"prestashop_id":      combination.ID.Int(),
			"isbn":               combination.ISBN,
			"supplier_reference": combination.SupplierReference,
			"location":           combination.Location,
		},
	}
}

// NormalizeDefaultVariant maps a simple product onto its single variant.
func (n *Normalizer) NormalizeDefaultVariant(
	product *prestashop.Product,
	stock *prestashop.StockAvailable,
) *models.Variant {
	quantity := stock.Quantity.Int()

	return &models.Variant{
		Title:             "Default",
		SKU:               optionalString(product.Reference),
		Barcode:           optionalString(product.EAN13),
		EAN:               optionalString(product.EAN13),
		UPC:               optionalString(product.UPC),
		Prices:            n.prices(ParsePrice(product.Price)),
		InventoryQuantity: quantity,
		AllowBackorder:    stock.AllowsBackorder(),
		ManageInventory:   quantity > 0,
		Weight:            parseDimension(product.Weight, 100),
		Height:            parseDimension(product.Height, 100),
		Width:             parseDimension(product.Width, 100),
		Length:            parseDimension(product.Depth, 100),
		Metadata: map[string]interface{}{
			"prestashop_id":      product.ID.Int(),
			"isbn":               product.ISBN,
			"supplier_reference": "",
			"location":           product.Location,
		},
	}
}

// prices duplicates one amount across every store currency; the source has
// no multi-currency price data.
func (n *Normalizer) prices(amount int64) []models.VariantPrice {
	prices := make([]models.VariantPrice, 0, len(n.currencies))
	for _, currency := range n.currencies {
		prices = append(prices, models.VariantPrice{
			Amount:       amount,
			CurrencyCode: currency,
		})
	}
	return prices
}

// variantTitle joins the selection values with " - " in association order.
func variantTitle(selections []models.VariantOption, combinationID int) string {
	if len(selections) == 0 {
		return strconv.Itoa(combinationID)
	}
	parts := make([]string, 0, len(selections))
	for _, selection := range selections {
		parts = append(parts, selection.Value)
	}
	return strings.Join(parts, " - ")
}

// ParsePrice converts a decimal string in major units to integer minor
// units: round to cents first, then scale.
func ParsePrice(raw string) int64 {
	return MinorUnits(parseFloat(raw))
}

// MinorUnits converts a major-unit amount to minor units with
// round-to-cents-first semantics: 19.999 becomes 2000, not 1999.
func MinorUnits(amount float64) int64 {
	cents := math.Round(amount*100) / 100
	return int64(math.Round(cents * 100))
}

// StripHTML removes markup from source description fields.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return htmlTagPattern.ReplaceAllString(s, "")
}

func parseFloat(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}

// parseDimension coerces a numeric-as-string dimension to a floored
// integer, applying the source's scale factor.
func parseDimension(raw string, scale float64) int {
	return int(parseFloat(raw) * scale)
}

func splitMetaKeywords(raw string) []string {
	keywords := []string{}
	for _, keyword := range strings.Split(raw, ",") {
		if keyword == "" || keyword == " " {
			continue
		}
		keywords = append(keywords, keyword)
	}
	return keywords
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
