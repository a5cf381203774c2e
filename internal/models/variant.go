package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VariantPrice is one per-currency price entry, amount in minor units.
type VariantPrice struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// VariantOption is a resolved option selection on a variant.
type VariantOption struct {
	OptionID string                 `json:"option_id"`
	Value    string                 `json:"value"`
	Metadata map[string]interface{} `json:"metadata"`
}

type Variant struct {
	ID                string                             `json:"id" gorm:"type:uuid;primary_key"`
	ProductID         string                             `json:"product_id" gorm:"type:uuid;index;not null"`
	Title             string                             `json:"title" gorm:"not null"`
	SKU               *string                            `json:"sku" gorm:"uniqueIndex"`
	Barcode           *string                            `json:"barcode"`
	EAN               *string                            `json:"ean"`
	UPC               *string                            `json:"upc"`
	Prices            datatypes.JSONSlice[VariantPrice]  `json:"prices" gorm:"type:jsonb"`
	InventoryQuantity int                                `json:"inventory_quantity"`
	AllowBackorder    bool                               `json:"allow_backorder"`
	ManageInventory   bool                               `json:"manage_inventory"`
	Weight            int                                `json:"weight"`
	Height            int                                `json:"height"`
	Width             int                                `json:"width"`
	Length            int                                `json:"length"`
	Options           datatypes.JSONSlice[VariantOption] `json:"options" gorm:"type:jsonb"`
	Metadata          datatypes.JSONMap                  `json:"metadata" gorm:"type:jsonb"`
	CreatedAt         time.Time                          `json:"created_at"`
	UpdatedAt         time.Time                          `json:"updated_at"`
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// PrestashopID returns the source combination id stored in metadata. A
// default variant of a simple product carries the product id instead.
func (v *Variant) PrestashopID() (int, bool) {
	return metadataInt(v.Metadata, "prestashop_id")
}
