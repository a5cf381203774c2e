package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusPublished ProductStatus = "published"
	ProductStatusDraft     ProductStatus = "draft"
)

type Product struct {
	ID           string                           `json:"id" gorm:"type:uuid;primary_key"`
	ExternalID   string                           `json:"external_id" gorm:"uniqueIndex;not null"`
	Title        string                           `json:"title" gorm:"not null"`
	Subtitle     *string                          `json:"subtitle"`
	Description  *string                          `json:"description"`
	Handle       string                           `json:"handle" gorm:"index;not null"`
	Status       ProductStatus                    `json:"status" gorm:"default:draft"`
	CollectionID *string                          `json:"collection_id" gorm:"type:uuid"`
	ProfileID    string                           `json:"profile_id"`
	IsGiftcard   bool                             `json:"is_giftcard" gorm:"default:false"`
	Discountable bool                             `json:"discountable" gorm:"default:true"`
	Weight       int                              `json:"weight"`
	Height       int                              `json:"height"`
	Length       int                              `json:"length"`
	Width        int                              `json:"width"`
	Images       datatypes.JSONSlice[string]      `json:"images" gorm:"type:jsonb"`
	Metadata     datatypes.JSONMap                `json:"metadata" gorm:"type:jsonb"`
	Options      []ProductOption                  `json:"options" gorm:"foreignKey:ProductID"`
	Variants     []Variant                        `json:"variants" gorm:"foreignKey:ProductID"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// OptionValue is one selectable value of a product option.
type OptionValue struct {
	Value    string                 `json:"value"`
	Metadata map[string]interface{} `json:"metadata"`
}

type ProductOption struct {
	ID        string                           `json:"id" gorm:"type:uuid;primary_key"`
	ProductID string                           `json:"product_id" gorm:"type:uuid;index;not null"`
	Title     string                           `json:"title" gorm:"not null"`
	Values    datatypes.JSONSlice[OptionValue] `json:"values" gorm:"type:jsonb"`
	Metadata  datatypes.JSONMap                `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time                        `json:"created_at"`
	UpdatedAt time.Time                        `json:"updated_at"`
}

func (o *ProductOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// PrestashopID returns the source attribute-group id stored in metadata.
func (o *ProductOption) PrestashopID() (int, bool) {
	return metadataInt(o.Metadata, "prestashop_id")
}
