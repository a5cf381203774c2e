package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store holds store-level defaults the sync depends on. The last-sync
// watermark is persisted in metadata under "source_prestashop_bt".
type Store struct {
	ID                       string                      `json:"id" gorm:"type:uuid;primary_key"`
	Name                     string                      `json:"name" gorm:"not null"`
	DefaultCurrencyCode      string                      `json:"default_currency_code"`
	Currencies               datatypes.JSONSlice[string] `json:"currencies" gorm:"type:jsonb"`
	DefaultShippingProfileID string                      `json:"default_shipping_profile_id"`
	Metadata                 datatypes.JSONMap           `json:"metadata" gorm:"type:jsonb"`
	CreatedAt                time.Time                   `json:"created_at"`
	UpdatedAt                time.Time                   `json:"updated_at"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
