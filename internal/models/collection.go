package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Collection is the target-side counterpart of a PrestaShop category.
// Correlation with the source lives in metadata under "prestashop_id".
type Collection struct {
	ID        string            `json:"id" gorm:"type:uuid;primary_key"`
	Title     string            `json:"title" gorm:"not null"`
	Handle    string            `json:"handle" gorm:"uniqueIndex;not null"`
	Metadata  datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// PrestashopID returns the source category id stored in metadata, if any.
func (c *Collection) PrestashopID() (int, bool) {
	return metadataInt(c.Metadata, "prestashop_id")
}
