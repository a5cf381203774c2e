package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncRunStatus string

const (
	SyncRunStatusQueued  SyncRunStatus = "QUEUED"
	SyncRunStatusRunning SyncRunStatus = "RUNNING"
	SyncRunStatusSuccess SyncRunStatus = "SUCCESS"
	SyncRunStatusPartial SyncRunStatus = "PARTIAL"
	SyncRunStatusFailed  SyncRunStatus = "FAILED"
)

type SyncTrigger string

const (
	SyncTriggeredManual SyncTrigger = "MANUAL"
	SyncTriggeredRetry  SyncTrigger = "RETRY"
	SyncTriggeredSystem SyncTrigger = "SYSTEM"
)

// SyncRun records one full import pass.
type SyncRun struct {
	ID                  string        `json:"id" gorm:"type:uuid;primary_key"`
	Status              SyncRunStatus `json:"status" gorm:"default:QUEUED"`
	TriggeredBy         SyncTrigger   `json:"triggered_by" gorm:"default:SYSTEM"`
	CategoriesProcessed int           `json:"categories_processed"`
	CategoriesFailed    int           `json:"categories_failed"`
	ProductsProcessed   int           `json:"products_processed"`
	ProductsFailed      int           `json:"products_failed"`
	Error               *string       `json:"error"`
	StartedAt           *time.Time    `json:"started_at"`
	CompletedAt         *time.Time    `json:"completed_at"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
