package sync

import (
	"time"

	"prestasync/internal/models"
)

// Failure records one skipped item with enough context for manual
// reconciliation.
type Failure struct {
	Kind     string `json:"kind"` // "category" or "product"
	SourceID int    `json:"source_id"`
	Message  string `json:"message"`
}

// Report summarizes one full import pass.
type Report struct {
	RunID               string    `json:"run_id"`
	CategoriesProcessed int       `json:"categories_processed"`
	CategoriesFailed    int       `json:"categories_failed"`
	ProductsProcessed   int       `json:"products_processed"`
	ProductsFailed      int       `json:"products_failed"`
	Failures            []Failure `json:"failures,omitempty"`
	StartedAt           time.Time `json:"started_at"`
	CompletedAt         time.Time `json:"completed_at"`
}

func (r *Report) recordFailure(kind string, sourceID int, err error) {
	r.Failures = append(r.Failures, Failure{
		Kind:     kind,
		SourceID: sourceID,
		Message:  err.Error(),
	})
	if kind == "category" {
		r.CategoriesFailed++
	} else {
		r.ProductsFailed++
	}
}

func (r *Report) Failed() bool {
	return r.CategoriesFailed > 0 || r.ProductsFailed > 0
}

// Status maps the pass outcome onto a sync-run status.
func (r *Report) Status() models.SyncRunStatus {
	switch {
	case !r.Failed():
		return models.SyncRunStatusSuccess
	case r.CategoriesProcessed > 0 || r.ProductsProcessed > 0:
		return models.SyncRunStatusPartial
	default:
		return models.SyncRunStatusFailed
	}
}

// ShouldRetry tells the job runner whether a failed pass is eligible for
// another attempt. The contract is retry-always; there is no backoff or
// retry budget at this level.
func (r *Report) ShouldRetry() bool {
	return r.Failed()
}
