package sync

import (
	"errors"
	"strconv"

	"prestasync/internal/catalog"
	"prestasync/internal/events"
	"prestasync/internal/logger"
	"prestasync/internal/models"
	"prestasync/internal/services/prestashop"
)

// CategoryReconciler maintains one collection per source category,
// correlated through metadata prestashop_id. Lookup is by handle, matching
// the source behavior; a handle owned by a different category is reported
// as a conflict instead of being silently merged.
type CategoryReconciler struct {
	catalog    catalog.API
	normalizer *Normalizer
	publisher  Publisher
	logger     *logger.Logger
}

func NewCategoryReconciler(store catalog.API, normalizer *Normalizer, publisher Publisher, logger *logger.Logger) *CategoryReconciler {
	return &CategoryReconciler{
		catalog:    store,
		normalizer: normalizer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Reconcile creates or updates the collection for one category inside a
// single transaction, so a lookup-then-create sequence cannot race another
// category within the same pass.
func (r *CategoryReconciler) Reconcile(category *prestashop.Category) error {
	return r.catalog.Transaction(func(tx catalog.API) error {
		normalized := r.normalizer.NormalizeCollection(category)

		existing, err := tx.CollectionByHandle(normalized.Handle)
		if err != nil {
			if !errors.Is(err, catalog.ErrNotFound) {
				return err
			}
			return r.create(tx, category, normalized)
		}

		if existingID, ok := existing.PrestashopID(); ok && existingID != category.ID.Int() {
			return &HandleConflictError{
				Handle:       normalized.Handle,
				CategoryID:   category.ID.Int(),
				CollectionID: existing.ID,
			}
		}

		return r.update(tx, category, normalized, existing)
	})
}

func (r *CategoryReconciler) create(tx catalog.API, category *prestashop.Category, normalized *models.Collection) error {
	if err := tx.CreateCollection(normalized); err != nil {
		return err
	}

	r.logger.Debug("created collection %s for category %d", normalized.ID, category.ID.Int())

	return r.publisher.Publish(events.Event{
		Type:       events.TypeCollectionCreated,
		EntityID:   normalized.ID,
		ExternalID: strconv.Itoa(category.ID.Int()),
	})
}

func (r *CategoryReconciler) update(tx catalog.API, category *prestashop.Category, normalized, existing *models.Collection) error {
	updates := map[string]interface{}{}

	if normalized.Title != existing.Title {
		updates["title"] = normalized.Title
	}
	if normalized.Handle != existing.Handle {
		updates["handle"] = normalized.Handle
	}
	if _, ok := existing.PrestashopID(); !ok {
		updates["metadata"] = normalized.Metadata
	}

	// Empty diff means no write at all, keeping repeated passes silent.
	if len(updates) == 0 {
		return nil
	}

	if err := tx.UpdateCollection(existing.ID, updates); err != nil {
		return err
	}

	r.logger.Debug("updated collection %s for category %d", existing.ID, category.ID.Int())

	return r.publisher.Publish(events.Event{
		Type:       events.TypeCollectionUpdated,
		EntityID:   existing.ID,
		ExternalID: strconv.Itoa(category.ID.Int()),
	})
}
