package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prestasync/internal/catalog"
	"prestasync/internal/events"
	"prestasync/internal/logger"
	"prestasync/internal/models"
)

// Importer runs full one-way passes from the PrestaShop webservice into
// the target catalog: categories first, then products. Each item syncs
// independently; a failed item is recorded in the report and skipped.
type Importer struct {
	source             Source
	catalog            catalog.API
	files              FileStorage
	publisher          Publisher
	logger             *logger.Logger
	generateNewHandles bool
}

func NewImporter(
	source Source,
	store catalog.API,
	files FileStorage,
	publisher Publisher,
	logger *logger.Logger,
	generateNewHandles bool,
) *Importer {
	return &Importer{
		source:             source,
		catalog:            store,
		files:              files,
		publisher:          publisher,
		logger:             logger,
		generateNewHandles: generateNewHandles,
	}
}

// Run executes one full pass triggered by the system scheduler.
func (i *Importer) Run(ctx context.Context) (*Report, error) {
	return i.RunTriggered(ctx, models.SyncTriggeredSystem)
}

// RunTriggered executes one full pass. Missing store configuration or an
// unreadable source listing aborts the pass; everything narrower is
// contained to the item it happened on.
func (i *Importer) RunTriggered(ctx context.Context, trigger models.SyncTrigger) (*Report, error) {
	store, err := i.catalog.RetrieveStore()
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &ConfigError{Missing: "store"}
		}
		return nil, fmt.Errorf("retrieving store: %w", err)
	}

	if store.DefaultCurrencyCode == "" {
		return nil, &ConfigError{Missing: "default currency"}
	}
	if store.DefaultShippingProfileID == "" {
		return nil, &ConfigError{Missing: "default shipping profile"}
	}

	currencies := []string(store.Currencies)
	if len(currencies) == 0 {
		currencies = []string{store.DefaultCurrencyCode}
	}

	normalizer := NewNormalizer(currencies, i.generateNewHandles)
	categories := NewCategoryReconciler(i.catalog, normalizer, i.publisher, i.logger)
	products := NewProductReconciler(i.source, i.catalog, i.files, normalizer, i.publisher, i.logger, store.DefaultShippingProfileID)

	started := time.Now().UTC()
	run := &models.SyncRun{
		Status:      models.SyncRunStatusRunning,
		TriggeredBy: trigger,
		StartedAt:   &started,
	}
	if err := i.catalog.CreateSyncRun(run); err != nil {
		return nil, fmt.Errorf("creating sync run: %w", err)
	}

	report := &Report{RunID: run.ID, StartedAt: started}

	if err := i.syncCategories(ctx, categories, report); err != nil {
		i.finalizeRun(run, report, err)
		return report, err
	}
	if err := i.syncProducts(ctx, products, report); err != nil {
		i.finalizeRun(run, report, err)
		return report, err
	}

	// The watermark is recorded for operators; passes are always full,
	// nothing filters on it yet.
	watermark := time.Now().UTC().Format(time.RFC3339)
	if err := i.catalog.UpdateStoreMetadata(map[string]interface{}{
		"source_prestashop_bt": watermark,
	}); err != nil {
		i.logger.Error("writing sync watermark: %v", err)
	}

	i.finalizeRun(run, report, nil)

	if err := i.publisher.Publish(events.Event{
		Type: events.TypeSyncCompleted,
		Data: map[string]interface{}{
			"run_id":               report.RunID,
			"status":               string(report.Status()),
			"categories_processed": report.CategoriesProcessed,
			"categories_failed":    report.CategoriesFailed,
			"products_processed":   report.ProductsProcessed,
			"products_failed":      report.ProductsFailed,
		},
	}); err != nil {
		i.logger.Error("publishing sync.completed: %v", err)
	}

	i.logger.Info("sync %s finished (%s): categories %d ok / %d failed, products %d ok / %d failed",
		report.RunID, report.Status(),
		report.CategoriesProcessed, report.CategoriesFailed,
		report.ProductsProcessed, report.ProductsFailed)

	return report, nil
}

func (i *Importer) syncCategories(ctx context.Context, reconciler *CategoryReconciler, report *Report) error {
	refs, err := i.source.ListCategories()
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		id := ref.ID.Int()
		category, err := i.source.GetCategory(id)
		if err != nil {
			report.recordFailure("category", id, err)
			i.logger.Error("category %d: fetch failed: %v", id, err)
			continue
		}

		if err := reconciler.Reconcile(category); err != nil {
			report.recordFailure("category", id, err)
			i.logger.Error("category %d: sync failed: %v", id, err)
			continue
		}
		report.CategoriesProcessed++
	}

	return nil
}

func (i *Importer) syncProducts(ctx context.Context, reconciler *ProductReconciler, report *Report) error {
	refs, err := i.source.ListProducts()
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		id := ref.ID.Int()
		product, err := i.source.GetProduct(id)
		if err != nil {
			report.recordFailure("product", id, err)
			i.logger.Error("product %d: fetch failed: %v", id, err)
			continue
		}

		// Image listing is best effort; a product syncs without images
		// rather than not at all.
		images, err := i.source.GetProductImages(id)
		if err != nil {
			i.logger.Warn("product %d: image listing failed: %v", id, err)
		} else {
			product.Images = images
		}

		if err := reconciler.Reconcile(product); err != nil {
			report.recordFailure("product", id, err)
			i.logger.Error("product %d: sync failed: %v", id, err)
			continue
		}
		report.ProductsProcessed++
	}

	return nil
}

func (i *Importer) finalizeRun(run *models.SyncRun, report *Report, fatal error) {
	completed := time.Now().UTC()
	report.CompletedAt = completed

	status := report.Status()
	updates := map[string]interface{}{
		"status":               status,
		"categories_processed": report.CategoriesProcessed,
		"categories_failed":    report.CategoriesFailed,
		"products_processed":   report.ProductsProcessed,
		"products_failed":      report.ProductsFailed,
		"completed_at":         &completed,
	}
	if fatal != nil {
		message := fatal.Error()
		updates["status"] = models.SyncRunStatusFailed
		updates["error"] = &message
	}

	if err := i.catalog.UpdateSyncRun(run.ID, updates); err != nil {
		i.logger.Error("updating sync run %s: %v", run.ID, err)
	}
}
