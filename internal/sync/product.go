package sync

import (
	"encoding/json"
	"errors"
	"strconv"

	"gorm.io/datatypes"

	"prestasync/internal/catalog"
	"prestasync/internal/events"
	"prestasync/internal/logger"
	"prestasync/internal/models"
	"prestasync/internal/services/prestashop"
)

// ProductReconciler synthesizes the full product/variant/option aggregate
// from the source's fan-out endpoints and reconciles it against the target
// catalog. Combinations are processed sequentially on purpose: option
// discovery folds into an immutable slice that later steps only read.
type ProductReconciler struct {
	source     Source
	catalog    catalog.API
	files      FileStorage
	normalizer *Normalizer
	publisher  Publisher
	logger     *logger.Logger
	profileID  string
}

func NewProductReconciler(
	source Source,
	store catalog.API,
	files FileStorage,
	normalizer *Normalizer,
	publisher Publisher,
	logger *logger.Logger,
	profileID string,
) *ProductReconciler {
	return &ProductReconciler{
		source:     source,
		catalog:    store,
		files:      files,
		normalizer: normalizer,
		publisher:  publisher,
		logger:     logger,
		profileID:  profileID,
	}
}

// Reconcile runs one product through identity resolution and the matching
// create/update path, all inside a single transaction. The lookup order is
// load-bearing: external id first, then SKU against a lone variant, so a
// simple product imported before its configurable parent is absorbed
// instead of duplicated.
func (r *ProductReconciler) Reconcile(product *prestashop.Product) error {
	externalID := strconv.Itoa(product.ID.Int())

	return r.catalog.Transaction(func(tx catalog.API) error {
		existing, err := tx.ProductByExternalID(externalID)
		if err == nil {
			return r.update(tx, product, existing)
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return err
		}

		if product.Reference != "" {
			variant, err := tx.VariantBySKU(product.Reference)
			if err == nil {
				return r.updateStandaloneVariant(tx, product, variant)
			}
			if !errors.Is(err, catalog.ErrNotFound) {
				return err
			}
		}

		return r.create(tx, product)
	})
}

func (r *ProductReconciler) create(tx catalog.API, product *prestashop.Product) error {
	normalized := r.normalizer.NormalizeProduct(product)
	normalized.ProfileID = r.profileID

	if err := r.assignCollection(tx, product, normalized); err != nil {
		r.logger.Warn("product %d: collection assignment failed: %v", product.ID.Int(), err)
	}

	options, err := r.discoverOptions(product)
	if err != nil {
		return err
	}
	normalized.Options = options

	imageURLs := normalized.Images
	normalized.Images = nil

	if err := tx.CreateProduct(normalized); err != nil {
		return err
	}

	if product.IsConfigurable() {
		for _, ref := range product.Associations.Combinations {
			variant, err := r.buildCombinationVariant(product, ref.ID.Int(), normalized.Options)
			if err != nil {
				if errors.Is(err, prestashop.ErrNotFound) {
					continue
				}
				return err
			}
			variant.ProductID = normalized.ID
			if err := tx.CreateVariant(variant); err != nil {
				return err
			}
		}
	} else {
		stock, err := r.baseStock(product)
		if err != nil {
			return err
		}
		variant := r.normalizer.NormalizeDefaultVariant(product, stock)
		variant.ProductID = normalized.ID
		if err := tx.CreateVariant(variant); err != nil {
			return err
		}
	}

	if err := r.replaceImages(tx, product, normalized.ID, normalized.Handle, imageURLs); err != nil {
		return err
	}

	return r.publisher.Publish(events.Event{
		Type:       events.TypeProductCreated,
		EntityID:   normalized.ID,
		ExternalID: normalized.ExternalID,
	})
}

func (r *ProductReconciler) update(tx catalog.API, product *prestashop.Product, existing *models.Product) error {
	normalized := r.normalizer.NormalizeProduct(product)

	if err := r.assignCollection(tx, product, normalized); err != nil {
		r.logger.Warn("product %d: collection assignment failed: %v", product.ID.Int(), err)
	}

	productOptions := existing.Options
	currentVariants := existing.Variants
	changed := false

	// Options first: variant writes below need resolved option ids.
	if len(product.Associations.ProductOptionValues) > 0 {
		desired, err := r.discoverOptions(product)
		if err != nil {
			return err
		}

		productOptions, changed, err = r.reconcileOptionAdds(tx, existing, productOptions, desired)
		if err != nil {
			return err
		}

		// Orphan variants go before orphan options: a variant must never
		// outlive an option it references.
		currentVariants, err = r.deleteOrphanVariants(tx, product, currentVariants, product.IsConfigurable())
		if err != nil {
			return err
		}

		productOptions, err = r.deleteOrphanOptions(tx, productOptions, desired, &changed)
		if err != nil {
			return err
		}
	} else {
		// No option values left on the source: orphan variants go first,
		// then every remaining option is stale.
		var err error
		currentVariants, err = r.deleteOrphanVariants(tx, product, currentVariants, product.IsConfigurable())
		if err != nil {
			return err
		}
		productOptions, err = r.deleteOrphanOptions(tx, productOptions, nil, &changed)
		if err != nil {
			return err
		}
	}

	if product.IsConfigurable() {
		for _, ref := range product.Associations.Combinations {
			combinationID := ref.ID.Int()
			variant, err := r.buildCombinationVariant(product, combinationID, productOptions)
			if err != nil {
				if errors.Is(err, prestashop.ErrNotFound) {
					continue
				}
				return err
			}

			existingVariant := findVariantByPrestashopID(currentVariants, combinationID)
			if existingVariant != nil {
				wrote, err := r.updateVariantInPlace(tx, existingVariant, variant)
				if err != nil {
					return err
				}
				changed = changed || wrote
			} else {
				variant.ProductID = existing.ID
				if err := tx.CreateVariant(variant); err != nil {
					return err
				}
				changed = true
			}
		}
	} else {
		stock, err := r.baseStock(product)
		if err != nil {
			return err
		}
		variant := r.normalizer.NormalizeDefaultVariant(product, stock)

		// Exactly one surviving variant means this is still the same
		// simple product; update it in place rather than stacking another
		// "Default" variant.
		if len(currentVariants) == 1 {
			wrote, err := r.updateVariantInPlace(tx, &currentVariants[0], variant)
			if err != nil {
				return err
			}
			changed = changed || wrote
		} else {
			variant.ProductID = existing.ID
			if err := tx.CreateVariant(variant); err != nil {
				return err
			}
			changed = true
		}
	}

	if err := r.replaceImages(tx, product, existing.ID, normalized.Handle, product.Images); err != nil {
		return err
	}

	updates := diffProduct(normalized, existing)
	if len(updates) > 0 {
		if err := tx.UpdateProduct(existing.ID, updates); err != nil {
			return err
		}
		changed = true
	}

	if !changed {
		return nil
	}

	return r.publisher.Publish(events.Event{
		Type:       events.TypeProductUpdated,
		EntityID:   existing.ID,
		ExternalID: normalized.ExternalID,
	})
}

// updateStandaloneVariant refreshes a product that lives as a variant of
// another product. Only price/stock/barcode fields are synchronized; the
// variant keeps its title, options, and identity metadata.
func (r *ProductReconciler) updateStandaloneVariant(tx catalog.API, product *prestashop.Product, existing *models.Variant) error {
	stock, err := r.baseStock(product)
	if err != nil {
		return err
	}

	normalized := r.normalizer.NormalizeDefaultVariant(product, stock)
	_, err = r.updateVariantInPlace(tx, existing, normalized)
	return err
}

// discoverOptions folds the product's option-value links into a
// deduplicated slice of normalized options keyed by the parent attribute
// group. Value lists carry the resolved display names so that create and
// update converge on identical records.
func (r *ProductReconciler) discoverOptions(product *prestashop.Product) ([]models.ProductOption, error) {
	options := []models.ProductOption{}

	for _, ref := range product.Associations.ProductOptionValues {
		value, err := r.source.GetOptionValue(ref.ID.Int())
		if err != nil {
			return nil, err
		}
		groupID := value.IDAttributeGroup.Int()

		index := indexOfOption(options, groupID)
		if index < 0 {
			option, err := r.source.GetOption(groupID)
			if err != nil {
				return nil, err
			}
			normalized := r.normalizer.NormalizeOption(option)
			normalized.Values = nil
			options = append(options, *normalized)
			index = len(options) - 1
		}

		options[index].Values = append(options[index].Values, r.normalizer.NormalizeOptionValue(value))
	}

	return options, nil
}

// reconcileOptionAdds creates missing options and refreshes title/values
// of the ones already present. Returns the working option set with ids
// resolved.
func (r *ProductReconciler) reconcileOptionAdds(
	tx catalog.API,
	product *models.Product,
	current []models.ProductOption,
	desired []models.ProductOption,
) ([]models.ProductOption, bool, error) {
	changed := false

	for _, want := range desired {
		groupID, _ := want.PrestashopID()

		index := indexOfOption(current, groupID)
		if index < 0 {
			option := want
			option.ProductID = product.ID
			if err := tx.AddOption(&option); err != nil {
				return nil, changed, err
			}
			current = append(current, option)
			changed = true
			continue
		}

		updates := map[string]interface{}{}
		if current[index].Title != want.Title {
			updates["title"] = want.Title
		}
		if !jsonEqual(current[index].Values, want.Values) {
			updates["values"] = datatypes.JSONSlice[models.OptionValue](want.Values)
		}
		if len(updates) == 0 {
			continue
		}
		if err := tx.UpdateOption(current[index].ID, updates); err != nil {
			return nil, changed, err
		}
		current[index].Title = want.Title
		current[index].Values = want.Values
		changed = true
	}

	return current, changed, nil
}

// deleteOrphanOptions removes options the source no longer links to the
// product. Must run after orphan-variant deletion.
func (r *ProductReconciler) deleteOrphanOptions(
	tx catalog.API,
	current []models.ProductOption,
	desired []models.ProductOption,
	changed *bool,
) ([]models.ProductOption, error) {
	kept := current[:0:0]

	for _, option := range current {
		groupID, ok := option.PrestashopID()
		if ok && indexOfOption(desired, groupID) >= 0 {
			kept = append(kept, option)
			continue
		}
		if err := tx.DeleteOption(option.ID); err != nil {
			return nil, err
		}
		*changed = true
	}

	return kept, nil
}

// deleteOrphanVariants drops variants whose combination the source no
// longer returns. The default variant of a simple product carries the
// product's own id in metadata and is preserved unless the product is
// configurable (in which case a stale default must give way to real
// combinations).
func (r *ProductReconciler) deleteOrphanVariants(
	tx catalog.API,
	product *prestashop.Product,
	variants []models.Variant,
	configurable bool,
) ([]models.Variant, error) {
	kept := variants[:0:0]

	for _, variant := range variants {
		sourceID, ok := variant.PrestashopID()
		if !ok {
			kept = append(kept, variant)
			continue
		}
		if !configurable && sourceID == product.ID.Int() {
			kept = append(kept, variant)
			continue
		}

		_, err := r.source.GetCombination(sourceID)
		if err == nil {
			kept = append(kept, variant)
			continue
		}
		if !errors.Is(err, prestashop.ErrNotFound) {
			return nil, err
		}

		if err := tx.DeleteVariant(variant.ID); err != nil {
			return nil, err
		}
		r.logger.Debug("deleted variant %s: combination %d gone from source", variant.ID, sourceID)

		if err := r.publisher.Publish(events.Event{
			Type:       events.TypeVariantDeleted,
			EntityID:   variant.ID,
			ExternalID: strconv.Itoa(sourceID),
		}); err != nil {
			return nil, err
		}
	}

	return kept, nil
}

// buildCombinationVariant assembles the target variant for one
// combination: option selections resolved against the discovered option
// set, stock matched by id_product_attribute, price as base plus delta.
func (r *ProductReconciler) buildCombinationVariant(
	product *prestashop.Product,
	combinationID int,
	options []models.ProductOption,
) (*models.Variant, error) {
	combination, err := r.source.GetCombination(combinationID)
	if err != nil {
		return nil, err
	}

	selections, err := r.resolveSelections(combination, options)
	if err != nil {
		return nil, err
	}

	stock, err := r.combinationStock(product, combinationID)
	if err != nil {
		return nil, err
	}

	return r.normalizer.NormalizeCombinationVariant(combination, product.Price, selections, stock), nil
}

// resolveSelections turns a combination's abstract value ids into concrete
// option selections by matching each value's attribute group against the
// discovered options.
func (r *ProductReconciler) resolveSelections(
	combination *prestashop.Combination,
	options []models.ProductOption,
) ([]models.VariantOption, error) {
	selections := []models.VariantOption{}

	for _, ref := range combination.Associations.ProductOptionValues {
		value, err := r.source.GetOptionValue(ref.ID.Int())
		if err != nil {
			return nil, err
		}

		index := indexOfOption(options, value.IDAttributeGroup.Int())
		if index < 0 {
			continue
		}

		selections = append(selections, models.VariantOption{
			OptionID: options[index].ID,
			Value:    value.Name.String(),
			Metadata: map[string]interface{}{
				"prestashop_value": value.ID.Int(),
			},
		})
	}

	return selections, nil
}

// combinationStock finds the stock record scoped to one combination,
// falling back to the product-level record when none matches.
func (r *ProductReconciler) combinationStock(product *prestashop.Product, combinationID int) (*prestashop.StockAvailable, error) {
	for _, ref := range product.Associations.StockAvailables {
		if ref.IDProductAttribute.Int() == combinationID {
			return r.source.GetStock(ref.ID.Int())
		}
	}
	return r.baseStock(product)
}

// baseStock fetches the product-level stock record, or a zero record when
// the product has none.
func (r *ProductReconciler) baseStock(product *prestashop.Product) (*prestashop.StockAvailable, error) {
	if len(product.Associations.StockAvailables) == 0 {
		return &prestashop.StockAvailable{}, nil
	}
	stock, err := r.source.GetStock(product.Associations.StockAvailables[0].ID.Int())
	if err != nil {
		if errors.Is(err, prestashop.ErrNotFound) {
			return &prestashop.StockAvailable{}, nil
		}
		return nil, err
	}
	return stock, nil
}

// updateVariantInPlace writes only the fields each pass synchronizes:
// price, stock, barcodes, dimensions, options, and the synthesized title.
// Reports whether anything was written.
func (r *ProductReconciler) updateVariantInPlace(tx catalog.API, existing *models.Variant, desired *models.Variant) (bool, error) {
	updates := map[string]interface{}{}

	if !jsonEqual(existing.Prices, desired.Prices) {
		updates["prices"] = datatypes.JSONSlice[models.VariantPrice](desired.Prices)
	}
	if existing.InventoryQuantity != desired.InventoryQuantity {
		updates["inventory_quantity"] = desired.InventoryQuantity
	}
	if existing.AllowBackorder != desired.AllowBackorder {
		updates["allow_backorder"] = desired.AllowBackorder
	}
	if existing.ManageInventory != desired.ManageInventory {
		updates["manage_inventory"] = desired.ManageInventory
	}
	if !stringPtrEqual(existing.SKU, desired.SKU) {
		updates["sku"] = desired.SKU
	}
	if !stringPtrEqual(existing.Barcode, desired.Barcode) {
		updates["barcode"] = desired.Barcode
	}
	if !stringPtrEqual(existing.EAN, desired.EAN) {
		updates["ean"] = desired.EAN
	}
	if !stringPtrEqual(existing.UPC, desired.UPC) {
		updates["upc"] = desired.UPC
	}
	if existing.Weight != desired.Weight {
		updates["weight"] = desired.Weight
	}
	if existing.Height != desired.Height {
		updates["height"] = desired.Height
	}
	if existing.Width != desired.Width {
		updates["width"] = desired.Width
	}
	if existing.Length != desired.Length {
		updates["length"] = desired.Length
	}
	if len(desired.Options) > 0 && !jsonEqual(existing.Options, desired.Options) {
		updates["options"] = datatypes.JSONSlice[models.VariantOption](desired.Options)
		updates["title"] = desired.Title
	}

	if len(updates) == 0 {
		return false, nil
	}

	return true, tx.UpdateVariant(existing.ID, updates)
}

// assignCollection picks the product's collection by matching any
// associated category id against collection correlation metadata.
func (r *ProductReconciler) assignCollection(tx catalog.API, product *prestashop.Product, normalized *models.Product) error {
	if len(product.Associations.Categories) == 0 {
		return nil
	}

	collections, err := tx.ListCollections()
	if err != nil {
		return err
	}

	for _, collection := range collections {
		id, ok := collection.PrestashopID()
		if !ok {
			continue
		}
		for _, ref := range product.Associations.Categories {
			if ref.ID.Int() == id {
				collectionID := collection.ID
				normalized.CollectionID = &collectionID
				return nil
			}
		}
	}

	return nil
}

// diffProduct computes the minimal field-level update between the freshly
// normalized product and the stored one. Options and images are
// reconciled separately and excluded here.
func diffProduct(normalized, existing *models.Product) map[string]interface{} {
	updates := map[string]interface{}{}

	if normalized.Title != existing.Title {
		updates["title"] = normalized.Title
	}
	if normalized.Handle != existing.Handle {
		updates["handle"] = normalized.Handle
	}
	if normalized.Status != existing.Status {
		updates["status"] = normalized.Status
	}
	if !stringPtrEqual(normalized.Subtitle, existing.Subtitle) {
		updates["subtitle"] = normalized.Subtitle
	}
	if !stringPtrEqual(normalized.Description, existing.Description) {
		updates["description"] = normalized.Description
	}
	if !stringPtrEqual(normalized.CollectionID, existing.CollectionID) {
		updates["collection_id"] = normalized.CollectionID
	}
	if normalized.Weight != existing.Weight {
		updates["weight"] = normalized.Weight
	}
	if normalized.Height != existing.Height {
		updates["height"] = normalized.Height
	}
	if normalized.Length != existing.Length {
		updates["length"] = normalized.Length
	}
	if normalized.Width != existing.Width {
		updates["width"] = normalized.Width
	}
	if !jsonEqual(normalized.Metadata, existing.Metadata) {
		updates["metadata"] = datatypes.JSONMap(normalized.Metadata)
	}

	return updates
}

func indexOfOption(options []models.ProductOption, prestashopID int) int {
	for i := range options {
		if id, ok := options[i].PrestashopID(); ok && id == prestashopID {
			return i
		}
	}
	return -1
}

func findVariantByPrestashopID(variants []models.Variant, prestashopID int) *models.Variant {
	for i := range variants {
		if id, ok := variants[i].PrestashopID(); ok && id == prestashopID {
			return &variants[i]
		}
	}
	return nil
}

// jsonEqual compares two values by canonical JSON encoding, which papers
// over []string vs []interface{} differences after a database round-trip.
func jsonEqual(a, b interface{}) bool {
	rawA, errA := json.Marshal(a)
	rawB, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(rawA) == string(rawB)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
