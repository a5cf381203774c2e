package sync

import (
	"fmt"

	"gorm.io/datatypes"

	"prestasync/internal/catalog"
	"prestasync/internal/events"
	"prestasync/internal/models"
	"prestasync/internal/services/prestashop"
)

// fakeCatalog is an in-memory catalog.API that applies updates and counts
// every write, so tests can assert that a repeated pass stays silent.
type fakeCatalog struct {
	store       *models.Store
	collections []*models.Collection
	products    []*models.Product
	runs        []*models.SyncRun

	writes int
	nextID int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		store: &models.Store{
			ID:                       "store_1",
			Name:                     "Test Store",
			DefaultCurrencyCode:      "eur",
			Currencies:               datatypes.JSONSlice[string]{"eur"},
			DefaultShippingProfileID: "sp_1",
			Metadata:                 datatypes.JSONMap{},
		},
	}
}

func (f *fakeCatalog) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

func (f *fakeCatalog) Transaction(fn func(tx catalog.API) error) error {
	return fn(f)
}

func (f *fakeCatalog) RetrieveStore() (*models.Store, error) {
	if f.store == nil {
		return nil, catalog.ErrNotFound
	}
	return f.store, nil
}

func (f *fakeCatalog) UpdateStoreMetadata(values map[string]interface{}) error {
	if f.store.Metadata == nil {
		f.store.Metadata = datatypes.JSONMap{}
	}
	for k, v := range values {
		f.store.Metadata[k] = v
	}
	f.writes++
	return nil
}

func (f *fakeCatalog) CollectionByHandle(handle string) (*models.Collection, error) {
	for _, collection := range f.collections {
		if collection.Handle == handle {
			return collection, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) ListCollections() ([]models.Collection, error) {
	out := make([]models.Collection, 0, len(f.collections))
	for _, collection := range f.collections {
		out = append(out, *collection)
	}
	return out, nil
}

func (f *fakeCatalog) CreateCollection(collection *models.Collection) error {
	if collection.ID == "" {
		collection.ID = f.id("col")
	}
	f.collections = append(f.collections, collection)
	f.writes++
	return nil
}

func (f *fakeCatalog) UpdateCollection(id string, updates map[string]interface{}) error {
	for _, collection := range f.collections {
		if collection.ID != id {
			continue
		}
		if v, ok := updates["title"]; ok {
			collection.Title = v.(string)
		}
		if v, ok := updates["handle"]; ok {
			collection.Handle = v.(string)
		}
		if v, ok := updates["metadata"]; ok {
			collection.Metadata = datatypes.JSONMap(v.(datatypes.JSONMap))
		}
		f.writes++
		return nil
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) ProductByExternalID(externalID string) (*models.Product, error) {
	for _, product := range f.products {
		if product.ExternalID == externalID {
			return product, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) RetrieveProduct(id string) (*models.Product, error) {
	for _, product := range f.products {
		if product.ID == id {
			return product, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) CreateProduct(product *models.Product) error {
	if product.ID == "" {
		product.ID = f.id("prod")
	}
	for i := range product.Options {
		if product.Options[i].ID == "" {
			product.Options[i].ID = f.id("opt")
		}
		product.Options[i].ProductID = product.ID
	}
	f.products = append(f.products, product)
	f.writes++
	return nil
}

func (f *fakeCatalog) UpdateProduct(id string, updates map[string]interface{}) error {
	product, err := f.RetrieveProduct(id)
	if err != nil {
		return err
	}
	if v, ok := updates["title"]; ok {
		product.Title = v.(string)
	}
	if v, ok := updates["handle"]; ok {
		product.Handle = v.(string)
	}
	if v, ok := updates["status"]; ok {
		product.Status = v.(models.ProductStatus)
	}
	if v, ok := updates["subtitle"]; ok {
		product.Subtitle = v.(*string)
	}
	if v, ok := updates["description"]; ok {
		product.Description = v.(*string)
	}
	if v, ok := updates["collection_id"]; ok {
		product.CollectionID = v.(*string)
	}
	if v, ok := updates["weight"]; ok {
		product.Weight = v.(int)
	}
	if v, ok := updates["height"]; ok {
		product.Height = v.(int)
	}
	if v, ok := updates["length"]; ok {
		product.Length = v.(int)
	}
	if v, ok := updates["width"]; ok {
		product.Width = v.(int)
	}
	if v, ok := updates["metadata"]; ok {
		product.Metadata = v.(datatypes.JSONMap)
	}
	if v, ok := updates["images"]; ok {
		product.Images = v.(datatypes.JSONSlice[string])
	}
	f.writes++
	return nil
}

func (f *fakeCatalog) AddOption(option *models.ProductOption) error {
	product, err := f.RetrieveProduct(option.ProductID)
	if err != nil {
		return err
	}
	if option.ID == "" {
		option.ID = f.id("opt")
	}
	product.Options = append(product.Options, *option)
	f.writes++
	return nil
}

func (f *fakeCatalog) UpdateOption(id string, updates map[string]interface{}) error {
	for _, product := range f.products {
		for i := range product.Options {
			if product.Options[i].ID != id {
				continue
			}
			if v, ok := updates["title"]; ok {
				product.Options[i].Title = v.(string)
			}
			if v, ok := updates["values"]; ok {
				product.Options[i].Values = v.(datatypes.JSONSlice[models.OptionValue])
			}
			f.writes++
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) DeleteOption(id string) error {
	for _, product := range f.products {
		for i := range product.Options {
			if product.Options[i].ID == id {
				product.Options = append(product.Options[:i], product.Options[i+1:]...)
				f.writes++
				return nil
			}
		}
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) VariantBySKU(sku string) (*models.Variant, error) {
	for _, product := range f.products {
		for i := range product.Variants {
			if product.Variants[i].SKU != nil && *product.Variants[i].SKU == sku {
				return &product.Variants[i], nil
			}
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) CreateVariant(variant *models.Variant) error {
	product, err := f.RetrieveProduct(variant.ProductID)
	if err != nil {
		return err
	}
	if variant.ID == "" {
		variant.ID = f.id("var")
	}
	product.Variants = append(product.Variants, *variant)
	f.writes++
	return nil
}

func (f *fakeCatalog) UpdateVariant(id string, updates map[string]interface{}) error {
	for _, product := range f.products {
		for i := range product.Variants {
			if product.Variants[i].ID != id {
				continue
			}
			variant := &product.Variants[i]
			if v, ok := updates["title"]; ok {
				variant.Title = v.(string)
			}
			if v, ok := updates["prices"]; ok {
				variant.Prices = v.(datatypes.JSONSlice[models.VariantPrice])
			}
			if v, ok := updates["inventory_quantity"]; ok {
				variant.InventoryQuantity = v.(int)
			}
			if v, ok := updates["allow_backorder"]; ok {
				variant.AllowBackorder = v.(bool)
			}
			if v, ok := updates["manage_inventory"]; ok {
				variant.ManageInventory = v.(bool)
			}
			if v, ok := updates["sku"]; ok {
				variant.SKU = v.(*string)
			}
			if v, ok := updates["barcode"]; ok {
				variant.Barcode = v.(*string)
			}
			if v, ok := updates["ean"]; ok {
				variant.EAN = v.(*string)
			}
			if v, ok := updates["upc"]; ok {
				variant.UPC = v.(*string)
			}
			if v, ok := updates["weight"]; ok {
				variant.Weight = v.(int)
			}
			if v, ok := updates["height"]; ok {
				variant.Height = v.(int)
			}
			if v, ok := updates["width"]; ok {
				variant.Width = v.(int)
			}
			if v, ok := updates["length"]; ok {
				variant.Length = v.(int)
			}
			if v, ok := updates["options"]; ok {
				variant.Options = v.(datatypes.JSONSlice[models.VariantOption])
			}
			f.writes++
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) DeleteVariant(id string) error {
	for _, product := range f.products {
		for i := range product.Variants {
			if product.Variants[i].ID == id {
				product.Variants = append(product.Variants[:i], product.Variants[i+1:]...)
				f.writes++
				return nil
			}
		}
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) CreateSyncRun(run *models.SyncRun) error {
	if run.ID == "" {
		run.ID = f.id("run")
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeCatalog) UpdateSyncRun(id string, updates map[string]interface{}) error {
	for _, run := range f.runs {
		if run.ID != id {
			continue
		}
		if v, ok := updates["status"]; ok {
			run.Status = v.(models.SyncRunStatus)
		}
		if v, ok := updates["categories_processed"]; ok {
			run.CategoriesProcessed = v.(int)
		}
		if v, ok := updates["categories_failed"]; ok {
			run.CategoriesFailed = v.(int)
		}
		if v, ok := updates["products_processed"]; ok {
			run.ProductsProcessed = v.(int)
		}
		if v, ok := updates["products_failed"]; ok {
			run.ProductsFailed = v.(int)
		}
		return nil
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) ListSyncRuns(limit int) ([]models.SyncRun, error) {
	out := make([]models.SyncRun, 0, len(f.runs))
	for _, run := range f.runs {
		out = append(out, *run)
	}
	return out, nil
}

var _ catalog.API = (*fakeCatalog)(nil)

// fakeSource serves canned PrestaShop records and counts lookups.
type fakeSource struct {
	categories   map[int]*prestashop.Category
	products     map[int]*prestashop.Product
	options      map[int]*prestashop.ProductOption
	values       map[int]*prestashop.ProductOptionValue
	stocks       map[int]*prestashop.StockAvailable
	combinations map[int]*prestashop.Combination
	images       map[int][]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		categories:   map[int]*prestashop.Category{},
		products:     map[int]*prestashop.Product{},
		options:      map[int]*prestashop.ProductOption{},
		values:       map[int]*prestashop.ProductOptionValue{},
		stocks:       map[int]*prestashop.StockAvailable{},
		combinations: map[int]*prestashop.Combination{},
		images:       map[int][]string{},
	}
}

func (f *fakeSource) ListCategories() ([]prestashop.Category, error) {
	out := []prestashop.Category{}
	for _, category := range f.categories {
		out = append(out, *category)
	}
	return out, nil
}

func (f *fakeSource) GetCategory(id int) (*prestashop.Category, error) {
	if category, ok := f.categories[id]; ok {
		return category, nil
	}
	return nil, prestashop.ErrNotFound
}

func (f *fakeSource) ListProducts() ([]prestashop.Product, error) {
	out := []prestashop.Product{}
	for _, product := range f.products {
		out = append(out, *product)
	}
	return out, nil
}

func (f *fakeSource) GetProduct(id int) (*prestashop.Product, error) {
	if product, ok := f.products[id]; ok {
		return product, nil
	}
	return nil, prestashop.ErrNotFound
}

func (f *fakeSource) GetOption(id int) (*prestashop.ProductOption, error) {
	if option, ok := f.options[id]; ok {
		return option, nil
	}
	return nil, prestashop.ErrNotFound
}

func (f *fakeSource) GetOptionValue(id int) (*prestashop.ProductOptionValue, error) {
	if value, ok := f.values[id]; ok {
		return value, nil
	}
	return nil, prestashop.ErrNotFound
}

func (f *fakeSource) GetStock(id int) (*prestashop.StockAvailable, error) {
	if stock, ok := f.stocks[id]; ok {
		return stock, nil
	}
	return nil, prestashop.ErrNotFound
}

func (f *fakeSource) GetCombination(id int) (*prestashop.Combination, error) {
	if combination, ok := f.combinations[id]; ok {
		return combination, nil
	}
	return nil, prestashop.ErrNotFound
}

func (f *fakeSource) GetProductImages(productID int) ([]string, error) {
	return f.images[productID], nil
}

func (f *fakeSource) DownloadImage(url string) ([]byte, error) {
	return []byte("image-bytes:" + url), nil
}

var _ Source = (*fakeSource)(nil)

// fakeStorage records uploads and returns deterministic URLs.
type fakeStorage struct {
	uploads []string
}

func (f *fakeStorage) Upload(filename string, data []byte) (string, error) {
	f.uploads = append(f.uploads, filename)
	return "https://files.test/" + filename, nil
}

// fakePublisher collects published events.
type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakePublisher) typesSeen() []string {
	out := make([]string, 0, len(f.published))
	for _, event := range f.published {
		out = append(out, event.Type)
	}
	return out
}
