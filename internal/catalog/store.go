package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"prestasync/internal/models"
)

// ErrNotFound signals a lookup miss. It is an expected branching condition
// for the reconcilers, never a failure.
var ErrNotFound = errors.New("catalog: not found")

// API is the capability surface the sync engine consumes. Transaction
// yields an API bound to the transaction so one category or one product
// aggregate commits all-or-nothing.
type API interface {
	Transaction(fn func(tx API) error) error

	RetrieveStore() (*models.Store, error)
	UpdateStoreMetadata(values map[string]interface{}) error

	CollectionByHandle(handle string) (*models.Collection, error)
	ListCollections() ([]models.Collection, error)
	CreateCollection(collection *models.Collection) error
	UpdateCollection(id string, updates map[string]interface{}) error

	ProductByExternalID(externalID string) (*models.Product, error)
	RetrieveProduct(id string) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(id string, updates map[string]interface{}) error

	AddOption(option *models.ProductOption) error
	UpdateOption(id string, updates map[string]interface{}) error
	DeleteOption(id string) error

	VariantBySKU(sku string) (*models.Variant, error)
	CreateVariant(variant *models.Variant) error
	UpdateVariant(id string, updates map[string]interface{}) error
	DeleteVariant(id string) error

	CreateSyncRun(run *models.SyncRun) error
	UpdateSyncRun(id string, updates map[string]interface{}) error
	ListSyncRuns(limit int) ([]models.SyncRun, error)
}

// Store is the GORM implementation of API.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ API = (*Store)(nil)

func (s *Store) Transaction(fn func(tx API) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) RetrieveStore() (*models.Store, error) {
	var store models.Store
	if err := s.db.First(&store).Error; err != nil {
		return nil, wrapNotFound("retrieve store", err)
	}
	return &store, nil
}

func (s *Store) UpdateStoreMetadata(values map[string]interface{}) error {
	store, err := s.RetrieveStore()
	if err != nil {
		return err
	}
	if store.Metadata == nil {
		store.Metadata = map[string]interface{}{}
	}
	for key, value := range values {
		store.Metadata[key] = value
	}
	if err := s.db.Model(store).Update("metadata", store.Metadata).Error; err != nil {
		return fmt.Errorf("failed to update store metadata: %w", err)
	}
	return nil
}

func (s *Store) CollectionByHandle(handle string) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.First(&collection, "handle = ?", handle).Error; err != nil {
		return nil, wrapNotFound("collection by handle", err)
	}
	return &collection, nil
}

func (s *Store) ListCollections() ([]models.Collection, error) {
	var collections []models.Collection
	if err := s.db.Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

func (s *Store) CreateCollection(collection *models.Collection) error {
	if err := s.db.Create(collection).Error; err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (s *Store) UpdateCollection(id string, updates map[string]interface{}) error {
	if err := s.db.Model(&models.Collection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	return nil
}

func (s *Store) ProductByExternalID(externalID string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Options").Preload("Variants").
		First(&product, "external_id = ?", externalID).Error
	if err != nil {
		return nil, wrapNotFound("product by external id", err)
	}
	return &product, nil
}

func (s *Store) RetrieveProduct(id string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Options").Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound("retrieve product", err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(product *models.Product) error {
	if err := s.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(id string, updates map[string]interface{}) error {
	if err := s.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *Store) AddOption(option *models.ProductOption) error {
	if err := s.db.Create(option).Error; err != nil {
		return fmt.Errorf("failed to add option: %w", err)
	}
	return nil
}

func (s *Store) UpdateOption(id string, updates map[string]interface{}) error {
	if err := s.db.Model(&models.ProductOption{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update option: %w", err)
	}
	return nil
}

func (s *Store) DeleteOption(id string) error {
	if err := s.db.Delete(&models.ProductOption{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return nil
}

func (s *Store) VariantBySKU(sku string) (*models.Variant, error) {
	var variant models.Variant
	if err := s.db.First(&variant, "sku = ?", sku).Error; err != nil {
		return nil, wrapNotFound("variant by sku", err)
	}
	return &variant, nil
}

func (s *Store) CreateVariant(variant *models.Variant) error {
	if err := s.db.Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func (s *Store) UpdateVariant(id string, updates map[string]interface{}) error {
	if err := s.db.Model(&models.Variant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update variant: %w", err)
	}
	return nil
}

func (s *Store) DeleteVariant(id string) error {
	if err := s.db.Delete(&models.Variant{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	return nil
}

func (s *Store) CreateSyncRun(run *models.SyncRun) error {
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

func (s *Store) UpdateSyncRun(id string, updates map[string]interface{}) error {
	if err := s.db.Model(&models.SyncRun{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	return nil
}

func (s *Store) ListSyncRuns(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	query := s.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
