package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"

	"prestasync/internal/database"
	"prestasync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.New("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db.DB)
}

func TestCollectionRoundTrip(t *testing.T) {
	store := newTestStore(t)

	collection := &models.Collection{
		Title:  "Summer",
		Handle: "summer",
		Metadata: datatypes.JSONMap{
			"prestashop_id": 3,
		},
	}
	require.NoError(t, store.CreateCollection(collection))
	require.NotEmpty(t, collection.ID)

	found, err := store.CollectionByHandle("summer")
	require.NoError(t, err)
	assert.Equal(t, collection.ID, found.ID)
	assert.Equal(t, "Summer", found.Title)

	id, ok := found.PrestashopID()
	require.True(t, ok)
	assert.Equal(t, 3, id)

	require.NoError(t, store.UpdateCollection(collection.ID, map[string]interface{}{
		"title": "Summer Sale",
	}))

	updated, err := store.CollectionByHandle("summer")
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", updated.Title)

	_, err = store.CollectionByHandle("winter")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProductByExternalIDPreloadsAggregate(t *testing.T) {
	store := newTestStore(t)

	sku := "SH-RED"
	product := &models.Product{
		ExternalID: "10",
		Title:      "Shirt",
		Handle:     "shirt",
		Status:     models.ProductStatusPublished,
		Metadata:   datatypes.JSONMap{"prestashop_id": 10},
		Options: []models.ProductOption{
			{
				Title:    "Color",
				Values:   datatypes.JSONSlice[models.OptionValue]{{Value: "Red"}},
				Metadata: datatypes.JSONMap{"prestashop_id": 7},
			},
		},
	}
	require.NoError(t, store.CreateProduct(product))

	variant := &models.Variant{
		ProductID: product.ID,
		Title:     "Red",
		SKU:       &sku,
		Prices: datatypes.JSONSlice[models.VariantPrice]{
			{Amount: 2499, CurrencyCode: "eur"},
		},
		Metadata: datatypes.JSONMap{"prestashop_id": 201},
	}
	require.NoError(t, store.CreateVariant(variant))

	found, err := store.ProductByExternalID("10")
	require.NoError(t, err)
	require.Len(t, found.Options, 1)
	assert.Equal(t, "Color", found.Options[0].Title)
	require.Len(t, found.Variants, 1)
	require.Len(t, found.Variants[0].Prices, 1)
	assert.Equal(t, int64(2499), found.Variants[0].Prices[0].Amount)

	_, err = store.ProductByExternalID("999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVariantBySKU(t *testing.T) {
	store := newTestStore(t)

	product := &models.Product{ExternalID: "10", Title: "Shirt", Handle: "shirt"}
	require.NoError(t, store.CreateProduct(product))

	sku := "MUG-1"
	require.NoError(t, store.CreateVariant(&models.Variant{
		ProductID: product.ID,
		Title:     "Default",
		SKU:       &sku,
	}))

	found, err := store.VariantBySKU("MUG-1")
	require.NoError(t, err)
	assert.Equal(t, "Default", found.Title)

	_, err = store.VariantBySKU("NOPE")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionRollsBackAggregate(t *testing.T) {
	store := newTestStore(t)

	boom := errors.New("boom")
	err := store.Transaction(func(tx API) error {
		if err := tx.CreateProduct(&models.Product{
			ExternalID: "10",
			Title:      "Shirt",
			Handle:     "shirt",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.ProductByExternalID("10")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStoreMetadataMerges(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.db.Create(&models.Store{
		Name:                "Test Store",
		DefaultCurrencyCode: "eur",
		Metadata:            datatypes.JSONMap{"existing": "kept"},
	}).Error)

	require.NoError(t, store.UpdateStoreMetadata(map[string]interface{}{
		"source_prestashop_bt": "2024-01-02T03:04:05Z",
	}))

	found, err := store.RetrieveStore()
	require.NoError(t, err)
	assert.Equal(t, "kept", found.Metadata["existing"])
	assert.Equal(t, "2024-01-02T03:04:05Z", found.Metadata["source_prestashop_bt"])
}

func TestSyncRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run := &models.SyncRun{Status: models.SyncRunStatusRunning, TriggeredBy: models.SyncTriggeredManual}
	require.NoError(t, store.CreateSyncRun(run))

	require.NoError(t, store.UpdateSyncRun(run.ID, map[string]interface{}{
		"status":             models.SyncRunStatusSuccess,
		"products_processed": 4,
	}))

	runs, err := store.ListSyncRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.SyncRunStatusSuccess, runs[0].Status)
	assert.Equal(t, 4, runs[0].ProductsProcessed)
}
