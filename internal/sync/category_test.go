package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"

	"prestasync/internal/events"
	"prestasync/internal/logger"
	"prestasync/internal/models"
	"prestasync/internal/services/prestashop"
)

func newCategoryReconcilerForTest(store *fakeCatalog, publisher *fakePublisher) *CategoryReconciler {
	normalizer := NewNormalizer([]string{"eur"}, false)
	return NewCategoryReconciler(store, normalizer, publisher, logger.New("error"))
}

func summerCategory() *prestashop.Category {
	return &prestashop.Category{
		ID:          prestashop.FlexInt(3),
		Name:        prestashop.FlexString("Summer"),
		LinkRewrite: prestashop.FlexString("summer"),
	}
}

func TestCategoryCreatesCollection(t *testing.T) {
	store := newFakeCatalog()
	publisher := &fakePublisher{}
	reconciler := newCategoryReconcilerForTest(store, publisher)

	require.NoError(t, reconciler.Reconcile(summerCategory()))

	require.Len(t, store.collections, 1)
	created := store.collections[0]
	assert.Equal(t, "Summer", created.Title)
	assert.Equal(t, "summer", created.Handle)

	id, ok := created.PrestashopID()
	require.True(t, ok)
	assert.Equal(t, 3, id)

	assert.Equal(t, []string{events.TypeCollectionCreated}, publisher.typesSeen())
}

func TestCategorySecondPassIsSilent(t *testing.T) {
	store := newFakeCatalog()
	publisher := &fakePublisher{}
	reconciler := newCategoryReconcilerForTest(store, publisher)

	require.NoError(t, reconciler.Reconcile(summerCategory()))
	writesAfterCreate := store.writes

	require.NoError(t, reconciler.Reconcile(summerCategory()))

	assert.Equal(t, writesAfterCreate, store.writes)
	assert.Equal(t, []string{events.TypeCollectionCreated}, publisher.typesSeen())
}

func TestCategoryUpdatesChangedTitle(t *testing.T) {
	store := newFakeCatalog()
	publisher := &fakePublisher{}
	reconciler := newCategoryReconcilerForTest(store, publisher)

	require.NoError(t, reconciler.Reconcile(summerCategory()))

	renamed := summerCategory()
	renamed.Name = prestashop.FlexString("Summer Sale")
	require.NoError(t, reconciler.Reconcile(renamed))

	assert.Equal(t, "Summer Sale", store.collections[0].Title)
	assert.Equal(t,
		[]string{events.TypeCollectionCreated, events.TypeCollectionUpdated},
		publisher.typesSeen())
}

func TestCategoryBackfillsMissingCorrelation(t *testing.T) {
	store := newFakeCatalog()
	publisher := &fakePublisher{}
	reconciler := newCategoryReconcilerForTest(store, publisher)

	// A collection created outside the sync has no source correlation yet.
	store.collections = append(store.collections, &models.Collection{
		ID:       "col_manual",
		Title:    "Summer",
		Handle:   "summer",
		Metadata: datatypes.JSONMap{},
	})

	require.NoError(t, reconciler.Reconcile(summerCategory()))

	id, ok := store.collections[0].PrestashopID()
	require.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestCategoryHandleConflict(t *testing.T) {
	store := newFakeCatalog()
	publisher := &fakePublisher{}
	reconciler := newCategoryReconcilerForTest(store, publisher)

	store.collections = append(store.collections, &models.Collection{
		ID:     "col_other",
		Title:  "Summer",
		Handle: "summer",
		Metadata: datatypes.JSONMap{
			"prestashop_id": 99,
		},
	})

	err := reconciler.Reconcile(summerCategory())

	var conflict *HandleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "summer", conflict.Handle)
	assert.Equal(t, 3, conflict.CategoryID)
	assert.Equal(t, "col_other", conflict.CollectionID)
	assert.Empty(t, publisher.typesSeen())
}
