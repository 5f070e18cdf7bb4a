package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-amendment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogStore struct {
	rows  []models.CatalogRow
	calls int
}

func (f *fakeCatalogStore) GetCatalogRows(ctx context.Context, cafeID int64) ([]models.CatalogRow, error) {
	f.calls++
	return f.rows, nil
}

type fakeCatalogCache struct {
	data    map[int64][]models.LogicalDish
	getErr  error
	setErr  error
	deletes int
}

func newFakeCatalogCache() *fakeCatalogCache {
	return &fakeCatalogCache{data: make(map[int64][]models.LogicalDish)}
}

func (f *fakeCatalogCache) GetCatalog(ctx context.Context, cafeID int64) ([]models.LogicalDish, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data[cafeID], nil
}

func (f *fakeCatalogCache) SetCatalog(ctx context.Context, cafeID int64, dishes []models.LogicalDish, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[cafeID] = dishes
	return nil
}

func (f *fakeCatalogCache) InvalidateCatalog(ctx context.Context, cafeID int64) error {
	delete(f.data, cafeID)
	f.deletes++
	return nil
}

func catalogRows() []models.CatalogRow {
	return []models.CatalogRow{
		{ID: 1, CafeID: 7, Name: "Paneer Tikka Masala (Half)", Price: 210, InStock: true, Active: true},
		{ID: 2, CafeID: 7, Name: "Paneer Tikka Masala (Full)", Price: 380, InStock: true, Active: true},
	}
}

func TestGetCatalogPopulatesCache(t *testing.T) {
	st := &fakeCatalogStore{rows: catalogRows()}
	cache := newFakeCatalogCache()
	svc := NewCatalogService(st, cache, time.Minute)
	ctx := context.Background()

	dishes, err := svc.GetCatalog(ctx, 7)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, 1, st.calls)

	// Second read is served from the cache.
	dishes, err = svc.GetCatalog(ctx, 7)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, 1, st.calls)
}

func TestGetCatalogCacheErrorFallsThrough(t *testing.T) {
	st := &fakeCatalogStore{rows: catalogRows()}
	cache := newFakeCatalogCache()
	cache.getErr = errors.New("connection refused")
	svc := NewCatalogService(st, cache, time.Minute)

	dishes, err := svc.GetCatalog(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, dishes, 1)
	assert.Equal(t, 1, st.calls)
}

func TestGetCatalogWithoutCache(t *testing.T) {
	st := &fakeCatalogStore{rows: catalogRows()}
	svc := NewCatalogService(st, nil, time.Minute)

	dishes, err := svc.GetCatalog(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, dishes, 1)
}

func TestInvalidateCatalog(t *testing.T) {
	st := &fakeCatalogStore{rows: catalogRows()}
	cache := newFakeCatalogCache()
	svc := NewCatalogService(st, cache, time.Minute)
	ctx := context.Background()

	_, err := svc.GetCatalog(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateCatalog(ctx, 7))
	assert.Equal(t, 1, cache.deletes)

	// The next read hits the store again.
	_, err = svc.GetCatalog(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, st.calls)
}
