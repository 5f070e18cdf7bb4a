package service

import (
	"context"
	"fmt"
	"time"

	"order-amendment-service/internal/models"
	"order-amendment-service/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the read-only catalog surface. *store.Store
// satisfies it.
type CatalogStore interface {
	GetCatalogRows(ctx context.Context, cafeID int64) ([]models.CatalogRow, error)
}

// CatalogCache caches normalized catalogs per cafe. A (nil, nil) read
// is a miss. *redisclient.Client satisfies it.
type CatalogCache interface {
	GetCatalog(ctx context.Context, cafeID int64) ([]models.LogicalDish, error)
	SetCatalog(ctx context.Context, cafeID int64, dishes []models.LogicalDish, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context, cafeID int64) error
}

// CatalogService serves the normalized menu catalog that backs the
// add-item picker. The cache is an optimization only: any cache error
// falls through to the store and the normalizer.
type CatalogService struct {
	store    CatalogStore
	cache    CatalogCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st CatalogStore, cache CatalogCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    st,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// GetCatalog returns the cafe's catalog collapsed into logical dishes
// with deduplicated portion lists.
func (s *CatalogService) GetCatalog(ctx context.Context, cafeID int64) ([]models.LogicalDish, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetCatalog")
	defer span.End()

	if s.cache != nil {
		dishes, err := s.cache.GetCatalog(ctx, cafeID)
		if err != nil {
			s.logger.Warn("Catalog cache read failed, falling back to store",
				zap.Int64("cafe_id", cafeID),
				zap.Error(err))
		} else if dishes != nil {
			util.CatalogCacheHits.Inc()
			return dishes, nil
		}
		util.CatalogCacheMisses.Inc()
	}

	rows, err := s.store.GetCatalogRows(ctx, cafeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog rows: %w", err)
	}

	dishes := NormalizeCatalog(rows)

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, cafeID, dishes, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache normalized catalog",
				zap.Int64("cafe_id", cafeID),
				zap.Error(err))
		}
	}

	return dishes, nil
}

// InvalidateCatalog drops the cached catalog for a cafe. Called when
// the catalog provider announces a menu change.
func (s *CatalogService) InvalidateCatalog(ctx context.Context, cafeID int64) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.InvalidateCatalog(ctx, cafeID); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}

	s.logger.Info("Catalog cache invalidated", zap.Int64("cafe_id", cafeID))
	return nil
}
