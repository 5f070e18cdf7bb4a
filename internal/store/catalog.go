package store

import (
	"context"
	"database/sql"
	"fmt"

	"order-amendment-service/internal/models"
)

// GetCatalogRows retrieves all active catalog rows for a cafe
func (s *Store) GetCatalogRows(ctx context.Context, cafeID int64) ([]models.CatalogRow, error) {
	var rows []models.CatalogRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM catalog_rows WHERE cafe_id = $1 AND active = TRUE ORDER BY id", cafeID)
	return rows, err
}

// GetCatalogRow retrieves a single catalog row by ID
func (s *Store) GetCatalogRow(ctx context.Context, id int64) (*models.CatalogRow, error) {
	var row models.CatalogRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM catalog_rows WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("catalog row not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
