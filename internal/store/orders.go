package store

import (
	"context"
	"database/sql"
	"fmt"

	"order-amendment-service/internal/models"
)

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderLines retrieves all lines for an order
func (s *Store) GetOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.SelectContext(ctx, &lines,
		"SELECT * FROM order_lines WHERE order_id = $1 ORDER BY id", orderID)
	return lines, err
}

// GetEditLog retrieves the append-only edit log for an order, oldest
// entry first. There is deliberately no update or delete counterpart.
func (s *Store) GetEditLog(ctx context.Context, orderID int64) ([]models.EditLogEntry, error) {
	var entries []models.EditLogEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM edit_log WHERE order_id = $1 ORDER BY id", orderID)
	return entries, err
}
