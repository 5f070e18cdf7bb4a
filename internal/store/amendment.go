package store

import (
	"context"
	"errors"
	"fmt"

	"order-amendment-service/internal/models"
)

// ErrStaleOrder means the order's persisted status, settlement or total
// no longer matches the snapshot the amendment was built against.
var ErrStaleOrder = errors.New("order state differs from expected snapshot")

// PartialCommitError reports a commit whose durability is unknown: the
// transaction had started writing and neither commit nor rollback could
// be confirmed. Callers must treat the order as possibly amended and
// reconcile before retrying.
type PartialCommitError struct {
	OrderID int64
	Step    string
	Err     error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("amendment of order %d may be partially committed at step %q: %v",
		e.OrderID, e.Step, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

// AmendmentPlan is the full write set of one reconciliation commit,
// together with the order snapshot it was derived from.
type AmendmentPlan struct {
	OrderID            int64
	ExpectedStatus     string
	ExpectedSettlement string
	ExpectedTotal      int64
	DeleteLineIDs      []int64
	UpdateLines        []models.OrderLine
	InsertLines        []models.OrderLine
	NewTotal           int64
	LedgerEntries      []models.EditLogEntry
}

// ApplyAmendment applies a reconciliation commit as one transaction:
// it re-reads the order under a row lock, verifies it still matches
// the plan's snapshot, then deletes removed lines, updates changed
// lines, inserts added lines, updates the order total and writes the
// ledger entries. A snapshot mismatch returns ErrStaleOrder with
// nothing written.
func (s *Store) ApplyAmendment(ctx context.Context, plan *AmendmentPlan) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current struct {
		Status      string `db:"status"`
		Settlement  string `db:"settlement"`
		TotalAmount int64  `db:"total_amount"`
	}
	err = tx.GetContext(ctx, &current,
		"SELECT status, settlement, total_amount FROM orders WHERE id = $1 FOR UPDATE",
		plan.OrderID)
	if err != nil {
		return fmt.Errorf("failed to lock order %d: %w", plan.OrderID, err)
	}

	if current.Status != plan.ExpectedStatus ||
		current.Settlement != plan.ExpectedSettlement ||
		current.TotalAmount != plan.ExpectedTotal {
		return fmt.Errorf("%w: order %d is %s/%s/total=%d",
			ErrStaleOrder, plan.OrderID, current.Status, current.Settlement, current.TotalAmount)
	}

	for _, lineID := range plan.DeleteLineIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM order_lines WHERE id = $1 AND order_id = $2",
			lineID, plan.OrderID); err != nil {
			return fmt.Errorf("failed to delete line %d: %w", lineID, err)
		}
	}

	for _, line := range plan.UpdateLines {
		if _, err := tx.ExecContext(ctx,
			"UPDATE order_lines SET quantity = $1, unit_price = $2, line_total = $3 WHERE id = $4 AND order_id = $5",
			line.Quantity, line.UnitPrice, line.LineTotal, line.ID, plan.OrderID); err != nil {
			return fmt.Errorf("failed to update line %d: %w", line.ID, err)
		}
	}

	for _, line := range plan.InsertLines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, catalog_row_id, display_name, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			plan.OrderID, line.CatalogRowID, line.DisplayName, line.Quantity, line.UnitPrice, line.LineTotal); err != nil {
			return fmt.Errorf("failed to insert line for catalog row %d: %w", line.CatalogRowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET total_amount = $1, updated_at = NOW() WHERE id = $2",
		plan.NewTotal, plan.OrderID); err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	for _, entry := range plan.LedgerEntries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO edit_log (order_id, staff_id, action, catalog_row_id, display_name,
			   old_quantity, new_quantity, old_unit_price, new_unit_price,
			   old_line_total, new_line_total, old_order_total, new_order_total, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			entry.OrderID, entry.StaffID, entry.Action, entry.CatalogRowID, entry.DisplayName,
			entry.OldQuantity, entry.NewQuantity, entry.OldUnitPrice, entry.NewUnitPrice,
			entry.OldLineTotal, entry.NewLineTotal, entry.OldOrderTotal, entry.NewOrderTotal,
			entry.CreatedAt); err != nil {
			return fmt.Errorf("failed to write edit log entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		// The transaction outcome is indeterminate at this point: the
		// server may have applied it even though the commit call failed.
		return &PartialCommitError{OrderID: plan.OrderID, Step: "commit", Err: err}
	}

	return nil
}
