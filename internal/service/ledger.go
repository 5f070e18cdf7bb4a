package service

import (
	"time"

	"order-amendment-service/internal/models"
)

// BuildLedger converts a classified diff into one append-only log entry
// per added, removed or changed line. Every entry of one commit carries
// the same before/after order totals: the session's seeded total and
// the working copy's final total.
func BuildLedger(s *Session, diff *Diff, now time.Time) []models.EditLogEntry {
	oldTotal := s.SeededTotal()
	newTotal := s.ComputeTotal()

	entries := make([]models.EditLogEntry, 0, len(diff.Added)+len(diff.Removed)+len(diff.Changed))

	for _, line := range diff.Added {
		entries = append(entries, models.EditLogEntry{
			OrderID:       s.OrderID,
			StaffID:       s.StaffID,
			Action:        models.ActionItemAdded,
			CatalogRowID:  line.CatalogRowID,
			DisplayName:   line.DisplayName,
			NewQuantity:   line.Quantity,
			NewUnitPrice:  line.UnitPrice,
			NewLineTotal:  line.LineTotal(),
			OldOrderTotal: oldTotal,
			NewOrderTotal: newTotal,
			CreatedAt:     now,
		})
	}

	for _, line := range diff.Removed {
		entries = append(entries, models.EditLogEntry{
			OrderID:       s.OrderID,
			StaffID:       s.StaffID,
			Action:        models.ActionItemRemoved,
			CatalogRowID:  line.CatalogRowID,
			DisplayName:   line.DisplayName,
			OldQuantity:   line.Quantity,
			OldUnitPrice:  line.UnitPrice,
			OldLineTotal:  line.LineTotal,
			OldOrderTotal: oldTotal,
			NewOrderTotal: newTotal,
			CreatedAt:     now,
		})
	}

	for _, change := range diff.Changed {
		action := models.ActionItemUpdated
		if change.After.Quantity != change.Before.Quantity {
			action = models.ActionQuantityChanged
		}
		entries = append(entries, models.EditLogEntry{
			OrderID:       s.OrderID,
			StaffID:       s.StaffID,
			Action:        action,
			CatalogRowID:  change.After.CatalogRowID,
			DisplayName:   change.After.DisplayName,
			OldQuantity:   change.Before.Quantity,
			NewQuantity:   change.After.Quantity,
			OldUnitPrice:  change.Before.UnitPrice,
			NewUnitPrice:  change.After.UnitPrice,
			OldLineTotal:  change.Before.LineTotal,
			NewLineTotal:  change.After.LineTotal(),
			OldOrderTotal: oldTotal,
			NewOrderTotal: newTotal,
			CreatedAt:     now,
		})
	}

	return entries
}
