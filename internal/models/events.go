package models

import "time"

// Event types
const (
	EventTypeOrderAmended   = "ORDER_AMENDED"
	EventTypeCatalogUpdated = "CATALOG_UPDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AmendedLineData describes one ledger entry in an OrderAmended event
type AmendedLineData struct {
	Action       string `json:"action"`
	CatalogRowID int64  `json:"catalog_row_id"`
	DisplayName  string `json:"display_name"`
	OldQuantity  int    `json:"old_quantity"`
	NewQuantity  int    `json:"new_quantity"`
	OldUnitPrice int64  `json:"old_unit_price"`
	NewUnitPrice int64  `json:"new_unit_price"`
}

// OrderAmendedEvent is published after a commit has been durably applied.
// Downstream consumers (kitchen display, receipts) read committed state;
// they never participate in the commit sequence itself.
type OrderAmendedEvent struct {
	BaseEvent
	OrderID       int64             `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	StaffID       int64             `json:"staff_id"`
	OldOrderTotal int64             `json:"old_order_total"`
	NewOrderTotal int64             `json:"new_order_total"`
	Lines         []AmendedLineData `json:"lines"`
}

// CatalogUpdatedEvent is published by the catalog provider when a cafe's
// menu rows change; consumed here to drop the cached normalized catalog.
type CatalogUpdatedEvent struct {
	BaseEvent
	CafeID int64 `json:"cafe_id"`
}
