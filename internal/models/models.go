package models

import "time"

// Order represents a placed customer order
type Order struct {
	ID          int64     `db:"id" json:"id"`
	OrderNumber string    `db:"order_number" json:"order_number"`
	CafeID      int64     `db:"cafe_id" json:"cafe_id"`
	Status      string    `db:"status" json:"status"`
	Settlement  string    `db:"settlement" json:"settlement"`
	TotalAmount int64     `db:"total_amount" json:"total_amount"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OrderLine represents one quantity-priced entry belonging to an order.
// LineTotal is always Quantity * UnitPrice.
type OrderLine struct {
	ID           int64  `db:"id" json:"id"`
	OrderID      int64  `db:"order_id" json:"order_id"`
	CatalogRowID int64  `db:"catalog_row_id" json:"catalog_row_id"`
	DisplayName  string `db:"display_name" json:"display_name"`
	Quantity     int    `db:"quantity" json:"quantity"`
	UnitPrice    int64  `db:"unit_price" json:"unit_price"`
	LineTotal    int64  `db:"line_total" json:"line_total"`
}

// EditLogEntry is an append-only record of one line-level amendment.
// Entries are written by the commit path and never updated or deleted.
type EditLogEntry struct {
	ID            int64     `db:"id" json:"id"`
	OrderID       int64     `db:"order_id" json:"order_id"`
	StaffID       int64     `db:"staff_id" json:"staff_id"`
	Action        string    `db:"action" json:"action"`
	CatalogRowID  int64     `db:"catalog_row_id" json:"catalog_row_id"`
	DisplayName   string    `db:"display_name" json:"display_name"`
	OldQuantity   int       `db:"old_quantity" json:"old_quantity"`
	NewQuantity   int       `db:"new_quantity" json:"new_quantity"`
	OldUnitPrice  int64     `db:"old_unit_price" json:"old_unit_price"`
	NewUnitPrice  int64     `db:"new_unit_price" json:"new_unit_price"`
	OldLineTotal  int64     `db:"old_line_total" json:"old_line_total"`
	NewLineTotal  int64     `db:"new_line_total" json:"new_line_total"`
	OldOrderTotal int64     `db:"old_order_total" json:"old_order_total"`
	NewOrderTotal int64     `db:"new_order_total" json:"new_order_total"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CatalogRow is one flat menu row as stored by the catalog provider.
// Name may carry a portion suffix, e.g. "Paneer Tikka Masala (Half)".
type CatalogRow struct {
	ID      int64  `db:"id" json:"id"`
	CafeID  int64  `db:"cafe_id" json:"cafe_id"`
	Name    string `db:"name" json:"name"`
	Price   int64  `db:"price" json:"price"`
	InStock bool   `db:"in_stock" json:"in_stock"`
	Active  bool   `db:"active" json:"active"`
}

// Portion is one size variant of a logical dish, resolved to a single
// catalog row after deduplication.
type Portion struct {
	Label        string `json:"label"`
	CatalogRowID int64  `json:"catalog_row_id"`
	Price        int64  `json:"price"`
	InStock      bool   `json:"in_stock"`
}

// LogicalDish groups portion-suffixed catalog rows under one base name
type LogicalDish struct {
	BaseName string    `json:"base_name"`
	Portions []Portion `json:"portions"`
}

// Order statuses
const (
	OrderStatusReceived  = "RECEIVED"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusEnRoute   = "EN_ROUTE"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Settlement methods
const (
	SettlementCashOnDelivery = "CASH_ON_DELIVERY"
	SettlementPrepaid        = "PREPAID"
)

// Edit log actions
const (
	ActionItemAdded       = "item_added"
	ActionItemRemoved     = "item_removed"
	ActionQuantityChanged = "quantity_changed"
	ActionItemUpdated     = "item_updated"
)
