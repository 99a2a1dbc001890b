package model

import (
    "strings"
    "time"
)

// Canonical order statuses.  Orders are always created as
// StatusPending; every later transition is an admin action guarded by
// NormalizeStatus.
const (
    StatusPending    = "Pending"
    StatusProcessing = "Processing"
    StatusShipped    = "Shipped"
    StatusDelivered  = "Delivered"
    StatusCancelled  = "Cancelled"
)

// OrderStatuses lists every permitted status in display order.  The
// slice is used both for validation and to render the status picker
// in the back office.
var OrderStatuses = []string{
    StatusPending,
    StatusProcessing,
    StatusShipped,
    StatusDelivered,
    StatusCancelled,
}

// NormalizeStatus matches s case-insensitively against the permitted
// statuses and returns the canonical casing.  Unknown values return
// ok=false and must not be written to storage.
func NormalizeStatus(s string) (string, bool) {
    for _, st := range OrderStatuses {
        if strings.EqualFold(st, s) {
            return st, true
        }
    }
    return "", false
}

// Order records a placed order along with the shipping details
// captured at checkout.  TotalCents always equals the sum of line
// subtotals at creation; Status is the only field mutated after the
// row is written.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who placed the order.
//  OrderedAt   – creation timestamp (UTC).
//  TotalCents  – order total in cents, computed server-side.
//  Status      – one of OrderStatuses.
//  ShipName    – recipient name (required).
//  ShipAddress – delivery address (required).
//  ShipPhone   – contact number (required).
//  Notes       – optional free-form note from the customer.
type Order struct {
    ID          uint64    // orders.id
    UserID      uint64    // orders.user_id
    OrderedAt   time.Time // orders.ordered_at
    TotalCents  int64     // orders.total_cents
    Status      string    // orders.status
    ShipName    string    // orders.ship_name
    ShipAddress string    // orders.ship_address
    ShipPhone   string    // orders.ship_phone
    Notes       *string   // orders.notes (nullable)
    Username    string    // users.username (joined for back-office lists)
    Email       string    // users.email (joined)
    Lines       []OrderLine
}

// OrderLine freezes the quantity and unit price of one product at
// order time.  Rows are immutable after creation; later catalog price
// changes never affect a placed order.
type OrderLine struct {
    ID             uint64  // order_lines.id
    OrderID        uint64  // order_lines.order_id
    ProductID      uint64  // order_lines.product_id
    Quantity       int64   // order_lines.quantity
    UnitPriceCents int64   // order_lines.unit_price_cents
    ProductName    string  // products.name (joined for display)
    ImageURL       *string // products.image_url (joined)
}

// Subtotal returns quantity × unit price in cents.
func (l OrderLine) Subtotal() int64 { return l.Quantity * l.UnitPriceCents }
