// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderLineEvent is one frozen order line inside an OrderPlacedEvent.
type OrderLineEvent struct {
    ProductID      uint64 `json:"product_id"`
    ProductName    string `json:"product_name"`
    Quantity       int64  `json:"quantity"`
    UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderPlacedEvent is published when an order commits.  It contains enough
// information for downstream consumers to log, notify, or trigger analytics
// without querying the primary database.
type OrderPlacedEvent struct {
    OrderID    uint64           `json:"order_id"`
    UserID     uint64           `json:"user_id"`
    Username   string           `json:"username"`
    Email      string           `json:"email"`
    TotalCents int64            `json:"total_cents"`
    Lines      []OrderLineEvent `json:"lines"`
    PlacedAt   string           `json:"placed_at"`
}
